// Package idgen generates comment identifiers backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is restricted to alphanumerics so IDs are safe in URL paths and
// in DynamoDB attribute names.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters in an ID.
const Length = 16

// Generator produces unique identifiers.
type Generator interface {
	NewID() (string, error)
}

// NanoID generates random IDs with an optional prefix.
type NanoID struct {
	Prefix string
}

// NewID returns a new random ID.
func (g NanoID) NewID() (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return g.Prefix + id, nil
}
