// Package quotes supplies canned phrases. Demo deployments use them in place
// of user-supplied comment text.
package quotes

import (
	"bufio"
	_ "embed"
	"errors"
	"strings"

	"github.com/cespare/xxhash/v2"
)

//go:embed quotes.txt
var embedded string

// Provider returns a phrase for a seed. The same seed always yields the same
// phrase.
type Provider interface {
	Quote(seed string) string
}

// List picks phrases from a fixed list.
type List struct {
	quotes []string
}

// ErrEmpty is returned when a list would contain no phrases.
var ErrEmpty = errors.New("quotes: no phrases")

// NewList returns a provider over quotes, which must not be empty.
func NewList(quotes []string) (*List, error) {
	cleaned := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q = strings.TrimSpace(q); q != "" {
			cleaned = append(cleaned, q)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrEmpty
	}
	return &List{quotes: cleaned}, nil
}

// Parse reads one phrase per line, skipping blanks and # comments.
func Parse(text string) (*List, error) {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewList(lines)
}

// Embedded returns the built-in phrase list.
func Embedded() *List {
	l, err := Parse(embedded)
	if err != nil {
		panic("quotes: embedded list is invalid: " + err.Error())
	}
	return l
}

// Quote hashes seed onto the list.
func (l *List) Quote(seed string) string {
	return l.quotes[xxhash.Sum64String(seed)%uint64(len(l.quotes))]
}

// Len returns the number of phrases.
func (l *List) Len() int {
	return len(l.quotes)
}
