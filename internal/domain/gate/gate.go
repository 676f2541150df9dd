// Package gate contains the core gate entity and its value objects.
//
// A gate is an open/closed switch identified by the triple
// (group, service, environment). Downstream systems query a gate before
// performing an action such as a deployment or a traffic cutover.
package gate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// State is the switch position of a gate.
type State string

const (
	// Open allows the guarded action.
	Open State = "open"
	// Closed blocks the guarded action. New gates start closed.
	Closed State = "closed"
)

// ErrInvalidState is returned when a state string is neither open nor closed.
var ErrInvalidState = errors.New("invalid gate state")

// ParseState converts a lowercase wire value into a State.
func ParseState(s string) (State, error) {
	switch State(strings.ToLower(strings.TrimSpace(s))) {
	case Open:
		return Open, nil
	case Closed:
		return Closed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
}

// IsValid reports whether s is one of the known states.
func (s State) IsValid() bool {
	return s == Open || s == Closed
}

func (s State) String() string {
	return string(s)
}

// SortKeySeparator joins service and environment in the stored sort key.
const SortKeySeparator = "#"

// Key is the natural identity of a gate.
type Key struct {
	Group       string `json:"group"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
}

// NewKey builds a key and validates that every part is present.
func NewKey(group, service, environment string) (Key, error) {
	k := Key{Group: group, Service: service, Environment: environment}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// ErrEmptyKeyPart is returned by Validate when a key component is blank.
var ErrEmptyKeyPart = errors.New("gate key parts must not be empty")

// Validate checks that group, service and environment are non-empty.
func (k Key) Validate() error {
	var missing []string
	if strings.TrimSpace(k.Group) == "" {
		missing = append(missing, "group")
	}
	if strings.TrimSpace(k.Service) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(k.Environment) == "" {
		missing = append(missing, "environment")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrEmptyKeyPart, strings.Join(missing, ", "))
	}
	return nil
}

// SortKey returns the combined "service#environment" value.
func (k Key) SortKey() string {
	return k.Service + SortKeySeparator + k.Environment
}

func (k Key) String() string {
	return k.Group + "/" + k.Service + "/" + k.Environment
}

// Comment is a note attached to a gate. IDs are unique within a gate.
type Comment struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Created time.Time `json:"created"`
}

// Gate is the persisted switch.
type Gate struct {
	Key          Key
	State        State
	Comments     map[string]Comment
	LastUpdated  time.Time
	DisplayOrder *uint32
}

// New returns a closed gate with no comments, stamped at now.
func New(key Key, now time.Time) Gate {
	return Gate{
		Key:         key,
		State:       Closed,
		Comments:    map[string]Comment{},
		LastUpdated: now,
	}
}

// WithDisplayOrder returns a copy of g carrying the given display order.
func (g Gate) WithDisplayOrder(order uint32) Gate {
	g.DisplayOrder = &order
	return g
}

// Clone returns a deep copy so callers can mutate the result freely.
func (g Gate) Clone() Gate {
	out := g
	out.Comments = make(map[string]Comment, len(g.Comments))
	for id, c := range g.Comments {
		out.Comments[id] = c
	}
	if g.DisplayOrder != nil {
		order := *g.DisplayOrder
		out.DisplayOrder = &order
	}
	return out
}

// SortedComments returns the comments ordered by creation time, ties by id.
func (g Gate) SortedComments() []Comment {
	out := make([]Comment, 0, len(g.Comments))
	for _, c := range g.Comments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// StateChanged is raised after a gate's state was written.
type StateChanged struct {
	Key       Key
	State     State
	Timestamp time.Time
}

// CommentAdded is raised after a comment was upserted on a gate.
type CommentAdded struct {
	Key       Key
	CommentID string
	Timestamp time.Time
}
