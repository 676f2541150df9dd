package repository

import (
	"errors"
	"fmt"

	"gates-backend/internal/domain/gate"
)

// Kind classifies a repository failure.
type Kind int

const (
	// KindOther is a transport or unknown backend failure. Callers may retry.
	KindOther Kind = iota
	// KindNotFound means an existence precondition failed.
	KindNotFound
	// KindAlreadyExists means an absence precondition failed on insert.
	KindAlreadyExists
	// KindDecodeFailure means a stored record could not be read back.
	KindDecodeFailure
	// KindNotPermitted means the repository refuses the operation outright.
	KindNotPermitted
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindDecodeFailure:
		return "decode failure"
	case KindNotPermitted:
		return "not permitted"
	default:
		return "other"
	}
}

// Error is the only error type surfaced by gate repositories.
type Error struct {
	Kind  Kind
	Op    string   // Repository operation, e.g. "UpdateState"
	Key   gate.Key // Addressed gate; zero for FindAll
	Cause error    // Underlying backend error, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Key, e.Kind)
	if e.Key == (gate.Key{}) {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind, so sentinels such as
// ErrNotFound work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Key == (gate.Key{}) && t.Cause == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrDecodeFailure = &Error{Kind: KindDecodeFailure}
	ErrNotPermitted  = &Error{Kind: KindNotPermitted}
	ErrOther         = &Error{Kind: KindOther}
)

// NewNotFound reports that key (or a comment on it) does not exist.
func NewNotFound(op string, key gate.Key) *Error {
	return &Error{Kind: KindNotFound, Op: op, Key: key}
}

// NewAlreadyExists reports that key is already taken.
func NewAlreadyExists(op string, key gate.Key) *Error {
	return &Error{Kind: KindAlreadyExists, Op: op, Key: key}
}

// NewDecodeFailure reports a stored record that could not be decoded.
func NewDecodeFailure(op string, key gate.Key, cause error) *Error {
	return &Error{Kind: KindDecodeFailure, Op: op, Key: key, Cause: cause}
}

// NewNotPermitted reports an operation refused by the repository.
func NewNotPermitted(op string, key gate.Key) *Error {
	return &Error{Kind: KindNotPermitted, Op: op, Key: key}
}

// NewOther wraps an unclassified backend error.
func NewOther(op string, key gate.Key, cause error) *Error {
	return &Error{Kind: KindOther, Op: op, Key: key, Cause: cause}
}

// KindOf returns the kind of err. Errors that are not repository errors are
// reported as KindOther.
func KindOf(err error) Kind {
	var repoErr *Error
	if errors.As(err, &repoErr) {
		return repoErr.Kind
	}
	return KindOther
}

// IsNotFound checks if an error is a repository not found error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsAlreadyExists checks if an error is a repository already exists error.
func IsAlreadyExists(err error) bool {
	return err != nil && KindOf(err) == KindAlreadyExists
}

// IsDecodeFailure checks if an error is a repository decode error.
func IsDecodeFailure(err error) bool {
	return err != nil && KindOf(err) == KindDecodeFailure
}

// IsNotPermitted checks if an error is a repository refusal.
func IsNotPermitted(err error) bool {
	return err != nil && KindOf(err) == KindNotPermitted
}

// IsOther checks if an error is an unclassified repository failure.
func IsOther(err error) bool {
	return err != nil && KindOf(err) == KindOther
}

// IsExpected reports outcomes that are part of the contract rather than
// infrastructure faults.
func IsExpected(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindAlreadyExists, KindNotPermitted:
		return err != nil
	default:
		return false
	}
}
