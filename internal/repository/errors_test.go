package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"gates-backend/internal/domain/gate"
)

func TestErrorClassification(t *testing.T) {
	key := gate.Key{Group: "g", Service: "s", Environment: "e"}
	cause := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		kind     Kind
		sentinel error
		expected bool
	}{
		{name: "not found", err: NewNotFound(OpDelete, key), kind: KindNotFound, sentinel: ErrNotFound, expected: true},
		{name: "already exists", err: NewAlreadyExists(OpInsert, key), kind: KindAlreadyExists, sentinel: ErrAlreadyExists, expected: true},
		{name: "decode", err: NewDecodeFailure(OpFindAll, gate.Key{}, cause), kind: KindDecodeFailure, sentinel: ErrDecodeFailure},
		{name: "not permitted", err: NewNotPermitted(OpInsert, key), kind: KindNotPermitted, sentinel: ErrNotPermitted, expected: true},
		{name: "other", err: NewOther(OpFindOne, key, cause), kind: KindOther, sentinel: ErrOther},
		{name: "foreign error", err: cause, kind: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.expected, IsExpected(tt.err))
			if tt.sentinel != nil {
				wrapped := fmt.Errorf("use case: %w", tt.err)
				assert.ErrorIs(t, wrapped, tt.sentinel)
			}
		})
	}
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("throttled")
	err := NewOther(OpUpdateState, gate.Key{Group: "g", Service: "s", Environment: "e"}, cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsOther(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "UpdateState g/s/e")
	assert.Contains(t, err.Error(), "throttled")
}

func TestNilIsNotClassified(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsOther(nil))
	assert.False(t, IsExpected(nil))
}
