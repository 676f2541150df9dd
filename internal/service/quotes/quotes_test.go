package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded(t *testing.T) {
	l := Embedded()
	assert.Greater(t, l.Len(), 10)

	for _, q := range l.quotes {
		assert.NotEmpty(t, q)
		assert.NotContains(t, q, "#", "comment lines must be skipped")
	}
}

func TestQuoteIsDeterministic(t *testing.T) {
	l := Embedded()
	assert.Equal(t, l.Quote("comment-1"), l.Quote("comment-1"))

	distinct := map[string]bool{}
	for _, seed := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		distinct[l.Quote(seed)] = true
	}
	assert.Greater(t, len(distinct), 1, "seeds should spread over the list")
}

func TestNewList(t *testing.T) {
	_, err := NewList([]string{" ", ""})
	assert.ErrorIs(t, err, ErrEmpty)

	l, err := NewList([]string{"only"})
	require.NoError(t, err)
	assert.Equal(t, "only", l.Quote("anything"))
}
