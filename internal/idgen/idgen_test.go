package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoID(t *testing.T) {
	g := NanoID{Prefix: "c-"}
	seen := make(map[string]bool)

	for i := 0; i < 500; i++ {
		id, err := g.NewID()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(id, "c-"))
		assert.Len(t, id, len("c-")+Length)
		for _, r := range strings.TrimPrefix(id, "c-") {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected rune %q", r)
		}
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
