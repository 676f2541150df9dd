package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    State
		wantErr bool
	}{
		{name: "open", input: "open", want: Open},
		{name: "closed", input: "closed", want: Closed},
		{name: "mixed case", input: "Open", want: Open},
		{name: "padded", input: " closed ", want: Closed},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "ajar", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseState(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyValidate(t *testing.T) {
	t.Run("complete key", func(t *testing.T) {
		k, err := NewKey("g1", "s1", "live")
		require.NoError(t, err)
		assert.Equal(t, "s1#live", k.SortKey())
		assert.Equal(t, "g1/s1/live", k.String())
	})

	t.Run("blank parts are reported", func(t *testing.T) {
		_, err := NewKey("g1", " ", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyKeyPart)
		assert.Contains(t, err.Error(), "service")
		assert.Contains(t, err.Error(), "environment")
		assert.NotContains(t, err.Error(), "group")
	})
}

func TestNew(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	g := New(Key{Group: "g1", Service: "s1", Environment: "live"}, now)

	assert.Equal(t, Closed, g.State)
	assert.Empty(t, g.Comments)
	assert.NotNil(t, g.Comments)
	assert.Nil(t, g.DisplayOrder)
	assert.Equal(t, now, g.LastUpdated)

	ordered := g.WithDisplayOrder(3)
	require.NotNil(t, ordered.DisplayOrder)
	assert.Equal(t, uint32(3), *ordered.DisplayOrder)
	assert.Nil(t, g.DisplayOrder)
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	g := New(Key{Group: "g", Service: "s", Environment: "e"}, now).WithDisplayOrder(1)
	g.Comments["c1"] = Comment{ID: "c1", Message: "a", Created: now}

	c := g.Clone()
	c.Comments["c2"] = Comment{ID: "c2"}
	*c.DisplayOrder = 9

	assert.Len(t, g.Comments, 1)
	assert.Equal(t, uint32(1), *g.DisplayOrder)
}

func TestSortedComments(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := New(Key{Group: "g", Service: "s", Environment: "e"}, base)
	g.Comments["late"] = Comment{ID: "late", Created: base.Add(2 * time.Hour)}
	g.Comments["b"] = Comment{ID: "b", Created: base}
	g.Comments["a"] = Comment{ID: "a", Created: base}

	sorted := g.SortedComments()
	require.Len(t, sorted, 3)
	assert.Equal(t, "a", sorted[0].ID)
	assert.Equal(t, "b", sorted[1].ID)
	assert.Equal(t, "late", sorted[2].ID)
}
