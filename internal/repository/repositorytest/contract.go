// Package repositorytest holds a behavioural suite every GateRepository
// implementation must pass.
package repositorytest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
)

// Factory returns the repository under test. It may be shared between
// subtests; every subtest uses its own keys.
type Factory func(t *testing.T) repository.GateRepository

var seq atomic.Int64

// uniqueKey builds a key no other subtest uses, so a shared table can back
// the whole suite.
func uniqueKey(t *testing.T) gate.Key {
	name := strings.NewReplacer("/", "-", " ", "_").Replace(t.Name())
	return gate.Key{
		Group:       fmt.Sprintf("%s-%d-%d", name, time.Now().UnixNano(), seq.Add(1)),
		Service:     "svc",
		Environment: "live",
	}
}

var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// Run executes the suite.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("insert then insert again fails with AlreadyExists", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)
		first := gate.New(key, base).WithDisplayOrder(4)

		_, err := repo.Insert(ctx, first)
		require.NoError(t, err)

		second := gate.New(key, base.Add(time.Hour))
		second.State = gate.Open
		_, err = repo.Insert(ctx, second)
		require.Error(t, err)
		assert.True(t, repository.IsAlreadyExists(err), "got %v", err)

		stored, found, err := repo.FindOne(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assertGateEqual(t, first, stored)
	})

	t.Run("insert returns the persisted record", func(t *testing.T) {
		repo := newRepo(t)
		g := gate.New(uniqueKey(t), base)

		got, err := repo.Insert(ctx, g)
		require.NoError(t, err)
		assertGateEqual(t, g, got)
		assert.Empty(t, got.Comments)
		assert.Nil(t, got.DisplayOrder)
	})

	t.Run("mutations on an absent key fail with NotFound", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)
		now := base.Add(time.Minute)

		_, err := repo.UpdateState(ctx, key, gate.Open, now)
		assert.True(t, repository.IsNotFound(err), "UpdateState: %v", err)

		_, err = repo.UpdateDisplayOrder(ctx, key, 1, now)
		assert.True(t, repository.IsNotFound(err), "UpdateDisplayOrder: %v", err)

		_, err = repo.UpsertComment(ctx, key, gate.Comment{ID: "c1", Message: "a", Created: now}, now)
		assert.True(t, repository.IsNotFound(err), "UpsertComment: %v", err)

		_, err = repo.DeleteCommentByID(ctx, key, "c1", now)
		assert.True(t, repository.IsNotFound(err), "DeleteCommentByID: %v", err)

		err = repo.Delete(ctx, key)
		assert.True(t, repository.IsNotFound(err), "Delete: %v", err)

		_, found, err := repo.FindOne(ctx, key)
		require.NoError(t, err)
		assert.False(t, found, "no record may be created as a side effect")
	})

	t.Run("insert delete find yields absence", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)

		_, err := repo.Insert(ctx, gate.New(key, base))
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, key))

		_, found, err := repo.FindOne(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)

		err = repo.Delete(ctx, key)
		assert.True(t, repository.IsNotFound(err))
	})

	t.Run("update state and display order return the new record", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)
		_, err := repo.Insert(ctx, gate.New(key, base))
		require.NoError(t, err)

		t1 := base.Add(time.Minute)
		updated, err := repo.UpdateState(ctx, key, gate.Open, t1)
		require.NoError(t, err)
		assert.Equal(t, gate.Open, updated.State)
		assert.True(t, t1.Equal(updated.LastUpdated))

		t2 := t1.Add(time.Minute)
		ordered, err := repo.UpdateDisplayOrder(ctx, key, 7, t2)
		require.NoError(t, err)
		require.NotNil(t, ordered.DisplayOrder)
		assert.Equal(t, uint32(7), *ordered.DisplayOrder)
		assert.Equal(t, gate.Open, ordered.State)
		assert.True(t, t2.Equal(ordered.LastUpdated))
	})

	t.Run("upsert comment overwrites the same id", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)
		_, err := repo.Insert(ctx, gate.New(key, base))
		require.NoError(t, err)

		t1 := base.Add(time.Minute)
		_, err = repo.UpsertComment(ctx, key, gate.Comment{ID: "c1", Message: "a", Created: t1}, t1)
		require.NoError(t, err)

		t2 := t1.Add(time.Minute)
		got, err := repo.UpsertComment(ctx, key, gate.Comment{ID: "c1", Message: "b", Created: t2}, t2)
		require.NoError(t, err)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "b", got.Comments["c1"].Message)
		assert.True(t, t2.Equal(got.LastUpdated))
	})

	t.Run("delete missing comment fails and keeps the others", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)
		_, err := repo.Insert(ctx, gate.New(key, base))
		require.NoError(t, err)
		_, err = repo.UpsertComment(ctx, key, gate.Comment{ID: "keep", Message: "x", Created: base}, base)
		require.NoError(t, err)

		_, err = repo.DeleteCommentByID(ctx, key, "missing", base.Add(time.Minute))
		assert.True(t, repository.IsNotFound(err), "got %v", err)

		stored, found, err := repo.FindOne(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, stored.Comments, 1)
		assert.Contains(t, stored.Comments, "keep")
		assert.True(t, base.Equal(stored.LastUpdated), "failed delete must not touch last_updated")
	})

	t.Run("comment lifecycle advances last_updated", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)
		_, err := repo.Insert(ctx, gate.New(key, base))
		require.NoError(t, err)

		created := base.Add(time.Minute)
		withComment, err := repo.UpsertComment(ctx, key, gate.Comment{ID: "c1", Message: "fix #1", Created: created}, created)
		require.NoError(t, err)
		require.Len(t, withComment.Comments, 1)
		assert.True(t, withComment.LastUpdated.Equal(withComment.Comments["c1"].Created))

		deletedAt := created.Add(time.Minute)
		cleared, err := repo.DeleteCommentByID(ctx, key, "c1", deletedAt)
		require.NoError(t, err)
		assert.Empty(t, cleared.Comments)
		assert.True(t, deletedAt.Equal(cleared.LastUpdated))
	})

	t.Run("find all includes inserted gates", func(t *testing.T) {
		repo := newRepo(t)
		keys := []gate.Key{uniqueKey(t), uniqueKey(t)}
		for _, k := range keys {
			_, err := repo.Insert(ctx, gate.New(k, base))
			require.NoError(t, err)
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		seen := map[gate.Key]bool{}
		for _, g := range all {
			seen[g.Key] = true
		}
		for _, k := range keys {
			assert.True(t, seen[k], "missing %s", k)
		}
	})

	t.Run("racing inserts produce exactly one winner", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)
		const racers = 8

		var wg sync.WaitGroup
		var wins, conflicts atomic.Int32
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				g := gate.New(key, base).WithDisplayOrder(uint32(i))
				_, err := repo.Insert(ctx, g)
				switch {
				case err == nil:
					wins.Add(1)
				case repository.IsAlreadyExists(err):
					conflicts.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
		assert.Equal(t, int32(racers-1), conflicts.Load())
	})

	t.Run("concurrent comments with different ids all survive", func(t *testing.T) {
		repo := newRepo(t)
		key := uniqueKey(t)
		_, err := repo.Insert(ctx, gate.New(key, base))
		require.NoError(t, err)

		const writers = 10
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				at := base.Add(time.Duration(i) * time.Second)
				c := gate.Comment{ID: fmt.Sprintf("c%d", i), Message: fmt.Sprintf("note %d", i), Created: at}
				if _, err := repo.UpsertComment(ctx, key, c, at); err != nil {
					t.Errorf("upsert %d: %v", i, err)
				}
			}(i)
		}
		wg.Wait()

		stored, found, err := repo.FindOne(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, stored.Comments, writers)
	})
}

func assertGateEqual(t *testing.T, want, got gate.Gate) {
	t.Helper()
	assert.Equal(t, want.Key, got.Key)
	assert.Equal(t, want.State, got.State)
	assert.True(t, want.LastUpdated.Equal(got.LastUpdated), "last_updated: want %s got %s", want.LastUpdated, got.LastUpdated)
	assert.Equal(t, want.DisplayOrder, got.DisplayOrder)
	assert.Len(t, got.Comments, len(want.Comments))
	for id, c := range want.Comments {
		gc, ok := got.Comments[id]
		if assert.True(t, ok, "comment %s", id) {
			assert.Equal(t, c.Message, gc.Message)
			assert.True(t, c.Created.Equal(gc.Created))
		}
	}
}
