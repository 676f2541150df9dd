package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
	"gates-backend/internal/repository/repositorytest"
)

func TestMockRepositoryContract(t *testing.T) {
	repositorytest.Run(t, func(t *testing.T) repository.GateRepository {
		return NewMockRepository()
	})
}

func TestMockRepositoryErrorInjection(t *testing.T) {
	ctx := context.Background()
	key := gate.Key{Group: "g", Service: "s", Environment: "e"}
	repo := NewMockRepository(gate.New(key, time.Now()))
	boom := repository.NewOther(repository.OpFindAll, gate.Key{}, errors.New("boom"))

	repo.SetError(repository.OpFindAll, boom)
	_, err := repo.FindAll(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, repo.Calls(repository.OpFindAll))

	repo.ClearErrors()
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMockRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	key := gate.Key{Group: "g", Service: "s", Environment: "e"}
	repo := NewMockRepository(gate.New(key, time.Now()))

	g, found, err := repo.FindOne(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	g.Comments["sneaky"] = gate.Comment{ID: "sneaky"}

	again, _, err := repo.FindOne(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, again.Comments)
}
