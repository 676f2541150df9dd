// Package decorators wraps repository.GateRepository implementations to add
// cross-cutting behaviour without touching the backend adapter.
//
// Every decorator holds the repository it wraps and implements the same
// interface, so they compose in any order. See Chain for the order used by
// the service.
package decorators

import (
	"context"
	"time"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
	"gates-backend/internal/service/quotes"
)

// ReadOnlyGateRepository serves demo deployments. Creating and deleting gates
// is refused, and comment text is replaced with a canned phrase so open demos
// cannot be used to publish arbitrary content.
type ReadOnlyGateRepository struct {
	inner  repository.GateRepository
	quotes quotes.Provider
}

var _ repository.GateRepository = (*ReadOnlyGateRepository)(nil)

// NewReadOnlyGateRepository wraps inner.
func NewReadOnlyGateRepository(inner repository.GateRepository, provider quotes.Provider) *ReadOnlyGateRepository {
	return &ReadOnlyGateRepository{inner: inner, quotes: provider}
}

// Insert is not permitted.
func (r *ReadOnlyGateRepository) Insert(_ context.Context, g gate.Gate) (gate.Gate, error) {
	return gate.Gate{}, repository.NewNotPermitted(repository.OpInsert, g.Key)
}

func (r *ReadOnlyGateRepository) FindOne(ctx context.Context, key gate.Key) (gate.Gate, bool, error) {
	return r.inner.FindOne(ctx, key)
}

func (r *ReadOnlyGateRepository) FindAll(ctx context.Context) ([]gate.Gate, error) {
	return r.inner.FindAll(ctx)
}

// Delete is not permitted.
func (r *ReadOnlyGateRepository) Delete(_ context.Context, key gate.Key) error {
	return repository.NewNotPermitted(repository.OpDelete, key)
}

func (r *ReadOnlyGateRepository) UpdateState(ctx context.Context, key gate.Key, state gate.State, now time.Time) (gate.Gate, error) {
	return r.inner.UpdateState(ctx, key, state, now)
}

func (r *ReadOnlyGateRepository) UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32, now time.Time) (gate.Gate, error) {
	return r.inner.UpdateDisplayOrder(ctx, key, order, now)
}

// UpsertComment forwards the comment with its message swapped for a canned
// phrase. ID and creation time are kept.
func (r *ReadOnlyGateRepository) UpsertComment(ctx context.Context, key gate.Key, comment gate.Comment, now time.Time) (gate.Gate, error) {
	comment.Message = r.quotes.Quote(comment.ID)
	return r.inner.UpsertComment(ctx, key, comment, now)
}

func (r *ReadOnlyGateRepository) DeleteCommentByID(ctx context.Context, key gate.Key, commentID string, now time.Time) (gate.Gate, error) {
	return r.inner.DeleteCommentByID(ctx, key, commentID, now)
}
