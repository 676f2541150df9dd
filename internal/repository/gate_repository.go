// Package repository defines the persistence contract for gates.
//
// Every implementation (the DynamoDB adapter, the in-memory double and the
// decorators) satisfies GateRepository and reports failures exclusively as
// *Error values. Mutations are single conditional writes against the store;
// implementations hold no locks for correctness and never retry on their own.
package repository

import (
	"context"
	"time"

	"gates-backend/internal/domain/gate"
)

// Operation names used in errors, logs and metrics.
const (
	OpInsert             = "Insert"
	OpFindOne            = "FindOne"
	OpFindAll            = "FindAll"
	OpDelete             = "Delete"
	OpUpdateState        = "UpdateState"
	OpUpdateDisplayOrder = "UpdateDisplayOrder"
	OpUpsertComment      = "UpsertComment"
	OpDeleteCommentByID  = "DeleteCommentByID"
)

// GateRepository stores gates keyed by group, service and environment.
type GateRepository interface {
	// Insert persists g only if no record exists for g.Key.
	Insert(ctx context.Context, g gate.Gate) (gate.Gate, error)

	// FindOne returns the gate for key. found is false when it does not exist.
	FindOne(ctx context.Context, key gate.Key) (g gate.Gate, found bool, err error)

	// FindAll scans every gate. Order is unspecified.
	FindAll(ctx context.Context) ([]gate.Gate, error)

	// Delete removes key, failing with NotFound when it is absent.
	Delete(ctx context.Context, key gate.Key) error

	// UpdateState sets the state and last_updated of an existing gate.
	UpdateState(ctx context.Context, key gate.Key, state gate.State, now time.Time) (gate.Gate, error)

	// UpdateDisplayOrder sets the display order and last_updated of an existing gate.
	UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32, now time.Time) (gate.Gate, error)

	// UpsertComment inserts or overwrites comment.ID on an existing gate.
	UpsertComment(ctx context.Context, key gate.Key, comment gate.Comment, now time.Time) (gate.Gate, error)

	// DeleteCommentByID removes one comment. Both the gate and the comment
	// must exist.
	DeleteCommentByID(ctx context.Context, key gate.Key, commentID string, now time.Time) (gate.Gate, error)
}
