package decorators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
)

// CircuitBreakerConfig holds configuration for the repository breaker.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns conservative defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "gate-repository",
		MaxRequests:      3,
		Interval:         10 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// CircuitBreakerGateRepository stops calling the backend after repeated
// infrastructure failures. Only KindOther errors count as failures; contract
// outcomes pass through untouched. A rejected call surfaces as KindOther.
type CircuitBreakerGateRepository struct {
	inner   repository.GateRepository
	breaker *gobreaker.CircuitBreaker
}

var _ repository.GateRepository = (*CircuitBreakerGateRepository)(nil)

// NewCircuitBreakerGateRepository wraps inner. onStateChange may be nil.
func NewCircuitBreakerGateRepository(
	inner repository.GateRepository,
	config CircuitBreakerConfig,
	logger *zap.Logger,
	onStateChange func(name string, from, to gobreaker.State),
) *CircuitBreakerGateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if onStateChange != nil {
				onStateChange(name, from, to)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !repository.IsOther(err) || errors.Is(err, context.Canceled)
		},
	})
	return &CircuitBreakerGateRepository{inner: inner, breaker: breaker}
}

// State reports the breaker state.
func (r *CircuitBreakerGateRepository) State() gobreaker.State {
	return r.breaker.State()
}

func guarded[T any](r *CircuitBreakerGateRepository, op string, key gate.Key, fn func() (T, error)) (T, error) {
	res, err := r.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, repository.NewOther(op, key, fmt.Errorf("circuit breaker %s: %w", r.breaker.Name(), err))
		}
		return zero, err
	}
	return res.(T), nil
}

type findResult struct {
	gate  gate.Gate
	found bool
}

func (r *CircuitBreakerGateRepository) Insert(ctx context.Context, g gate.Gate) (gate.Gate, error) {
	return guarded(r, repository.OpInsert, g.Key, func() (gate.Gate, error) {
		return r.inner.Insert(ctx, g)
	})
}

func (r *CircuitBreakerGateRepository) FindOne(ctx context.Context, key gate.Key) (gate.Gate, bool, error) {
	res, err := guarded(r, repository.OpFindOne, key, func() (findResult, error) {
		g, found, err := r.inner.FindOne(ctx, key)
		return findResult{gate: g, found: found}, err
	})
	return res.gate, res.found, err
}

func (r *CircuitBreakerGateRepository) FindAll(ctx context.Context) ([]gate.Gate, error) {
	return guarded(r, repository.OpFindAll, gate.Key{}, func() ([]gate.Gate, error) {
		return r.inner.FindAll(ctx)
	})
}

func (r *CircuitBreakerGateRepository) Delete(ctx context.Context, key gate.Key) error {
	_, err := guarded(r, repository.OpDelete, key, func() (struct{}, error) {
		return struct{}{}, r.inner.Delete(ctx, key)
	})
	return err
}

func (r *CircuitBreakerGateRepository) UpdateState(ctx context.Context, key gate.Key, state gate.State, now time.Time) (gate.Gate, error) {
	return guarded(r, repository.OpUpdateState, key, func() (gate.Gate, error) {
		return r.inner.UpdateState(ctx, key, state, now)
	})
}

func (r *CircuitBreakerGateRepository) UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32, now time.Time) (gate.Gate, error) {
	return guarded(r, repository.OpUpdateDisplayOrder, key, func() (gate.Gate, error) {
		return r.inner.UpdateDisplayOrder(ctx, key, order, now)
	})
}

func (r *CircuitBreakerGateRepository) UpsertComment(ctx context.Context, key gate.Key, comment gate.Comment, now time.Time) (gate.Gate, error) {
	return guarded(r, repository.OpUpsertComment, key, func() (gate.Gate, error) {
		return r.inner.UpsertComment(ctx, key, comment, now)
	})
}

func (r *CircuitBreakerGateRepository) DeleteCommentByID(ctx context.Context, key gate.Key, commentID string, now time.Time) (gate.Gate, error) {
	return guarded(r, repository.OpDeleteCommentByID, key, func() (gate.Gate, error) {
		return r.inner.DeleteCommentByID(ctx, key, commentID, now)
	})
}
