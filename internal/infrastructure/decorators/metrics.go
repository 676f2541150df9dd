package decorators

import (
	"context"
	"time"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/infrastructure/observability"
	"gates-backend/internal/repository"
)

// MetricsGateRepository counts repository calls by outcome and records
// their latency.
type MetricsGateRepository struct {
	inner     repository.GateRepository
	collector *observability.Collector
}

var _ repository.GateRepository = (*MetricsGateRepository)(nil)

// NewMetricsGateRepository wraps inner.
func NewMetricsGateRepository(inner repository.GateRepository, collector *observability.Collector) *MetricsGateRepository {
	return &MetricsGateRepository{inner: inner, collector: collector}
}

func (r *MetricsGateRepository) observe(op string, start time.Time, err error) {
	r.collector.RepositoryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	r.collector.RepositoryOperations.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch repository.KindOf(err) {
	case repository.KindNotFound:
		return "not_found"
	case repository.KindAlreadyExists:
		return "already_exists"
	case repository.KindDecodeFailure:
		return "decode_failure"
	case repository.KindNotPermitted:
		return "not_permitted"
	default:
		return "error"
	}
}

func (r *MetricsGateRepository) Insert(ctx context.Context, g gate.Gate) (gate.Gate, error) {
	start := time.Now()
	created, err := r.inner.Insert(ctx, g)
	r.observe(repository.OpInsert, start, err)
	return created, err
}

func (r *MetricsGateRepository) FindOne(ctx context.Context, key gate.Key) (gate.Gate, bool, error) {
	start := time.Now()
	g, found, err := r.inner.FindOne(ctx, key)
	r.observe(repository.OpFindOne, start, err)
	return g, found, err
}

func (r *MetricsGateRepository) FindAll(ctx context.Context) ([]gate.Gate, error) {
	start := time.Now()
	gates, err := r.inner.FindAll(ctx)
	r.observe(repository.OpFindAll, start, err)
	return gates, err
}

func (r *MetricsGateRepository) Delete(ctx context.Context, key gate.Key) error {
	start := time.Now()
	err := r.inner.Delete(ctx, key)
	r.observe(repository.OpDelete, start, err)
	return err
}

func (r *MetricsGateRepository) UpdateState(ctx context.Context, key gate.Key, state gate.State, now time.Time) (gate.Gate, error) {
	start := time.Now()
	g, err := r.inner.UpdateState(ctx, key, state, now)
	r.observe(repository.OpUpdateState, start, err)
	return g, err
}

func (r *MetricsGateRepository) UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32, now time.Time) (gate.Gate, error) {
	start := time.Now()
	g, err := r.inner.UpdateDisplayOrder(ctx, key, order, now)
	r.observe(repository.OpUpdateDisplayOrder, start, err)
	return g, err
}

func (r *MetricsGateRepository) UpsertComment(ctx context.Context, key gate.Key, comment gate.Comment, now time.Time) (gate.Gate, error) {
	start := time.Now()
	g, err := r.inner.UpsertComment(ctx, key, comment, now)
	r.observe(repository.OpUpsertComment, start, err)
	return g, err
}

func (r *MetricsGateRepository) DeleteCommentByID(ctx context.Context, key gate.Key, commentID string, now time.Time) (gate.Gate, error) {
	start := time.Now()
	g, err := r.inner.DeleteCommentByID(ctx, key, commentID, now)
	r.observe(repository.OpDeleteCommentByID, start, err)
	return g, err
}
