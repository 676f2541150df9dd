package decorators

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
)

const tracerName = "gates-backend/repository"

// TracingGateRepository opens a client span around every repository call.
// Contract outcomes are recorded as span attributes, only infrastructure
// failures mark the span as an error.
type TracingGateRepository struct {
	inner  repository.GateRepository
	tracer trace.Tracer
}

var _ repository.GateRepository = (*TracingGateRepository)(nil)

// NewTracingGateRepository wraps inner using a tracer from provider.
func NewTracingGateRepository(inner repository.GateRepository, provider trace.TracerProvider) *TracingGateRepository {
	return &TracingGateRepository{inner: inner, tracer: provider.Tracer(tracerName)}
}

func (r *TracingGateRepository) start(ctx context.Context, op string, key gate.Key, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "dynamodb"),
		attribute.String("db.operation", op),
	)
	if key != (gate.Key{}) {
		attrs = append(attrs,
			attribute.String("gate.group", key.Group),
			attribute.String("gate.service", key.Service),
			attribute.String("gate.environment", key.Environment),
		)
	}
	return r.tracer.Start(ctx, "GateRepository."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.SetAttributes(attribute.String("repository.outcome", repository.KindOf(err).String()))
	if repository.IsOther(err) || repository.IsDecodeFailure(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (r *TracingGateRepository) Insert(ctx context.Context, g gate.Gate) (gate.Gate, error) {
	ctx, span := r.start(ctx, repository.OpInsert, g.Key)
	created, err := r.inner.Insert(ctx, g)
	finish(span, err)
	return created, err
}

func (r *TracingGateRepository) FindOne(ctx context.Context, key gate.Key) (gate.Gate, bool, error) {
	ctx, span := r.start(ctx, repository.OpFindOne, key)
	g, found, err := r.inner.FindOne(ctx, key)
	span.SetAttributes(attribute.Bool("gate.found", found))
	finish(span, err)
	return g, found, err
}

func (r *TracingGateRepository) FindAll(ctx context.Context) ([]gate.Gate, error) {
	ctx, span := r.start(ctx, repository.OpFindAll, gate.Key{})
	gates, err := r.inner.FindAll(ctx)
	span.SetAttributes(attribute.Int("gate.count", len(gates)))
	finish(span, err)
	return gates, err
}

func (r *TracingGateRepository) Delete(ctx context.Context, key gate.Key) error {
	ctx, span := r.start(ctx, repository.OpDelete, key)
	err := r.inner.Delete(ctx, key)
	finish(span, err)
	return err
}

func (r *TracingGateRepository) UpdateState(ctx context.Context, key gate.Key, state gate.State, now time.Time) (gate.Gate, error) {
	ctx, span := r.start(ctx, repository.OpUpdateState, key, attribute.String("gate.state", state.String()))
	g, err := r.inner.UpdateState(ctx, key, state, now)
	finish(span, err)
	return g, err
}

func (r *TracingGateRepository) UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32, now time.Time) (gate.Gate, error) {
	ctx, span := r.start(ctx, repository.OpUpdateDisplayOrder, key, attribute.Int64("gate.display_order", int64(order)))
	g, err := r.inner.UpdateDisplayOrder(ctx, key, order, now)
	finish(span, err)
	return g, err
}

func (r *TracingGateRepository) UpsertComment(ctx context.Context, key gate.Key, comment gate.Comment, now time.Time) (gate.Gate, error) {
	ctx, span := r.start(ctx, repository.OpUpsertComment, key, attribute.String("gate.comment_id", comment.ID))
	g, err := r.inner.UpsertComment(ctx, key, comment, now)
	finish(span, err)
	return g, err
}

func (r *TracingGateRepository) DeleteCommentByID(ctx context.Context, key gate.Key, commentID string, now time.Time) (gate.Gate, error) {
	ctx, span := r.start(ctx, repository.OpDeleteCommentByID, key, attribute.String("gate.comment_id", commentID))
	g, err := r.inner.DeleteCommentByID(ctx, key, commentID, now)
	finish(span, err)
	return g, err
}
