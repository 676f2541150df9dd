package decorators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/infrastructure/observability"
	"gates-backend/internal/repository"
	"gates-backend/internal/repository/mocks"
	"gates-backend/internal/service/quotes"
)

var now = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func testKey() gate.Key {
	return gate.Key{Group: "payments", Service: "ledger", Environment: "prod"}
}

func seededRepo() *mocks.MockRepository {
	return mocks.NewMockRepository(gate.New(testKey(), now.Add(-time.Hour)))
}

func testQuotes(t *testing.T) *quotes.List {
	t.Helper()
	list, err := quotes.NewList([]string{"Ship it.", "Measure twice.", "Trust the pipeline."})
	require.NoError(t, err)
	return list
}

func TestReadOnly_RefusesInsertAndDelete(t *testing.T) {
	inner := seededRepo()
	repo := NewReadOnlyGateRepository(inner, testQuotes(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, gate.New(gate.Key{Group: "a", Service: "b", Environment: "c"}, now))
	assert.True(t, repository.IsNotPermitted(err))

	err = repo.Delete(ctx, testKey())
	assert.True(t, repository.IsNotPermitted(err))

	assert.Equal(t, 0, inner.Calls(repository.OpInsert))
	assert.Equal(t, 0, inner.Calls(repository.OpDelete))
	assert.Equal(t, 1, inner.Len())
}

func TestReadOnly_ReplacesCommentText(t *testing.T) {
	list := testQuotes(t)
	repo := NewReadOnlyGateRepository(seededRepo(), list)
	created := now.Add(-time.Minute)

	g, err := repo.UpsertComment(context.Background(), testKey(),
		gate.Comment{ID: "c1", Message: "<script>alert(1)</script>", Created: created}, now)
	require.NoError(t, err)

	c := g.Comments["c1"]
	assert.Equal(t, list.Quote("c1"), c.Message)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, created, c.Created)
}

func TestReadOnly_DelegatesEverythingElse(t *testing.T) {
	inner := seededRepo()
	repo := NewReadOnlyGateRepository(inner, testQuotes(t))
	ctx := context.Background()

	g, err := repo.UpdateState(ctx, testKey(), gate.Open, now)
	require.NoError(t, err)
	assert.Equal(t, gate.Open, g.State)

	g, err = repo.UpdateDisplayOrder(ctx, testKey(), 4, now)
	require.NoError(t, err)
	require.NotNil(t, g.DisplayOrder)

	_, found, err := repo.FindOne(ctx, testKey())
	require.NoError(t, err)
	assert.True(t, found)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.DeleteCommentByID(ctx, testKey(), "missing", now)
	assert.True(t, repository.IsNotFound(err))
}

func TestLogging_LevelsByOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := seededRepo()
	repo := NewLoggingGateRepository(inner, zap.New(core), DefaultLoggingConfig())
	ctx := context.Background()

	_, _, err := repo.FindOne(ctx, testKey())
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("repository operation completed").Len())

	_, err = repo.Insert(ctx, gate.New(testKey(), now))
	require.Error(t, err)
	rejected := logs.FilterMessage("repository operation rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, zapcore.InfoLevel, rejected[0].Level)

	inner.SetError(repository.OpFindAll, repository.NewOther(repository.OpFindAll, gate.Key{}, errors.New("throttled")))
	_, err = repo.FindAll(ctx)
	require.Error(t, err)
	failed := logs.FilterMessage("repository operation failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	collector := observability.NewCollector("test")
	repo := NewMetricsGateRepository(seededRepo(), collector)
	ctx := context.Background()

	_, _, _ = repo.FindOne(ctx, testKey())
	_, _ = repo.UpdateState(ctx, gate.Key{Group: "x", Service: "y", Environment: "z"}, gate.Open, now)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.RepositoryOperations.WithLabelValues(repository.OpFindOne, "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.RepositoryOperations.WithLabelValues(repository.OpUpdateState, "not_found")))
}

func TestCircuitBreaker_TripsOnInfrastructureFailures(t *testing.T) {
	inner := seededRepo()
	config := DefaultCircuitBreakerConfig()
	config.MinRequests = 2
	config.FailureThreshold = 0.5

	var transitions []gobreaker.State
	repo := NewCircuitBreakerGateRepository(inner, config, zap.NewNop(), func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	})
	ctx := context.Background()

	inner.SetError(repository.OpFindAll, repository.NewOther(repository.OpFindAll, gate.Key{}, errors.New("unavailable")))
	for i := 0; i < 2; i++ {
		_, err := repo.FindAll(ctx)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, repo.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)

	_, err := repo.FindAll(ctx)
	assert.True(t, repository.IsOther(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, inner.Calls(repository.OpFindAll))
}

func TestCircuitBreaker_IgnoresContractOutcomes(t *testing.T) {
	config := DefaultCircuitBreakerConfig()
	config.MinRequests = 1
	config.FailureThreshold = 0.1
	repo := NewCircuitBreakerGateRepository(seededRepo(), config, zap.NewNop(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, gate.New(testKey(), now))
		assert.True(t, repository.IsAlreadyExists(err))
		err = repo.Delete(ctx, gate.Key{Group: "x", Service: "y", Environment: "z"})
		assert.True(t, repository.IsNotFound(err))
	}
	assert.Equal(t, gobreaker.StateClosed, repo.State())

	g, found, err := repo.FindOne(ctx, testKey())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testKey(), g.Key)
}

func TestTracing_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	inner := seededRepo()
	repo := NewTracingGateRepository(inner, provider)
	ctx := context.Background()

	_, err := repo.UpdateState(ctx, testKey(), gate.Open, now)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, gate.New(testKey(), now))
	require.Error(t, err)

	inner.SetError(repository.OpFindAll, repository.NewOther(repository.OpFindAll, gate.Key{}, errors.New("boom")))
	_, err = repo.FindAll(ctx)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "GateRepository."+repository.OpUpdateState, spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Unset, spans[1].Status().Code, "contract outcomes are not span errors")
	assert.Equal(t, codes.Error, spans[2].Status().Code)

	var group string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "gate.group" {
			group = kv.Value.AsString()
		}
	}
	assert.Equal(t, "payments", group)
}

func TestChain_ReadOnlyOutermost(t *testing.T) {
	collector := observability.NewCollector("test")
	logging := DefaultLoggingConfig()
	breaker := DefaultCircuitBreakerConfig()
	inner := seededRepo()

	repo := Chain(inner, ChainConfig{
		Tracer:         sdktrace.NewTracerProvider(),
		Metrics:        collector,
		CircuitBreaker: &breaker,
		Logging:        &logging,
		ReadOnly:       testQuotes(t),
	}, zap.NewNop())

	_, ok := repo.(*ReadOnlyGateRepository)
	require.True(t, ok)

	err := repo.Delete(context.Background(), testKey())
	assert.True(t, repository.IsNotPermitted(err))
	assert.Equal(t, 0, inner.Calls(repository.OpDelete))
	assert.Equal(t, float64(0), testutil.ToFloat64(collector.RepositoryOperations.WithLabelValues(repository.OpDelete, "not_permitted")))

	_, err = repo.UpdateState(context.Background(), testKey(), gate.Open, now)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.RepositoryOperations.WithLabelValues(repository.OpUpdateState, "success")))
}

func TestChain_NothingEnabled(t *testing.T) {
	inner := seededRepo()
	assert.Same(t, inner, Chain(inner, ChainConfig{}, nil))
}
