package decorators

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
)

// LoggingConfig controls what the logging decorator emits.
type LoggingConfig struct {
	LogLevel      zapcore.Level // Level for successful operations
	SlowThreshold time.Duration // Warn for operations slower than this
}

// DefaultLoggingConfig logs successes at debug and warns after one second.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		LogLevel:      zapcore.DebugLevel,
		SlowThreshold: time.Second,
	}
}

// LoggingGateRepository logs every repository call with its duration and
// outcome. Contract outcomes such as NotFound are logged at info; anything
// else that fails is logged as an error.
type LoggingGateRepository struct {
	inner  repository.GateRepository
	logger *zap.Logger
	config LoggingConfig
}

var _ repository.GateRepository = (*LoggingGateRepository)(nil)

// NewLoggingGateRepository wraps inner.
func NewLoggingGateRepository(inner repository.GateRepository, logger *zap.Logger, config LoggingConfig) *LoggingGateRepository {
	return &LoggingGateRepository{
		inner:  inner,
		logger: logger.Named("gate_repository"),
		config: config,
	}
}

func (r *LoggingGateRepository) log(op string, key gate.Key, start time.Time, err error, extra ...zap.Field) {
	elapsed := time.Since(start)
	fields := append([]zap.Field{
		zap.String("operation", op),
		zap.Duration("duration", elapsed),
	}, extra...)
	if key != (gate.Key{}) {
		fields = append(fields, zap.String("gate", key.String()))
	}

	switch {
	case err == nil && r.config.SlowThreshold > 0 && elapsed > r.config.SlowThreshold:
		r.logger.Warn("slow repository operation", fields...)
	case err == nil:
		if ce := r.logger.Check(r.config.LogLevel, "repository operation completed"); ce != nil {
			ce.Write(fields...)
		}
	case repository.IsExpected(err):
		r.logger.Info("repository operation rejected", append(fields, zap.String("reason", repository.KindOf(err).String()))...)
	default:
		r.logger.Error("repository operation failed", append(fields, zap.Error(err))...)
	}
}

func (r *LoggingGateRepository) Insert(ctx context.Context, g gate.Gate) (gate.Gate, error) {
	start := time.Now()
	out, err := r.inner.Insert(ctx, g)
	r.log(repository.OpInsert, g.Key, start, err)
	return out, err
}

func (r *LoggingGateRepository) FindOne(ctx context.Context, key gate.Key) (gate.Gate, bool, error) {
	start := time.Now()
	out, found, err := r.inner.FindOne(ctx, key)
	r.log(repository.OpFindOne, key, start, err, zap.Bool("found", found))
	return out, found, err
}

func (r *LoggingGateRepository) FindAll(ctx context.Context) ([]gate.Gate, error) {
	start := time.Now()
	out, err := r.inner.FindAll(ctx)
	r.log(repository.OpFindAll, gate.Key{}, start, err, zap.Int("count", len(out)))
	return out, err
}

func (r *LoggingGateRepository) Delete(ctx context.Context, key gate.Key) error {
	start := time.Now()
	err := r.inner.Delete(ctx, key)
	r.log(repository.OpDelete, key, start, err)
	return err
}

func (r *LoggingGateRepository) UpdateState(ctx context.Context, key gate.Key, state gate.State, now time.Time) (gate.Gate, error) {
	start := time.Now()
	out, err := r.inner.UpdateState(ctx, key, state, now)
	r.log(repository.OpUpdateState, key, start, err, zap.String("state", state.String()))
	return out, err
}

func (r *LoggingGateRepository) UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32, now time.Time) (gate.Gate, error) {
	start := time.Now()
	out, err := r.inner.UpdateDisplayOrder(ctx, key, order, now)
	r.log(repository.OpUpdateDisplayOrder, key, start, err, zap.Uint32("display_order", order))
	return out, err
}

func (r *LoggingGateRepository) UpsertComment(ctx context.Context, key gate.Key, comment gate.Comment, now time.Time) (gate.Gate, error) {
	start := time.Now()
	out, err := r.inner.UpsertComment(ctx, key, comment, now)
	r.log(repository.OpUpsertComment, key, start, err, zap.String("comment_id", comment.ID))
	return out, err
}

func (r *LoggingGateRepository) DeleteCommentByID(ctx context.Context, key gate.Key, commentID string, now time.Time) (gate.Gate, error) {
	start := time.Now()
	out, err := r.inner.DeleteCommentByID(ctx, key, commentID, now)
	r.log(repository.OpDeleteCommentByID, key, start, err, zap.String("comment_id", commentID))
	return out, err
}
