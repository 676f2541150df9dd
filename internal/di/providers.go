package di

import (
	"context"
	"fmt"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gates-backend/internal/clock"
	"gates-backend/internal/config"
	"gates-backend/internal/domain/businesshours"
	"gates-backend/internal/idgen"
	"gates-backend/internal/infrastructure/awsclient"
	"gates-backend/internal/infrastructure/decorators"
	"gates-backend/internal/infrastructure/messaging"
	"gates-backend/internal/infrastructure/observability"
	"gates-backend/internal/infrastructure/persistence/dynamodb"
	"gates-backend/internal/interfaces/http/handlers"
	"gates-backend/internal/interfaces/http/router"
	"gates-backend/internal/interfaces/http/validation"
	"gates-backend/internal/repository"
	"gates-backend/internal/service/gates"
	"gates-backend/internal/service/quotes"
)

// ============================================================================
// INFRASTRUCTURE PROVIDERS
// ============================================================================

func provideAWSClients(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*awsclient.Clients, error) {
	return awsclient.New(ctx, cfg.Database, logger)
}

func provideDynamoDBClient(clients *awsclient.Clients) *awsdynamodb.Client {
	return clients.DynamoDB
}

func provideDynamoRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.GateRepository {
	return dynamodb.NewGateRepository(client, cfg.Database.TableName, logger)
}

// provideCollector returns nil when metrics are disabled.
func provideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func provideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    string(cfg.Environment),
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// provideGateRepository applies the decorator chain selected by config.
func provideGateRepository(
	base *dynamodb.GateRepository,
	cfg *config.Config,
	collector *observability.Collector,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) repository.GateRepository {
	logging := decorators.DefaultLoggingConfig()
	chain := decorators.ChainConfig{
		Metrics: collector,
		Logging: &logging,
	}
	if cfg.Tracing.Enabled {
		chain.Tracer = tp.Provider()
	}
	if cfg.CircuitBreaker.Enabled {
		chain.CircuitBreaker = &decorators.CircuitBreakerConfig{
			Name:             "gate-repository",
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			FailureThreshold: cfg.CircuitBreaker.FailureRatio,
			MinRequests:      cfg.CircuitBreaker.MinRequests,
		}
	}
	if cfg.DemoMode {
		chain.ReadOnly = quotes.Embedded()
		logger.Info("demo mode enabled, repository is read-only")
	}
	return decorators.Chain(base, chain, logger)
}

// provideEventPublisher returns nil when events are disabled.
func provideEventPublisher(cfg *config.Config, clients *awsclient.Clients, logger *zap.Logger) gates.EventPublisher {
	if !cfg.Events.Enabled {
		return nil
	}
	return messaging.NewEventBridgePublisher(clients.EventBridge, cfg.Events.BusName, cfg.Events.Source, logger)
}

// ============================================================================
// DOMAIN AND SERVICE PROVIDERS
// ============================================================================

func provideBusinessHours(cfg *config.Config) (*businesshours.Switch, error) {
	loc, err := cfg.BusinessHours.Location()
	if err != nil {
		return nil, err
	}
	return businesshours.NewSwitch(cfg.BusinessHours.Week,
		businesshours.WithLocation(loc),
		businesshours.WithEnabled(cfg.BusinessHours.Enabled),
	), nil
}

func provideClock() clock.Clock {
	return clock.System{}
}

func provideIDGenerator() idgen.Generator {
	return idgen.NanoID{}
}

func provideGateService(
	repo repository.GateRepository,
	hours *businesshours.Switch,
	clk clock.Clock,
	ids idgen.Generator,
	publisher gates.EventPublisher,
	collector *observability.Collector,
	logger *zap.Logger,
) *gates.Service {
	opts := []gates.Option{gates.WithEventPublisher(publisher)}
	if collector != nil {
		opts = append(opts, gates.WithRecorder(collector))
	}
	return gates.NewService(repo, hours, clk, ids, logger, opts...)
}

// ============================================================================
// INTERFACE PROVIDERS
// ============================================================================

func provideGateHandler(svc *gates.Service, logger *zap.Logger) *handlers.GateHandler {
	return handlers.NewGateHandler(svc, validation.New(), logger)
}

func provideInfoHandler(cfg *config.Config, svc *gates.Service, client *awsdynamodb.Client, logger *zap.Logger) *handlers.InfoHandler {
	check := func(ctx context.Context) error {
		return dynamodb.CheckTable(ctx, client, cfg.Database.TableName)
	}
	return handlers.NewInfoHandler(cfg.ServiceName, cfg.Version, svc, check, logger)
}

func provideRouter(
	cfg *config.Config,
	gateHandler *handlers.GateHandler,
	infoHandler *handlers.InfoHandler,
	collector *observability.Collector,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) *chi.Mux {
	deps := router.Dependencies{
		Gates:   gateHandler,
		Info:    infoHandler,
		Metrics: collector,
		Logger:  logger,
	}
	if cfg.Tracing.Enabled {
		deps.Tracer = tp.Tracer("gates-backend/http")
	}
	return router.New(router.Config{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxAge:         cfg.CORS.MaxAge,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, deps)
}

func provideContainer(
	cfg *config.Config,
	logger *zap.Logger,
	clients *awsclient.Clients,
	hours *businesshours.Switch,
	svc *gates.Service,
	r *chi.Mux,
) *Container {
	return &Container{
		Config:  cfg,
		Logger:  logger,
		Clients: clients,
		Hours:   hours,
		Service: svc,
		Router:  r,
	}
}

// NewLogger builds the logger for cfg.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.IsProduction(), cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.With(zap.String("service", cfg.ServiceName), zap.String("environment", string(cfg.Environment))), nil
}
