package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mindmap-backend/application/commands/bus"
	commandhandlers "mindmap-backend/application/commands/handlers"
	"mindmap-backend/application/ports"
	querybus "mindmap-backend/application/queries/bus"
	queryhandlers "mindmap-backend/application/queries/handlers"
	"mindmap-backend/application/session"
	"mindmap-backend/application/suggestions"
	domainconfig "mindmap-backend/domain/config"
	"mindmap-backend/infrastructure/config"
	"mindmap-backend/infrastructure/messaging"
	"mindmap-backend/infrastructure/messaging/eventbridge"
	"mindmap-backend/infrastructure/persistence"
	"mindmap-backend/infrastructure/persistence/dynamodb"
	"mindmap-backend/infrastructure/persistence/memory"
	"mindmap-backend/infrastructure/similarity"
	"mindmap-backend/interfaces/http/rest"
	"mindmap-backend/interfaces/http/rest/handlers"
	"mindmap-backend/pkg/auth"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/observability"
)

// Version is reported by the health endpoint
var Version = "dev"

// APIRateLimiter throttles API calls per owner
type APIRateLimiter struct {
	auth.RateLimiter
}

// SuggestionLimiter throttles suggestion requests per owner
type SuggestionLimiter struct {
	auth.RateLimiter
}

// ProvideLogLevel creates the level shared by the logger and config reloads
func ProvideLogLevel(cfg *config.Config) zap.AtomicLevel {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if parsed, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		level.SetLevel(parsed)
	}
	return level
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("mindmap-sessions", cfg.EnableTracing)
}

// ProvideDomainConfig selects the editing rules for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	domain := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	return domain, nil
}

// ProvideSnapshotStore selects the saved map backend
func ProvideSnapshotStore(cfg *config.Config, client *awsdynamodb.Client, tracer *observability.Tracer, logger *zap.Logger) ports.SnapshotStore {
	var store ports.SnapshotStore
	switch cfg.StoreBackend {
	case "dynamodb":
		store = dynamodb.NewSnapshotStore(client, cfg.DynamoDBTable, logger)
	default:
		store = memory.NewSnapshotStore()
	}
	logger.Info("Snapshot store selected", zap.String("backend", cfg.StoreBackend))
	return persistence.NewTracedStore(store, tracer)
}

// ProvideAsyncPublisher creates the background event publisher. Events go
// to EventBridge when a bus is configured, to the log otherwise.
func ProvideAsyncPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) (*messaging.AsyncPublisher, func()) {
	var sink ports.EventPublisher
	if cfg.EventBusName != "" {
		sink = eventbridge.NewPublisher(client, cfg.EventBusName, logger)
	} else {
		sink = messaging.NewLogPublisher(logger)
	}

	publisher := messaging.NewAsyncPublisher(
		sink,
		cfg.Events.BufferSize,
		cfg.Events.BatchSize,
		cfg.Events.FlushEvery.Duration,
		logger,
	)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publisher.Close(ctx); err != nil {
			logger.Warn("Event publisher did not drain", zap.Error(err))
		}
	}
	return publisher, cleanup
}

// ProvideEventPublisher exposes the async publisher as a port
func ProvideEventPublisher(publisher *messaging.AsyncPublisher) ports.EventPublisher {
	return publisher
}

// ProvideCollector creates the Prometheus collector. It is nil unless
// metrics are enabled with the prometheus sink.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics || cfg.MetricsSink != "prometheus" {
		return nil
	}
	return observability.NewCollector(metricName(cfg.MetricsNS))
}

// ProvideCloudWatchMetrics creates the CloudWatch sink. It is nil unless
// metrics are enabled with the cloudwatch sink.
func ProvideCloudWatchMetrics(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *observability.CloudWatchMetrics {
	if !cfg.EnableMetrics || cfg.MetricsSink != "cloudwatch" {
		return nil
	}
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNS, cfg.Environment)
	return observability.NewCloudWatchMetrics(namespace, client, logger)
}

// ProvideMetrics picks the configured metrics sink
func ProvideMetrics(collector *observability.Collector, cw *observability.CloudWatchMetrics) ports.Metrics {
	switch {
	case collector != nil:
		return collector
	case cw != nil:
		return cw
	}
	return ports.NoopMetrics{}
}

// ProvideSuggestionService selects the similarity backend. "local" runs
// the in-process term matcher instead of calling a service.
func ProvideSuggestionService(cfg *config.Config, tracer *observability.Tracer, logger *zap.Logger) ports.SuggestionService {
	var service ports.SuggestionService
	if cfg.Suggestions.ServiceURL == "" || cfg.Suggestions.ServiceURL == "local" {
		service = similarity.NewLocalService(0, 0)
		logger.Info("Using local similarity service")
	} else {
		service = similarity.NewClient(similarity.ClientConfig{
			URL:             cfg.Suggestions.ServiceURL,
			BreakerFailures: cfg.Suggestions.BreakerFailures,
			BreakerTimeout:  cfg.Suggestions.BreakerTimeout.Duration,
		}, &http.Client{}, logger)
	}
	return similarity.Traced(service, tracer)
}

// ProvideSuggestionLimiter limits suggestion requests per owner per minute
func ProvideSuggestionLimiter(cfg *config.Config) SuggestionLimiter {
	if cfg.Suggestions.RatePerMinute <= 0 {
		return SuggestionLimiter{}
	}
	return SuggestionLimiter{auth.NewSlidingWindowLimiter(cfg.Suggestions.RatePerMinute, time.Minute)}
}

// ProvideAPIRateLimiter limits API calls per owner. With the DynamoDB
// backend the count is shared by every instance.
func ProvideAPIRateLimiter(cfg *config.Config, client *awsdynamodb.Client) APIRateLimiter {
	if cfg.StoreBackend == "dynamodb" {
		return APIRateLimiter{auth.NewDistributedRateLimiter(client, cfg.DynamoDBTable, 600, time.Minute, "API")}
	}
	return APIRateLimiter{auth.NewTokenBucketLimiter(600, 100*time.Millisecond)}
}

// ProvideSuggestionAdapter creates the suggestion adapter
func ProvideSuggestionAdapter(
	service ports.SuggestionService,
	limiter SuggestionLimiter,
	domain *domainconfig.DomainConfig,
	cfg *config.Config,
	metrics ports.Metrics,
	logger *zap.Logger,
) *suggestions.Adapter {
	return suggestions.NewAdapter(service, limiter.RateLimiter, domain, cfg.Suggestions.Timeout.Duration, metrics, logger)
}

// ProvideSessionManager creates the session host
func ProvideSessionManager(
	domain *domainconfig.DomainConfig,
	store ports.SnapshotStore,
	adapter *suggestions.Adapter,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*session.Manager, func()) {
	manager := session.NewManager(domain, store, adapter, publisher, metrics, logger, session.ManagerConfig{
		IdleTimeout:         cfg.Sessions.IdleTimeout.Duration,
		MaxSessionsPerOwner: cfg.Sessions.MaxPerOwner,
	})
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		manager.Shutdown(ctx)
	}
	return manager, cleanup
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(manager *session.Manager, logger *zap.Logger) *bus.CommandBus {
	commandBus := bus.NewCommandBus(
		bus.RecoveryMiddleware(logger),
		bus.LoggingMiddleware(logger),
	)
	commandhandlers.NewSessionHandlers(manager, logger).Register(commandBus)
	return commandBus
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(manager *session.Manager, logger *zap.Logger) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()
	queryhandlers.NewSessionQueries(manager, logger).Register(queryBus)
	return queryBus
}

// ProvideErrorHandler creates the HTTP error handler. Development builds
// include stack traces.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideJWTValidator creates the token validator, or nil when
// authentication is disabled
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.EnableAuth {
		return nil, nil
	}
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// ProvideHealthHandler creates the probe handler
func ProvideHealthHandler(manager *session.Manager, store ports.SnapshotStore) *handlers.HealthHandler {
	return handlers.NewHealthHandler(Version, manager.Count, map[string]handlers.ReadinessCheck{
		"store": func(ctx context.Context) error {
			_, err := store.List(ctx, "health-probe")
			return err
		},
	})
}

// ProvideHTTPHandler builds the REST router
func ProvideHTTPHandler(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	validator *auth.JWTValidator,
	limiter APIRateLimiter,
	collector *observability.Collector,
	health *handlers.HealthHandler,
	logger *zap.Logger,
) http.Handler {
	return rest.NewRouter(commandBus, queryBus, errorHandler, rest.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		EnableCORS:     cfg.EnableCORS,
		Validator:      validator,
		Limiter:        limiter.RateLimiter,
		Metrics:        collector,
		Health:         health,
	}, logger).Setup()
}

// metricName turns a CloudWatch style namespace into a Prometheus prefix
func metricName(namespace string) string {
	replacer := strings.NewReplacer("/", "_", "-", "_", " ", "_", ".", "_")
	return strings.ToLower(replacer.Replace(namespace))
}
