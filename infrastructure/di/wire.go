//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"mindmap-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideTracer,
	ProvideDomainConfig,
	ProvideSnapshotStore,
	ProvideAsyncPublisher,
	ProvideEventPublisher,
	ProvideCollector,
	ProvideCloudWatchMetrics,
	ProvideMetrics,
	ProvideSuggestionService,
	ProvideSuggestionLimiter,
	ProvideAPIRateLimiter,
	ProvideSuggestionAdapter,
	ProvideSessionManager,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideErrorHandler,
	ProvideJWTValidator,
	ProvideHealthHandler,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
