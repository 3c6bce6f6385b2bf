// Package di assembles the session host from configuration
package di

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mindmap-backend/application/commands/bus"
	querybus "mindmap-backend/application/queries/bus"
	"mindmap-backend/application/session"
	"mindmap-backend/application/suggestions"
	"mindmap-backend/infrastructure/config"
	"mindmap-backend/infrastructure/messaging"
	"mindmap-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	LogLevel   zap.AtomicLevel
	Manager    *session.Manager
	Adapter    *suggestions.Adapter
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Publisher  *messaging.AsyncPublisher
	Collector  *observability.Collector
	CloudWatch *observability.CloudWatchMetrics
	Handler    http.Handler
}

// ApplyConfig applies the settings that can change without a restart: the
// log level and the suggestion timeout
func (c *Container) ApplyConfig(cfg *config.Config) {
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil && level != c.LogLevel.Level() {
		c.LogLevel.SetLevel(level)
		c.Logger.Info("Log level changed", zap.String("level", level.String()))
	}
	if cfg.Suggestions.Timeout.Duration != c.Config.Suggestions.Timeout.Duration {
		c.Adapter.SetTimeout(cfg.Suggestions.Timeout.Duration)
		c.Logger.Info("Suggestion timeout changed", zap.Duration("timeout", cfg.Suggestions.Timeout.Duration))
	}
	c.Config.LogLevel = cfg.LogLevel
	c.Config.Suggestions.Timeout = cfg.Suggestions.Timeout
}

// RunBackground starts the janitor and, when configured, the CloudWatch
// flusher. Both stop with ctx.
func (c *Container) RunBackground(ctx context.Context) {
	if interval := c.Config.Sessions.JanitorInterval.Duration; interval > 0 && c.Config.Sessions.IdleTimeout.Duration > 0 {
		go c.Manager.RunJanitor(ctx, interval)
	}
	if c.CloudWatch != nil {
		go c.CloudWatch.Run(ctx, time.Minute)
	}
}
