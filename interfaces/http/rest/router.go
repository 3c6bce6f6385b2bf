// Package rest exposes editing sessions over HTTP
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mindmap-backend/application/commands/bus"
	querybus "mindmap-backend/application/queries/bus"
	"mindmap-backend/interfaces/http/rest/handlers"
	"mindmap-backend/interfaces/http/rest/middleware"
	"mindmap-backend/pkg/auth"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/observability"
)

// RouterConfig selects the optional parts of the router
type RouterConfig struct {
	AllowedOrigins []string
	EnableCORS     bool
	// Validator authenticates API calls. When nil the owner comes from the
	// X-Owner-ID header.
	Validator    *auth.JWTValidator
	DefaultOwner string
	Limiter      auth.RateLimiter
	Metrics      *observability.Collector
	Health       *handlers.HealthHandler
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	cfg          RouterConfig
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	cfg RouterConfig,
	logger *zap.Logger,
) *Router {
	if cfg.DefaultOwner == "" {
		cfg.DefaultOwner = "local"
	}
	if cfg.Health == nil {
		cfg.Health = handlers.NewHealthHandler("dev", nil, nil)
	}
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		cfg:          cfg,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.Metrics != nil {
		router.Use(middleware.Metrics(rt.cfg.Metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader, middleware.DevOwnerHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader, "X-RateLimit-Limit"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.cfg.Health.Health)
	router.Get("/ready", rt.cfg.Health.Ready)
	if rt.cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.cfg.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.Validator != nil {
			r.Use(middleware.Authenticate(rt.cfg.Validator, rt.errorHandler, rt.logger))
		} else {
			r.Use(middleware.DevelopmentOwner(rt.cfg.DefaultOwner))
		}
		if rt.cfg.Limiter != nil {
			r.Use(middleware.RateLimit(rt.cfg.Limiter, rt.errorHandler, rt.logger))
		}

		sessions := handlers.NewSessionHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
		nodes := handlers.NewNodeHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
		edges := handlers.NewEdgeHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
		interaction := handlers.NewInteractionHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
		maps := handlers.NewMapHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)

		r.Route("/maps", func(r chi.Router) {
			r.Get("/", maps.ListMaps)
			r.Delete("/{mapID}", maps.DeleteMap)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.CreateSession)
			r.Get("/", sessions.ListSessions)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessions.GetSession)
				r.Delete("/", sessions.CloseSession)
				r.Post("/save", sessions.Save)
				r.Get("/graph", sessions.GetGraph)
				r.Delete("/graph", sessions.Clear)
				r.Put("/selection", nodes.Select)

				r.Route("/nodes", func(r chi.Router) {
					r.Post("/", nodes.CreateNode)
					r.Delete("/{nodeID}", nodes.DeleteNode)
					r.Put("/{nodeID}/position", nodes.MoveNode)
					r.Post("/{nodeID}/drag", nodes.DragNode)
					r.Put("/{nodeID}/label", nodes.SetLabel)
					r.Patch("/{nodeID}/style", nodes.UpdateStyle)
					r.Put("/{nodeID}/size", nodes.Resize)
				})

				r.Route("/edges", func(r chi.Router) {
					r.Post("/", edges.CreateEdge)
					r.Get("/can-connect", edges.CanConnect)
					r.Delete("/{edgeID}", edges.DeleteEdge)
					r.Patch("/{edgeID}/style", edges.UpdateStyle)
					r.Put("/{edgeID}/shape", edges.SetShape)
					r.Put("/{edgeID}/endpoints", edges.Reconnect)
				})

				r.Post("/history/undo", interaction.Undo)
				r.Post("/history/redo", interaction.Redo)
				r.Post("/gestures/begin", interaction.BeginGesture)
				r.Post("/gestures/end", interaction.EndGesture)
				r.Post("/shortcuts", interaction.Shortcut)
				r.Post("/viewport/pan", interaction.Pan)
				r.Post("/viewport/zoom", interaction.Zoom)
				r.Get("/viewport/to-canvas", interaction.ToCanvas)

				r.Route("/suggestions", func(r chi.Router) {
					r.Post("/", interaction.RequestSuggestions)
					r.Get("/", interaction.GetSuggestions)
					r.Delete("/", interaction.DismissSuggestions)
					r.Post("/accept", interaction.AcceptSuggestion)
				})
			})
		})
	})

	return router
}
