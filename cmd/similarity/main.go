// Command similarity serves the suggestion protocol with the local term
// matcher, for development and as a reference implementation
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/infrastructure/similarity"
	"mindmap-backend/interfaces/http/rest/middleware"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	threshold := flag.Float64("threshold", similarity.DefaultThreshold, "minimum cosine similarity")
	maxResults := flag.Int("max", similarity.DefaultMaxResults, "maximum suggestions per request")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	service := similarity.NewLocalService(*threshold, *maxResults)
	errorHandler := pkgerrors.NewErrorHandler(logger, false)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(logger))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	router.Post("/suggest", func(w http.ResponseWriter, r *http.Request) {
		var req ports.SuggestionRequest
		if err := common.ParseJSONBody(w, r, &req, common.MaxBodyBytes); err != nil {
			errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
			return
		}
		results, err := service.Suggest(r.Context(), req)
		if err != nil {
			errorHandler.Handle(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, results)
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		logger.Info("Starting similarity service", zap.String("address", *addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
}
