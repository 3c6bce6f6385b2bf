package handlers

import (
	"context"
	"net/http"
	"time"

	"mindmap-backend/pkg/common"
)

// ReadinessCheck reports whether a dependency is usable
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	version string
	started time.Time
	active  func() int
	checks  map[string]ReadinessCheck
}

// NewHealthHandler creates a health handler. active reports the number of
// open sessions.
func NewHealthHandler(version string, active func() int, checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		version: version,
		started: time.Now(),
		active:  active,
		checks:  checks,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}
	if h.active != nil {
		body["sessions"] = h.active()
	}
	common.RespondJSON(w, http.StatusOK, body)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	common.RespondJSON(w, status, map[string]interface{}{"status": state, "checks": results})
}
