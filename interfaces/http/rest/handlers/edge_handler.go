package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	"mindmap-backend/application/queries"
	querybus "mindmap-backend/application/queries/bus"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

// EdgeHandler handles edge-related HTTP requests
type EdgeHandler struct {
	base
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{base: newBase(commandBus, queryBus, errorHandler, logger)}
}

// CreateEdgeRequest represents the request body for creating an edge
type CreateEdgeRequest struct {
	Source string                 `json:"source"`
	Target string                 `json:"target"`
	Style  valueobjects.EdgeStyle `json:"style"`
}

// CreateEdge handles POST /sessions/{sessionID}/edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req CreateEdgeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.AddEdgeCommand{
		SessionRef: ref,
		Source:     req.Source,
		Target:     req.Target,
		Style:      req.Style,
	}, http.StatusOK)
}

// CanConnect handles GET /sessions/{sessionID}/edges/can-connect?source=&target=
func (h *EdgeHandler) CanConnect(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, err := h.queryBus.Ask(r.Context(), queries.CanConnectQuery{
		SessionRef: ref,
		Source:     r.URL.Query().Get("source"),
		Target:     r.URL.Query().Get("target"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"allowed": result})
}

// UpdateStyle handles PATCH /sessions/{sessionID}/edges/{edgeID}/style
func (h *EdgeHandler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var style valueobjects.EdgeStyle
	if err := h.decode(w, r, &style); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.UpdateEdgeStyleCommand{
		SessionRef: ref,
		EdgeID:     chi.URLParam(r, "edgeID"),
		Style:      style,
	}, http.StatusOK)
}

// SetShape handles PUT /sessions/{sessionID}/edges/{edgeID}/shape
func (h *EdgeHandler) SetShape(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req struct {
		Shape string `json:"shape"`
	}
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.SetEdgeShapeCommand{
		SessionRef: ref,
		EdgeID:     chi.URLParam(r, "edgeID"),
		Shape:      req.Shape,
	}, http.StatusOK)
}

// ReconnectRequest represents new endpoints for an edge. Live moves are
// gesture previews.
type ReconnectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Live   bool   `json:"live"`
}

// Reconnect handles PUT /sessions/{sessionID}/edges/{edgeID}/endpoints
func (h *EdgeHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req ReconnectRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.ReconnectEdgeCommand{
		SessionRef: ref,
		EdgeID:     chi.URLParam(r, "edgeID"),
		Source:     req.Source,
		Target:     req.Target,
		Live:       req.Live,
	}, http.StatusOK)
}

// DeleteEdge handles DELETE /sessions/{sessionID}/edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.DeleteEdgeCommand{
		SessionRef: ref,
		EdgeID:     chi.URLParam(r, "edgeID"),
	}, http.StatusOK)
}
