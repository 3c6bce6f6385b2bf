package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	querybus "mindmap-backend/application/queries/bus"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	base
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{base: newBase(commandBus, queryBus, errorHandler, logger)}
}

// CreateNodeRequest represents the request body for creating a node.
// With Screen set, X and Y are a pointer position.
type CreateNodeRequest struct {
	X      float64                `json:"x"`
	Y      float64                `json:"y"`
	Screen bool                   `json:"screen"`
	Label  *string                `json:"label"`
	Style  valueobjects.NodeStyle `json:"style"`
}

// CreateNode handles POST /sessions/{sessionID}/nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req CreateNodeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.AddNodeCommand{
		SessionRef: ref,
		X:          req.X,
		Y:          req.Y,
		Screen:     req.Screen,
		Label:      req.Label,
		Style:      req.Style,
	}, http.StatusOK)
}

// PositionRequest is a canvas position, or a screen delta when Delta is
// set on a drag
type PositionRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Delta bool    `json:"delta"`
}

// MoveNode handles PUT /sessions/{sessionID}/nodes/{nodeID}/position
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req PositionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.MoveNodeCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
		X:          req.X,
		Y:          req.Y,
	}, http.StatusOK)
}

// DragNode handles POST /sessions/{sessionID}/nodes/{nodeID}/drag
func (h *NodeHandler) DragNode(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req PositionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.DragNodeCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
		X:          req.X,
		Y:          req.Y,
		Delta:      req.Delta,
	}, http.StatusOK)
}

// LabelRequest represents the request body of a relabel
type LabelRequest struct {
	Label string `json:"label"`
}

// SetLabel handles PUT /sessions/{sessionID}/nodes/{nodeID}/label
func (h *NodeHandler) SetLabel(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req LabelRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.SetNodeLabelCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
		Label:      req.Label,
	}, http.StatusOK)
}

// UpdateStyle handles PATCH /sessions/{sessionID}/nodes/{nodeID}/style
func (h *NodeHandler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var style valueobjects.NodeStyle
	if err := h.decode(w, r, &style); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.UpdateNodeStyleCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
		Style:      style,
	}, http.StatusOK)
}

// ResizeRequest represents the request body of a resize. Live resizes
// coalesce into the open gesture.
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Live   bool    `json:"live"`
}

// Resize handles PUT /sessions/{sessionID}/nodes/{nodeID}/size
func (h *NodeHandler) Resize(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req ResizeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.ResizeNodeCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
		Width:      req.Width,
		Height:     req.Height,
		Live:       req.Live,
	}, http.StatusOK)
}

// DeleteNode handles DELETE /sessions/{sessionID}/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.DeleteNodeCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
	}, http.StatusOK)
}

// Select handles PUT /sessions/{sessionID}/selection
func (h *NodeHandler) Select(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req struct {
		NodeID string `json:"nodeId"`
	}
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.SelectNodeCommand{SessionRef: ref, NodeID: req.NodeID}, http.StatusOK)
}
