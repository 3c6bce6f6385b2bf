package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	"mindmap-backend/application/queries"
	querybus "mindmap-backend/application/queries/bus"
	pkgerrors "mindmap-backend/pkg/errors"
)

// InteractionHandler handles history, gestures, shortcuts, the viewport
// and suggestions
type InteractionHandler struct {
	base
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{base: newBase(commandBus, queryBus, errorHandler, logger)}
}

// simple dispatches a command that carries nothing but its session
func (h *InteractionHandler) simple(build func(commands.SessionRef) bus.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := h.ref(r)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		h.dispatch(w, r, build(ref), http.StatusOK)
	}
}

// Undo handles POST /sessions/{sessionID}/history/undo
func (h *InteractionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.simple(func(ref commands.SessionRef) bus.Command { return commands.UndoCommand{SessionRef: ref} })(w, r)
}

// Redo handles POST /sessions/{sessionID}/history/redo
func (h *InteractionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.simple(func(ref commands.SessionRef) bus.Command { return commands.RedoCommand{SessionRef: ref} })(w, r)
}

// BeginGesture handles POST /sessions/{sessionID}/gestures/begin
func (h *InteractionHandler) BeginGesture(w http.ResponseWriter, r *http.Request) {
	h.simple(func(ref commands.SessionRef) bus.Command { return commands.BeginGestureCommand{SessionRef: ref} })(w, r)
}

// EndGesture handles POST /sessions/{sessionID}/gestures/end
func (h *InteractionHandler) EndGesture(w http.ResponseWriter, r *http.Request) {
	h.simple(func(ref commands.SessionRef) bus.Command { return commands.EndGestureCommand{SessionRef: ref} })(w, r)
}

// ShortcutRequest is a key stroke with its modifiers
type ShortcutRequest struct {
	Key      string `json:"key"`
	Ctrl     bool   `json:"ctrl"`
	Meta     bool   `json:"meta"`
	Shift    bool   `json:"shift"`
	Alt      bool   `json:"alt"`
	Platform string `json:"platform"`
}

// Shortcut handles POST /sessions/{sessionID}/shortcuts
func (h *InteractionHandler) Shortcut(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req ShortcutRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.ShortcutCommand{
		SessionRef: ref,
		Key:        req.Key,
		Ctrl:       req.Ctrl,
		Meta:       req.Meta,
		Shift:      req.Shift,
		Alt:        req.Alt,
		Platform:   req.Platform,
	}, http.StatusOK)
}

// Pan handles POST /sessions/{sessionID}/viewport/pan
func (h *InteractionHandler) Pan(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.PanCommand{SessionRef: ref, DX: req.DX, DY: req.DY}, http.StatusOK)
}

// ZoomRequest steps the zoom in or out, or sets it
type ZoomRequest struct {
	Action string  `json:"action"`
	Zoom   float64 `json:"zoom"`
}

// Zoom handles POST /sessions/{sessionID}/viewport/zoom
func (h *InteractionHandler) Zoom(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req ZoomRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.ZoomCommand{SessionRef: ref, Action: req.Action, Zoom: req.Zoom}, http.StatusOK)
}

// ToCanvas handles GET /sessions/{sessionID}/viewport/to-canvas?x=&y=
func (h *InteractionHandler) ToCanvas(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("x and y must be numbers").WithCode("INVALID_POINT"))
		return
	}
	h.ask(w, r, queries.ToCanvasQuery{SessionRef: ref, X: x, Y: y})
}

// RequestSuggestions handles POST /sessions/{sessionID}/suggestions
func (h *InteractionHandler) RequestSuggestions(w http.ResponseWriter, r *http.Request) {
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
	h.dispatch(w, r, commands.RequestSuggestionsCommand{SessionRef: ref, NodeID: req.NodeID}, http.StatusOK)
}

// GetSuggestions handles GET /sessions/{sessionID}/suggestions
func (h *InteractionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.GetSuggestionsQuery{SessionRef: ref})
}

// AcceptSuggestion handles POST /sessions/{sessionID}/suggestions/accept
func (h *InteractionHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req struct {
		TargetNodeID string `json:"targetNodeId"`
	}
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.AcceptSuggestionCommand{SessionRef: ref, TargetNodeID: req.TargetNodeID}, http.StatusOK)
}

// DismissSuggestions handles DELETE /sessions/{sessionID}/suggestions
func (h *InteractionHandler) DismissSuggestions(w http.ResponseWriter, r *http.Request) {
	h.simple(func(ref commands.SessionRef) bus.Command { return commands.DismissSuggestionsCommand{SessionRef: ref} })(w, r)
}
