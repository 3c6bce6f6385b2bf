package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	"mindmap-backend/application/queries"
	querybus "mindmap-backend/application/queries/bus"
	pkgerrors "mindmap-backend/pkg/errors"
)

// SessionHandler handles the session lifecycle
type SessionHandler struct {
	base
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{base: newBase(commandBus, queryBus, errorHandler, logger)}
}

// CreateSessionRequest represents the request body for a new session.
// With MapID set the saved map is opened instead of a blank one.
type CreateSessionRequest struct {
	Title string `json:"title"`
	MapID string `json:"mapId"`
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.owner(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req CreateSessionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if req.MapID != "" {
		h.dispatch(w, r, commands.OpenMapCommand{OwnerID: ownerID, MapID: req.MapID}, http.StatusCreated)
		return
	}
	h.dispatch(w, r, commands.CreateSessionCommand{OwnerID: ownerID, Title: req.Title}, http.StatusCreated)
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.owner(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.ListSessionsQuery{OwnerID: ownerID})
}

// GetSession handles GET /sessions/{sessionID}?theme=
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.GetSessionQuery{SessionRef: ref, Theme: r.URL.Query().Get("theme")})
}

// GetGraph handles GET /sessions/{sessionID}/graph?theme=
func (h *SessionHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.GetGraphDataQuery{SessionRef: ref, Theme: r.URL.Query().Get("theme")})
}

// CloseSession handles DELETE /sessions/{sessionID}
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.CloseSessionCommand{SessionRef: ref}, http.StatusOK)
}

// SaveRequest represents the request body of a save
type SaveRequest struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// Save handles POST /sessions/{sessionID}/save
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	var req SaveRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.SaveMapCommand{
		SessionRef: ref,
		Title:      req.Title,
		Thumbnail:  req.Thumbnail,
	}, http.StatusOK)
}

// Clear handles DELETE /sessions/{sessionID}/graph
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ref(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.ClearGraphCommand{SessionRef: ref}, http.StatusOK)
}
