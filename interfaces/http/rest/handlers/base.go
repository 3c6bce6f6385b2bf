// Package handlers adapts HTTP requests to session commands and queries
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	cmdhandlers "mindmap-backend/application/commands/handlers"
	querybus "mindmap-backend/application/queries/bus"
	"mindmap-backend/application/session"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

// base carries what every handler needs
type base struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

func newBase(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errorHandler == nil {
		errorHandler = pkgerrors.NewErrorHandler(logger, false)
	}
	return base{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// owner returns the authenticated owner set by the auth middleware
func (h base) owner(r *http.Request) (string, error) {
	ownerID, ok := common.GetOwnerID(r.Context())
	if !ok {
		return "", pkgerrors.NewUnauthorizedError("")
	}
	return ownerID, nil
}

// ref addresses the session named in the URL on behalf of the caller
func (h base) ref(r *http.Request) (commands.SessionRef, error) {
	ownerID, err := h.owner(r)
	if err != nil {
		return commands.SessionRef{}, err
	}
	return commands.SessionRef{
		OwnerID:   ownerID,
		SessionID: chi.URLParam(r, "sessionID"),
	}, nil
}

// decode reads an optional JSON body into v
func (h base) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := common.ParseJSONBody(w, r, v, common.MaxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.NewValidationError("request body too large").WithCode("BODY_TOO_LARGE")
		}
		return pkgerrors.NewValidationError("invalid request body: " + err.Error()).WithCode("INVALID_BODY")
	}
	return nil
}

// dispatch sends cmd and writes its result
func (h base) dispatch(w http.ResponseWriter, r *http.Request, cmd bus.Command, status int) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	common.RespondJSON(w, status, render(result))
}

// ask runs a query and writes its result
func (h base) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ReasonResponse explains why an operation changed nothing
type ReasonResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutcomeResponse is the wire form of a session.Outcome
type OutcomeResponse struct {
	Changed  bool            `json:"changed"`
	NodeID   string          `json:"nodeId,omitempty"`
	EdgeID   string          `json:"edgeId,omitempty"`
	Revision int             `json:"revision"`
	Reason   *ReasonResponse `json:"reason,omitempty"`
}

// ShortcutResponse is the wire form of a handled key stroke
type ShortcutResponse struct {
	Action  string          `json:"action"`
	Handled bool            `json:"handled"`
	Outcome OutcomeResponse `json:"outcome"`
}

func render(result interface{}) interface{} {
	switch v := result.(type) {
	case session.Outcome:
		return outcomeResponse(v)
	case cmdhandlers.ShortcutResult:
		return ShortcutResponse{
			Action:  string(v.Action),
			Handled: v.Action != session.ActionNone,
			Outcome: outcomeResponse(v.Outcome),
		}
	}
	return result
}

func outcomeResponse(o session.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Changed:  o.Changed,
		NodeID:   o.NodeID.String(),
		EdgeID:   o.EdgeID.String(),
		Revision: o.Revision,
		Reason:   reasonOf(o.Reason),
	}
}

func reasonOf(err error) *ReasonResponse {
	if err == nil {
		return nil
	}
	var domainErr *pkgerrors.DomainError
	if errors.As(err, &domainErr) {
		return &ReasonResponse{Code: domainErr.Code, Message: domainErr.Message}
	}
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return &ReasonResponse{Code: pkgerrors.CodeOf(appErr), Message: appErr.Message}
	}
	return &ReasonResponse{Code: "DECLINED", Message: err.Error()}
}
