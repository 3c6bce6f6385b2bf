package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/queries"
	querybus "mindmap-backend/application/queries/bus"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

// MapHandler handles saved maps
type MapHandler struct {
	base
}

// NewMapHandler creates a new map handler
func NewMapHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *MapHandler {
	return &MapHandler{base: newBase(commandBus, queryBus, errorHandler, logger)}
}

// ListMaps handles GET /maps?page=&page_size=
func (h *MapHandler) ListMaps(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.owner(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, err := h.queryBus.Ask(r.Context(), queries.ListMapsQuery{OwnerID: ownerID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	maps, _ := result.([]ports.MapSummary)

	params := common.ExtractPaginationParams(r)
	start, end := params.Bounds(len(maps))
	common.RespondJSON(w, http.StatusOK, common.NewPaginatedResult(maps[start:end], params, len(maps)))
}

// DeleteMap handles DELETE /maps/{mapID}
func (h *MapHandler) DeleteMap(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.owner(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.DeleteMapCommand{
		OwnerID: ownerID,
		MapID:   chi.URLParam(r, "mapID"),
	}, http.StatusOK)
}
