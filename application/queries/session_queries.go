// Package queries holds the read-side messages of the session host
package queries

import (
	"mindmap-backend/application/commands"
	"mindmap-backend/pkg/utils"
)

// GetSessionQuery returns the full state of an open session
type GetSessionQuery struct {
	commands.SessionRef
	Theme string `json:"theme" validate:"omitempty,oneof=light dark"`
}

// Validate validates the query
func (q GetSessionQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetGraphDataQuery returns the present graph with styles resolved for a
// theme, ready to draw
type GetGraphDataQuery struct {
	commands.SessionRef
	Theme string `json:"theme" validate:"omitempty,oneof=light dark"`
}

// Validate validates the query
func (q GetGraphDataQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// CanConnectQuery asks whether an edge between two nodes would be accepted
type CanConnectQuery struct {
	commands.SessionRef
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Validate validates the query
func (q CanConnectQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ToCanvasQuery converts a pointer position into canvas coordinates
type ToCanvasQuery struct {
	commands.SessionRef
	X float64 `json:"x" validate:"finite"`
	Y float64 `json:"y" validate:"finite"`
}

// Validate validates the query
func (q ToCanvasQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetSuggestionsQuery returns the displayed suggestions
type GetSuggestionsQuery struct {
	commands.SessionRef
}

// Validate validates the query
func (q GetSuggestionsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListSessionsQuery returns the owner's open sessions
type ListSessionsQuery struct {
	OwnerID string `json:"owner_id" validate:"required"`
}

// Validate validates the query
func (q ListSessionsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListMapsQuery returns the owner's saved maps
type ListMapsQuery struct {
	OwnerID string `json:"owner_id" validate:"required"`
}

// Validate validates the query
func (q ListMapsQuery) Validate() error {
	return utils.ValidateStruct(q)
}
