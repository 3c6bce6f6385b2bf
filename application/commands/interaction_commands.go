package commands

import (
	"mindmap-backend/pkg/utils"
)

// History

// UndoCommand steps back one committed change
type UndoCommand struct {
	SessionRef
}

// Validate validates the command
func (c UndoCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// RedoCommand re-applies the last undone change
type RedoCommand struct {
	SessionRef
}

// Validate validates the command
func (c RedoCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// ShortcutCommand is a key stroke forwarded by the client
type ShortcutCommand struct {
	SessionRef
	Key      string `json:"key" validate:"required,max=32"`
	Ctrl     bool   `json:"ctrl"`
	Meta     bool   `json:"meta"`
	Shift    bool   `json:"shift"`
	Alt      bool   `json:"alt"`
	Platform string `json:"platform" validate:"max=16"`
}

// Validate validates the command
func (c ShortcutCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Gestures

// BeginGestureCommand opens a gesture
type BeginGestureCommand struct {
	SessionRef
}

// Validate validates the command
func (c BeginGestureCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// EndGestureCommand closes the open gesture
type EndGestureCommand struct {
	SessionRef
}

// Validate validates the command
func (c EndGestureCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DragNodeCommand moves a node inside a gesture. With Delta set, X and Y
// are a pointer movement in screen units; otherwise a canvas position.
type DragNodeCommand struct {
	SessionRef
	NodeID string  `json:"node_id" validate:"required"`
	X      float64 `json:"x" validate:"finite"`
	Y      float64 `json:"y" validate:"finite"`
	Delta  bool    `json:"delta"`
}

// Validate validates the command
func (c DragNodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// View state

// SelectNodeCommand makes a node the active node. An empty id clears the
// selection.
type SelectNodeCommand struct {
	SessionRef
	NodeID string `json:"node_id"`
}

// Validate validates the command
func (c SelectNodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// PanCommand shifts the view by a screen-space drag delta
type PanCommand struct {
	SessionRef
	DX float64 `json:"dx" validate:"finite"`
	DY float64 `json:"dy" validate:"finite"`
}

// Validate validates the command
func (c PanCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Zoom actions
const (
	ZoomIn  = "in"
	ZoomOut = "out"
	ZoomSet = "set"
)

// ZoomCommand steps or sets the zoom factor
type ZoomCommand struct {
	SessionRef
	Action string  `json:"action" validate:"required,oneof=in out set"`
	Zoom   float64 `json:"zoom" validate:"finite,required_if=Action set"`
}

// Validate validates the command
func (c ZoomCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Suggestions

// RequestSuggestionsCommand asks for edges worth adding from a node
type RequestSuggestionsCommand struct {
	SessionRef
	NodeID string `json:"node_id" validate:"required"`
}

// Validate validates the command
func (c RequestSuggestionsCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// AcceptSuggestionCommand adds a displayed suggestion as an edge
type AcceptSuggestionCommand struct {
	SessionRef
	TargetNodeID string `json:"target_node_id" validate:"required"`
}

// Validate validates the command
func (c AcceptSuggestionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DismissSuggestionsCommand clears displayed suggestions
type DismissSuggestionsCommand struct {
	SessionRef
}

// Validate validates the command
func (c DismissSuggestionsCommand) Validate() error {
	return utils.ValidateStruct(c)
}
