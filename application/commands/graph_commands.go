package commands

import (
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/pkg/utils"
)

// Node commands

// AddNodeCommand places a node. With Screen set, X and Y are a pointer
// position and are converted through the session's viewport.
type AddNodeCommand struct {
	SessionRef
	X      float64                `json:"x" validate:"finite"`
	Y      float64                `json:"y" validate:"finite"`
	Screen bool                   `json:"screen"`
	Label  *string                `json:"label" validate:"omitempty,max=500"`
	Style  valueobjects.NodeStyle `json:"style"`
}

// Validate validates the command
func (c AddNodeCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	return c.Style.Validate()
}

// MoveNodeCommand moves a node as one undoable step
type MoveNodeCommand struct {
	SessionRef
	NodeID string  `json:"node_id" validate:"required"`
	X      float64 `json:"x" validate:"finite"`
	Y      float64 `json:"y" validate:"finite"`
}

// Validate validates the command
func (c MoveNodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SetNodeLabelCommand replaces a node's label
type SetNodeLabelCommand struct {
	SessionRef
	NodeID string `json:"node_id" validate:"required"`
	Label  string `json:"label" validate:"max=500"`
}

// Validate validates the command
func (c SetNodeLabelCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UpdateNodeStyleCommand merges a partial style into a node
type UpdateNodeStyleCommand struct {
	SessionRef
	NodeID string                 `json:"node_id" validate:"required"`
	Style  valueobjects.NodeStyle `json:"style"`
}

// Validate validates the command
func (c UpdateNodeStyleCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	return c.Style.Validate()
}

// ResizeNodeCommand sets a node's box. With Live set the resize is part
// of a gesture and coalesces into one undo step.
type ResizeNodeCommand struct {
	SessionRef
	NodeID string  `json:"node_id" validate:"required"`
	Width  float64 `json:"width" validate:"finite,gt=0"`
	Height float64 `json:"height" validate:"finite,gt=0"`
	Live   bool    `json:"live"`
}

// Validate validates the command
func (c ResizeNodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteNodeCommand removes a node and its edges
type DeleteNodeCommand struct {
	SessionRef
	NodeID string `json:"node_id" validate:"required"`
}

// Validate validates the command
func (c DeleteNodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Edge commands

// AddEdgeCommand connects two nodes
type AddEdgeCommand struct {
	SessionRef
	Source string                 `json:"source" validate:"required"`
	Target string                 `json:"target" validate:"required"`
	Style  valueobjects.EdgeStyle `json:"style"`
}

// Validate validates the command
func (c AddEdgeCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	return c.Style.Validate()
}

// UpdateEdgeStyleCommand merges a partial style into an edge
type UpdateEdgeStyleCommand struct {
	SessionRef
	EdgeID string                 `json:"edge_id" validate:"required"`
	Style  valueobjects.EdgeStyle `json:"style"`
}

// Validate validates the command
func (c UpdateEdgeStyleCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	return c.Style.Validate()
}

// SetEdgeShapeCommand changes an edge's routing
type SetEdgeShapeCommand struct {
	SessionRef
	EdgeID string `json:"edge_id" validate:"required"`
	Shape  string `json:"shape" validate:"required,oneof=straight step smoothstep curve"`
}

// Validate validates the command
func (c SetEdgeShapeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// ReconnectEdgeCommand moves an edge to new endpoints. With Live set the
// move is a gesture preview.
type ReconnectEdgeCommand struct {
	SessionRef
	EdgeID string `json:"edge_id" validate:"required"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Live   bool   `json:"live"`
}

// Validate validates the command
func (c ReconnectEdgeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteEdgeCommand removes one edge
type DeleteEdgeCommand struct {
	SessionRef
	EdgeID string `json:"edge_id" validate:"required"`
}

// Validate validates the command
func (c DeleteEdgeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// ClearGraphCommand removes every node and edge
type ClearGraphCommand struct {
	SessionRef
}

// Validate validates the command
func (c ClearGraphCommand) Validate() error {
	return utils.ValidateStruct(c)
}
