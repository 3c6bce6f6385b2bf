// Package commands holds the write-side messages of the session host.
// Every command is validated by the command bus before it reaches its
// handler.
package commands

import (
	"mindmap-backend/pkg/utils"
)

// SessionRef addresses one open session on behalf of its owner
type SessionRef struct {
	OwnerID   string `json:"owner_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required,uuid"`
}

// Ref returns the embedded reference
func (r SessionRef) Ref() SessionRef {
	return r
}

// SessionCommand is any command addressed to an open session
type SessionCommand interface {
	Ref() SessionRef
}

// CreateSessionCommand opens a new unsaved map
type CreateSessionCommand struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Title   string `json:"title" validate:"max=200"`
}

// Validate validates the command
func (c CreateSessionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// OpenMapCommand opens a saved map in a new session
type OpenMapCommand struct {
	OwnerID string `json:"owner_id" validate:"required"`
	MapID   string `json:"map_id" validate:"required,max=64"`
}

// Validate validates the command
func (c OpenMapCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SaveMapCommand stores the session's present state. An empty title keeps
// the current one.
type SaveMapCommand struct {
	SessionRef
	Title     string `json:"title" validate:"max=200"`
	Thumbnail string `json:"thumbnail" validate:"max=400000"`
}

// Validate validates the command
func (c SaveMapCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CloseSessionCommand discards a session
type CloseSessionCommand struct {
	SessionRef
}

// Validate validates the command
func (c CloseSessionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteMapCommand removes a saved map
type DeleteMapCommand struct {
	OwnerID string `json:"owner_id" validate:"required"`
	MapID   string `json:"map_id" validate:"required,max=64"`
}

// Validate validates the command
func (c DeleteMapCommand) Validate() error {
	return utils.ValidateStruct(c)
}
