package session

import (
	"strings"

	pkgerrors "mindmap-backend/pkg/errors"
)

// Platform selects which modifier key is the primary one
type Platform string

const (
	// PlatformMac uses the command (meta) key
	PlatformMac Platform = "mac"
	// PlatformOther uses the control key
	PlatformOther Platform = "other"
)

// ParsePlatform maps a client platform name to a Platform
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mac", "macos", "darwin", "ios":
		return PlatformMac
	}
	return PlatformOther
}

// KeyStroke is one key press with its modifiers
type KeyStroke struct {
	Key   string `json:"key" validate:"required"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
}

// ShortcutAction is what a key stroke triggers
type ShortcutAction string

const (
	ActionNone ShortcutAction = ""
	ActionUndo ShortcutAction = "undo"
	ActionRedo ShortcutAction = "redo"
)

// ResolveShortcut maps a key stroke to an action: modifier+z undoes,
// modifier+y and modifier+shift+z redo. Anything else, including strokes
// with alt held, is no action.
func ResolveShortcut(k KeyStroke, platform Platform) ShortcutAction {
	modifier := k.Ctrl
	if platform == PlatformMac {
		modifier = k.Meta
	}
	if !modifier || k.Alt {
		return ActionNone
	}

	switch strings.ToLower(k.Key) {
	case "z":
		if k.Shift {
			return ActionRedo
		}
		return ActionUndo
	case "y":
		if k.Shift {
			return ActionNone
		}
		return ActionRedo
	}
	return ActionNone
}

// HandleShortcut applies the action bound to a key stroke
func (s *Session) HandleShortcut(k KeyStroke, platform Platform) (ShortcutAction, Outcome) {
	action := ResolveShortcut(k, platform)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case ActionUndo:
		return action, s.undo()
	case ActionRedo:
		return action, s.redo()
	}
	return action, s.declined("shortcut", pkgerrors.NewValidationError("key stroke is not bound").WithCode("UNBOUND_SHORTCUT"))
}
