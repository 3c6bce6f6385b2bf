package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

func TestResolveShortcut(t *testing.T) {
	tests := []struct {
		name     string
		stroke   KeyStroke
		platform Platform
		want     ShortcutAction
	}{
		{name: "ctrl z", stroke: KeyStroke{Key: "z", Ctrl: true}, platform: PlatformOther, want: ActionUndo},
		{name: "ctrl Z uppercase", stroke: KeyStroke{Key: "Z", Ctrl: true}, platform: PlatformOther, want: ActionUndo},
		{name: "ctrl y", stroke: KeyStroke{Key: "y", Ctrl: true}, platform: PlatformOther, want: ActionRedo},
		{name: "ctrl shift z", stroke: KeyStroke{Key: "z", Ctrl: true, Shift: true}, platform: PlatformOther, want: ActionRedo},
		{name: "cmd z on mac", stroke: KeyStroke{Key: "z", Meta: true}, platform: PlatformMac, want: ActionUndo},
		{name: "ctrl z on mac", stroke: KeyStroke{Key: "z", Ctrl: true}, platform: PlatformMac, want: ActionNone},
		{name: "cmd z off mac", stroke: KeyStroke{Key: "z", Meta: true}, platform: PlatformOther, want: ActionNone},
		{name: "alt held", stroke: KeyStroke{Key: "z", Ctrl: true, Alt: true}, platform: PlatformOther, want: ActionNone},
		{name: "plain z", stroke: KeyStroke{Key: "z"}, platform: PlatformOther, want: ActionNone},
		{name: "ctrl shift y", stroke: KeyStroke{Key: "y", Ctrl: true, Shift: true}, platform: PlatformOther, want: ActionNone},
		{name: "ctrl x", stroke: KeyStroke{Key: "x", Ctrl: true}, platform: PlatformOther, want: ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveShortcut(tt.stroke, tt.platform))
		})
	}
}

func TestParsePlatform(t *testing.T) {
	assert.Equal(t, PlatformMac, ParsePlatform(" MacOS "))
	assert.Equal(t, PlatformMac, ParsePlatform("darwin"))
	assert.Equal(t, PlatformOther, ParsePlatform("windows"))
	assert.Equal(t, PlatformOther, ParsePlatform(""))
}

func TestSession_HandleShortcut(t *testing.T) {
	s := newTestSession(t)
	s.AddNode(valueobjects.PositionAt(5, 5), nil, valueobjects.NodeStyle{})

	action, out := s.HandleShortcut(KeyStroke{Key: "z", Ctrl: true}, PlatformOther)
	assert.Equal(t, ActionUndo, action)
	require.True(t, out.Changed)
	assert.Equal(t, 1, s.Present().NodeCount())

	action, out = s.HandleShortcut(KeyStroke{Key: "y", Ctrl: true}, PlatformOther)
	assert.Equal(t, ActionRedo, action)
	require.True(t, out.Changed)
	assert.Equal(t, 2, s.Present().NodeCount())

	action, out = s.HandleShortcut(KeyStroke{Key: "q", Ctrl: true}, PlatformOther)
	assert.Equal(t, ActionNone, action)
	assert.False(t, out.Changed)
	assert.Equal(t, "UNBOUND_SHORTCUT", pkgerrors.CodeOf(out.Reason))
}
