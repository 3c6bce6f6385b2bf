// Package theme turns semantic color roles into literal colors.
//
// The graph only ever stores roles or colors the user picked, so
// switching theme is a pure render-time concern and never rewrites the
// committed model.
package theme

import (
	"strings"

	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// Theme names a palette
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse validates a theme name. An empty name is the light theme.
func Parse(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case "", Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", pkgerrors.NewValidationError("unknown theme: " + s)
}

var palettes = map[Theme]map[valueobjects.ColorRole]valueobjects.Color{
	Light: {
		valueobjects.RoleSurface:   "#ffffff",
		valueobjects.RoleOutline:   "#555555",
		valueobjects.RoleText:      "#000000",
		valueobjects.RoleConnector: "#000000",
		valueobjects.RoleAccent:    "#2563eb",
	},
	Dark: {
		valueobjects.RoleSurface:   "#1e293b",
		valueobjects.RoleOutline:   "#94a3b8",
		valueobjects.RoleText:      "#ffffff",
		valueobjects.RoleConnector: "#e2e8f0",
		valueobjects.RoleAccent:    "#60a5fa",
	},
}

// Color resolves one color. Literal colors pass through unchanged.
func (t Theme) Color(c valueobjects.Color) valueobjects.Color {
	role, ok := c.Role()
	if !ok {
		return c
	}
	palette, ok := palettes[t]
	if !ok {
		palette = palettes[Light]
	}
	return palette[role]
}

// NodeStyle resolves a node's style to literal colors
func (t Theme) NodeStyle(node entities.Node) valueobjects.ResolvedNodeStyle {
	style := node.Style().Resolve()
	style.FillColor = t.Color(style.FillColor)
	style.BorderColor = t.Color(style.BorderColor)
	style.TextColor = t.Color(style.TextColor)
	return style
}

// EdgeStyle resolves an edge's style to literal colors
func (t Theme) EdgeStyle(edge entities.Edge) valueobjects.ResolvedEdgeStyle {
	style := edge.Style().Resolve()
	style.StrokeColor = t.Color(style.StrokeColor)
	return style
}
