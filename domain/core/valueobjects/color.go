package valueobjects

import (
	"regexp"
	"strings"

	pkgerrors "mindmap-backend/pkg/errors"
)

// ColorRole is a semantic color slot resolved to a literal by the active theme
type ColorRole string

const (
	RoleSurface   ColorRole = "surface"
	RoleOutline   ColorRole = "outline"
	RoleText      ColorRole = "text"
	RoleConnector ColorRole = "connector"
	RoleAccent    ColorRole = "accent"
)

var knownRoles = map[ColorRole]bool{
	RoleSurface:   true,
	RoleOutline:   true,
	RoleText:      true,
	RoleConnector: true,
	RoleAccent:    true,
}

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color is either a literal "#rrggbb" value picked by the user or the name
// of a semantic role
type Color string

// ParseColor validates a color string
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if hexColorPattern.MatchString(s) {
		return Color(strings.ToLower(s)), nil
	}
	if knownRoles[ColorRole(s)] {
		return Color(s), nil
	}
	return "", pkgerrors.NewValidationError("color must be #rrggbb or a known role: " + s)
}

// RoleColor returns the color bound to a role
func RoleColor(role ColorRole) Color {
	return Color(role)
}

// Role returns the semantic role, if the color is one
func (c Color) Role() (ColorRole, bool) {
	role := ColorRole(c)
	return role, knownRoles[role]
}

// IsLiteral reports whether the color is a concrete hex value
func (c Color) IsLiteral() bool {
	return hexColorPattern.MatchString(string(c))
}

// String returns the string representation
func (c Color) String() string {
	return string(c)
}
