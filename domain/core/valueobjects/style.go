package valueobjects

import (
	pkgerrors "mindmap-backend/pkg/errors"
)

// Node style defaults. Colors default to roles so the committed graph never
// carries theme literals it did not get from the user.
const (
	DefaultNodeLabel       = "New Node"
	DefaultNodeFill        = Color(RoleSurface)
	DefaultNodeBorder      = Color(RoleOutline)
	DefaultNodeBorderWidth = 2.0
	DefaultNodeText        = Color(RoleText)
	DefaultNodeFontSize    = 12.0
	DefaultNodeFontFamily  = "'Quicksand', 'Google Sans Code', sans-serif"

	MinBorderWidth = 0.0
	MaxBorderWidth = 20.0
	MinFontSize    = 6.0
	MaxFontSize    = 96.0
)

// Edge style defaults
const (
	DefaultEdgeStroke      = Color(RoleConnector)
	DefaultEdgeStrokeWidth = 2.0
	DefaultEdgeDash        = DashSolid
	DefaultEdgeShape       = ShapeSmoothStep

	MinStrokeWidth = 1.0
	MaxStrokeWidth = 10.0
)

// EdgeShape is the routing used to draw an edge
type EdgeShape string

const (
	ShapeStraight   EdgeShape = "straight"
	ShapeStep       EdgeShape = "step"
	ShapeSmoothStep EdgeShape = "smoothstep"
	ShapeCurve      EdgeShape = "curve"
)

// ParseEdgeShape validates an edge shape
func ParseEdgeShape(s string) (EdgeShape, error) {
	switch shape := EdgeShape(s); shape {
	case ShapeStraight, ShapeStep, ShapeSmoothStep, ShapeCurve:
		return shape, nil
	}
	return "", pkgerrors.NewValidationError("unknown edge shape: " + s)
}

// DashPattern is the stroke pattern of an edge
type DashPattern string

const (
	DashSolid  DashPattern = "solid"
	DashDotted DashPattern = "dotted"
)

// ParseDashPattern validates a dash pattern
func ParseDashPattern(s string) (DashPattern, error) {
	switch dash := DashPattern(s); dash {
	case DashSolid, DashDotted:
		return dash, nil
	}
	return "", pkgerrors.NewValidationError("unknown dash pattern: " + s)
}

// StrokeDashArray returns the SVG dash array for the pattern
func (d DashPattern) StrokeDashArray() string {
	if d == DashDotted {
		return "5 5"
	}
	return ""
}

// NodeStyle holds the optional style fields of a node. A nil field means
// "use the default"; the same type doubles as a patch where nil means
// "leave unchanged". Pointees are never mutated once stored.
type NodeStyle struct {
	FillColor   *Color   `json:"fillColor,omitempty"`
	BorderColor *Color   `json:"borderColor,omitempty"`
	BorderWidth *float64 `json:"borderWidth,omitempty"`
	TextColor   *Color   `json:"textColor,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
	FontFamily  *string  `json:"fontFamily,omitempty"`
}

// Validate checks the enumerated and color fields of a style that did
// not come through the parsers, e.g. one decoded from JSON
func (s NodeStyle) Validate() error {
	for _, color := range []*Color{s.FillColor, s.BorderColor, s.TextColor} {
		if color == nil {
			continue
		}
		if _, err := ParseColor(color.String()); err != nil {
			return err
		}
	}
	return nil
}

// ResolvedNodeStyle is a node style with every default applied
type ResolvedNodeStyle struct {
	FillColor   Color   `json:"fillColor"`
	BorderColor Color   `json:"borderColor"`
	BorderWidth float64 `json:"borderWidth"`
	TextColor   Color   `json:"textColor"`
	FontSize    float64 `json:"fontSize"`
	FontFamily  string  `json:"fontFamily"`
}

// Merge returns a new style with every non-nil field of patch applied
func (s NodeStyle) Merge(patch NodeStyle) NodeStyle {
	merged := s
	if patch.FillColor != nil {
		merged.FillColor = colorPtr(*patch.FillColor)
	}
	if patch.BorderColor != nil {
		merged.BorderColor = colorPtr(*patch.BorderColor)
	}
	if patch.BorderWidth != nil {
		merged.BorderWidth = floatPtr(clamp(*patch.BorderWidth, MinBorderWidth, MaxBorderWidth))
	}
	if patch.TextColor != nil {
		merged.TextColor = colorPtr(*patch.TextColor)
	}
	if patch.FontSize != nil {
		merged.FontSize = floatPtr(clamp(*patch.FontSize, MinFontSize, MaxFontSize))
	}
	if patch.FontFamily != nil {
		merged.FontFamily = stringPtr(*patch.FontFamily)
	}
	return merged
}

// IsEmpty reports whether no field is set
func (s NodeStyle) IsEmpty() bool {
	return s == NodeStyle{}
}

// Equals compares the set fields of two styles by value
func (s NodeStyle) Equals(other NodeStyle) bool {
	return eqColor(s.FillColor, other.FillColor) &&
		eqColor(s.BorderColor, other.BorderColor) &&
		eqFloat(s.BorderWidth, other.BorderWidth) &&
		eqColor(s.TextColor, other.TextColor) &&
		eqFloat(s.FontSize, other.FontSize) &&
		eqString(s.FontFamily, other.FontFamily)
}

// Resolve applies the default table
func (s NodeStyle) Resolve() ResolvedNodeStyle {
	resolved := ResolvedNodeStyle{
		FillColor:   DefaultNodeFill,
		BorderColor: DefaultNodeBorder,
		BorderWidth: DefaultNodeBorderWidth,
		TextColor:   DefaultNodeText,
		FontSize:    DefaultNodeFontSize,
		FontFamily:  DefaultNodeFontFamily,
	}
	if s.FillColor != nil {
		resolved.FillColor = *s.FillColor
	}
	if s.BorderColor != nil {
		resolved.BorderColor = *s.BorderColor
	}
	if s.BorderWidth != nil {
		resolved.BorderWidth = *s.BorderWidth
	}
	if s.TextColor != nil {
		resolved.TextColor = *s.TextColor
	}
	if s.FontSize != nil {
		resolved.FontSize = *s.FontSize
	}
	if s.FontFamily != nil {
		resolved.FontFamily = *s.FontFamily
	}
	return resolved
}

// EdgeStyle holds the optional style fields of an edge, with the same
// nil semantics as NodeStyle
type EdgeStyle struct {
	StrokeColor *Color       `json:"strokeColor,omitempty"`
	StrokeWidth *float64     `json:"strokeWidth,omitempty"`
	DashPattern *DashPattern `json:"dashPattern,omitempty"`
	Shape       *EdgeShape   `json:"shape,omitempty"`
}

// Validate checks the enumerated and color fields of a decoded style
func (s EdgeStyle) Validate() error {
	if s.StrokeColor != nil {
		if _, err := ParseColor(s.StrokeColor.String()); err != nil {
			return err
		}
	}
	if s.DashPattern != nil {
		if _, err := ParseDashPattern(string(*s.DashPattern)); err != nil {
			return err
		}
	}
	if s.Shape != nil {
		if _, err := ParseEdgeShape(string(*s.Shape)); err != nil {
			return err
		}
	}
	return nil
}

// ResolvedEdgeStyle is an edge style with every default applied
type ResolvedEdgeStyle struct {
	StrokeColor Color       `json:"strokeColor"`
	StrokeWidth float64     `json:"strokeWidth"`
	DashPattern DashPattern `json:"dashPattern"`
	Shape       EdgeShape   `json:"shape"`
}

// Merge returns a new style with every non-nil field of patch applied
func (s EdgeStyle) Merge(patch EdgeStyle) EdgeStyle {
	merged := s
	if patch.StrokeColor != nil {
		merged.StrokeColor = colorPtr(*patch.StrokeColor)
	}
	if patch.StrokeWidth != nil {
		merged.StrokeWidth = floatPtr(clamp(*patch.StrokeWidth, MinStrokeWidth, MaxStrokeWidth))
	}
	if patch.DashPattern != nil {
		dash := *patch.DashPattern
		merged.DashPattern = &dash
	}
	if patch.Shape != nil {
		shape := *patch.Shape
		merged.Shape = &shape
	}
	return merged
}

// WithShape returns a copy of the style using the given shape
func (s EdgeStyle) WithShape(shape EdgeShape) EdgeStyle {
	return s.Merge(EdgeStyle{Shape: &shape})
}

// IsEmpty reports whether no field is set
func (s EdgeStyle) IsEmpty() bool {
	return s == EdgeStyle{}
}

// Equals compares the set fields of two styles by value
func (s EdgeStyle) Equals(other EdgeStyle) bool {
	return eqColor(s.StrokeColor, other.StrokeColor) &&
		eqFloat(s.StrokeWidth, other.StrokeWidth) &&
		eqPtr(s.DashPattern, other.DashPattern) &&
		eqPtr(s.Shape, other.Shape)
}

// Resolve applies the default table
func (s EdgeStyle) Resolve() ResolvedEdgeStyle {
	resolved := ResolvedEdgeStyle{
		StrokeColor: DefaultEdgeStroke,
		StrokeWidth: DefaultEdgeStrokeWidth,
		DashPattern: DefaultEdgeDash,
		Shape:       DefaultEdgeShape,
	}
	if s.StrokeColor != nil {
		resolved.StrokeColor = *s.StrokeColor
	}
	if s.StrokeWidth != nil {
		resolved.StrokeWidth = *s.StrokeWidth
	}
	if s.DashPattern != nil {
		resolved.DashPattern = *s.DashPattern
	}
	if s.Shape != nil {
		resolved.Shape = *s.Shape
	}
	return resolved
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqColor(a, b *Color) bool    { return eqPtr(a, b) }
func eqFloat(a, b *float64) bool  { return eqPtr(a, b) }
func eqString(a, b *string) bool  { return eqPtr(a, b) }
func colorPtr(c Color) *Color     { return &c }
func floatPtr(f float64) *float64 { return &f }
func stringPtr(s string) *string  { return &s }
