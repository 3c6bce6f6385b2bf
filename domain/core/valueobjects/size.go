package valueobjects

import "encoding/json"

// Minimum node box, matching the smallest size the resize handles allow.
const (
	MinNodeWidth  = 120.0
	MinNodeHeight = 50.0
)

// Size is the rendered box of a node in canvas units
type Size struct {
	width  float64
	height float64
}

// NewSize creates a size clamped to the minimum node box
func NewSize(width, height float64) Size {
	if !isValidCoordinate(width) || width < MinNodeWidth {
		width = MinNodeWidth
	}
	if !isValidCoordinate(height) || height < MinNodeHeight {
		height = MinNodeHeight
	}
	return Size{width: width, height: height}
}

// DefaultSize returns the size of a freshly created node
func DefaultSize() Size {
	return Size{width: MinNodeWidth, height: MinNodeHeight}
}

// Width returns the width
func (s Size) Width() float64 { return s.width }

// Height returns the height
func (s Size) Height() float64 { return s.height }

// IsZero reports whether the size was never set
func (s Size) IsZero() bool {
	return s.width == 0 && s.height == 0
}

type sizeJSON struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MarshalJSON implements json.Marshaler
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(sizeJSON{Width: s.width, Height: s.height})
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Size) UnmarshalJSON(data []byte) error {
	var raw sizeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewSize(raw.Width, raw.Height)
	return nil
}
