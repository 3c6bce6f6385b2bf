package valueobjects

import (
	"encoding/json"
	"math"

	"mindmap-backend/domain/config"
)

// ZoomBounds constrains the zoom factor of a viewport
type ZoomBounds struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultZoomBounds returns the [0.3, 3.0] range stepped by 0.1
func DefaultZoomBounds() ZoomBounds {
	return ZoomBounds{Min: 0.3, Max: 3.0, Step: 0.1}
}

// ZoomBoundsFrom reads the zoom rules of a domain configuration
func ZoomBoundsFrom(cfg *config.DomainConfig) ZoomBounds {
	if cfg == nil {
		return DefaultZoomBounds()
	}
	return ZoomBounds{Min: cfg.MinZoom, Max: cfg.MaxZoom, Step: cfg.ZoomStep}
}

// Viewport is the pan offset and uniform zoom factor mapping canvas
// coordinates onto the screen: screen = canvas*zoom + pan.
type Viewport struct {
	pan    Position
	zoom   float64
	bounds ZoomBounds
}

// NewViewport creates an identity viewport
func NewViewport(bounds ZoomBounds) Viewport {
	return Viewport{zoom: 1, bounds: bounds}
}

// RestoreViewport rebuilds a viewport from stored values, clamping the zoom
func RestoreViewport(pan Position, zoom float64, bounds ZoomBounds) Viewport {
	v := Viewport{pan: pan, bounds: bounds}
	v.zoom = v.clampZoom(zoom)
	return v
}

// WithBounds returns the viewport under other zoom bounds, clamping the zoom
func (v Viewport) WithBounds(bounds ZoomBounds) Viewport {
	return RestoreViewport(v.pan, v.Zoom(), bounds)
}

// Pan returns the pan offset in screen units
func (v Viewport) Pan() Position {
	return v.pan
}

// Zoom returns the zoom factor
func (v Viewport) Zoom() float64 {
	if v.zoom == 0 {
		return 1
	}
	return v.zoom
}

// ToCanvas converts a screen point into canvas coordinates
func (v Viewport) ToCanvas(screen Position) Position {
	return ToCanvas(screen, v.pan, v.Zoom())
}

// ToScreen converts a canvas point into screen coordinates
func (v Viewport) ToScreen(canvas Position) Position {
	return ToScreen(canvas, v.pan, v.Zoom())
}

// PanBy shifts the pan offset by a raw screen-space pointer delta. The
// delta is deliberately not divided by zoom so a background drag tracks
// the pointer one to one.
func (v Viewport) PanBy(dx, dy float64) Viewport {
	v.pan = v.pan.Translate(dx, dy)
	return v
}

// ZoomIn increases the zoom by one step
func (v Viewport) ZoomIn() Viewport {
	return v.SetZoom(roundToStep(v.Zoom()+v.step(), v.step()))
}

// ZoomOut decreases the zoom by one step
func (v Viewport) ZoomOut() Viewport {
	return v.SetZoom(roundToStep(v.Zoom()-v.step(), v.step()))
}

// SetZoom sets the zoom factor, clamped to the bounds
func (v Viewport) SetZoom(zoom float64) Viewport {
	v.zoom = v.clampZoom(zoom)
	return v
}

// CanZoomIn reports whether another zoom-in step would change the zoom
func (v Viewport) CanZoomIn() bool {
	return v.Zoom() < v.limits().Max
}

// CanZoomOut reports whether another zoom-out step would change the zoom
func (v Viewport) CanZoomOut() bool {
	return v.Zoom() > v.limits().Min
}

func (v Viewport) limits() ZoomBounds {
	if v.bounds == (ZoomBounds{}) {
		return DefaultZoomBounds()
	}
	return v.bounds
}

func (v Viewport) step() float64 {
	return v.limits().Step
}

func (v Viewport) clampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom == 0 {
		return 1
	}
	bounds := v.limits()
	if zoom < bounds.Min {
		return bounds.Min
	}
	if zoom > bounds.Max {
		return bounds.Max
	}
	return zoom
}

// roundToStep rounds zoom to as many decimals as the step has, one for
// the default 0.1 step, so repeated steps do not drift (1.1+0.1 != 1.2)
func roundToStep(zoom, step float64) float64 {
	scale := 1.0
	for i := 0; i < 6 && math.Abs(step*scale-math.Round(step*scale)) > 1e-9; i++ {
		scale *= 10
	}
	return math.Round(zoom*scale) / scale
}

// ToCanvas converts a screen point: canvas = (screen - pan) / zoom
func ToCanvas(screen, pan Position, zoom float64) Position {
	return Position{
		x: (screen.x - pan.x) / zoom,
		y: (screen.y - pan.y) / zoom,
	}
}

// ToScreen is the inverse of ToCanvas: screen = canvas*zoom + pan
func ToScreen(canvas, pan Position, zoom float64) Position {
	return Position{
		x: canvas.x*zoom + pan.x,
		y: canvas.y*zoom + pan.y,
	}
}

type viewportJSON struct {
	Pan  Position `json:"pan"`
	Zoom float64  `json:"zoom"`
}

// MarshalJSON implements json.Marshaler
func (v Viewport) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewportJSON{Pan: v.pan, Zoom: v.Zoom()})
}

// UnmarshalJSON implements json.Unmarshaler. Bounds are not serialized;
// the default bounds apply until the owner restores its own.
func (v *Viewport) UnmarshalJSON(data []byte) error {
	var raw viewportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = RestoreViewport(raw.Pan, raw.Zoom, DefaultZoomBounds())
	return nil
}
