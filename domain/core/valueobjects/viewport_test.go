package valueobjects

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/config"
)

func TestViewport_ZoomSteps(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		zoomIn bool
		want   float64
	}{
		{name: "zoom in from identity", start: 1, zoomIn: true, want: 1.1},
		{name: "zoom out from identity", start: 1, zoomIn: false, want: 0.9},
		{name: "zoom in clamps at max", start: 2.95, zoomIn: true, want: 3.0},
		{name: "zoom out clamps at min", start: 0.35, zoomIn: false, want: 0.3},
		{name: "zoom in at max stays", start: 3.0, zoomIn: true, want: 3.0},
		{name: "zoom out at min stays", start: 0.3, zoomIn: false, want: 0.3},
		{name: "zoom in rounds to one decimal", start: 1.04, zoomIn: true, want: 1.1},
		{name: "zoom out rounds to one decimal", start: 1.27, zoomIn: false, want: 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewport(DefaultZoomBounds()).SetZoom(tt.start)
			if tt.zoomIn {
				v = v.ZoomIn()
			} else {
				v = v.ZoomOut()
			}
			assert.InDelta(t, tt.want, v.Zoom(), 1e-9)
		})
	}
}

func TestViewport_RepeatedStepsDoNotDrift(t *testing.T) {
	v := NewViewport(DefaultZoomBounds())
	for i := 0; i < 5; i++ {
		v = v.ZoomIn()
	}
	assert.Equal(t, 1.5, v.Zoom())
	for i := 0; i < 5; i++ {
		v = v.ZoomOut()
	}
	assert.Equal(t, 1.0, v.Zoom())
}

func TestViewport_SetZoomClamps(t *testing.T) {
	v := NewViewport(DefaultZoomBounds())

	assert.Equal(t, 0.3, v.SetZoom(0.01).Zoom())
	assert.Equal(t, 3.0, v.SetZoom(42).Zoom())
	assert.Equal(t, 1.0, v.SetZoom(math.NaN()).Zoom())
	assert.Equal(t, 1.0, v.SetZoom(math.Inf(1)).Zoom())

	assert.False(t, v.SetZoom(3).CanZoomIn())
	assert.True(t, v.SetZoom(3).CanZoomOut())
	assert.False(t, v.SetZoom(0.3).CanZoomOut())
}

func TestViewport_CoordinateTransform(t *testing.T) {
	v := NewViewport(DefaultZoomBounds()).PanBy(100, 50).SetZoom(2)

	canvas := v.ToCanvas(PositionAt(300, 250))
	assert.True(t, canvas.Equals(PositionAt(100, 100)), "got %v", canvas)

	screen := v.ToScreen(canvas)
	assert.True(t, screen.Equals(PositionAt(300, 250)), "got %v", screen)
}

func TestViewport_PanIsNotScaledByZoom(t *testing.T) {
	v := NewViewport(DefaultZoomBounds()).SetZoom(2).PanBy(10, -20)
	assert.True(t, v.Pan().Equals(PositionAt(10, -20)))
}

func TestViewport_RoundTripProperty(t *testing.T) {
	points := []Position{PositionAt(0, 0), PositionAt(-320.5, 18), PositionAt(1e4, -7.25)}
	zooms := []float64{0.3, 0.7, 1, 1.9, 3}

	for _, zoom := range zooms {
		v := NewViewport(DefaultZoomBounds()).PanBy(-42, 17.5).SetZoom(zoom)
		for _, p := range points {
			back := v.ToCanvas(v.ToScreen(p))
			assert.InDelta(t, p.X(), back.X(), 1e-6)
			assert.InDelta(t, p.Y(), back.Y(), 1e-6)
		}
	}
}

func TestZoomBoundsFrom(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MinZoom, cfg.MaxZoom, cfg.ZoomStep = 0.5, 2, 0.25

	v := NewViewport(ZoomBoundsFrom(cfg))
	assert.Equal(t, 1.25, v.ZoomIn().Zoom())
	assert.Equal(t, 2.0, v.SetZoom(9).Zoom())
	assert.Equal(t, DefaultZoomBounds(), ZoomBoundsFrom(nil))
}

func TestViewport_JSON(t *testing.T) {
	v := NewViewport(DefaultZoomBounds()).PanBy(12, -4).SetZoom(1.5)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pan":{"x":12,"y":-4},"zoom":1.5}`, string(data))

	var decoded Viewport
	require.NoError(t, json.Unmarshal([]byte(`{"pan":{"x":1,"y":2},"zoom":9}`), &decoded))
	assert.Equal(t, 3.0, decoded.Zoom())
	assert.True(t, decoded.Pan().Equals(PositionAt(1, 2)))
}
