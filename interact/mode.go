package interact

import (
	"image/color"

	"github.com/gogpu/masker/internal/blend"
)

// Mode is the current gesture.
type Mode uint8

const (
	// Idle means no gesture is in progress.
	Idle Mode = iota
	// Drawing means a stroke is being painted into the mask.
	Drawing
	// Panning means the pointer drags the viewport.
	Panning
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Idle:
		return "Idle"
	case Drawing:
		return "Drawing"
	case Panning:
		return "Panning"
	default:
		return "Unknown"
	}
}

// Cursor is the visual cue a host should show over the surface.
type Cursor uint8

const (
	// CursorCrosshair is shown while painting is possible.
	CursorCrosshair Cursor = iota
	// CursorGrab is shown while space arms panning.
	CursorGrab
	// CursorGrabbing is shown during a pan.
	CursorGrabbing
	// CursorZoomIn is shown while the zoom modifier is held.
	CursorZoomIn
)

// String returns the CSS cursor name.
func (c Cursor) String() string {
	switch c {
	case CursorCrosshair:
		return "crosshair"
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	case CursorZoomIn:
		return "zoom-in"
	default:
		return "default"
	}
}

// Default brush values.
const (
	DefaultRadius  = 10
	DefaultOpacity = 0.4
)

// Brush describes how strokes are painted and displayed.
type Brush struct {
	// Radius in image pixels; at least 1.
	Radius int

	// Color painted into the mask.
	Color color.NRGBA

	// Opacity of the mask layer when composited over the base image.
	Opacity float64

	// Mode used to composite the mask over the base image.
	Mode blend.Mode
}

// DefaultBrush returns a white brush of radius 10 at 40% opacity.
func DefaultBrush() Brush {
	return Brush{
		Radius:  DefaultRadius,
		Color:   color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Opacity: DefaultOpacity,
		Mode:    blend.Normal,
	}
}

// Normalize clamps out-of-range fields: Radius to at least 1, Opacity to
// [0, 1] and unknown modes to Normal.
func (b Brush) Normalize() Brush {
	b.Radius = max(1, b.Radius)
	b.Opacity = min(1, max(0, b.Opacity))
	if !b.Mode.Valid() {
		b.Mode = blend.Normal
	}
	return b
}
