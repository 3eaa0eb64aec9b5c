package interact

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/masker/internal/logging"
)

// WheelZoomStep is the scale change per wheel event with the zoom modifier.
const WheelZoomStep = 0.1

// Host is the surface and viewport a Controller drives. Coordinates passed
// to Host methods are client coordinates unless stated otherwise.
type Host interface {
	// ImagePoint maps a client point into image space.
	ImagePoint(x, y float64) (float64, float64)

	// Scale returns the user zoom scale, excluding the fit-to-container factor.
	Scale() float64

	// Stamp paints a filled disc at the image point (x, y).
	Stamp(x, y float64, radius int, erase bool)

	// ShowCursor redraws the brush preview at the image point (x, y).
	ShowCursor(x, y float64, radius int)

	// HideCursor clears the brush preview.
	HideCursor()

	// PanBy moves the viewport by a client-space delta.
	PanBy(dx, dy float64)

	// ZoomBy changes the scale by delta keeping the client point fixed.
	ZoomBy(delta, x, y float64)

	// StrokeMoved reports that paint was applied during a stroke.
	StrokeMoved()

	// StrokeEnded reports that the current stroke is complete.
	StrokeEnded()

	// Undo and Redo run the history shortcuts.
	Undo()
	Redo()
}

// Option configures a Controller.
type Option func(*Controller)

// WithBrush sets the initial brush.
func WithBrush(b Brush) Option {
	return func(c *Controller) {
		c.brush = b.Normalize()
	}
}

// WithWheelZoom enables or disables zooming with the modifier wheel.
func WithWheelZoom(enabled bool) Option {
	return func(c *Controller) {
		c.wheelZoom = enabled
	}
}

// WithDrawingListener registers fn for Drawing mode enter and exit.
func WithDrawingListener(fn func(drawing bool)) Option {
	return func(c *Controller) {
		c.onDrawing = fn
	}
}

// WithRadiusListener registers fn for wheel-driven radius changes.
// Without a radius listener plain wheel events are left to the host.
func WithRadiusListener(fn func(radius int)) Option {
	return func(c *Controller) {
		c.onRadius = fn
	}
}

// WithTextFocus registers a probe reporting whether keyboard focus is inside
// a text input. Undo and redo shortcuts are ignored while it returns true.
func WithTextFocus(fn func() bool) Option {
	return func(c *Controller) {
		c.textFocus = fn
	}
}

// Controller arbitrates between drawing, panning, brush resizing and zoom.
// It is not safe for concurrent use.
type Controller struct {
	host  Host
	brush Brush
	mode  Mode

	wheelZoom bool
	onDrawing func(bool)
	onRadius  func(int)
	textFocus func() bool

	spaceHeld bool
	zoomReady bool
	erasing   bool

	// Last pointer position in client coordinates.
	lastX, lastY float64
	inside       bool
}

// New returns an idle controller driving host.
func New(host Host, opts ...Option) *Controller {
	c := &Controller{
		host:      host,
		brush:     DefaultBrush(),
		wheelZoom: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the current gesture.
func (c *Controller) Mode() Mode { return c.mode }

// Brush returns the current brush.
func (c *Controller) Brush() Brush { return c.brush }

// SetBrush replaces the brush. The radius is clamped to at least 1.
func (c *Controller) SetBrush(b Brush) {
	c.brush = b.Normalize()
	if c.inside && c.mode != Panning {
		c.showCursor()
	}
}

// SpaceHeld reports whether space currently arms panning.
func (c *Controller) SpaceHeld() bool { return c.spaceHeld }

// Cursor returns the visual cue for the current state.
func (c *Controller) Cursor() Cursor {
	switch {
	case c.mode == Panning:
		return CursorGrabbing
	case c.spaceHeld:
		return CursorGrab
	case c.zoomReady:
		return CursorZoomIn
	default:
		return CursorCrosshair
	}
}

// HandlePointer processes one pointer event.
func (c *Controller) HandlePointer(ev gpucontext.PointerEvent) {
	switch ev.Type {
	case gpucontext.PointerDown:
		c.pointerDown(ev)
	case gpucontext.PointerMove:
		c.pointerMove(ev)
	case gpucontext.PointerUp:
		c.pointerUp(ev)
	case gpucontext.PointerEnter:
		c.inside = true
		c.lastX, c.lastY = ev.X, ev.Y
	case gpucontext.PointerLeave, gpucontext.PointerCancel:
		c.inside = false
		c.host.HideCursor()
		c.reset()
	}
}

func (c *Controller) pointerDown(ev gpucontext.PointerEvent) {
	c.inside = true
	c.lastX, c.lastY = ev.X, ev.Y
	if c.mode != Idle {
		return
	}

	if ev.Button == gpucontext.ButtonMiddle ||
		(ev.Button == gpucontext.ButtonLeft && c.spaceHeld) {
		c.mode = Panning
		c.host.HideCursor()
		logging.Get().Debug("interact: pan start", "x", ev.X, "y", ev.Y)
		return
	}

	if c.zoomReady || zoomModifier(ev.Modifiers) {
		return
	}
	if ev.Button != gpucontext.ButtonLeft && ev.Button != gpucontext.ButtonRight {
		return
	}

	c.mode = Drawing
	c.erasing = ev.Button == gpucontext.ButtonRight
	if c.onDrawing != nil {
		c.onDrawing(true)
	}
	c.stamp(ev)
}

func (c *Controller) pointerMove(ev gpucontext.PointerEvent) {
	c.inside = true
	switch c.mode {
	case Panning:
		dx, dy := ev.X-c.lastX, ev.Y-c.lastY
		c.lastX, c.lastY = ev.X, ev.Y
		if dx != 0 || dy != 0 {
			c.host.PanBy(dx, dy)
		}
	case Drawing:
		c.lastX, c.lastY = ev.X, ev.Y
		if ev.Buttons == gpucontext.ButtonsNone {
			// The release happened outside the surface.
			c.endStroke()
			c.showCursor()
			return
		}
		if !c.zoomReady && !zoomModifier(ev.Modifiers) {
			c.stamp(ev)
		}
		c.showCursor()
	default:
		c.lastX, c.lastY = ev.X, ev.Y
		c.showCursor()
	}
}

func (c *Controller) pointerUp(ev gpucontext.PointerEvent) {
	c.lastX, c.lastY = ev.X, ev.Y
	switch c.mode {
	case Drawing:
		c.endStroke()
	case Panning:
		c.mode = Idle
		logging.Get().Debug("interact: pan end")
		c.showCursor()
	}
}

// HandleScroll processes one wheel event and reports whether it was
// consumed. Unconsumed events should be left to the host (page scroll).
func (c *Controller) HandleScroll(ev gpucontext.ScrollEvent) bool {
	if ev.DeltaY == 0 {
		return false
	}

	if zoomModifier(ev.Modifiers) {
		if !c.wheelZoom {
			return false
		}
		delta := WheelZoomStep
		if ev.DeltaY > 0 {
			delta = -delta
		}
		c.host.ZoomBy(delta, ev.X, ev.Y)
		return true
	}

	if c.onRadius == nil {
		return false
	}
	// Scrolling away from the user grows the brush.
	if ev.DeltaY < 0 {
		c.brush.Radius++
	} else {
		c.brush.Radius = max(1, c.brush.Radius-1)
	}
	c.lastX, c.lastY = ev.X, ev.Y
	if c.mode != Panning {
		c.showCursor()
	}
	c.onRadius(c.brush.Radius)
	return true
}

// HandleKeyPress processes a key press and reports whether it triggered a
// shortcut.
func (c *Controller) HandleKeyPress(key gpucontext.Key, mods gpucontext.Modifiers) bool {
	switch key {
	case gpucontext.KeySpace:
		c.spaceHeld = c.host.Scale() > 1
		return false
	case gpucontext.KeyLeftControl, gpucontext.KeyRightControl,
		gpucontext.KeyLeftSuper, gpucontext.KeyRightSuper:
		c.zoomReady = true
		return false
	}

	if !zoomModifier(mods) {
		return false
	}
	if c.textFocus != nil && c.textFocus() {
		return false
	}
	switch {
	case key == gpucontext.KeyZ && mods.HasShift(), key == gpucontext.KeyY:
		c.host.Redo()
		return true
	case key == gpucontext.KeyZ:
		c.host.Undo()
		return true
	}
	return false
}

// HandleKeyRelease processes a key release.
func (c *Controller) HandleKeyRelease(key gpucontext.Key, _ gpucontext.Modifiers) {
	switch key {
	case gpucontext.KeySpace:
		c.spaceHeld = false
	case gpucontext.KeyLeftControl, gpucontext.KeyRightControl,
		gpucontext.KeyLeftSuper, gpucontext.KeyRightSuper:
		c.zoomReady = false
	}
}

// HandleFocus processes window focus changes. Losing focus drops held keys
// and ends any gesture.
func (c *Controller) HandleFocus(focused bool) {
	if focused {
		return
	}
	c.spaceHeld = false
	c.zoomReady = false
	c.reset()
}

// Cancel forces Idle without committing a stroke in progress. Hosts call it
// when the surface is replaced under an active gesture.
func (c *Controller) Cancel() {
	was := c.mode
	c.mode = Idle
	c.erasing = false
	if was == Drawing && c.onDrawing != nil {
		c.onDrawing(false)
	}
}

// reset forces Idle, committing a stroke in progress.
func (c *Controller) reset() {
	switch c.mode {
	case Drawing:
		c.endStroke()
	case Panning:
		c.mode = Idle
	}
}

func (c *Controller) endStroke() {
	c.mode = Idle
	c.erasing = false
	c.host.StrokeEnded()
	if c.onDrawing != nil {
		c.onDrawing(false)
	}
}

func (c *Controller) stamp(ev gpucontext.PointerEvent) {
	erase := c.erasing || ev.Buttons.HasRight() || ev.Modifiers.HasShift()
	x, y := c.host.ImagePoint(ev.X, ev.Y)
	c.host.Stamp(x, y, c.brush.Radius, erase)
	c.host.StrokeMoved()
}

func (c *Controller) showCursor() {
	x, y := c.host.ImagePoint(c.lastX, c.lastY)
	c.host.ShowCursor(x, y, c.brush.Radius)
}

func zoomModifier(m gpucontext.Modifiers) bool {
	return m.HasControl() || m.HasSuper()
}
