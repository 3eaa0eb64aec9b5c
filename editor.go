package masker

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/masker/history"
	"github.com/gogpu/masker/interact"
	"github.com/gogpu/masker/internal/imageio"
	"github.com/gogpu/masker/internal/logging"
	"github.com/gogpu/masker/internal/schedule"
	"github.com/gogpu/masker/surface"
	"github.com/gogpu/masker/viewport"
)

// Editor is a mask painting session over one image at a time.
//
// All methods are safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	id   uuid.UUID
	opts options
	cb   Callbacks

	surf     *surface.Surface
	view     *viewport.Viewport
	hist     *history.Log
	ctrl     *interact.Controller
	notifier *schedule.Debouncer

	// gen identifies the current image source; loads started for an older
	// generation are dropped on completion.
	gen        uint64
	cancelLoad context.CancelFunc

	// appliedMask is the initial mask value painted on the current surface.
	appliedMask string

	// outbox holds callbacks queued under mu. unlock moves them to calls,
	// which delivers every callback of the Editor one at a time in the order
	// the state changes happened.
	outbox []func()
	calls  schedule.Serial
	subs   []*interact.Subscription
	closed bool
}

// New creates an Editor with an empty surface. Call SetSource or SetImage to
// load an image and SetContainer to place it on screen.
func New(opts ...Option) *Editor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.brush = o.brush.Normalize()
	if o.loader == nil {
		o.loader = &defaultLoader{}
	}

	e := &Editor{
		id:   uuid.New(),
		opts: o,
		cb:   o.callbacks,
		surf: surface.New(),
	}

	vopts := []viewport.Option{
		viewport.WithScaleBounds(o.minScale, o.maxScale),
		viewport.WithInitialScale(o.initialScale),
		viewport.WithPanConstraint(o.panConstraint),
		viewport.WithScheduler(o.scheduler),
	}
	if fn := o.callbacks.OnScaleChange; fn != nil {
		vopts = append(vopts, viewport.WithScaleListener(func(s float64) {
			e.calls.Run(func() { fn(s) })
		}))
	}
	if fn := o.callbacks.OnPanChange; fn != nil {
		vopts = append(vopts, viewport.WithPanListener(func(x, y float64) {
			e.calls.Run(func() { fn(x, y) })
		}))
	}
	e.view = viewport.New(vopts...)

	hopts := []history.Option{history.WithLimit(o.historyLimit)}
	if o.undoableClear {
		hopts = append(hopts, history.WithUndoableClear())
	}
	e.hist = history.New(e.surf, hopts...)

	copts := []interact.Option{
		interact.WithBrush(o.brush),
		interact.WithWheelZoom(o.wheelZoom),
		interact.WithDrawingListener(e.drawingChanged),
	}
	if o.callbacks.OnCursorSizeChange != nil {
		copts = append(copts, interact.WithRadiusListener(e.radiusChanged))
	}
	if o.textFocus != nil {
		copts = append(copts, interact.WithTextFocus(o.textFocus))
	}
	e.ctrl = interact.New(host{e}, copts...)
	e.notifier = schedule.NewDebouncer(o.scheduler, o.debounce, e.flushDebounced)

	e.logger().Debug("masker: editor created", "debounce", o.debounce, "historyLimit", o.historyLimit)
	return e
}

// ID returns the instance id used in log records.
func (e *Editor) ID() string {
	return e.id.String()
}

// Close cancels pending loads and notifications and detaches every
// subscription made with Attach. The Editor ignores input afterwards.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	e.notifier.Cancel()
	e.view.Close()
	for _, s := range e.subs {
		_ = s.Close()
	}
	e.subs = nil
	e.logger().Debug("masker: editor closed")
	return nil
}

// unlock releases mu and then delivers the queued callbacks. Callbacks are
// handed to the delivery queue before mu is released, so their order matches
// the order of the changes they report. If another goroutine is delivering,
// it runs them instead.
func (e *Editor) unlock() {
	e.calls.Enqueue(e.outbox...)
	e.outbox = nil
	e.mu.Unlock()
	e.calls.Drain()
}

// emit queues fn to run after the lock is released. Callers hold mu.
func (e *Editor) emit(fn func()) {
	e.outbox = append(e.outbox, fn)
}

func (e *Editor) logger() *slog.Logger {
	return logging.Get().With("editor", e.id.String())
}

func (e *Editor) drawingChanged(drawing bool) {
	if fn := e.cb.OnDrawingChange; fn != nil {
		e.emit(func() { fn(drawing) })
	}
}

func (e *Editor) radiusChanged(radius int) {
	if fn := e.cb.OnCursorSizeChange; fn != nil {
		e.emit(func() { fn(radius) })
	}
}

// Size returns the surface size in image pixels.
func (e *Editor) Size() (width, height int) {
	e.mu.Lock()
	defer e.unlock()
	return e.surf.Size()
}

// Mode returns the current gesture.
func (e *Editor) Mode() interact.Mode {
	e.mu.Lock()
	defer e.unlock()
	return e.ctrl.Mode()
}

// Cursor returns the cursor cue the host should display.
func (e *Editor) Cursor() interact.Cursor {
	e.mu.Lock()
	defer e.unlock()
	return e.ctrl.Cursor()
}

// Brush returns the current brush.
func (e *Editor) Brush() interact.Brush {
	e.mu.Lock()
	defer e.unlock()
	return e.ctrl.Brush()
}

// SetBrush replaces the brush without recoloring the mask. Out-of-range
// values are clamped.
func (e *Editor) SetBrush(b interact.Brush) {
	e.mu.Lock()
	defer e.unlock()
	e.ctrl.SetBrush(b)
}

// SetBrushRadius sets the brush radius; values below 1 become 1.
func (e *Editor) SetBrushRadius(r int) {
	e.mu.Lock()
	defer e.unlock()
	b := e.ctrl.Brush()
	b.Radius = r
	e.ctrl.SetBrush(b)
}

// Transform returns the viewport state.
func (e *Editor) Transform() viewport.Transform {
	e.mu.Lock()
	defer e.unlock()
	return e.view.Transform()
}

// ImageFromClient maps a client position to image coordinates.
func (e *Editor) ImageFromClient(x, y float64) (float64, float64) {
	e.mu.Lock()
	defer e.unlock()
	p := e.view.ImageFromClient(x, y)
	return p.X, p.Y
}

// SetContainer records where the surface is displayed, in client
// coordinates. It is the resize observation entry point.
func (e *Editor) SetContainer(x, y, width, height float64) {
	e.mu.Lock()
	defer e.unlock()
	e.view.SetContainer(viewport.Rect{X: x, Y: y, Width: width, Height: height})
	e.logger().Debug("masker: container", "x", x, "y", y, "width", width, "height", height,
		"baseScale", e.view.BaseScale())
}

// SetScale sets the zoom, clamped to the configured bounds.
func (e *Editor) SetScale(s float64) {
	e.mu.Lock()
	defer e.unlock()
	e.view.SetScale(s)
}

// ZoomIn increases the zoom by one step.
func (e *Editor) ZoomIn() {
	e.mu.Lock()
	defer e.unlock()
	e.view.ZoomIn()
}

// ZoomOut decreases the zoom by one step.
func (e *Editor) ZoomOut() {
	e.mu.Lock()
	defer e.unlock()
	e.view.ZoomOut()
}

// ResetZoom restores scale 1 and a centered image.
func (e *Editor) ResetZoom() {
	e.mu.Lock()
	defer e.unlock()
	e.view.ResetZoom()
}

// SetPan sets the pan offset in image units.
func (e *Editor) SetPan(x, y float64) {
	e.mu.Lock()
	defer e.unlock()
	e.view.SetPan(x, y)
}

// Undo steps the mask back one state and reports whether it moved.
// OnUndoRequest and OnMaskChange fire either way.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return false
	}
	return e.undoLocked()
}

// Redo steps the mask forward one state and reports whether it moved.
// OnRedoRequest and OnMaskChange fire either way.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return false
	}
	return e.redoLocked()
}

func (e *Editor) undoLocked() bool {
	moved := e.hist.Undo()
	if fn := e.cb.OnUndoRequest; fn != nil {
		e.emit(fn)
	}
	e.notifyMaskLocked()
	return moved
}

func (e *Editor) redoLocked() bool {
	moved := e.hist.Redo()
	if fn := e.cb.OnRedoRequest; fn != nil {
		e.emit(fn)
	}
	e.notifyMaskLocked()
	return moved
}

// Clear wipes the mask. By default the history is reset as well; see
// WithUndoableClear.
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	e.hist.Clear()
	e.notifyMaskLocked()
}

// HistoryLen returns the number of undo states held.
func (e *Editor) HistoryLen() int {
	e.mu.Lock()
	defer e.unlock()
	return e.hist.Len()
}

// HistoryCursor returns the index of the displayed state; -1 means the
// mask is in its cleared state.
func (e *Editor) HistoryCursor() int {
	e.mu.Lock()
	defer e.unlock()
	return e.hist.Cursor()
}

// CanUndo reports whether Undo would move.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.hist.CanUndo()
}

// CanRedo reports whether Redo would move.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.hist.CanRedo()
}

// Mask returns a copy of the mask layer. It is empty before an image loads.
func (e *Editor) Mask() *image.NRGBA {
	e.mu.Lock()
	defer e.unlock()
	return e.surf.Mask().ToImage()
}

// MaskDataURI returns the mask layer as a PNG data URI.
func (e *Editor) MaskDataURI() (string, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.surf.Empty() {
		return "", ErrEmptySurface
	}
	return e.encodeMaskLocked()
}

func (e *Editor) encodeMaskLocked() (string, error) {
	uri, err := imageio.EncodeDataURI(e.surf.Mask().ToImage())
	if err != nil {
		return "", fmt.Errorf("masker: encode mask: %w", err)
	}
	return uri, nil
}
