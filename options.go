package masker

import (
	"image/color"
	"time"

	"github.com/gogpu/masker/history"
	"github.com/gogpu/masker/interact"
	"github.com/gogpu/masker/internal/blend"
	"github.com/gogpu/masker/internal/schedule"
	"github.com/gogpu/masker/viewport"
)

// Defaults applied by New.
const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultHistoryLimit = history.DefaultLimit
)

// Scheduler runs deferred and debounced work. The default uses
// time.AfterFunc.
type Scheduler = schedule.Scheduler

// Timer is a pending Scheduler task.
type Timer = schedule.Timer

// Option configures an Editor during creation.
//
// Example:
//
//	ed := masker.New(
//	    masker.WithBrushRadius(20),
//	    masker.WithScaleBounds(0.5, 8),
//	)
type Option func(*options)

// options holds optional configuration for Editor creation.
type options struct {
	brush         interact.Brush
	invertMask    bool
	minScale      float64
	maxScale      float64
	initialScale  float64
	wheelZoom     bool
	panConstraint bool
	initialMask   string
	debounce      time.Duration
	historyLimit  int
	undoableClear bool
	maxWidth      int
	maxHeight     int
	callbacks     Callbacks
	scheduler     Scheduler
	loader        Loader
	textFocus     func() bool
}

// defaultOptions returns the default editor options.
func defaultOptions() options {
	return options{
		brush:         interact.DefaultBrush(),
		minScale:      viewport.DefaultMinScale,
		maxScale:      viewport.DefaultMaxScale,
		initialScale:  1,
		wheelZoom:     true,
		panConstraint: true,
		debounce:      DefaultDebounce,
		historyLimit:  DefaultHistoryLimit,
		scheduler:     schedule.System,
	}
}

// WithBrushRadius sets the initial brush radius. Values below 1 are raised
// to 1.
func WithBrushRadius(r int) Option {
	return func(o *options) {
		o.brush.Radius = r
	}
}

// WithBrushColor sets the color painted into the mask.
func WithBrushColor(c color.NRGBA) Option {
	return func(o *options) {
		o.brush.Color = c
	}
}

// WithOpacity sets the opacity of the mask layer in Composite, clamped to
// [0, 1].
func WithOpacity(v float64) Option {
	return func(o *options) {
		o.brush.Opacity = v
	}
}

// WithBlendMode sets how Composite mixes the mask with the base image.
func WithBlendMode(m blend.Mode) Option {
	return func(o *options) {
		o.brush.Mode = m
	}
}

// WithInvertMask makes brush color changes swap the previous and new colors
// in the mask instead of only recoloring the previous one.
func WithInvertMask(invert bool) Option {
	return func(o *options) {
		o.invertMask = invert
	}
}

// WithScaleBounds sets the zoom range. See viewport.WithScaleBounds.
func WithScaleBounds(minScale, maxScale float64) Option {
	return func(o *options) {
		o.minScale, o.maxScale = minScale, maxScale
	}
}

// WithInitialScale sets the starting zoom.
func WithInitialScale(s float64) Option {
	return func(o *options) {
		o.initialScale = s
	}
}

// WithWheelZoom enables or disables ctrl/cmd + wheel zoom.
func WithWheelZoom(enabled bool) Option {
	return func(o *options) {
		o.wheelZoom = enabled
	}
}

// WithPanConstraint enables or disables the pan limit.
func WithPanConstraint(enabled bool) Option {
	return func(o *options) {
		o.panConstraint = enabled
	}
}

// WithInitialMask sets an encoded mask (data URI or file path) painted once
// the first image is loaded.
func WithInitialMask(encoded string) Option {
	return func(o *options) {
		o.initialMask = encoded
	}
}

// WithDebounce sets the mask notification window used while drawing.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithHistoryLimit sets the number of undo states kept.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

// WithUndoableClear records Clear as an undoable step instead of resetting
// the history.
func WithUndoableClear() Option {
	return func(o *options) {
		o.undoableClear = true
	}
}

// WithMaxSize bounds the surface size; larger images are downscaled
// preserving their aspect ratio. Zero leaves a dimension unbounded.
func WithMaxSize(width, height int) Option {
	return func(o *options) {
		o.maxWidth, o.maxHeight = max(0, width), max(0, height)
	}
}

// WithCallbacks registers the change callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(o *options) {
		o.callbacks = cb
	}
}

// WithScheduler replaces the timer source. Tests use a manual clock.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithLoader replaces the image loader used by SetSource.
func WithLoader(l Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithTextFocus registers a probe reporting whether keyboard focus is inside
// a text input; undo and redo shortcuts are ignored while it returns true.
func WithTextFocus(fn func() bool) Option {
	return func(o *options) {
		o.textFocus = fn
	}
}

// Callbacks are the notifications an Editor emits. Every field is optional.
// Callbacks never run while the Editor lock is held and never run
// concurrently with each other; they arrive in the order of the changes they
// report. A callback may call back into the Editor; callbacks caused by that
// call run after it returns.
type Callbacks struct {
	// OnDrawingChange fires when a stroke starts (true) and ends (false).
	OnDrawingChange func(drawing bool)

	// OnMaskChange receives the mask as a PNG data URI. It is debounced while
	// drawing and immediate on stroke end, undo, redo, clear and initial mask.
	OnMaskChange func(dataURI string)

	// OnUndoRequest and OnRedoRequest fire alongside every undo and redo.
	OnUndoRequest func()
	OnRedoRequest func()

	// OnScaleChange and OnPanChange fire on the next scheduler tick after
	// the viewport changes, carrying the latest value.
	OnScaleChange func(scale float64)
	OnPanChange   func(x, y float64)

	// OnCursorSizeChange fires on wheel-driven brush resizing. Plain wheel
	// events are only consumed when it is set.
	OnCursorSizeChange func(radius int)
}
