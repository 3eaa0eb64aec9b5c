// Package viewport converts between client (pointer) coordinates and image
// coordinates under the editor's zoom and pan.
//
// # Transform model
//
// The content box (the image, contentWidth x contentHeight) is drawn centered
// in its container with the CSS-like transform
//
//	translate(centerOffset) scale(effectiveScale) translate(userTranslate)
//
// so a point p in image space lands at
//
//	client = origin + containerSize/2 + effectiveScale*(p - contentSize/2 + t)
//
// where t is the user translate in image units and effectiveScale is
// BaseScale*Scale. The user translate is applied before scaling, which is why
// a pan delta in screen pixels is divided by the effective scale.
//
// A Viewport is not safe for concurrent use; the editor serializes access.
package viewport

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/gogpu/masker/internal/logging"
	"github.com/gogpu/masker/internal/schedule"
)

// Scale bounds and steps.
const (
	DefaultMinScale = 0.8
	DefaultMaxScale = 4.0
	ZoomStep        = 0.2

	// panLimit is the fraction of the content size the user translate may
	// reach in either direction when the pan constraint is on.
	panLimit = 0.75

	// resizeEpsilon is the size change, in units, below which a resize is
	// treated as layout jitter and does not re-center the content.
	resizeEpsilon = 5.0
)

// Size is a width and height in device-independent pixels.
type Size struct {
	Width, Height float64
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is the container box in client coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Transform is a snapshot of the viewport state.
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
	BaseScale  float64
}

// EffectiveScale returns BaseScale*Scale, the device pixels per image pixel.
func (t Transform) EffectiveScale() float64 {
	return t.BaseScale * t.Scale
}

// ComputeBaseScale returns the factor that fits content into container
// without ever enlarging it: min(1, cw/w, ch/h). It returns 1 when either
// size is empty.
func ComputeBaseScale(container, content Size) float64 {
	if container.Empty() || content.Empty() {
		return 1
	}
	return math.Min(1, math.Min(container.Width/content.Width, container.Height/content.Height))
}

// Option configures a Viewport.
type Option func(*options)

type options struct {
	minScale     float64
	maxScale     float64
	initialScale float64
	constrainPan bool
	sched        schedule.Scheduler
	onScale      func(float64)
	onPan        func(x, y float64)
}

func defaultOptions() options {
	return options{
		minScale:     DefaultMinScale,
		maxScale:     DefaultMaxScale,
		initialScale: 1,
		constrainPan: true,
		sched:        schedule.System,
	}
}

// WithScaleBounds sets the user zoom range. Inverted bounds are swapped.
func WithScaleBounds(minScale, maxScale float64) Option {
	return func(o *options) {
		if minScale > maxScale {
			minScale, maxScale = maxScale, minScale
		}
		if minScale > 0 {
			o.minScale = minScale
		}
		if maxScale > 0 {
			o.maxScale = maxScale
		}
	}
}

// WithInitialScale sets the starting user scale.
func WithInitialScale(s float64) Option {
	return func(o *options) {
		o.initialScale = s
	}
}

// WithPanConstraint enables or disables the 75% pan limit.
func WithPanConstraint(enabled bool) Option {
	return func(o *options) {
		o.constrainPan = enabled
	}
}

// WithScheduler sets the scheduler used to defer change notifications.
func WithScheduler(s schedule.Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.sched = s
		}
	}
}

// WithScaleListener registers the deferred scale-change callback.
func WithScaleListener(fn func(scale float64)) Option {
	return func(o *options) {
		o.onScale = fn
	}
}

// WithPanListener registers the deferred pan-change callback.
func WithPanListener(fn func(x, y float64)) Option {
	return func(o *options) {
		o.onPan = fn
	}
}

// Viewport owns the zoom and pan state.
type Viewport struct {
	minScale     float64
	maxScale     float64
	constrainPan bool

	scale     float64
	translate Point
	baseScale float64

	container Rect
	content   Size

	lastScale float64
	lastPan   Point
	scaleSlot *schedule.Slot[float64]
	panSlot   *schedule.Slot[Point]
}

// New creates a viewport with no container and no content.
func New(opts ...Option) *Viewport {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v := &Viewport{
		minScale:     o.minScale,
		maxScale:     o.maxScale,
		constrainPan: o.constrainPan,
		baseScale:    1,
	}
	v.scale = v.clampScale(o.initialScale)
	v.lastScale = v.scale

	if o.onScale != nil {
		fn := o.onScale
		v.scaleSlot = schedule.NewSlot(o.sched, fn)
	}
	if o.onPan != nil {
		fn := o.onPan
		v.panSlot = schedule.NewSlot(o.sched, func(p Point) { fn(p.X, p.Y) })
	}
	return v
}

// Transform returns the current state.
func (v *Viewport) Transform() Transform {
	return Transform{
		Scale:      v.scale,
		TranslateX: v.translate.X,
		TranslateY: v.translate.Y,
		BaseScale:  v.baseScale,
	}
}

// Scale returns the user zoom factor.
func (v *Viewport) Scale() float64 { return v.scale }

// BaseScale returns the fit-to-container factor.
func (v *Viewport) BaseScale() float64 { return v.baseScale }

// EffectiveScale returns BaseScale*Scale.
func (v *Viewport) EffectiveScale() float64 { return v.baseScale * v.scale }

// Pan returns the user translate in image units.
func (v *Viewport) Pan() Point { return v.translate }

// MinScale returns the lower zoom bound.
func (v *Viewport) MinScale() float64 { return v.minScale }

// MaxScale returns the upper zoom bound.
func (v *Viewport) MaxScale() float64 { return v.maxScale }

// Container returns the container box.
func (v *Viewport) Container() Rect { return v.container }

// Content returns the content size.
func (v *Viewport) Content() Size { return v.content }

// Matrix returns the image-to-client transform.
func (v *Viewport) Matrix() Matrix {
	es := v.EffectiveScale()
	return Translate(v.container.X+v.container.Width/2, v.container.Y+v.container.Height/2).
		Mul(Scale(es, es)).
		Mul(Translate(v.translate.X, v.translate.Y)).
		Mul(Translate(-v.content.Width/2, -v.content.Height/2))
}

func (v *Viewport) degenerate() bool {
	return v.container.Size().Empty() || v.content.Empty()
}

// ImageFromClient maps a client position to image coordinates. It is the
// exact inverse of Matrix and returns the origin while either the container
// or the content has no area.
func (v *Viewport) ImageFromClient(cx, cy float64) Point {
	if v.degenerate() {
		return Point{}
	}
	inv, ok := v.Matrix().Inverse()
	if !ok {
		return Point{}
	}
	return inv.Apply(Pt(cx, cy))
}

// ClientFromImage maps image coordinates to a client position.
func (v *Viewport) ClientFromImage(x, y float64) Point {
	if v.degenerate() {
		return Point{}
	}
	return v.Matrix().Apply(Pt(x, y))
}

// ContainerPoint converts a client position to container-relative
// coordinates.
func (v *Viewport) ContainerPoint(cx, cy float64) Point {
	return Pt(cx-v.container.X, cy-v.container.Y)
}

// SetScale sets the user scale, keeping the container center fixed.
// Requests outside the bounds saturate.
func (v *Viewport) SetScale(s float64) {
	v.scale = v.clampScale(s)
	v.translate = v.constrain(v.translate)
	v.notify()
}

// ZoomIn increases the scale by ZoomStep.
func (v *Viewport) ZoomIn() {
	v.SetScale(v.scale + ZoomStep)
}

// ZoomOut decreases the scale by ZoomStep.
func (v *Viewport) ZoomOut() {
	v.SetScale(v.scale - ZoomStep)
}

// ResetZoom restores scale 1 and a centered image.
func (v *Viewport) ResetZoom() {
	v.scale = v.clampScale(1)
	v.translate = Point{}
	v.notify()
}

// ZoomToPoint changes the scale while keeping the image point under the
// container-relative position (px, py) fixed on screen.
//
// With c the container center and q the image point relative to the content
// center, the point under p satisfies p = c + es*(q + t). Holding q fixed
// across es -> es' gives t' = (p-c)/es' - q.
func (v *Viewport) ZoomToPoint(newScale, px, py float64) {
	newScale = v.clampScale(newScale)
	es0 := v.EffectiveScale()
	if v.degenerate() || es0 == 0 {
		v.scale = newScale
		v.notify()
		return
	}

	c := Pt(v.container.Width/2, v.container.Height/2)
	rel := Pt(px, py).Sub(c)
	q := rel.Div(es0).Sub(v.translate)

	v.scale = newScale
	es1 := v.EffectiveScale()
	v.translate = v.constrain(rel.Div(es1).Sub(q))
	logging.Get().Debug("zoom to point", "scale", v.scale, "tx", v.translate.X, "ty", v.translate.Y)
	v.notify()
}

// SetPan sets the user translate in image units, clamped to the pan limit
// when the constraint is enabled.
func (v *Viewport) SetPan(x, y float64) {
	v.translate = v.constrain(Pt(x, y))
	v.notify()
}

// PanBy moves the content by a screen-space delta. The delta is divided by
// the effective scale so the content tracks the pointer at any zoom.
func (v *Viewport) PanBy(dx, dy float64) {
	es := v.EffectiveScale()
	if es == 0 {
		return
	}
	v.SetPan(v.translate.X+dx/es, v.translate.Y+dy/es)
}

// SetContainer records the container box. The base scale is recomputed on
// every call; the content is re-centered only when the size moved by more
// than a few units, so sub-pixel layout jitter cannot feed back into pan.
func (v *Viewport) SetContainer(r Rect) {
	old := v.container
	v.container = r
	v.baseScale = ComputeBaseScale(r.Size(), v.content)
	if sizeChanged(old.Size(), r.Size()) {
		v.translate = Point{}
		logging.Get().Debug("container resized", "width", r.Width, "height", r.Height, "baseScale", v.baseScale)
		v.notify()
	}
}

// SetContent records the content (image) size, with the same re-centering
// rule as SetContainer.
func (v *Viewport) SetContent(s Size) {
	old := v.content
	v.content = s
	v.baseScale = ComputeBaseScale(v.container.Size(), s)
	if sizeChanged(old, s) {
		v.translate = Point{}
		logging.Get().Debug("content resized", "width", s.Width, "height", s.Height, "baseScale", v.baseScale)
		v.notify()
	}
}

// Close drops pending change notifications.
func (v *Viewport) Close() {
	if v.scaleSlot != nil {
		v.scaleSlot.Cancel()
	}
	if v.panSlot != nil {
		v.panSlot.Cancel()
	}
}

func sizeChanged(old, s Size) bool {
	if old.Empty() != s.Empty() {
		return true
	}
	return !scalar.EqualWithinAbs(old.Width, s.Width, resizeEpsilon) ||
		!scalar.EqualWithinAbs(old.Height, s.Height, resizeEpsilon)
}

func (v *Viewport) clampScale(s float64) float64 {
	if math.IsNaN(s) {
		return v.scale
	}
	return math.Max(v.minScale, math.Min(v.maxScale, s))
}

func (v *Viewport) constrain(t Point) Point {
	if !v.constrainPan || v.content.Empty() {
		return t
	}
	limX := v.content.Width * panLimit
	limY := v.content.Height * panLimit
	return Point{
		X: math.Max(-limX, math.Min(limX, t.X)),
		Y: math.Max(-limY, math.Min(limY, t.Y)),
	}
}

// notify posts scale and pan changes that differ from the last posted
// values. Delivery happens on the next scheduler tick.
func (v *Viewport) notify() {
	if v.scale != v.lastScale {
		v.lastScale = v.scale
		if v.scaleSlot != nil {
			v.scaleSlot.Post(v.scale)
		}
	}
	if v.translate != v.lastPan {
		v.lastPan = v.translate
		if v.panSlot != nil {
			v.panSlot.Post(v.translate)
		}
	}
}
