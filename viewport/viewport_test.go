package viewport

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/gogpu/masker/internal/schedule"
)

func newSized(opts ...Option) *Viewport {
	v := New(opts...)
	v.SetContent(Size{Width: 800, Height: 600})
	v.SetContainer(Rect{X: 40, Y: 25, Width: 640, Height: 480})
	return v
}

func closePt(a, b Point, eps float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, eps) && scalar.EqualWithinAbs(a.Y, b.Y, eps)
}

func TestComputeBaseScale(t *testing.T) {
	tests := []struct {
		name      string
		container Size
		content   Size
		want      float64
	}{
		{"fits", Size{1000, 1000}, Size{500, 400}, 1},
		{"width bound", Size{400, 1000}, Size{800, 400}, 0.5},
		{"height bound", Size{1000, 300}, Size{800, 600}, 0.5},
		{"empty container", Size{0, 300}, Size{800, 600}, 1},
		{"empty content", Size{300, 300}, Size{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeBaseScale(tt.container, tt.content); got != tt.want {
				t.Errorf("ComputeBaseScale(%v, %v) = %v, want %v", tt.container, tt.content, got, tt.want)
			}
		})
	}
}

func TestImageFromClientCentered(t *testing.T) {
	v := newSized()
	// base scale = min(1, 640/800, 480/600) = 0.8
	if got := v.BaseScale(); got != 0.8 {
		t.Fatalf("BaseScale() = %v, want 0.8", got)
	}
	center := v.ImageFromClient(40+320, 25+240)
	if !closePt(center, Pt(400, 300), tol) {
		t.Errorf("container center maps to %v, want image center (400, 300)", center)
	}
	corner := v.ImageFromClient(40, 25)
	if !closePt(corner, Pt(0, 0), tol) {
		t.Errorf("container corner maps to %v, want (0, 0)", corner)
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	scales := []float64{DefaultMinScale, 1, 1.7, 2.5, DefaultMaxScale}
	pans := []Point{{0, 0}, {35, -20}, {-250, 180}, {500, 400}}
	for _, s := range scales {
		for _, p := range pans {
			v := newSized(WithPanConstraint(false))
			v.SetScale(s)
			v.SetPan(p.X, p.Y)
			for cx := 40.0; cx <= 680; cx += 64 {
				for cy := 25.0; cy <= 505; cy += 48 {
					img := v.ImageFromClient(cx, cy)
					back := v.ClientFromImage(img.X, img.Y)
					if !closePt(back, Pt(cx, cy), 1e-6) {
						t.Fatalf("scale=%v pan=%v: round trip of (%v, %v) = %v", s, p, cx, cy, back)
					}
				}
			}
		}
	}
}

func TestZoomToPointKeepsAnchor(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		pan      Point
		px, py   float64
	}{
		{"zoom in at corner", 1, 3, Point{}, 10, 10},
		{"zoom in off center", 1.2, 2.4, Point{15, -30}, 500, 120},
		{"zoom out", 4, 0.8, Point{-40, 60}, 320, 400},
		{"zoom at center", 1, 2, Point{20, 20}, 320, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newSized(WithPanConstraint(false))
			v.SetScale(tt.from)
			v.SetPan(tt.pan.X, tt.pan.Y)

			cx, cy := v.Container().X+tt.px, v.Container().Y+tt.py
			before := v.ImageFromClient(cx, cy)
			v.ZoomToPoint(tt.to, tt.px, tt.py)
			after := v.ImageFromClient(cx, cy)

			if v.Scale() != tt.to {
				t.Errorf("Scale() = %v, want %v", v.Scale(), tt.to)
			}
			if !closePt(before, after, 1e-6) {
				t.Errorf("anchor moved: before %v, after %v", before, after)
			}
		})
	}
}

func TestScaleClamping(t *testing.T) {
	v := newSized()
	v.SetScale(0.1)
	if v.Scale() != DefaultMinScale {
		t.Errorf("SetScale(0.1) -> %v, want %v", v.Scale(), DefaultMinScale)
	}
	v.SetScale(100)
	if v.Scale() != DefaultMaxScale {
		t.Errorf("SetScale(100) -> %v, want %v", v.Scale(), DefaultMaxScale)
	}

	v.ResetZoom()
	for i := 0; i < 40; i++ {
		v.ZoomIn()
		if v.Scale() > DefaultMaxScale {
			t.Fatalf("ZoomIn exceeded max: %v", v.Scale())
		}
	}
	if v.Scale() != DefaultMaxScale {
		t.Errorf("repeated ZoomIn converged to %v, want %v", v.Scale(), DefaultMaxScale)
	}
	for i := 0; i < 40; i++ {
		v.ZoomOut()
	}
	if v.Scale() != DefaultMinScale {
		t.Errorf("repeated ZoomOut converged to %v, want %v", v.Scale(), DefaultMinScale)
	}
}

func TestCustomBounds(t *testing.T) {
	v := New(WithScaleBounds(5, 2), WithInitialScale(10))
	if v.MinScale() != 2 || v.MaxScale() != 5 {
		t.Fatalf("bounds = [%v, %v], want [2, 5]", v.MinScale(), v.MaxScale())
	}
	if v.Scale() != 5 {
		t.Errorf("initial scale = %v, want clamped 5", v.Scale())
	}
	v.ResetZoom()
	if v.Scale() != 2 {
		t.Errorf("ResetZoom with min 2 -> %v, want 2", v.Scale())
	}
}

func TestResetZoom(t *testing.T) {
	v := newSized(WithPanConstraint(false))
	v.SetScale(3)
	v.SetPan(100, -50)
	v.ResetZoom()
	tr := v.Transform()
	if tr.Scale != 1 || tr.TranslateX != 0 || tr.TranslateY != 0 {
		t.Errorf("after ResetZoom transform = %+v", tr)
	}
	if tr.EffectiveScale() != 0.8 {
		t.Errorf("EffectiveScale() = %v, want 0.8", tr.EffectiveScale())
	}
}

func TestPanConstraint(t *testing.T) {
	v := newSized()
	v.SetPan(10000, -10000)
	if got := v.Pan(); got.X != 600 || got.Y != -450 {
		t.Errorf("constrained pan = %v, want (600, -450)", got)
	}

	free := newSized(WithPanConstraint(false))
	free.SetPan(10000, -10000)
	if got := free.Pan(); got.X != 10000 || got.Y != -10000 {
		t.Errorf("unconstrained pan = %v, want (10000, -10000)", got)
	}
}

func TestPanByTracksPointer(t *testing.T) {
	v := newSized()
	v.SetScale(2)
	before := v.ClientFromImage(100, 100)
	v.PanBy(32, -16)
	after := v.ClientFromImage(100, 100)
	if !closePt(after.Sub(before), Pt(32, -16), 1e-9) {
		t.Errorf("content moved by %v, want (32, -16)", after.Sub(before))
	}
}

func TestDegenerateSizesReturnOrigin(t *testing.T) {
	v := New()
	if got := v.ImageFromClient(123, 456); got != (Point{}) {
		t.Errorf("ImageFromClient with no sizes = %v, want origin", got)
	}
	v.SetContainer(Rect{Width: 300, Height: 200})
	if got := v.ImageFromClient(10, 10); got != (Point{}) {
		t.Errorf("ImageFromClient with no content = %v, want origin", got)
	}
	if got := v.ClientFromImage(10, 10); got != (Point{}) {
		t.Errorf("ClientFromImage with no content = %v, want origin", got)
	}
	v.ZoomToPoint(2, 5, 5)
	if v.Scale() != 2 {
		t.Errorf("ZoomToPoint without content should still set scale, got %v", v.Scale())
	}
}

func TestResizeJitterKeepsPan(t *testing.T) {
	v := newSized(WithPanConstraint(false))
	v.SetPan(30, 40)

	v.SetContainer(Rect{X: 40, Y: 25, Width: 643, Height: 478})
	if got := v.Pan(); got != Pt(30, 40) {
		t.Errorf("pan after jitter = %v, want (30, 40)", got)
	}

	v.SetContainer(Rect{X: 40, Y: 25, Width: 900, Height: 700})
	if got := v.Pan(); got != (Point{}) {
		t.Errorf("pan after real resize = %v, want re-centered", got)
	}
	if got := v.BaseScale(); got != 1 {
		t.Errorf("BaseScale() after growing container = %v, want 1", got)
	}
}

func TestDeferredNotifications(t *testing.T) {
	m := schedule.NewManual()
	var scales []float64
	var pans []Point
	v := newSized(
		WithScheduler(m),
		WithScaleListener(func(s float64) { scales = append(scales, s) }),
		WithPanListener(func(x, y float64) { pans = append(pans, Pt(x, y)) }),
	)

	v.SetScale(2)
	v.SetScale(2.5)
	v.SetPan(10, 10)
	if len(scales) != 0 || len(pans) != 0 {
		t.Fatal("notifications delivered synchronously")
	}
	m.Flush()
	if len(scales) != 1 || scales[0] != 2.5 {
		t.Errorf("scale notifications = %v, want [2.5]", scales)
	}
	if len(pans) != 1 || pans[0] != Pt(10, 10) {
		t.Errorf("pan notifications = %v, want [(10, 10)]", pans)
	}

	v.SetScale(2.5)
	v.SetPan(10, 10)
	m.Flush()
	if len(scales) != 1 || len(pans) != 1 {
		t.Errorf("unchanged values notified again: scales=%v pans=%v", scales, pans)
	}

	v.SetScale(3)
	v.Close()
	m.Flush()
	if len(scales) != 1 {
		t.Errorf("notification delivered after Close: %v", scales)
	}
}
