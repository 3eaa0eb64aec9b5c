package blend

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func colorsClose(a, b color.NRGBA, tol int) bool {
	return absDiff(a.R, b.R) <= tol && absDiff(a.G, b.G) <= tol &&
		absDiff(a.B, b.B) <= tol && absDiff(a.A, b.A) <= tol
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Errorf("ParseMode(%q): %v", m.String(), err)
			continue
		}
		if got != m {
			t.Errorf("ParseMode(%q) = %v, want %v", m.String(), got, m)
		}
	}

	aliases := map[string]Mode{
		"":            Normal,
		"Color-Dodge": ColorDodge,
		"soft_light":  SoftLight,
		"HARDLIGHT":   HardLight,
		" luminosity": Luminosity,
	}
	for in, want := range aliases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseMode("dissolve"); err == nil {
		t.Error("ParseMode(dissolve) should fail")
	}
}

func TestModeCount(t *testing.T) {
	if got := len(Modes()); got != 16 {
		t.Errorf("len(Modes()) = %d, want 16", got)
	}
	if Mode(99).Valid() {
		t.Error("Mode(99) should be invalid")
	}
	if got := Mode(99).String(); got != "Mode(99)" {
		t.Errorf("Mode(99).String() = %q", got)
	}
}

func TestModeText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("overlay")); err != nil {
		t.Fatal(err)
	}
	if m != Overlay {
		t.Errorf("UnmarshalText = %v, want overlay", m)
	}
	b, err := m.MarshalText()
	if err != nil || string(b) != "overlay" {
		t.Errorf("MarshalText = %q, %v", b, err)
	}
}

func TestPixelOpaque(t *testing.T) {
	src := color.NRGBA{R: 255, G: 128, B: 0, A: 255}
	dst := color.NRGBA{R: 128, G: 128, B: 128, A: 255}

	tests := []struct {
		mode Mode
		want color.NRGBA
	}{
		{Normal, src},
		{Multiply, color.NRGBA{R: 128, G: 64, B: 0, A: 255}},
		{Screen, color.NRGBA{R: 255, G: 192, B: 128, A: 255}},
		{Darken, color.NRGBA{R: 128, G: 128, B: 0, A: 255}},
		{Lighten, color.NRGBA{R: 255, G: 128, B: 128, A: 255}},
		{Difference, color.NRGBA{R: 127, G: 0, B: 128, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			got := Pixel(src, dst, tt.mode)
			if !colorsClose(got, tt.want, 1) {
				t.Errorf("Pixel(%v) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestPixelTransparent(t *testing.T) {
	dst := color.NRGBA{R: 10, G: 20, B: 30, A: 200}
	for _, m := range Modes() {
		if got := Pixel(color.NRGBA{R: 255, A: 0}, dst, m); got != dst {
			t.Errorf("%v: transparent source changed backdrop: %v", m, got)
		}
	}

	// Over an empty backdrop every mode reduces to the source.
	src := color.NRGBA{R: 200, G: 100, B: 50, A: 128}
	for _, m := range Modes() {
		if got := Pixel(src, color.NRGBA{}, m); !colorsClose(got, src, 1) {
			t.Errorf("%v: over transparent = %v, want %v", m, got, src)
		}
	}
}

func TestPixelHalfOpacityNormal(t *testing.T) {
	src := color.NRGBA{R: 255, G: 255, B: 255, A: 128}
	dst := color.NRGBA{A: 255}
	got := Pixel(src, dst, Normal)
	want := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	if !colorsClose(got, want, 1) {
		t.Errorf("Pixel = %v, want %v", got, want)
	}
}

func TestNonSeparablePreserveLuminance(t *testing.T) {
	cb := rgb{0.2, 0.5, 0.8}
	cs := rgb{0.9, 0.1, 0.3}

	tests := []struct {
		mode Mode
		want float64
	}{
		{Hue, lum(cb)},
		{Saturation, lum(cb)},
		{Color, lum(cb)},
		{Luminosity, lum(cs)},
	}
	for _, tt := range tests {
		got := lum(nonSeparable(tt.mode, cb, cs))
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%v: lum = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestSetSat(t *testing.T) {
	c := setSat(rgb{0.2, 0.6, 0.4}, 0.5)
	if c.r != 0 || c.g != 0.5 || math.Abs(c.b-0.25) > 1e-12 {
		t.Errorf("setSat = %+v, want {0 0.5 0.25}", c)
	}
	gray := setSat(rgb{0.4, 0.4, 0.4}, 0.7)
	if gray != (rgb{}) {
		t.Errorf("setSat(gray) = %+v, want zero", gray)
	}
}

func TestSeparableEdges(t *testing.T) {
	if got := colorDodge(0, 1); got != 0 {
		t.Errorf("colorDodge(0,1) = %v, want 0", got)
	}
	if got := colorDodge(0.5, 1); got != 1 {
		t.Errorf("colorDodge(0.5,1) = %v, want 1", got)
	}
	if got := colorBurn(1, 0); got != 1 {
		t.Errorf("colorBurn(1,0) = %v, want 1", got)
	}
	if got := colorBurn(0.5, 0); got != 0 {
		t.Errorf("colorBurn(0.5,0) = %v, want 0", got)
	}
	if got := softLight(0.5, 0.5); got != 0.5 {
		t.Errorf("softLight(0.5,0.5) = %v, want 0.5", got)
	}
	if got := overlay(0.25, 1); got != 0.5 {
		t.Errorf("overlay(0.25,1) = %v, want 0.5", got)
	}
}

func TestDraw(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	dst.SetNRGBA(0, 0, color.NRGBA{A: 255})
	dst.SetNRGBA(1, 0, color.NRGBA{A: 255})

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	Draw(dst, src, Normal, 0.4)

	want := color.NRGBA{R: 102, G: 102, B: 102, A: 255}
	if got := dst.NRGBAAt(0, 0); !colorsClose(got, want, 1) {
		t.Errorf("painted pixel = %v, want %v", got, want)
	}
	if got := dst.NRGBAAt(1, 0); got != (color.NRGBA{A: 255}) {
		t.Errorf("unpainted pixel changed: %v", got)
	}

	before := dst.NRGBAAt(0, 0)
	Draw(dst, src, Normal, 0)
	if got := dst.NRGBAAt(0, 0); got != before {
		t.Errorf("zero opacity changed pixel: %v", got)
	}
}

func TestDrawLarge(t *testing.T) {
	const w, h = 400, 300
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			dst.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
			if (x+y)%2 == 0 {
				src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			}
		}
	}

	Draw(dst, src, Multiply, 1)

	for y := range h {
		for x := range w {
			want := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
			if (x+y)%2 == 0 {
				want = color.NRGBA{R: 200, A: 255}
			}
			if got := dst.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}
