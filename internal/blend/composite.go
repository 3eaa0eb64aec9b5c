package blend

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/masker/internal/parallel"
)

// Pixel composites src over dst using mode and returns the
// non-premultiplied result.
//
// The source is first mixed with the backdrop,
// Cs' = (1 - ab)*Cs + ab*B(Cb, Cs), then composited with source-over.
func Pixel(src, dst color.NRGBA, mode Mode) color.NRGBA {
	if src.A == 0 {
		return dst
	}
	as := float64(src.A) / 255
	ab := float64(dst.A) / 255

	cs := rgb{float64(src.R) / 255, float64(src.G) / 255, float64(src.B) / 255}
	cb := rgb{float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255}

	var mixed rgb
	if mode.IsSeparable() {
		f := separableFunc(mode)
		mixed = rgb{f(cb.r, cs.r), f(cb.g, cs.g), f(cb.b, cs.b)}
	} else {
		mixed = nonSeparable(mode, cb, cs)
	}
	cs = rgb{
		(1-ab)*cs.r + ab*mixed.r,
		(1-ab)*cs.g + ab*mixed.g,
		(1-ab)*cs.b + ab*mixed.b,
	}

	ao := as + ab*(1-as)
	if ao == 0 {
		return color.NRGBA{}
	}
	out := func(s, b float64) uint8 {
		return to8((as*s + ab*b*(1-as)) / ao)
	}
	return color.NRGBA{
		R: out(cs.r, cb.r),
		G: out(cs.g, cb.g),
		B: out(cs.b, cb.b),
		A: to8(ao),
	}
}

// Draw composites src onto dst in place, aligning src.Bounds().Min with
// dst.Bounds().Min. Each source alpha is multiplied by opacity, which is
// clamped to [0, 1]. Large images are processed in parallel row bands.
func Draw(dst, src *image.NRGBA, mode Mode, opacity float64) {
	opacity = min(1, max(0, opacity))
	if opacity == 0 {
		return
	}
	w := min(dst.Rect.Dx(), src.Rect.Dx())
	h := min(dst.Rect.Dy(), src.Rect.Dy())
	parallel.Rows(parallel.Shared(), w, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			si := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
			di := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
			for x := 0; x < w; x++ {
				s := src.Pix[si : si+4 : si+4]
				if s[3] != 0 {
					d := dst.Pix[di : di+4 : di+4]
					sc := color.NRGBA{R: s[0], G: s[1], B: s[2], A: to8(float64(s[3]) / 255 * opacity)}
					r := Pixel(sc, color.NRGBA{R: d[0], G: d[1], B: d[2], A: d[3]}, mode)
					d[0], d[1], d[2], d[3] = r.R, r.G, r.B, r.A
				}
				si += 4
				di += 4
			}
		}
	})
}

func to8(v float64) uint8 {
	return uint8(math.Round(min(1, max(0, v)) * 255))
}
