package imageio

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// FitSize returns the largest size with the aspect ratio of width x height
// that fits within maxWidth x maxHeight. A zero or negative maximum means
// that dimension is unbounded. Images are never enlarged.
func FitSize(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	ratio := 1.0
	if maxWidth > 0 && width > maxWidth {
		ratio = math.Min(ratio, float64(maxWidth)/float64(width))
	}
	if maxHeight > 0 && height > maxHeight {
		ratio = math.Min(ratio, float64(maxHeight)/float64(height))
	}
	if ratio == 1 {
		return width, height
	}
	w := max(1, int(math.Round(float64(width)*ratio)))
	h := max(1, int(math.Round(float64(height)*ratio)))
	return w, h
}

// Resize returns img scaled to width x height with Catmull-Rom filtering.
// When the size already matches, img is copied without resampling.
func Resize(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		xdraw.Draw(dst, dst.Rect, img, b.Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, b, xdraw.Src, nil)
	return dst
}
