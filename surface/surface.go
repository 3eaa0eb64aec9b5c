package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/masker/history"
)

// Surface holds the base, mask and cursor layers.
type Surface struct {
	base   *Pixmap
	mask   *Pixmap
	cursor *Pixmap

	// cursorDirty is the cursor-layer area touched by the last preview.
	cursorDirty image.Rectangle
}

// New creates a surface with zero size. Nothing can be painted until Resize.
func New() *Surface {
	return &Surface{
		base:   NewPixmap(0, 0),
		mask:   NewPixmap(0, 0),
		cursor: NewPixmap(0, 0),
	}
}

// Size returns the shared layer dimensions.
func (s *Surface) Size() (width, height int) {
	return s.mask.width, s.mask.height
}

// Empty reports whether the surface has no area.
func (s *Surface) Empty() bool {
	return s.mask.Empty()
}

// Base returns the base (image) layer.
func (s *Surface) Base() *Pixmap { return s.base }

// Mask returns the mask layer.
func (s *Surface) Mask() *Pixmap { return s.mask }

// Cursor returns the cursor preview layer.
func (s *Surface) Cursor() *Pixmap { return s.cursor }

// Resize reallocates all three layers to width x height. Every layer is
// cleared, including the mask.
func (s *Surface) Resize(width, height int) {
	s.base = NewPixmap(width, height)
	s.mask = NewPixmap(width, height)
	s.cursor = NewPixmap(width, height)
	s.cursorDirty = image.Rectangle{}
}

// DrawBase replaces the base layer with img, drawn at the origin. img is
// expected to already have the surface size; anything outside is clipped.
func (s *Surface) DrawBase(img image.Image) {
	s.base.Clear(color.NRGBA{})
	if img == nil || s.base.Empty() {
		return
	}
	dst := &image.NRGBA{Pix: s.base.data, Stride: s.base.width * 4, Rect: s.base.Bounds()}
	draw.Draw(dst, dst.Rect, img, img.Bounds().Min, draw.Src)
}

// Stamp paints a filled disc of radius r centered at image coordinates
// (x, y) into the mask layer.
func (s *Surface) Stamp(x, y float64, r int, c color.NRGBA) {
	if r < 1 {
		r = 1
	}
	s.mask.FillCircle(x, y, float64(r), c)
}

// Preview describes the brush indicator drawn on the cursor layer.
type Preview struct {
	X, Y    float64
	Radius  int
	Fill    color.NRGBA
	Outline color.NRGBA
}

// DrawCursor replaces the cursor layer content with the brush indicator.
// The mask layer is never touched.
func (s *Surface) DrawCursor(p Preview) {
	s.ClearCursor()
	if s.cursor.Empty() || p.Radius < 1 {
		return
	}
	r := float64(p.Radius)
	bounds := image.Rect(
		int(math.Floor(p.X-r-2)), int(math.Floor(p.Y-r-2)),
		int(math.Ceil(p.X+r+2)), int(math.Ceil(p.Y+r+2)),
	).Intersect(s.cursor.Bounds())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		py := float64(y) + 0.5
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := float64(x) + 0.5
			fill := filledCircleCoverage(px, py, p.X, p.Y, r) * float64(p.Fill.A)
			ring := ringCoverage(px, py, p.X, p.Y, r, 0.75) * float64(p.Outline.A)
			if fill == 0 && ring == 0 {
				continue
			}
			s.cursor.SetPixel(x, y, over(p.Outline, ring, p.Fill, fill))
		}
	}
	s.cursorDirty = bounds
}

// ClearCursor erases the brush indicator.
func (s *Surface) ClearCursor() {
	r := s.cursorDirty.Intersect(s.cursor.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := s.cursor.data[(y*s.cursor.width+r.Min.X)*4 : (y*s.cursor.width+r.Max.X)*4]
		clear(row)
	}
	s.cursorDirty = image.Rectangle{}
}

// over composites an outline sample over a fill sample; alphas are 0-255.
func over(top color.NRGBA, topA float64, bottom color.NRGBA, bottomA float64) color.NRGBA {
	ta, ba := topA/255, bottomA/255
	outA := ta + ba*(1-ta)
	if outA == 0 {
		return color.NRGBA{}
	}
	mix := func(t, b uint8) uint8 {
		return uint8(math.Round((float64(t)*ta + float64(b)*ba*(1-ta)) / outA))
	}
	return color.NRGBA{
		R: mix(top.R, bottom.R),
		G: mix(top.G, bottom.G),
		B: mix(top.B, bottom.B),
		A: uint8(math.Round(outA * 255)),
	}
}

// Capture implements history.Target. It copies the mask layer.
func (s *Surface) Capture() (history.Snapshot, error) {
	if s.mask.Empty() {
		return history.Snapshot{}, fmt.Errorf("surface: capture: %w", ErrEmpty)
	}
	pix := make([]uint8, len(s.mask.data))
	copy(pix, s.mask.data)
	return history.Snapshot{Width: s.mask.width, Height: s.mask.height, Pix: pix}, nil
}

// Restore implements history.Target. It replaces the mask layer pixels.
func (s *Surface) Restore(snap history.Snapshot) error {
	if snap.Width != s.mask.width || snap.Height != s.mask.height || len(snap.Pix) != len(s.mask.data) {
		return fmt.Errorf("%w: snapshot %dx%d, surface %dx%d",
			history.ErrSizeMismatch, snap.Width, snap.Height, s.mask.width, s.mask.height)
	}
	copy(s.mask.data, snap.Pix)
	return nil
}

// Clear implements history.Target. It wipes the mask layer to transparent.
func (s *Surface) Clear() {
	s.mask.Clear(color.NRGBA{})
}

// LoadMask draws img over the mask layer at the origin. Pixels outside the
// surface are dropped; transparent source pixels keep the existing value.
func (s *Surface) LoadMask(img image.Image) {
	if img == nil || s.mask.Empty() {
		return
	}
	dst := &image.NRGBA{Pix: s.mask.data, Stride: s.mask.width * 4, Rect: s.mask.Bounds()}
	draw.Draw(dst, dst.Rect, img, img.Bounds().Min, draw.Over)
}

// ReplaceColor rewrites every opaque mask pixel matching from to to. With
// invert set, pixels matching to are rewritten to from in the same pass, so
// the two colors swap. Transparent pixels are never touched. It returns the
// number of pixels changed.
func (s *Surface) ReplaceColor(from, to color.NRGBA, invert bool) int {
	from.A, to.A = 255, 255
	if from == to {
		return 0
	}
	n := 0
	d := s.mask.data
	for i := 0; i < len(d); i += 4 {
		if d[i+3] != 255 {
			continue
		}
		switch {
		case d[i] == from.R && d[i+1] == from.G && d[i+2] == from.B:
			d[i], d[i+1], d[i+2] = to.R, to.G, to.B
			n++
		case invert && d[i] == to.R && d[i+1] == to.G && d[i+2] == to.B:
			d[i], d[i+1], d[i+2] = from.R, from.G, from.B
			n++
		}
	}
	return n
}
