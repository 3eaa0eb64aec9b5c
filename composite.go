package masker

import (
	"image"
	"image/draw"

	"github.com/gogpu/masker/internal/blend"
)

// Composite renders the base image, the mask at the brush opacity and blend
// mode, and the cursor preview into one image.
func (e *Editor) Composite() (*image.RGBA, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.surf.Empty() {
		return nil, ErrEmptySurface
	}

	b := e.ctrl.Brush()
	out := e.surf.Base().ToImage()
	blend.Draw(out, e.surf.Mask().ToImage(), b.Mode, b.Opacity)
	blend.Draw(out, e.surf.Cursor().ToImage(), blend.Normal, 1)

	rgba := image.NewRGBA(out.Rect)
	draw.Draw(rgba, rgba.Rect, out, image.Point{}, draw.Src)
	return rgba, nil
}
