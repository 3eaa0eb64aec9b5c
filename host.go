package masker

import (
	"image/color"

	"github.com/gogpu/masker/interact"
	"github.com/gogpu/masker/surface"
)

// eraseColor is painted by the erase gesture.
var eraseColor = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// host adapts an Editor to interact.Host. Its methods run with e.mu held.
type host struct {
	e *Editor
}

var _ interact.Host = host{}

func (h host) ImagePoint(x, y float64) (float64, float64) {
	p := h.e.view.ImageFromClient(x, y)
	return p.X, p.Y
}

func (h host) Scale() float64 {
	return h.e.view.Scale()
}

func (h host) Stamp(x, y float64, radius int, erase bool) {
	c := h.e.ctrl.Brush().Color
	c.A = 0xFF
	if erase {
		c = eraseColor
	}
	h.e.surf.Stamp(x, y, radius, c)
}

func (h host) ShowCursor(x, y float64, radius int) {
	c := h.e.ctrl.Brush().Color
	fill, outline := c, c
	fill.A, outline.A = 0x40, 0xE0
	h.e.surf.DrawCursor(surface.Preview{X: x, Y: y, Radius: radius, Fill: fill, Outline: outline})
}

func (h host) HideCursor() {
	h.e.surf.ClearCursor()
}

func (h host) PanBy(dx, dy float64) {
	h.e.view.PanBy(dx, dy)
}

func (h host) ZoomBy(delta, x, y float64) {
	v := h.e.view
	p := v.ContainerPoint(x, y)
	v.ZoomToPoint(v.Scale()+delta, p.X, p.Y)
}

func (h host) StrokeMoved() {
	if h.e.cb.OnMaskChange != nil {
		h.e.notifier.Trigger()
	}
}

func (h host) StrokeEnded() {
	if err := h.e.hist.Save(); err != nil {
		h.e.logger().Warn("masker: stroke not recorded", "error", err)
	}
	h.e.notifyMaskLocked()
}

func (h host) Undo() { h.e.undoLocked() }
func (h host) Redo() { h.e.redoLocked() }
