package interact

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
)

// Handler receives input events. Controller implements it; embedders that
// guard a Controller with a lock wrap it with their own Handler.
type Handler interface {
	HandlePointer(ev gpucontext.PointerEvent)
	HandleScroll(ev gpucontext.ScrollEvent) bool
	HandleKeyPress(key gpucontext.Key, mods gpucontext.Modifiers) bool
	HandleKeyRelease(key gpucontext.Key, mods gpucontext.Modifiers)
	HandleFocus(focused bool)
}

var _ Handler = (*Controller)(nil)

// Subscription is the set of callbacks registered by Attach. gpucontext
// sources have no way to remove a callback, so Close turns every registered
// callback into a no-op instead.
type Subscription struct {
	closed atomic.Bool
}

// Close detaches the handler. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (s *Subscription) Closed() bool {
	return s.closed.Load()
}

// Attach registers h with every event interface src implements:
// gpucontext.PointerEventSource, gpucontext.ScrollEventSource and
// gpucontext.EventSource. When src has no pointer or scroll interface the
// EventSource mouse and wheel callbacks are translated into PointerEvent and
// ScrollEvent values.
func Attach(src any, h Handler) *Subscription {
	sub := &Subscription{}
	a := &adapter{sub: sub, h: h}

	ps, hasPointer := src.(gpucontext.PointerEventSource)
	if hasPointer {
		ps.OnPointer(func(ev gpucontext.PointerEvent) {
			if sub.Closed() {
				return
			}
			a.trackPointer(ev)
			h.HandlePointer(ev)
		})
	}

	ss, hasScroll := src.(gpucontext.ScrollEventSource)
	if hasScroll {
		ss.OnScrollEvent(func(ev gpucontext.ScrollEvent) {
			if sub.Closed() {
				return
			}
			h.HandleScroll(ev)
		})
	}

	es, ok := src.(gpucontext.EventSource)
	if !ok {
		return sub
	}
	es.OnKeyPress(a.keyPress)
	es.OnKeyRelease(a.keyRelease)
	es.OnFocus(a.focus)
	if !hasPointer {
		es.OnMouseMove(a.mouseMove)
		es.OnMousePress(a.mousePress)
		es.OnMouseRelease(a.mouseRelease)
	}
	if !hasScroll {
		es.OnScroll(a.scroll)
	}
	return sub
}

// adapter tracks the button and modifier state the legacy EventSource
// callbacks do not carry.
type adapter struct {
	sub *Subscription
	h   Handler

	mu      sync.Mutex
	buttons gpucontext.Buttons
	mods    gpucontext.Modifiers
	x, y    float64
}

func (a *adapter) trackPointer(ev gpucontext.PointerEvent) {
	a.mu.Lock()
	a.x, a.y = ev.X, ev.Y
	a.mu.Unlock()
}

func (a *adapter) keyPress(key gpucontext.Key, mods gpucontext.Modifiers) {
	if a.sub.Closed() {
		return
	}
	a.mu.Lock()
	a.mods = mods | modifierFor(key)
	a.mu.Unlock()
	a.h.HandleKeyPress(key, mods)
}

func (a *adapter) keyRelease(key gpucontext.Key, mods gpucontext.Modifiers) {
	if a.sub.Closed() {
		return
	}
	a.mu.Lock()
	a.mods = mods &^ modifierFor(key)
	a.mu.Unlock()
	a.h.HandleKeyRelease(key, mods)
}

func (a *adapter) focus(focused bool) {
	if a.sub.Closed() {
		return
	}
	if !focused {
		a.mu.Lock()
		a.buttons, a.mods = gpucontext.ButtonsNone, 0
		a.mu.Unlock()
	}
	a.h.HandleFocus(focused)
}

func (a *adapter) mouseMove(x, y float64) {
	if a.sub.Closed() {
		return
	}
	a.h.HandlePointer(a.pointer(gpucontext.PointerMove, gpucontext.ButtonNone, x, y))
}

func (a *adapter) mousePress(b gpucontext.MouseButton, x, y float64) {
	if a.sub.Closed() {
		return
	}
	btn, bit := buttonFor(b)
	a.mu.Lock()
	a.buttons |= bit
	a.mu.Unlock()
	a.h.HandlePointer(a.pointer(gpucontext.PointerDown, btn, x, y))
}

func (a *adapter) mouseRelease(b gpucontext.MouseButton, x, y float64) {
	if a.sub.Closed() {
		return
	}
	btn, bit := buttonFor(b)
	a.mu.Lock()
	a.buttons &^= bit
	a.mu.Unlock()
	a.h.HandlePointer(a.pointer(gpucontext.PointerUp, btn, x, y))
}

func (a *adapter) scroll(dx, dy float64) {
	if a.sub.Closed() {
		return
	}
	a.mu.Lock()
	ev := gpucontext.ScrollEvent{X: a.x, Y: a.y, DeltaX: dx, DeltaY: dy, Modifiers: a.mods}
	a.mu.Unlock()
	a.h.HandleScroll(ev)
}

func (a *adapter) pointer(t gpucontext.PointerEventType, b gpucontext.Button, x, y float64) gpucontext.PointerEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.x, a.y = x, y
	return gpucontext.PointerEvent{
		Type:        t,
		X:           x,
		Y:           y,
		Pressure:    pressure(a.buttons),
		PointerType: gpucontext.PointerTypeMouse,
		IsPrimary:   true,
		Button:      b,
		Buttons:     a.buttons,
		Modifiers:   a.mods,
	}
}

func pressure(b gpucontext.Buttons) float32 {
	if b == gpucontext.ButtonsNone {
		return 0
	}
	return 0.5
}

func buttonFor(b gpucontext.MouseButton) (gpucontext.Button, gpucontext.Buttons) {
	switch b {
	case gpucontext.MouseButtonLeft:
		return gpucontext.ButtonLeft, gpucontext.ButtonsLeft
	case gpucontext.MouseButtonRight:
		return gpucontext.ButtonRight, gpucontext.ButtonsRight
	case gpucontext.MouseButtonMiddle:
		return gpucontext.ButtonMiddle, gpucontext.ButtonsMiddle
	case gpucontext.MouseButton4:
		return gpucontext.ButtonX1, gpucontext.ButtonsX1
	case gpucontext.MouseButton5:
		return gpucontext.ButtonX2, gpucontext.ButtonsX2
	default:
		return gpucontext.ButtonNone, gpucontext.ButtonsNone
	}
}

func modifierFor(key gpucontext.Key) gpucontext.Modifiers {
	switch key {
	case gpucontext.KeyLeftShift, gpucontext.KeyRightShift:
		return gpucontext.ModShift
	case gpucontext.KeyLeftControl, gpucontext.KeyRightControl:
		return gpucontext.ModControl
	case gpucontext.KeyLeftAlt, gpucontext.KeyRightAlt:
		return gpucontext.ModAlt
	case gpucontext.KeyLeftSuper, gpucontext.KeyRightSuper:
		return gpucontext.ModSuper
	default:
		return 0
	}
}
