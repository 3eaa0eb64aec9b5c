package masker

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/masker/interact"
)

var _ interact.Handler = (*Editor)(nil)

// HandlePointer feeds one pointer event to the interaction controller.
// Coordinates are client coordinates.
func (e *Editor) HandlePointer(ev gpucontext.PointerEvent) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	e.ctrl.HandlePointer(ev)
}

// HandleScroll feeds one wheel event and reports whether it was consumed.
func (e *Editor) HandleScroll(ev gpucontext.ScrollEvent) bool {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return false
	}
	return e.ctrl.HandleScroll(ev)
}

// HandleKeyPress feeds a key press and reports whether it ran a shortcut.
func (e *Editor) HandleKeyPress(key gpucontext.Key, mods gpucontext.Modifiers) bool {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return false
	}
	return e.ctrl.HandleKeyPress(key, mods)
}

// HandleKeyRelease feeds a key release.
func (e *Editor) HandleKeyRelease(key gpucontext.Key, mods gpucontext.Modifiers) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	e.ctrl.HandleKeyRelease(key, mods)
}

// HandleFocus feeds a window focus change.
func (e *Editor) HandleFocus(focused bool) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	e.ctrl.HandleFocus(focused)
}

// Attach subscribes the Editor to a gpucontext event source. The
// subscription is closed by Close or by the caller.
func (e *Editor) Attach(src any) *interact.Subscription {
	sub := interact.Attach(src, e)
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		_ = sub.Close()
		return sub
	}
	e.subs = append(e.subs, sub)
	return sub
}
