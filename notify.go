package masker

import "github.com/gogpu/masker/interact"

// notifyMaskLocked queues an immediate OnMaskChange, superseding a pending
// debounced one.
func (e *Editor) notifyMaskLocked() {
	e.notifier.Cancel()
	e.queueMaskLocked()
}

// flushDebounced runs when the drawing debounce window closes. A timer that
// fired while the stroke was ending is dropped: the stroke end already queued
// the final mask.
func (e *Editor) flushDebounced() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.ctrl.Mode() != interact.Drawing {
		return
	}
	e.queueMaskLocked()
}

func (e *Editor) queueMaskLocked() {
	fn := e.cb.OnMaskChange
	if fn == nil || e.surf.Empty() {
		return
	}
	uri, err := e.encodeMaskLocked()
	if err != nil {
		e.logger().Warn("masker: mask notification dropped", "error", err)
		return
	}
	e.emit(func() { fn(uri) })
}
