package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/masker"
	"github.com/gogpu/masker/internal/imageio"
	"github.com/gogpu/masker/internal/schedule"
)

// Summary describes what a replay produced.
type Summary struct {
	Events      int
	MaskChanges int
	Undos       int
	Redos       int
	HistoryLen  int
	Cursor      int
	Width       int
	Height      int
}

// replayer feeds script events to an editor on a virtual clock.
type replayer struct {
	editor  *masker.Editor
	clock   *schedule.Manual
	buttons gpucontext.Buttons
	x, y    float64
}

// Replay runs script against a fresh editor configured with opts. The image
// is loaded from source unless the script names its own.
func Replay(ctx context.Context, script *Script, source string, opts []masker.Option) (*masker.Editor, Summary, error) {
	var sum Summary
	if script.Image != "" {
		source = script.Image
	}
	if source == "" {
		return nil, sum, errors.New("maskreplay: no image source")
	}

	clock := schedule.NewManual()
	cb := masker.Callbacks{
		OnMaskChange:  func(string) { sum.MaskChanges++ },
		OnUndoRequest: func() { sum.Undos++ },
		OnRedoRequest: func() { sum.Redos++ },
	}
	e := masker.New(append(opts, masker.WithScheduler(clock), masker.WithCallbacks(cb))...)

	// Load results arrive on another goroutine; advancing the clock only
	// happens here, so counters are not shared.
	if err := <-e.SetSource(ctx, masker.Source{URL: source}); err != nil {
		_ = e.Close()
		return nil, sum, fmt.Errorf("maskreplay: load %s: %w", source, err)
	}
	if c := script.Container; c.Width > 0 && c.Height > 0 {
		e.SetContainer(c.X, c.Y, c.Width, c.Height)
	}
	clock.Flush()

	r := &replayer{editor: e, clock: clock}
	for i, ev := range script.Events {
		if err := ctx.Err(); err != nil {
			_ = e.Close()
			return nil, sum, err
		}
		if err := r.apply(ev); err != nil {
			_ = e.Close()
			return nil, sum, fmt.Errorf("maskreplay: event %d (%s): %w", i, ev.Type, err)
		}
		clock.Flush()
		sum.Events++
	}
	// Deliver trailing debounced notifications.
	clock.Advance(masker.DefaultDebounce)

	sum.HistoryLen = e.HistoryLen()
	sum.Cursor = e.HistoryCursor()
	sum.Width, sum.Height = e.Size()
	return e, sum, nil
}

func (r *replayer) apply(ev Event) error {
	mods, err := parseMods(ev.Mods)
	if err != nil {
		return err
	}
	e := r.editor
	switch ev.Type {
	case "down":
		b, bits, err := parseButton(ev.Button)
		if err != nil {
			return err
		}
		r.buttons |= bits
		r.x, r.y = ev.X, ev.Y
		e.HandlePointer(r.pointer(gpucontext.PointerDown, b, mods))
	case "up":
		b, bits, err := parseButton(ev.Button)
		if err != nil {
			return err
		}
		r.buttons &^= bits
		r.x, r.y = ev.X, ev.Y
		e.HandlePointer(r.pointer(gpucontext.PointerUp, b, mods))
	case "move":
		r.x, r.y = ev.X, ev.Y
		e.HandlePointer(r.pointer(gpucontext.PointerMove, gpucontext.ButtonNone, mods))
	case "leave":
		e.HandlePointer(r.pointer(gpucontext.PointerLeave, gpucontext.ButtonNone, mods))
		r.buttons = gpucontext.ButtonsNone
	case "blur":
		e.HandleFocus(false)
		r.buttons = gpucontext.ButtonsNone
	case "wheel":
		e.HandleScroll(gpucontext.ScrollEvent{X: ev.X, Y: ev.Y, DeltaY: ev.DY, Modifiers: mods})
	case "press", "release":
		key, err := parseKey(ev.Key)
		if err != nil {
			return err
		}
		if ev.Type == "press" {
			e.HandleKeyPress(key, mods)
		} else {
			e.HandleKeyRelease(key, mods)
		}
	case "undo":
		e.Undo()
	case "redo":
		e.Redo()
	case "clear":
		e.Clear()
	case "zoom_in":
		e.ZoomIn()
	case "zoom_out":
		e.ZoomOut()
	case "reset_zoom":
		e.ResetZoom()
	case "pan":
		e.SetPan(ev.X, ev.Y)
	case "color":
		return e.SetBrushColor(ev.Value)
	case "radius":
		e.SetBrushRadius(ev.Radius)
	case "wait":
		r.clock.Advance(ev.Wait)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

func (r *replayer) pointer(t gpucontext.PointerEventType, b gpucontext.Button, mods gpucontext.Modifiers) gpucontext.PointerEvent {
	return gpucontext.PointerEvent{
		Type:        t,
		PointerID:   1,
		X:           r.x,
		Y:           r.y,
		Pressure:    0.5,
		PointerType: gpucontext.PointerTypeMouse,
		IsPrimary:   true,
		Button:      b,
		Buttons:     r.buttons,
		Modifiers:   mods,
		Timestamp:   r.clock.Now(),
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imageio.EncodePNG(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
