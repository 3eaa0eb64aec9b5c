package masker

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/masker/interact"
	"github.com/gogpu/masker/internal/imageio"
	"github.com/gogpu/masker/internal/schedule"
)

var (
	black       = color.NRGBA{A: 0xFF}
	white       = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	transparent = color.NRGBA{}
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// recorder counts callbacks.
type recorder struct {
	mu      sync.Mutex
	masks   []string
	drawing []bool
	undos   int
	redos   int
	scales  []float64
	pans    [][2]float64
	radii   []int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnMaskChange: func(uri string) {
			r.mu.Lock()
			r.masks = append(r.masks, uri)
			r.mu.Unlock()
		},
		OnDrawingChange: func(d bool) {
			r.mu.Lock()
			r.drawing = append(r.drawing, d)
			r.mu.Unlock()
		},
		OnUndoRequest: func() { r.mu.Lock(); r.undos++; r.mu.Unlock() },
		OnRedoRequest: func() { r.mu.Lock(); r.redos++; r.mu.Unlock() },
		OnScaleChange: func(s float64) {
			r.mu.Lock()
			r.scales = append(r.scales, s)
			r.mu.Unlock()
		},
		OnPanChange: func(x, y float64) {
			r.mu.Lock()
			r.pans = append(r.pans, [2]float64{x, y})
			r.mu.Unlock()
		},
		OnCursorSizeChange: func(n int) {
			r.mu.Lock()
			r.radii = append(r.radii, n)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) maskCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.masks)
}

func pointer(t gpucontext.PointerEventType, b gpucontext.Button, buttons gpucontext.Buttons, x, y float64) gpucontext.PointerEvent {
	return gpucontext.PointerEvent{Type: t, Button: b, Buttons: buttons, X: x, Y: y, IsPrimary: true}
}

func press(e *Editor, x, y float64) {
	e.HandlePointer(pointer(gpucontext.PointerDown, gpucontext.ButtonLeft, gpucontext.ButtonsLeft, x, y))
}

func drag(e *Editor, x, y float64) {
	e.HandlePointer(pointer(gpucontext.PointerMove, gpucontext.ButtonNone, gpucontext.ButtonsLeft, x, y))
}

func release(e *Editor, x, y float64) {
	e.HandlePointer(pointer(gpucontext.PointerUp, gpucontext.ButtonLeft, gpucontext.ButtonsNone, x, y))
}

func newTestEditor(t *testing.T, opts ...Option) (*Editor, *schedule.Manual) {
	t.Helper()
	sched := schedule.NewManual()
	e := New(append([]Option{WithScheduler(sched)}, opts...)...)
	t.Cleanup(func() { _ = e.Close() })
	return e, sched
}

func TestBasicPaintAndUndo(t *testing.T) {
	e, _ := newTestEditor(t, WithBrushRadius(5), WithBrushColor(black))
	if err := e.SetImage(solidImage(100, 100, white)); err != nil {
		t.Fatalf("SetImage: %v", err)
	}

	press(e, 50, 50)
	release(e, 50, 50)

	if got := e.Mask().NRGBAAt(50, 50); got != black {
		t.Fatalf("mask(50,50) = %v, want black", got)
	}
	if got := e.Mask().NRGBAAt(60, 50); got != transparent {
		t.Errorf("mask(60,50) = %v, want untouched", got)
	}
	if e.HistoryLen() != 1 || e.HistoryCursor() != 0 {
		t.Errorf("history len/cursor = %d/%d, want 1/0", e.HistoryLen(), e.HistoryCursor())
	}

	if !e.Undo() {
		t.Fatal("Undo reported no change")
	}
	if got := e.Mask().NRGBAAt(50, 50); got != transparent {
		t.Errorf("mask(50,50) after undo = %v, want transparent", got)
	}
	if c := e.HistoryCursor(); c != -1 {
		t.Errorf("cursor = %d, want -1", c)
	}

	if !e.Redo() {
		t.Fatal("Redo reported no change")
	}
	if got := e.Mask().NRGBAAt(50, 50); got != black {
		t.Errorf("mask(50,50) after redo = %v, want black", got)
	}
}

func TestDownscaleOnLoad(t *testing.T) {
	e, _ := newTestEditor(t, WithMaxSize(1000, 1000))
	if err := e.SetImage(solidImage(2000, 1000, white)); err != nil {
		t.Fatal(err)
	}
	if w, h := e.Size(); w != 1000 || h != 500 {
		t.Errorf("size = %dx%d, want 1000x500", w, h)
	}

	loader := LoaderFunc(func(context.Context, Source) (image.Image, error) {
		return solidImage(2000, 1000, white), nil
	})
	e2, _ := newTestEditor(t, WithLoader(loader))
	if err := <-e2.SetSource(context.Background(), Source{URL: "x", MaxWidth: 1000, MaxHeight: 1000}); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	if w, h := e2.Size(); w != 1000 || h != 500 {
		t.Errorf("SetSource size = %dx%d, want 1000x500", w, h)
	}
}

func TestDebouncedNotifications(t *testing.T) {
	rec := &recorder{}
	e, sched := newTestEditor(t, WithCallbacks(rec.callbacks()))
	if err := e.SetImage(solidImage(100, 100, white)); err != nil {
		t.Fatal(err)
	}

	press(e, 10, 10)
	for i := range 10 {
		sched.Advance(20 * time.Millisecond)
		drag(e, float64(11+i), 10)
	}
	if n := rec.maskCount(); n > 1 {
		t.Fatalf("notifications during burst = %d, want at most 1", n)
	}
	before := rec.maskCount()

	release(e, 20, 10)
	if n := rec.maskCount(); n != before+1 {
		t.Fatalf("notifications after up = %d, want %d", n, before+1)
	}
	sched.Advance(time.Second)
	if n := rec.maskCount(); n != before+1 {
		t.Errorf("late debounced notification fired: %d", n)
	}

	want, err := e.MaskDataURI()
	if err != nil {
		t.Fatal(err)
	}
	rec.mu.Lock()
	last := rec.masks[len(rec.masks)-1]
	rec.mu.Unlock()
	if last != want {
		t.Error("final notification does not carry the final mask")
	}
}

func TestMaskNotificationsOrderedOnRealClock(t *testing.T) {
	gate := make(chan struct{})
	var openGate sync.Once
	defer openGate.Do(func() { close(gate) })
	entered := make(chan struct{})

	var (
		mu       sync.Mutex
		masks    []string
		blocked  bool
		inFlight atomic.Int32
		overlap  atomic.Int32
	)
	e := New(WithDebounce(5*time.Millisecond), WithBrushColor(black), WithBrushRadius(3),
		WithCallbacks(Callbacks{
			OnMaskChange: func(uri string) {
				if inFlight.Add(1) > 1 {
					overlap.Add(1)
				}
				defer inFlight.Add(-1)

				mu.Lock()
				first := !blocked
				blocked = true
				mu.Unlock()
				if first {
					close(entered)
					<-gate
				}

				mu.Lock()
				masks = append(masks, uri)
				mu.Unlock()
			},
		}))
	t.Cleanup(func() { _ = e.Close() })
	if err := e.SetImage(solidImage(100, 100, white)); err != nil {
		t.Fatal(err)
	}

	press(e, 10, 10)
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced notification never fired")
	}

	// The debounced delivery is now stuck in the observer. Finish the stroke
	// behind it.
	drag(e, 50, 50)
	drag(e, 80, 80)
	release(e, 80, 80)
	want, err := e.MaskDataURI()
	if err != nil {
		t.Fatal(err)
	}
	openGate.Do(func() { close(gate) })

	last := func() (string, int) {
		mu.Lock()
		defer mu.Unlock()
		if len(masks) == 0 {
			return "", 0
		}
		return masks[len(masks)-1], len(masks)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if got, _ := last(); got == want {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("final mask never delivered")
		}
		time.Sleep(time.Millisecond)
	}

	time.Sleep(50 * time.Millisecond)
	if got, n := last(); got != want {
		t.Errorf("last of %d notifications is a stale mid-stroke mask", n)
	}
	if n := overlap.Load(); n != 0 {
		t.Errorf("OnMaskChange ran concurrently %d times", n)
	}
}

func TestViewportCallbacksQueueBehindMaskCallback(t *testing.T) {
	gate := make(chan struct{})
	var openGate sync.Once
	defer openGate.Do(func() { close(gate) })
	entered := make(chan struct{})
	var enterOnce sync.Once

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}
	snapshot := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), order...)
	}

	e, sched := newTestEditor(t, WithCallbacks(Callbacks{
		OnMaskChange: func(string) {
			enterOnce.Do(func() { close(entered) })
			<-gate
			record("mask")
		},
		OnScaleChange: func(float64) { record("scale") },
	}))
	if err := e.SetImage(solidImage(50, 50, white)); err != nil {
		t.Fatal(err)
	}

	press(e, 5, 5)
	go release(e, 5, 5)
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("stroke end notification never delivered")
	}

	e.ZoomIn()
	sched.Flush()
	if got := snapshot(); len(got) != 0 {
		t.Fatalf("callbacks ran while another was in progress: %v", got)
	}
	openGate.Do(func() { close(gate) })

	deadline := time.Now().Add(2 * time.Second)
	for len(snapshot()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("callbacks delivered = %v, want [mask scale]", snapshot())
		}
		time.Sleep(time.Millisecond)
	}
	if got := snapshot(); got[0] != "mask" || got[1] != "scale" {
		t.Errorf("callback order = %v, want [mask scale]", got)
	}
}

func TestDebounceFiresDuringLongStroke(t *testing.T) {
	rec := &recorder{}
	e, sched := newTestEditor(t, WithCallbacks(rec.callbacks()))
	if err := e.SetImage(solidImage(100, 100, white)); err != nil {
		t.Fatal(err)
	}

	press(e, 10, 10)
	for i := range 35 {
		sched.Advance(20 * time.Millisecond)
		drag(e, float64(10+i), 20)
	}
	// 700ms of drawing: one notification per 300ms window.
	if n := rec.maskCount(); n != 2 {
		t.Errorf("notifications during stroke = %d, want 2", n)
	}
	rec.mu.Lock()
	drawing := append([]bool(nil), rec.drawing...)
	rec.mu.Unlock()
	if len(drawing) != 1 || !drawing[0] {
		t.Errorf("drawing notifications = %v, want [true]", drawing)
	}
}

func TestUndoRedoClearNotify(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestEditor(t, WithCallbacks(rec.callbacks()))
	if err := e.SetImage(solidImage(50, 50, white)); err != nil {
		t.Fatal(err)
	}
	press(e, 10, 10)
	release(e, 10, 10)
	n := rec.maskCount()

	e.Undo()
	e.Redo()
	e.Clear()
	if got := rec.maskCount(); got != n+3 {
		t.Errorf("notifications = %d, want %d", got, n+3)
	}
	if rec.undos != 1 || rec.redos != 1 {
		t.Errorf("undo/redo requests = %d/%d, want 1/1", rec.undos, rec.redos)
	}
	if e.HistoryLen() != 0 || e.HistoryCursor() != -1 {
		t.Errorf("history after clear = %d/%d, want 0/-1", e.HistoryLen(), e.HistoryCursor())
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("clear left undo or redo available")
	}
}

func TestUndoableClear(t *testing.T) {
	e, _ := newTestEditor(t, WithUndoableClear(), WithBrushColor(black))
	if err := e.SetImage(solidImage(50, 50, white)); err != nil {
		t.Fatal(err)
	}
	press(e, 10, 10)
	release(e, 10, 10)
	e.Clear()
	if got := e.Mask().NRGBAAt(10, 10); got != transparent {
		t.Fatalf("mask after clear = %v", got)
	}
	e.Undo()
	if got := e.Mask().NRGBAAt(10, 10); got != black {
		t.Errorf("mask after undoing clear = %v, want black", got)
	}
}

func TestShortcutsThroughEditor(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestEditor(t, WithCallbacks(rec.callbacks()))
	if err := e.SetImage(solidImage(50, 50, white)); err != nil {
		t.Fatal(err)
	}
	press(e, 10, 10)
	release(e, 10, 10)

	if !e.HandleKeyPress(gpucontext.KeyZ, gpucontext.ModControl) {
		t.Fatal("ctrl+z not handled")
	}
	if e.HistoryCursor() != -1 || rec.undos != 1 {
		t.Errorf("cursor/undos = %d/%d, want -1/1", e.HistoryCursor(), rec.undos)
	}
	e.HandleKeyPress(gpucontext.KeyZ, gpucontext.ModControl|gpucontext.ModShift)
	if e.HistoryCursor() != 0 || rec.redos != 1 {
		t.Errorf("cursor/redos = %d/%d, want 0/1", e.HistoryCursor(), rec.redos)
	}
}

func TestSpacePanDoesNotPaint(t *testing.T) {
	e, _ := newTestEditor(t)
	if err := e.SetImage(solidImage(100, 100, white)); err != nil {
		t.Fatal(err)
	}
	e.SetScale(2)
	e.HandleKeyPress(gpucontext.KeySpace, 0)
	press(e, 50, 50)
	if e.Mode() != interact.Panning {
		t.Fatalf("mode = %v, want Panning", e.Mode())
	}
	drag(e, 60, 55)
	drag(e, 70, 60)
	release(e, 70, 60)

	empty := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	if got := e.Mask(); string(got.Pix) != string(empty.Pix) {
		t.Error("panning changed the mask")
	}
	tr := e.Transform()
	if tr.TranslateX != 10 || tr.TranslateY != 5 {
		t.Errorf("pan = (%v,%v), want (10,5)", tr.TranslateX, tr.TranslateY)
	}
	if e.HistoryLen() != 0 {
		t.Errorf("pan recorded %d history entries", e.HistoryLen())
	}
}

func TestWheelZoomAnchored(t *testing.T) {
	e, _ := newTestEditor(t)
	if err := e.SetImage(solidImage(100, 100, white)); err != nil {
		t.Fatal(err)
	}
	x0, y0 := e.ImageFromClient(30, 70)
	if !e.HandleScroll(gpucontext.ScrollEvent{X: 30, Y: 70, DeltaY: -1, Modifiers: gpucontext.ModControl}) {
		t.Fatal("ctrl+wheel not consumed")
	}
	if s := e.Transform().Scale; s < 1.099 || s > 1.101 {
		t.Errorf("scale = %v, want 1.1", s)
	}
	x1, y1 := e.ImageFromClient(30, 70)
	if d := (x1-x0)*(x1-x0) + (y1-y0)*(y1-y0); d > 1e-12 {
		t.Errorf("anchor moved from (%v,%v) to (%v,%v)", x0, y0, x1, y1)
	}
}

func TestWheelResizesBrush(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestEditor(t, WithCallbacks(rec.callbacks()), WithBrushRadius(4))
	if !e.HandleScroll(gpucontext.ScrollEvent{DeltaY: -1}) {
		t.Fatal("wheel not consumed")
	}
	if e.Brush().Radius != 5 {
		t.Errorf("radius = %d, want 5", e.Brush().Radius)
	}
	if len(rec.radii) != 1 || rec.radii[0] != 5 {
		t.Errorf("radius notifications = %v", rec.radii)
	}

	plain, _ := newTestEditor(t)
	if plain.HandleScroll(gpucontext.ScrollEvent{DeltaY: -1}) {
		t.Error("wheel consumed without OnCursorSizeChange")
	}
}

func TestViewportNotificationsDeferred(t *testing.T) {
	rec := &recorder{}
	e, sched := newTestEditor(t, WithCallbacks(rec.callbacks()))
	if err := e.SetImage(solidImage(100, 100, white)); err != nil {
		t.Fatal(err)
	}
	e.ZoomIn()
	e.ZoomIn()
	if len(rec.scales) != 0 {
		t.Fatalf("scale notified synchronously: %v", rec.scales)
	}
	sched.Flush()
	if len(rec.scales) != 1 || rec.scales[0] < 1.399 || rec.scales[0] > 1.401 {
		t.Errorf("scale notifications = %v, want [1.4]", rec.scales)
	}

	e.SetPan(3, 4)
	sched.Flush()
	if len(rec.pans) != 1 || rec.pans[0] != [2]float64{3, 4} {
		t.Errorf("pan notifications = %v, want [[3 4]]", rec.pans)
	}
	e.ResetZoom()
	sched.Flush()
	if got := e.Transform(); got.Scale != 1 || got.TranslateX != 0 || got.TranslateY != 0 {
		t.Errorf("after ResetZoom transform = %+v", got)
	}
}

func TestStaleSourceDropped(t *testing.T) {
	releaseA := make(chan struct{})
	loader := LoaderFunc(func(ctx context.Context, src Source) (image.Image, error) {
		if src.URL == "a" {
			select {
			case <-releaseA:
				return solidImage(40, 40, white), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return solidImage(20, 10, white), nil
	})
	e, _ := newTestEditor(t, WithLoader(loader))

	doneA := e.SetSource(context.Background(), Source{URL: "a"})
	doneB := e.SetSource(context.Background(), Source{URL: "b"})
	if err := <-doneB; err != nil {
		t.Fatalf("load b: %v", err)
	}
	close(releaseA)
	if err := <-doneA; !errors.Is(err, ErrStaleSource) {
		t.Errorf("load a err = %v, want ErrStaleSource", err)
	}
	if w, h := e.Size(); w != 20 || h != 10 {
		t.Errorf("size = %dx%d, want 20x10 from the newer source", w, h)
	}
	if _, ok := <-doneA; ok {
		t.Error("result channel not closed")
	}
}

func TestLoadFailureUsesPlaceholder(t *testing.T) {
	boom := errors.New("boom")
	loader := LoaderFunc(func(context.Context, Source) (image.Image, error) {
		return nil, boom
	})
	e, _ := newTestEditor(t, WithLoader(loader))
	err := <-e.SetSource(context.Background(), Source{URL: "missing.png"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if w, h := e.Size(); w != PlaceholderWidth || h != PlaceholderHeight {
		t.Errorf("size = %dx%d, want placeholder", w, h)
	}
}

func TestSetSourceDefaultLoader(t *testing.T) {
	uri, err := imageio.EncodeDataURI(solidImage(8, 6, white))
	if err != nil {
		t.Fatal(err)
	}
	e, _ := newTestEditor(t)
	if err := <-e.SetSource(context.Background(), Source{URL: uri}); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	if w, h := e.Size(); w != 8 || h != 6 {
		t.Errorf("size = %dx%d, want 8x6", w, h)
	}
}

func TestInitialMaskOncePerValue(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestEditor(t, WithCallbacks(rec.callbacks()))
	if err := e.SetImage(solidImage(20, 20, white)); err != nil {
		t.Fatal(err)
	}

	first := solidImage(20, 20, transparent)
	first.SetNRGBA(5, 5, black)
	uri1, err := imageio.EncodeDataURI(first)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetInitialMask(uri1); err != nil {
		t.Fatal(err)
	}
	if got := e.Mask().NRGBAAt(5, 5); got != black {
		t.Errorf("mask(5,5) = %v, want black", got)
	}
	if e.HistoryLen() != 1 || rec.maskCount() != 1 {
		t.Errorf("history/notifications = %d/%d, want 1/1", e.HistoryLen(), rec.maskCount())
	}

	if err := e.SetInitialMask(uri1); err != nil {
		t.Fatal(err)
	}
	if e.HistoryLen() != 1 || rec.maskCount() != 1 {
		t.Errorf("same value re-applied: history/notifications = %d/%d", e.HistoryLen(), rec.maskCount())
	}

	second := solidImage(20, 20, transparent)
	second.SetNRGBA(7, 7, black)
	uri2, err := imageio.EncodeDataURI(second)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetInitialMask(uri2); err != nil {
		t.Fatal(err)
	}
	if e.HistoryLen() != 2 || rec.maskCount() != 2 {
		t.Errorf("new value: history/notifications = %d/%d, want 2/2", e.HistoryLen(), rec.maskCount())
	}

	e.Undo()
	e.Undo()
	if got := e.Mask().NRGBAAt(5, 5); got != transparent {
		t.Errorf("initial mask not undoable back to empty: %v", got)
	}

	if err := e.SetInitialMask("data:image/png;base64,AAAA"); err == nil {
		t.Error("invalid mask accepted")
	}
}

func TestInitialMaskAppliedOnLoad(t *testing.T) {
	m := solidImage(10, 10, transparent)
	m.SetNRGBA(2, 3, black)
	uri, err := imageio.EncodeDataURI(m)
	if err != nil {
		t.Fatal(err)
	}
	e, _ := newTestEditor(t, WithInitialMask(uri))
	if err := e.SetImage(solidImage(10, 10, white)); err != nil {
		t.Fatal(err)
	}
	if got := e.Mask().NRGBAAt(2, 3); got != black {
		t.Errorf("mask(2,3) = %v, want black", got)
	}
	if e.HistoryLen() != 1 {
		t.Errorf("history len = %d, want 1", e.HistoryLen())
	}
}

func TestSetBrushColorRecolors(t *testing.T) {
	e, _ := newTestEditor(t, WithBrushColor(black))
	if err := e.SetImage(solidImage(30, 30, white)); err != nil {
		t.Fatal(err)
	}
	press(e, 15, 15)
	release(e, 15, 15)

	if err := e.SetBrushColor("#ff0000"); err != nil {
		t.Fatal(err)
	}
	if got := e.Mask().NRGBAAt(15, 15); got != (color.NRGBA{R: 0xFF, A: 0xFF}) {
		t.Errorf("mask(15,15) = %v, want red", got)
	}
	if got := e.Mask().NRGBAAt(0, 0); got != transparent {
		t.Errorf("background recolored: %v", got)
	}
	if err := e.SetBrushColor("nope"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("err = %v, want ErrInvalidColor", err)
	}
}

func TestEraseGesture(t *testing.T) {
	e, _ := newTestEditor(t, WithBrushColor(black), WithBrushRadius(3))
	if err := e.SetImage(solidImage(30, 30, white)); err != nil {
		t.Fatal(err)
	}
	press(e, 10, 10)
	release(e, 10, 10)
	e.HandlePointer(pointer(gpucontext.PointerDown, gpucontext.ButtonRight, gpucontext.ButtonsRight, 10, 10))
	e.HandlePointer(pointer(gpucontext.PointerUp, gpucontext.ButtonRight, gpucontext.ButtonsNone, 10, 10))
	if got := e.Mask().NRGBAAt(10, 10); got != white {
		t.Errorf("mask(10,10) = %v, want white", got)
	}
	if e.HistoryLen() != 2 {
		t.Errorf("history len = %d, want 2", e.HistoryLen())
	}
}

func TestCallbackReentry(t *testing.T) {
	var e *Editor
	var got string
	e, _ = newTestEditor(t, WithCallbacks(Callbacks{
		OnMaskChange: func(string) {
			uri, err := e.MaskDataURI()
			if err == nil {
				got = uri
			}
		},
	}))
	if err := e.SetImage(solidImage(10, 10, white)); err != nil {
		t.Fatal(err)
	}
	press(e, 5, 5)
	release(e, 5, 5)
	if got == "" {
		t.Error("callback could not re-enter the editor")
	}
}

func TestComposite(t *testing.T) {
	e, _ := newTestEditor(t, WithBrushColor(white), WithOpacity(0.4), WithBrushRadius(2))
	if _, err := e.Composite(); !errors.Is(err, ErrEmptySurface) {
		t.Errorf("Composite before load err = %v", err)
	}
	if err := e.SetImage(solidImage(20, 20, black)); err != nil {
		t.Fatal(err)
	}
	press(e, 5, 5)
	release(e, 5, 5)
	e.HandlePointer(gpucontext.PointerEvent{Type: gpucontext.PointerLeave})

	img, err := e.Composite()
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(5, 5); got.R < 101 || got.R > 103 || got.A != 255 {
		t.Errorf("painted pixel = %v, want ~102 gray", got)
	}
	if got := img.RGBAAt(15, 15); got != (color.RGBA{A: 255}) {
		t.Errorf("unpainted pixel = %v, want black", got)
	}
}

func TestCloseDetaches(t *testing.T) {
	e, _ := newTestEditor(t)
	if err := e.SetImage(solidImage(10, 10, white)); err != nil {
		t.Fatal(err)
	}
	sub := e.Attach(struct{}{})
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if !sub.Closed() {
		t.Error("Close did not close the subscription")
	}
	press(e, 5, 5)
	if e.Mode() != interact.Idle {
		t.Error("closed editor accepted input")
	}
	if err := <-e.SetSource(context.Background(), Source{URL: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("SetSource after Close err = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
