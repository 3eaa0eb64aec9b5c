package masker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/masker/internal/imageio"
	"github.com/gogpu/masker/viewport"
)

// Placeholder surface size used when an image cannot be loaded.
const (
	PlaceholderWidth  = 300
	PlaceholderHeight = 150
)

var placeholderColor = color.NRGBA{R: 0xE5, G: 0xE5, B: 0xE5, A: 0xFF}

// Source identifies an image to load.
type Source struct {
	// URL is an http(s) URL, a data URI, a file:// URL or a file path.
	URL string

	// CrossOrigin is "", "anonymous" or "use-credentials". Cookies are only
	// sent with use-credentials.
	CrossOrigin string

	// MaxWidth and MaxHeight bound the surface size; zero falls back to
	// WithMaxSize.
	MaxWidth, MaxHeight int
}

// Loader retrieves and decodes a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, src Source) (image.Image, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, src Source) (image.Image, error) {
	return f(ctx, src)
}

// defaultLoader fetches over HTTP and falls back to direct decoding.
type defaultLoader struct {
	l imageio.Loader
}

func (d *defaultLoader) Load(ctx context.Context, src Source) (image.Image, error) {
	return d.l.Load(ctx, src.URL, src.CrossOrigin)
}

// SetSource starts loading src in the background and returns a channel that
// receives the outcome once and is then closed.
//
// A newer SetSource or SetImage supersedes a load in flight; the superseded
// load reports ErrStaleSource and leaves the surface alone. When the image
// cannot be loaded the surface is reset to a blank placeholder and the load
// error is reported.
func (e *Editor) SetSource(ctx context.Context, src Source) <-chan error {
	done := make(chan error, 1)

	e.mu.Lock()
	if e.closed {
		e.unlock()
		done <- ErrClosed
		close(done)
		return done
	}
	gen := e.supersedeLocked()
	ctx, cancel := context.WithCancel(ctx)
	e.cancelLoad = cancel
	loader := e.opts.loader
	e.unlock()

	go func() {
		defer close(done)
		defer cancel()
		img, err := loader.Load(ctx, src)
		done <- e.finishLoad(gen, src, img, err)
	}()
	return done
}

// SetImage replaces the image synchronously. Any load in flight is
// superseded.
func (e *Editor) SetImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("masker: set image: %w", ErrEmptySurface)
	}
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return ErrClosed
	}
	e.supersedeLocked()
	return e.applyImageLocked(img, 0, 0)
}

// supersedeLocked starts a new source generation and cancels the previous
// load.
func (e *Editor) supersedeLocked() uint64 {
	e.gen++
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	return e.gen
}

func (e *Editor) finishLoad(gen uint64, src Source, img image.Image, loadErr error) error {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || gen != e.gen {
		e.logger().Debug("masker: stale load dropped", "generation", gen, "current", e.gen)
		return fmt.Errorf("masker: load %q: %w", src.URL, ErrStaleSource)
	}
	e.cancelLoad = nil

	if loadErr == nil && img != nil {
		loadErr = e.applyImageLocked(img, src.MaxWidth, src.MaxHeight)
		if loadErr == nil {
			return nil
		}
	}
	if loadErr == nil {
		loadErr = errors.New("loader returned no image")
	}
	e.logger().Warn("masker: image load failed, using placeholder", "url", redactURL(src.URL), "error", loadErr)
	e.applyPlaceholderLocked()
	return fmt.Errorf("masker: load %q: %w", redactURL(src.URL), loadErr)
}

// applyImageLocked sizes every layer to img, downscaled to the bounds, and
// discards the mask and its history.
func (e *Editor) applyImageLocked(img image.Image, maxW, maxH int) error {
	if maxW <= 0 {
		maxW = e.opts.maxWidth
	}
	if maxH <= 0 {
		maxH = e.opts.maxHeight
	}
	b := img.Bounds()
	w, h := imageio.FitSize(b.Dx(), b.Dy(), maxW, maxH)
	if w == 0 || h == 0 {
		return fmt.Errorf("masker: image %v: %w", b, ErrEmptySurface)
	}
	if w != b.Dx() || h != b.Dy() {
		e.logger().Debug("masker: downscaling image", "from", b.Size(), "width", w, "height", h)
		img = imageio.Resize(img, w, h)
	}

	e.resetSurfaceLocked(w, h)
	e.surf.DrawBase(img)
	e.logger().Info("masker: image loaded", "width", w, "height", h)

	if err := e.applyInitialMaskLocked(); err != nil {
		e.logger().Warn("masker: initial mask not applied", "error", err)
	}
	return nil
}

func (e *Editor) applyPlaceholderLocked() {
	e.resetSurfaceLocked(PlaceholderWidth, PlaceholderHeight)
	e.surf.DrawBase(image.NewUniform(placeholderColor))
}

// resetSurfaceLocked resizes all layers, drops transient drawing state and
// history, and refits the viewport.
func (e *Editor) resetSurfaceLocked(w, h int) {
	e.ctrl.Cancel()
	e.notifier.Cancel()
	e.surf.Resize(w, h)
	e.hist.Reset()
	e.appliedMask = ""

	if e.view.Container().Size().Empty() {
		e.view.SetContainer(viewport.Rect{Width: float64(w), Height: float64(h)})
	}
	e.view.SetContent(viewport.Size{Width: float64(w), Height: float64(h)})
}

// SetInitialMask paints an encoded mask (data URI, file:// URL or path) over
// the mask layer, records it in history and notifies OnMaskChange. Supplying
// the value already applied is a no-op. Before an image is loaded the value
// is kept and applied when the surface gets a size.
func (e *Editor) SetInitialMask(encoded string) error {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return ErrClosed
	}
	e.opts.initialMask = encoded
	return e.applyInitialMaskLocked()
}

func (e *Editor) applyInitialMaskLocked() error {
	v := e.opts.initialMask
	if v == "" || v == e.appliedMask || e.surf.Empty() {
		return nil
	}
	e.appliedMask = v

	img, err := imageio.DecodeDirect(v)
	if err != nil {
		return fmt.Errorf("masker: initial mask: %w", err)
	}
	w, h := e.surf.Size()
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		img = imageio.Resize(img, w, h)
	}
	e.surf.LoadMask(img)
	if err := e.hist.Save(); err != nil {
		e.logger().Warn("masker: initial mask not recorded", "error", err)
	}
	e.notifyMaskLocked()
	return nil
}

// SetBrushColor changes the brush color and recolors the strokes already in
// the mask. See WithInvertMask.
func (e *Editor) SetBrushColor(hex string) error {
	c, err := ParseHex(hex)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.unlock()
	b := e.ctrl.Brush()
	prev := b.Color
	b.Color = c
	e.ctrl.SetBrush(b)
	if n := e.surf.ReplaceColor(prev, c, e.opts.invertMask); n > 0 {
		e.logger().Debug("masker: mask recolored", "pixels", n, "from", FormatHex(prev), "to", FormatHex(c))
		e.notifyMaskLocked()
	}
	return nil
}

// ReplaceMaskColor rewrites opaque mask pixels of color from to to, swapping
// the two when invert is set. It returns the number of pixels changed.
func (e *Editor) ReplaceMaskColor(from, to color.NRGBA, invert bool) int {
	e.mu.Lock()
	defer e.unlock()
	n := e.surf.ReplaceColor(from, to, invert)
	if n > 0 {
		e.notifyMaskLocked()
	}
	return n
}

// redactURL shortens data URIs for logs and errors.
func redactURL(s string) string {
	if imageio.IsDataURI(s) && len(s) > 48 {
		return s[:48] + "..."
	}
	return s
}
