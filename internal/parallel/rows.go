package parallel

import "sync"

// MinPixels is the image area below which Rows stays on the calling
// goroutine.
const MinPixels = 256 * 256

var (
	sharedOnce sync.Once
	shared     *Pool
)

// Shared returns a process-wide pool sized to GOMAXPROCS. It is never
// closed.
func Shared() *Pool {
	sharedOnce.Do(func() { shared = NewPool(0) })
	return shared
}

// Rows splits [0, height) into contiguous bands and calls fn(y0, y1) for
// each band on p. Bands never overlap, so fn may write rows it owns without
// locking. Small images (width*height < MinPixels) or a nil pool run in a
// single call on the calling goroutine.
func Rows(p *Pool, width, height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	if p == nil || width*height < MinPixels || p.Workers() == 1 {
		fn(0, height)
		return
	}

	bands := min(height, p.Workers()*2)
	step := (height + bands - 1) / bands
	work := make([]func(), 0, bands)
	for y := 0; y < height; y += step {
		y0, y1 := y, min(height, y+step)
		work = append(work, func() { fn(y0, y1) })
	}
	p.Run(work)
}
