// Package masker is a headless bitmap-mask painting engine.
//
// # Overview
//
// An Editor layers a paintable mask over a displayed image. The user paints
// a region with a circular brush, navigates with pointer-anchored zoom and
// pan, and steps through a bounded undo/redo history of the mask. The
// painted mask is reported to the embedding application as a PNG data URI,
// debounced while a stroke is in progress and immediately when it ends.
//
// # Quick Start
//
//	ed := masker.New(
//	    masker.WithBrushRadius(12),
//	    masker.WithCallbacks(masker.Callbacks{
//	        OnMaskChange: func(uri string) { save(uri) },
//	    }),
//	)
//	defer ed.Close()
//
//	ed.SetContainer(0, 0, 800, 600)
//	if err := <-ed.SetSource(ctx, masker.Source{URL: "photo.jpg"}); err != nil {
//	    log.Print(err)
//	}
//	sub := ed.Attach(window) // any gpucontext event source
//	defer sub.Close()
//
// # Architecture
//
// The Editor composes four parts:
//   - viewport: zoom, pan, fit-to-container scale and coordinate mapping
//   - interact: pointer, wheel and key arbitration between drawing and panning
//   - history: bounded snapshot log with undo and redo
//   - surface: the base, mask and cursor-preview raster layers
//
// # Concurrency
//
// Every Editor method is safe for concurrent use. Operations and scheduled
// work are serialized by one lock, and callbacks run after it is released,
// so a callback may call back into the Editor.
//
// # Logging
//
// The package is silent by default. See SetLogger.
package masker
