// Package surface holds the three raster buffers of a mask editor.
//
// A Surface owns a base layer (the displayed image), a mask layer (the
// user's paint) and a cursor layer (the brush preview). The three always
// share one size: Resize reallocates them together and drops everything
// drawn so far.
//
// Pixels are stored as non-premultiplied RGBA, 4 bytes per pixel, in the
// same layout as image.NRGBA. One pixel is one device-independent pixel of
// the source image after any downscaling.
//
// Surfaces are NOT thread-safe. The editor serializes access.
package surface
