package masker

import "errors"

var (
	// ErrStaleSource is returned on a SetSource channel when a newer source
	// replaced the one being loaded before it finished.
	ErrStaleSource = errors.New("masker: source superseded by a newer one")

	// ErrEmptySurface is returned by operations that need a sized surface.
	ErrEmptySurface = errors.New("masker: surface has no image")

	// ErrClosed is returned by operations on a closed Editor.
	ErrClosed = errors.New("masker: editor closed")

	// ErrInvalidColor is returned for malformed hex colors.
	ErrInvalidColor = errors.New("masker: invalid color")
)
