package surface

import "errors"

// ErrEmpty is returned when an operation needs pixels but the surface has
// not been sized yet.
var ErrEmpty = errors.New("surface: empty surface")
