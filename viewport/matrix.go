package viewport

// Point is a 2D position, either in client or in image space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Div returns p with both coordinates divided by s.
func (p Point) Div(s float64) Point {
	return Point{X: p.X / s, Y: p.Y / s}
}

// Matrix is an axis-aligned affine map: a per-axis scale followed by an
// offset.
//
//	x' = ScaleX*x + OffsetX
//	y' = ScaleY*y + OffsetY
//
// The viewport never rotates or shears, so the off-diagonal terms of a
// general 2D affine matrix are omitted.
type Matrix struct {
	ScaleX, ScaleY   float64
	OffsetX, OffsetY float64
}

// Identity returns the map that leaves every point in place.
func Identity() Matrix {
	return Matrix{ScaleX: 1, ScaleY: 1}
}

// Translate returns a map that moves points by (x, y).
func Translate(x, y float64) Matrix {
	return Matrix{ScaleX: 1, ScaleY: 1, OffsetX: x, OffsetY: y}
}

// Scale returns a map that scales about the origin.
func Scale(x, y float64) Matrix {
	return Matrix{ScaleX: x, ScaleY: y}
}

// Mul returns m∘n: the map that applies n first, then m. Chains read left
// to right like a CSS transform list.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		ScaleX:  m.ScaleX * n.ScaleX,
		ScaleY:  m.ScaleY * n.ScaleY,
		OffsetX: m.ScaleX*n.OffsetX + m.OffsetX,
		OffsetY: m.ScaleY*n.OffsetY + m.OffsetY,
	}
}

// Apply maps a point.
func (m Matrix) Apply(p Point) Point {
	return Point{X: m.ScaleX*p.X + m.OffsetX, Y: m.ScaleY*p.Y + m.OffsetY}
}

// ApplyVector maps a displacement, ignoring the offset.
func (m Matrix) ApplyVector(v Point) Point {
	return Point{X: m.ScaleX * v.X, Y: m.ScaleY * v.Y}
}

// Inverse returns the reverse map. ok is false when either scale is zero.
func (m Matrix) Inverse() (inv Matrix, ok bool) {
	if m.ScaleX == 0 || m.ScaleY == 0 {
		return Matrix{}, false
	}
	return Matrix{
		ScaleX:  1 / m.ScaleX,
		ScaleY:  1 / m.ScaleY,
		OffsetX: -m.OffsetX / m.ScaleX,
		OffsetY: -m.OffsetY / m.ScaleY,
	}, true
}
