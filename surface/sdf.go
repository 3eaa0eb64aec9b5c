package surface

import "math"

// sdfAntialiasWidth controls the smoothstep transition width in pixels.
const sdfAntialiasWidth = 0.7

// filledCircleCoverage returns anti-aliased coverage in [0, 1] of the pixel
// centered at (px, py) by a disc.
func filledCircleCoverage(px, py, cx, cy, radius float64) float64 {
	dist := math.Hypot(px-cx, py-cy)
	return smoothstepCoverage(dist - radius)
}

// ringCoverage returns anti-aliased coverage of a circle outline whose
// centerline has the given radius.
func ringCoverage(px, py, cx, cy, radius, halfWidth float64) float64 {
	dist := math.Hypot(px-cx, py-cy)
	return smoothstepCoverage(math.Abs(dist-radius) - halfWidth)
}

// smoothstepCoverage maps a signed distance (negative inside) to coverage.
func smoothstepCoverage(sdf float64) float64 {
	if sdf >= sdfAntialiasWidth {
		return 0
	}
	if sdf <= -sdfAntialiasWidth {
		return 1
	}
	t := (sdf + sdfAntialiasWidth) / (2 * sdfAntialiasWidth)
	// Hermite smoothstep: 3t^2 - 2t^3
	return 1 - (t * t * (3 - 2*t))
}
