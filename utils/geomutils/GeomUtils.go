// Package geomutils provides planar geometry utilities for marine
// environments
package geomutils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Princip maps an angle in radians to its principal value in (-π, π]
func Princip(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// Rotz returns the 3x3 matrix rotating vectors by angle about the
// vertical axis:
//
//	⎡cos -sin  0⎤
//	⎢sin  cos  0⎥
//	⎣ 0    0   1⎦
//
// Rotating a world-frame vector by the negative of a reference angle
// expresses it in the frame aligned with that angle, with element 1 of
// the result holding the lateral (cross-track) component.
func Rotz(angle float64) *mat.Dense {
	sin, cos := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})
}
