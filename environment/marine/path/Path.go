// Package path implements arc-length parametrized planar curves for
// marine path-following environments
package path

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/interp"
	"sfneuman.com/goauv/utils/floatutils"
)

const (
	// Number of fit-resample passes used during construction
	fitPasses int = 3

	// Number of uniformly spaced arc-length samples per pass
	sampleCount int = 1000

	// Arc-length tolerance of the closest-point search
	closestTolerance float64 = 1e-6

	// Hard cap on closest-point search iterations
	closestMaxIter int = 10000
)

// ErrDegenerateGeometry is returned when waypoints cannot be fit with a
// strictly increasing arc-length parametrization, e.g. when consecutive
// waypoints coincide.
var ErrDegenerateGeometry = errors.New("path: degenerate geometry")

// ParamCurve is a continuously differentiable planar curve through an
// ordered sequence of waypoints, parametrized by arc length s ∈
// [0, Length]. A ParamCurve is immutable once constructed.
//
// The curve is built by repeatedly fitting shape-preserving monotone
// piecewise cubics of x and y against cumulative chord length and
// resampling the fit at uniformly spaced arc lengths, so that after the
// final pass the parameter closely approximates true arc length.
type ParamCurve struct {
	xCoord interp.FritschButland
	yCoord interp.FritschButland
	length float64

	// Dense polyline of curve samples, used to seed the closest-point
	// search
	line orb.LineString
}

// NewParamCurve constructs a ParamCurve through the given waypoints.
// At least two waypoints are required. The first waypoint is the curve
// start (s = 0) and the last is the curve end (s = Length).
func NewParamCurve(waypoints [][2]float64) (*ParamCurve, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("newParamCurve: need at least 2 waypoints, "+
			"have %d", len(waypoints))
	}

	curve := &ParamCurve{}
	for pass := 0; pass < fitPasses; pass++ {
		arclengths := chordLengths(waypoints)
		curve.length = arclengths[len(arclengths)-1]

		xs := make([]float64, len(waypoints))
		ys := make([]float64, len(waypoints))
		for i, w := range waypoints {
			xs[i] = w[0]
			ys[i] = w[1]
		}

		if err := curve.xCoord.Fit(arclengths, xs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
		}
		if err := curve.yCoord.Fit(arclengths, ys); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
		}

		waypoints = curve.resample(curve.length, sampleCount)
	}

	curve.line = make(orb.LineString, 0, sampleCount)
	for _, w := range curve.resample(curve.length, sampleCount) {
		curve.line = append(curve.line, orb.Point{w[0], w[1]})
	}

	return curve, nil
}

// resample evaluates the current fit at n uniformly spaced arc lengths
// in [0, length]
func (p *ParamCurve) resample(length float64, n int) [][2]float64 {
	points := make([][2]float64, n)
	for i := range points {
		s := length * float64(i) / float64(n-1)
		points[i] = [2]float64{p.xCoord.Predict(s), p.yCoord.Predict(s)}
	}
	return points
}

// Length returns the total arc length of the curve
func (p *ParamCurve) Length() float64 {
	return p.length
}

// Position returns the curve position at arc length s. Arguments
// outside [0, Length] are clamped to the curve ends.
func (p *ParamCurve) Position(s float64) (x, y float64) {
	s = floatutils.Clip(s, 0, p.length)
	return p.xCoord.Predict(s), p.yCoord.Predict(s)
}

// Direction returns the angle of the unit tangent at arc length s. The
// angle is in the range of math.Atan2 and is not wrapped to the
// principal range.
func (p *ParamCurve) Direction(s float64) float64 {
	s = floatutils.Clip(s, 0, p.length)
	return math.Atan2(p.yCoord.PredictDerivative(s),
		p.xCoord.PredictDerivative(s))
}

// Endpoint returns the position of the end of the curve
func (p *ParamCurve) Endpoint() (x, y float64) {
	return p.Position(p.length)
}

// ClosestArcLength returns the arc length s* minimizing the Euclidean
// distance between the curve and the given point. The search is seeded
// with the nearest vertex of a dense sample polyline and refined by
// bounded golden-section minimization to within closestTolerance, and
// is deterministic for identical inputs.
func (p *ParamCurve) ClosestArcLength(x, y float64) float64 {
	point := orb.Point{x, y}

	best := 0
	bestDist := math.Inf(1)
	for i, vertex := range p.line {
		if d := planar.DistanceSquared(vertex, point); d < bestDist {
			best = i
			bestDist = d
		}
	}

	// The minimizer lies within one sample spacing of the nearest
	// sample vertex
	spacing := p.length / float64(len(p.line)-1)
	low := floatutils.Max(0, float64(best-1)*spacing)
	high := floatutils.Min(p.length, float64(best+1)*spacing)

	return p.minimizeDistance(x, y, low, high)
}

// ClosestPoint returns the curve point closest to the given point,
// together with its arc length
func (p *ParamCurve) ClosestPoint(x, y float64) (cx, cy, s float64) {
	s = p.ClosestArcLength(x, y)
	cx, cy = p.Position(s)
	return cx, cy, s
}

// ClosestPointDistance returns the distance from the given point to the
// curve, the closest curve point, and its arc length
func (p *ParamCurve) ClosestPointDistance(x, y float64) (dist, cx, cy,
	s float64) {
	cx, cy, s = p.ClosestPoint(x, y)
	dist = math.Hypot(cx-x, cy-y)
	return dist, cx, cy, s
}

// minimizeDistance performs golden-section minimization of the distance
// from (x, y) to the curve over arc lengths in [low, high]
func (p *ParamCurve) minimizeDistance(x, y, low, high float64) float64 {
	const invPhi = 0.6180339887498949

	a, b := low, high
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc := p.distanceAt(x, y, c)
	fd := p.distanceAt(x, y, d)

	for i := 0; i < closestMaxIter && b-a > closestTolerance; i++ {
		if fc < fd {
			b = d
			d, fd = c, fc
			c = b - invPhi*(b-a)
			fc = p.distanceAt(x, y, c)
		} else {
			a = c
			c, fc = d, fd
			d = a + invPhi*(b-a)
			fd = p.distanceAt(x, y, d)
		}
	}
	return (a + b) / 2
}

// distanceAt returns the distance from (x, y) to the curve point at arc
// length s
func (p *ParamCurve) distanceAt(x, y, s float64) float64 {
	return math.Hypot(p.xCoord.Predict(s)-x, p.yCoord.Predict(s)-y)
}

// chordLengths returns cumulative Euclidean distances between
// consecutive waypoints, starting at 0
func chordLengths(waypoints [][2]float64) []float64 {
	lengths := make([]float64, len(waypoints))
	for i := 1; i < len(waypoints); i++ {
		dx := waypoints[i][0] - waypoints[i-1][0]
		dy := waypoints[i][1] - waypoints[i-1][1]
		lengths[i] = lengths[i-1] + math.Hypot(dx, dy)
	}
	return lengths
}
