package path

import (
	"math"

	"golang.org/x/exp/rand"
)

// NewRandomCurveThroughOrigin builds a random ParamCurve that always
// threads through the origin. The rng argument is the episode's random
// source; identical sources produce identical curves.
//
// Waypoints are generated around a line through the origin: a random
// initial heading places symmetric start and end points at ±(length/2)
// along that heading, then a midpoint forced to the origin and two
// perturbed points are recursively inserted between each consecutive
// pair. Perturbations shrink as the curve is refined, giving a
// wandering, roughly S-shaped course.
func NewRandomCurveThroughOrigin(rng *rand.Rand, nwaypoints int,
	length float64) (*ParamCurve, error) {
	angle := 2 * math.Pi * (rng.Float64() - 0.5)

	start := [2]float64{
		0.5 * length * math.Cos(angle),
		0.5 * length * math.Sin(angle),
	}
	end := [2]float64{-start[0], -start[1]}
	waypoints := [][2]float64{start, end}

	half := nwaypoints / 2
	for w := 0; w < half; w++ {
		scale := float64(half-w) / float64(half+1)
		spread := length / float64(half+1)

		offset := spread * (rng.Float64() - 0.5)
		newStart := [2]float64{
			scale*start[0] + offset,
			scale*start[1] + offset,
		}

		offset = spread * (rng.Float64() - 0.5)
		newEnd := [2]float64{
			scale*end[0] + offset,
			scale*end[1] + offset,
		}

		rebuilt := make([][2]float64, 0, len(waypoints)+3)
		rebuilt = append(rebuilt, waypoints[:w+1]...)
		rebuilt = append(rebuilt, newStart, [2]float64{0, 0}, newEnd)
		rebuilt = append(rebuilt, waypoints[len(waypoints)-w-1:]...)
		waypoints = rebuilt
	}

	return NewParamCurve(waypoints)
}
