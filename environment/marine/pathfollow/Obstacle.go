package pathfollow

import "fmt"

// StaticObstacle is a circular obstacle. Obstacles are generated once
// during episode setup and are immutable for the lifetime of the
// episode.
type StaticObstacle struct {
	Position [2]float64
	Radius   float64
}

// NewStaticObstacle returns a StaticObstacle at the given position. The
// radius must be positive.
func NewStaticObstacle(position [2]float64, radius float64) (StaticObstacle,
	error) {
	if radius <= 0 {
		return StaticObstacle{}, fmt.Errorf("newStaticObstacle: radius "+
			"must be positive, have %v", radius)
	}
	return StaticObstacle{Position: position, Radius: radius}, nil
}
