// Package pathfollow implements an environment where an AUV must follow
// a randomly generated curved path while avoiding circular obstacles.
//
// Observations have NumStates + NumSectors channels: surge and sway
// velocity, look-ahead heading error, cross-track error, the last raw
// action, and one obstacle-closeness channel per bearing sector around
// the vehicle. Actions are [propeller input, rudder position].
package pathfollow

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	env "sfneuman.com/goauv/environment"
	"sfneuman.com/goauv/environment/marine/auv"
	"sfneuman.com/goauv/environment/marine/path"
	ts "sfneuman.com/goauv/timestep"
	"sfneuman.com/goauv/utils/floatutils"
	"sfneuman.com/goauv/utils/geomutils"
)

const (
	// Observation layout: NumStates vehicle-state channels followed by
	// NumSectors obstacle-closeness channels
	NumStates  int = 6
	NumSectors int = 8
	NumActions int = 2

	// SwayVelocityScale normalizes the sway velocity observation
	SwayVelocityScale float64 = 0.2

	// DivergenceLimit ends an episode once the accumulated reward drops
	// below it
	DivergenceLimit float64 = -300.0

	// GoalArcLengthTolerance is the remaining arc length below which
	// the goal is considered reached
	GoalArcLengthTolerance float64 = 1.0

	// GoalDistance is the distance to the path endpoint below which the
	// goal is considered reached
	GoalDistance float64 = 10.0

	// Random episode generation
	DefaultWaypoints  int     = 6
	DefaultPathLength float64 = 400.0
	PositionNoise     float64 = 1.0  // ± start position noise per axis
	HeadingNoise      float64 = 0.05 // ± start heading noise, radians

	// Obstacle scatter: positions sampled along the back 90% of the
	// path, offset per axis, radii in [5, 15]
	obstacleSpread      float64 = 25.0
	obstacleRadiusScale float64 = 10.0

	// Bounded retries for degenerate random path draws
	generateAttempts int = 10
)

// PathFollow implements the path-following environment. One PathFollow
// serves exactly one episode at a time; all operations are synchronous
// and run to completion. The episode's random source is owned by the
// environment: it is seeded once and reused across resets unless Seed
// is called.
type PathFollow struct {
	env.Task
	config   Config
	discount float64
	rng      *rand.Rand

	vessel    *auv.AUV
	curve     *path.ParamCurve
	obstacles []StaticObstacle

	// Fixed evaluation course; when set, Reset keeps the path and
	// obstacle layout and only re-draws the start-pose noise
	fixedCurve     *path.ParamCurve
	fixedObstacles []StaticObstacle

	pathProg    float64
	deltaProg   float64
	totalReward float64
	lastAction  [2]float64
	currentStep ts.TimeStep
}

// New creates a PathFollow environment with randomly generated
// episodes, registers the task with it, and returns the first timestep
// of the first episode
func New(t env.Task, c Config, discount float64, seed uint64) (*PathFollow,
	ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	p := &PathFollow{
		Task:     t,
		config:   c,
		discount: discount,
		rng:      rand.New(rand.NewSource(seed)),
	}
	if task, ok := t.(*FollowPath); ok {
		task.Register(p)
	}

	firstStep, err := p.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return p, firstStep, nil
}

// NewScenario creates a PathFollow environment on a fixed path and
// obstacle layout, for evaluation on a known course. Reset re-draws
// only the start-pose noise.
func NewScenario(t env.Task, c Config, discount float64,
	curve *path.ParamCurve, obstacles []StaticObstacle,
	seed uint64) (*PathFollow, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newScenario: %v", err)
	}
	if curve == nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newScenario: curve must " +
			"not be nil")
	}

	p := &PathFollow{
		Task:           t,
		config:         c,
		discount:       discount,
		rng:            rand.New(rand.NewSource(seed)),
		fixedCurve:     curve,
		fixedObstacles: obstacles,
	}
	if task, ok := t.(*FollowPath); ok {
		task.Register(p)
	}

	firstStep, err := p.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newScenario: %v", err)
	}
	return p, firstStep, nil
}

// Reset discards the current episode and generates a fresh one,
// returning its first timestep
func (p *PathFollow) Reset() (ts.TimeStep, error) {
	p.totalReward = 0
	p.pathProg = 0
	p.deltaProg = 0
	p.lastAction = [2]float64{}

	if err := p.generate(); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	startStep := ts.New(ts.First, 0, p.discount, p.observe(), 0)
	p.currentStep = startStep
	return startStep, nil
}

// Step advances the environment one timestep given a raw action
// [propeller input, rudder position]. Out-of-range actions are clamped,
// never rejected.
func (p *PathFollow) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action.Len() != NumActions {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions must be "+
			"%d-dimensional", NumActions)
	}

	p.lastAction = [2]float64{action.AtVec(0), action.AtVec(1)}
	p.vessel.Step(action)

	x, y := p.vessel.Position()
	prog := p.curve.ClosestArcLength(x, y)
	p.deltaProg = prog - p.pathProg
	p.pathProg = prog

	obs := p.observe()
	reward := p.GetReward(p.currentStep.Observation, action, obs)
	p.totalReward += reward

	nextStep := ts.New(ts.Mid, reward, p.discount, obs,
		p.currentStep.Number+1)
	last := p.End(&nextStep)

	p.currentStep = nextStep
	return nextStep, last, nil
}

// generate draws a new episode: a random path through the origin, the
// vehicle at the perturbed path start, and obstacles scattered along
// the path. On a fixed scenario only the start pose is re-drawn.
func (p *PathFollow) generate() error {
	if p.fixedCurve != nil {
		p.curve = p.fixedCurve
		p.obstacles = p.fixedObstacles
	} else {
		var curve *path.ParamCurve
		var err error
		for attempt := 0; attempt < generateAttempts; attempt++ {
			curve, err = path.NewRandomCurveThroughOrigin(p.rng,
				DefaultWaypoints, DefaultPathLength)
			if err == nil {
				break
			}
		}
		if err != nil {
			return err
		}
		p.curve = curve
	}

	noise := p.Start()
	startX, startY := p.curve.Position(0)
	startHeading := p.curve.Direction(0)
	p.vessel = auv.New(p.config.TimeStep,
		startX+noise.AtVec(0),
		startY+noise.AtVec(1),
		startHeading+noise.AtVec(2))

	if p.fixedCurve != nil {
		return nil
	}

	p.obstacles = make([]StaticObstacle, 0, p.config.NumObstacles)
	for i := 0; i < p.config.NumObstacles; i++ {
		s := 0.9 * p.curve.Length() * (p.rng.Float64() + 0.1)
		x, y := p.curve.Position(s)
		x += obstacleSpread * (p.rng.Float64() - 0.5)
		y += obstacleSpread * (p.rng.Float64() - 0.5)
		radius := obstacleRadiusScale * (p.rng.Float64() + 0.5)

		obstacle, err := NewStaticObstacle([2]float64{x, y}, radius)
		if err != nil {
			return fmt.Errorf("generate: %v", err)
		}
		p.obstacles = append(p.obstacles, obstacle)
	}
	return nil
}

// observe assembles the observation vector from the current vehicle,
// path, and obstacle state. Every channel is clamped to its documented
// bounds. Sector closeness channels are recomputed from scratch on
// every call.
func (p *PathFollow) observe() *mat.VecDense {
	pathDirection := p.curve.Direction(p.pathProg)
	targetHeading := p.curve.Direction(p.pathProg + p.config.LOSDistance)
	headingError := geomutils.Princip(targetHeading - p.vessel.Heading())

	x, y := p.vessel.Position()
	pathX, pathY := p.curve.Position(p.pathProg)

	var alongTrack mat.VecDense
	alongTrack.MulVec(geomutils.Rotz(-pathDirection),
		mat.NewVecDense(3, []float64{pathX - x, pathY - y, 0}))
	crossTrackError := alongTrack.AtVec(1)

	obs := mat.NewVecDense(NumStates+NumSectors, nil)

	surge, sway := p.vessel.Velocity()
	obs.SetVec(0, floatutils.Clip(surge/auv.MaxSpeed, 0, 1))
	obs.SetVec(1, floatutils.Clip(sway/SwayVelocityScale, -1, 1))
	obs.SetVec(2, floatutils.Clip(headingError/math.Pi, -1, 1))
	obs.SetVec(3, floatutils.Clip(crossTrackError/p.config.LOSDistance,
		-1, 1))
	obs.SetVec(4, floatutils.Clip(p.lastAction[0], 0, 1))
	obs.SetVec(5, floatutils.Clip(p.lastAction[1], -1, 1))

	heading := geomutils.Rotz(-p.vessel.Heading())
	for _, obstacle := range p.obstacles {
		var relative mat.VecDense
		relative.MulVec(heading, mat.NewVecDense(3, []float64{
			obstacle.Position[0] - x,
			obstacle.Position[1] - y,
			0,
		}))

		dist := math.Hypot(relative.AtVec(0), relative.AtVec(1))
		if dist >= p.config.ObstacleRange+obstacle.Radius {
			continue
		}

		bearing := math.Atan2(relative.AtVec(1), relative.AtVec(0))
		fraction := (geomutils.Princip(bearing) + math.Pi) / (2 * math.Pi)
		if fraction < 0 || fraction >= 1 {
			continue
		}

		closeness := 1 - floatutils.Clip(
			(dist-p.vessel.Radius()-obstacle.Radius)/p.config.ObstacleRange,
			0, 1)

		sector := NumStates + int(math.Floor(fraction*float64(NumSectors)))
		if obs.AtVec(sector) < closeness {
			obs.SetVec(sector, closeness)
		}
	}

	return obs
}

// collision returns whether the vehicle currently overlaps any obstacle
func (p *PathFollow) collision() bool {
	x, y := p.vessel.Position()
	for _, obstacle := range p.obstacles {
		dist := math.Hypot(obstacle.Position[0]-x, obstacle.Position[1]-y)
		if dist < p.vessel.Radius()+obstacle.Radius {
			return true
		}
	}
	return false
}

// distanceToEndpoint returns the Euclidean distance from the vehicle to
// the path endpoint
func (p *PathFollow) distanceToEndpoint() float64 {
	x, y := p.vessel.Position()
	endX, endY := p.curve.Endpoint()
	return math.Hypot(endX-x, endY-y)
}

// Seed reseeds the environment's random source. Subsequent resets draw
// episodes from the new source.
func (p *PathFollow) Seed(seed uint64) {
	p.rng = rand.New(rand.NewSource(seed))
}

// CurrentTimeStep returns the last timestep of the environment
func (p *PathFollow) CurrentTimeStep() ts.TimeStep {
	return p.currentStep
}

// Vessel returns the vehicle of the current episode
func (p *PathFollow) Vessel() *auv.AUV {
	return p.vessel
}

// Path returns the path of the current episode
func (p *PathFollow) Path() *path.ParamCurve {
	return p.curve
}

// Obstacles returns the obstacles of the current episode. The returned
// slice must not be mutated.
func (p *PathFollow) Obstacles() []StaticObstacle {
	return p.obstacles
}

// Progress returns the current arc-length progress along the path.
// Progress is recomputed each step as the closest-point arc length, so
// it can move backward if the vehicle drifts off-path.
func (p *PathFollow) Progress() float64 {
	return p.pathProg
}

// DeltaProgress returns the change in progress of the most recent step
func (p *PathFollow) DeltaProgress() float64 {
	return p.deltaProg
}

// TotalReward returns the reward accumulated over the current episode
func (p *PathFollow) TotalReward() float64 {
	return p.totalReward
}

// Config returns the configuration of the environment
func (p *PathFollow) Config() Config {
	return p.config
}

// ObservationSpec returns the observation specification of the
// environment
func (p *PathFollow) ObservationSpec() env.Spec {
	n := NumStates + NumSectors
	shape := mat.NewVecDense(n, nil)

	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range upper {
		lower[i] = -1.0
		upper[i] = 1.0
	}
	lower[0] = 0.0 // surge observation
	lower[4] = 0.0 // propeller observation
	for i := NumStates; i < n; i++ {
		lower[i] = 0.0 // sector closeness
	}

	return env.NewSpec(shape, env.Observation, mat.NewVecDense(n, lower),
		mat.NewVecDense(n, upper), env.Continuous)
}

// ActionSpec returns the action specification of the environment
func (p *PathFollow) ActionSpec() env.Spec {
	shape := mat.NewVecDense(NumActions, nil)
	lower := mat.NewVecDense(NumActions, []float64{0.0, -1.0})
	upper := mat.NewVecDense(NumActions, []float64{1.0, 1.0})

	return env.NewSpec(shape, env.Action, lower, upper, env.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (p *PathFollow) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{p.discount})

	return env.NewSpec(shape, env.Discount, bound, bound, env.Continuous)
}

// String returns a string representation of the environment
func (p *PathFollow) String() string {
	x, y := p.vessel.Position()
	return fmt.Sprintf("AUV Path Follow  |  Position: (%.2f, %.2f)  |  "+
		"Heading: %.2f  |  Progress: %.1f/%.1f", x, y, p.vessel.Heading(),
		p.pathProg, p.curve.Length())
}
