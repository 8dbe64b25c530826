package pathfollow

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	env "sfneuman.com/goauv/environment"
	"sfneuman.com/goauv/environment/marine/auv"
	ts "sfneuman.com/goauv/timestep"
)

// FollowPath implements the task of following the episode's path to its
// end while staying clear of obstacles. The task's Starter provides
// start-pose noise [Δx, Δy, Δψ] applied to the path start, not an
// absolute starting state.
//
// An episode ends when the remaining arc length or the distance to the
// path endpoint enters the goal region, when the accumulated reward
// falls below DivergenceLimit, when the step limit is reached, or, if
// the environment's Config enables it, when the vehicle collides with
// an obstacle.
//
// A FollowPath must be registered with its PathFollow environment
// before use; pathfollow.New and pathfollow.NewScenario do this
// automatically.
type FollowPath struct {
	env.Starter
	stepLimit env.Ender

	pathFollow *PathFollow
	registered bool
}

// NewFollowPath returns a new FollowPath task with start-pose noise
// drawn from s and episodes cut off after maxSteps steps
func NewFollowPath(s env.Starter, maxSteps int) *FollowPath {
	return &FollowPath{
		Starter:   s,
		stepLimit: env.NewStepLimit(maxSteps),
	}
}

// NewDefaultStarter returns the start-pose noise distribution of the
// reference task: position noise of ±PositionNoise per axis and heading
// noise of ±HeadingNoise
func NewDefaultStarter(seed uint64) env.Starter {
	return env.NewUniformStarter([]r1.Interval{
		{Min: -PositionNoise, Max: PositionNoise},
		{Min: -PositionNoise, Max: PositionNoise},
		{Min: -HeadingNoise, Max: HeadingNoise},
	}, seed)
}

// Register registers the environment whose episodes this task scores
func (f *FollowPath) Register(p *PathFollow) {
	f.pathFollow = p
	f.registered = true
}

// GetReward returns the reward for arriving in nextState, the most
// recent observation. Progress, cross-track, and surge terms apply only
// while the step does not terminate the episode; the obstacle closeness
// penalty applies unconditionally.
func (f *FollowPath) GetReward(_, _, nextState mat.Vector) float64 {
	config := f.pathFollow.config
	reward := 0.0

	// Gate on the episode-ending conditions as they stood before this
	// step's reward is accumulated
	done := false
	if f.pathFollow.totalReward < DivergenceLimit {
		done = true
	}

	remaining := math.Abs(f.pathFollow.pathProg - f.pathFollow.curve.Length())
	if !done && remaining < GoalArcLengthTolerance {
		done = true
	}

	if config.EndOnCollision && !done && f.pathFollow.collision() {
		done = true
		reward += config.RewardCollision
	}

	if !done && f.pathFollow.distanceToEndpoint() < GoalDistance {
		done = true
	}

	if !done {
		reward += f.pathFollow.deltaProg * config.RewardDs
	}

	for sector := 0; sector < NumSectors; sector++ {
		closeness := nextState.AtVec(NumStates + sector)
		reward += config.RewardCloseness * closeness * closeness
	}

	if !done {
		surgeError := nextState.AtVec(0) - config.CruiseSpeed/auv.MaxSpeed
		crossTrackError := nextState.AtVec(3)

		reward += math.Abs(crossTrackError) * config.RewardCrossTrackError
		reward += math.Max(0, -surgeError) * config.RewardSurgeError
	}

	return reward
}

// End determines whether the current episode should end, adjusting the
// timestep's StepType and EndType if so. The divergence guard is
// evaluated on the accumulated reward including the current step, so an
// episode ends on the step that crosses DivergenceLimit.
func (f *FollowPath) End(t *ts.TimeStep) bool {
	if f.pathFollow.totalReward < DivergenceLimit {
		t.StepType = ts.Last
		t.SetEnd(ts.Diverged)
		return true
	}

	remaining := math.Abs(f.pathFollow.pathProg - f.pathFollow.curve.Length())
	if remaining < GoalArcLengthTolerance ||
		f.pathFollow.distanceToEndpoint() < GoalDistance {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}

	if f.pathFollow.config.EndOnCollision && f.pathFollow.collision() {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}

	return f.stepLimit.End(t)
}

// AtGoal returns whether the position held in state (a 2x1 matrix) is
// within the goal region around the path endpoint
func (f *FollowPath) AtGoal(state mat.Matrix) bool {
	rows, cols := state.Dims()
	if rows != 2 || cols != 1 {
		return false
	}

	endX, endY := f.pathFollow.curve.Endpoint()
	return math.Hypot(state.At(0, 0)-endX, state.At(1, 0)-endY) < GoalDistance
}
