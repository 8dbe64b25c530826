package pathfollow

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	env "sfneuman.com/goauv/environment"
	"sfneuman.com/goauv/environment/marine/path"
	ts "sfneuman.com/goauv/timestep"
)

// zeroNoiseStarter returns a Starter that places the vehicle exactly at
// the path start
func zeroNoiseStarter() env.Starter {
	return env.NewUniformStarter([]r1.Interval{
		{Min: 0, Max: 0},
		{Min: 0, Max: 0},
		{Min: 0, Max: 0},
	}, 1)
}

func straightCurve(t *testing.T, length float64) *path.ParamCurve {
	t.Helper()
	curve, err := path.NewParamCurve([][2]float64{{0, 0}, {length, 0}})
	if err != nil {
		t.Fatal(err)
	}
	return curve
}

func TestScenarioStraightPath(t *testing.T) {
	curve := straightCurve(t, 100)
	task := NewFollowPath(zeroNoiseStarter(), 2000)

	e, step, err := NewScenario(task, DefaultConfig(), 0.99, curve, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if step.StepType != ts.First {
		t.Fatalf("first step type = %v, want First", step.StepType)
	}

	// Full thrust, centered rudder: the vehicle should drive straight
	// down the path and reach the goal region well before the cutoff
	action := mat.NewVecDense(2, []float64{1, 0})
	prevX := 0.0
	last := false
	for i := 0; i < 2000 && !last; i++ {
		step, last, err = e.Step(action)
		if err != nil {
			t.Fatal(err)
		}

		x, _ := e.Vessel().Position()
		if i >= 1 && x <= prevX {
			t.Fatalf("step %d: x = %v did not increase past %v", i, x, prevX)
		}
		prevX = x
	}

	if !last {
		t.Fatal("episode did not end within the step limit")
	}
	if step.End() != ts.TerminalStateReached {
		t.Errorf("end type = %v, want TerminalStateReached", step.End())
	}
	if e.Progress() < curve.Length()-GoalDistance-GoalArcLengthTolerance {
		t.Errorf("progress = %v, want within the goal region of %v",
			e.Progress(), curve.Length())
	}
}

func TestScenarioResetKeepsCourse(t *testing.T) {
	curve := straightCurve(t, 100)
	obstacles := []StaticObstacle{
		{Position: [2]float64{50, 20}, Radius: 5},
	}
	task := NewFollowPath(zeroNoiseStarter(), 2000)

	e, _, err := NewScenario(task, DefaultConfig(), 0.99, curve, obstacles, 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Reset(); err != nil {
		t.Fatal(err)
	}

	if e.Path() != curve {
		t.Error("reset replaced the fixed path")
	}
	if len(e.Obstacles()) != 1 || e.Obstacles()[0] != obstacles[0] {
		t.Errorf("reset replaced the fixed obstacles: %v", e.Obstacles())
	}
}

func TestSectorObservation(t *testing.T) {
	// Vehicle at the path start (0, 0) heading 0, obstacle dead ahead at
	// (15, 0) with radius 5. With a detection range of 20 and a vehicle
	// radius of 4, closeness is 1 - (15-4-5)/20 = 0.7, and a bearing of
	// 0 falls in the sector just left of dead ahead.
	curve := straightCurve(t, 100)
	obstacles := []StaticObstacle{
		{Position: [2]float64{15, 0}, Radius: 5},
	}

	config := DefaultConfig()
	config.ObstacleRange = 20

	task := NewFollowPath(zeroNoiseStarter(), 2000)
	_, step, err := NewScenario(task, config, 0.99, curve, obstacles, 1)
	if err != nil {
		t.Fatal(err)
	}

	forwardSector := NumStates + NumSectors/2
	if got := step.Observation.AtVec(forwardSector); math.Abs(got-0.7) > 1e-12 {
		t.Errorf("closeness in forward sector = %v, want 0.7", got)
	}

	for sector := 0; sector < NumSectors; sector++ {
		if NumStates+sector == forwardSector {
			continue
		}
		if got := step.Observation.AtVec(NumStates + sector); got != 0 {
			t.Errorf("closeness in sector %d = %v, want 0", sector, got)
		}
	}
}

func TestSectorObservationOutOfRange(t *testing.T) {
	curve := straightCurve(t, 100)
	obstacles := []StaticObstacle{
		{Position: [2]float64{50, 0}, Radius: 5},
	}

	config := DefaultConfig()
	config.ObstacleRange = 20

	task := NewFollowPath(zeroNoiseStarter(), 2000)
	_, step, err := NewScenario(task, config, 0.99, curve, obstacles, 1)
	if err != nil {
		t.Fatal(err)
	}

	for sector := 0; sector < NumSectors; sector++ {
		if got := step.Observation.AtVec(NumStates + sector); got != 0 {
			t.Errorf("closeness in sector %d = %v, want 0", sector, got)
		}
	}
}

func TestDivergenceEndsEpisode(t *testing.T) {
	// An obstacle sitting on the vehicle gives closeness 1 in one
	// sector. With a closeness weight of -151 and every other weight
	// zero, the accumulated reward crosses the divergence limit of -300
	// on the second step.
	curve := straightCurve(t, 100)
	obstacles := []StaticObstacle{
		{Position: [2]float64{0, 0}, Radius: 10},
	}

	config := DefaultConfig()
	config.RewardDs = 0
	config.RewardCloseness = -151
	config.RewardSurgeError = 0
	config.RewardCrossTrackError = 0

	task := NewFollowPath(zeroNoiseStarter(), 2000)
	e, _, err := NewScenario(task, config, 0.99, curve, obstacles, 1)
	if err != nil {
		t.Fatal(err)
	}

	still := mat.NewVecDense(2, []float64{0, 0})

	step, last, err := e.Step(still)
	if err != nil {
		t.Fatal(err)
	}
	if last {
		t.Fatal("episode ended before the accumulated reward crossed the " +
			"divergence limit")
	}
	if math.Abs(step.Reward+151) > 1e-12 {
		t.Fatalf("step reward = %v, want -151", step.Reward)
	}

	step, last, err = e.Step(still)
	if err != nil {
		t.Fatal(err)
	}
	if !last {
		t.Fatal("episode did not end on the step crossing the divergence " +
			"limit")
	}
	if step.End() != ts.Diverged {
		t.Errorf("end type = %v, want Diverged", step.End())
	}
	if math.Abs(e.TotalReward()+302) > 1e-12 {
		t.Errorf("total reward = %v, want -302", e.TotalReward())
	}
}

func TestCollisionEndsEpisode(t *testing.T) {
	curve := straightCurve(t, 100)
	obstacles := []StaticObstacle{
		{Position: [2]float64{0, 0}, Radius: 10},
	}

	config := DefaultConfig()
	config.RewardDs = 0
	config.RewardCloseness = 0
	config.RewardSurgeError = 0
	config.RewardCrossTrackError = 0
	config.RewardCollision = -100
	config.EndOnCollision = true

	task := NewFollowPath(zeroNoiseStarter(), 2000)
	e, _, err := NewScenario(task, config, 0.99, curve, obstacles, 1)
	if err != nil {
		t.Fatal(err)
	}

	step, last, err := e.Step(mat.NewVecDense(2, []float64{0, 0}))
	if err != nil {
		t.Fatal(err)
	}
	if !last {
		t.Fatal("episode did not end on collision")
	}
	if step.End() != ts.TerminalStateReached {
		t.Errorf("end type = %v, want TerminalStateReached", step.End())
	}
	if math.Abs(step.Reward+100) > 1e-12 {
		t.Errorf("step reward = %v, want the collision reward -100",
			step.Reward)
	}
}

func TestObservationBounds(t *testing.T) {
	starter := NewDefaultStarter(11)
	task := NewFollowPath(starter, 500)

	e, step, err := New(task, DefaultConfig(), 0.99, 11)
	if err != nil {
		t.Fatal(err)
	}

	spec := e.ObservationSpec()
	rng := rand.New(rand.NewSource(13))

	checkBounds := func(i int, obs *mat.VecDense) {
		for j := 0; j < obs.Len(); j++ {
			v := obs.AtVec(j)
			if v < spec.LowerBound.AtVec(j) || v > spec.UpperBound.AtVec(j) {
				t.Fatalf("step %d: channel %d = %v outside [%v, %v]", i, j,
					v, spec.LowerBound.AtVec(j), spec.UpperBound.AtVec(j))
			}
		}
	}
	checkBounds(0, step.Observation)

	// Deliberately out-of-range actions still produce bounded
	// observations
	for i := 0; i < 200; i++ {
		action := mat.NewVecDense(2, []float64{
			4*rng.Float64() - 2,
			4*rng.Float64() - 2,
		})

		next, last, err := e.Step(action)
		if err != nil {
			t.Fatal(err)
		}
		checkBounds(i+1, next.Observation)

		if last {
			if _, err := e.Reset(); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestDeterministicEpisodes(t *testing.T) {
	build := func() *PathFollow {
		task := NewFollowPath(NewDefaultStarter(3), 500)
		e, _, err := New(task, DefaultConfig(), 0.99, 3)
		if err != nil {
			t.Fatal(err)
		}
		return e
	}

	a, b := build(), build()
	rng := rand.New(rand.NewSource(17))

	for i := 0; i < 200; i++ {
		action := mat.NewVecDense(2, []float64{
			rng.Float64(),
			2*rng.Float64() - 1,
		})

		stepA, lastA, err := a.Step(action)
		if err != nil {
			t.Fatal(err)
		}
		stepB, lastB, err := b.Step(action)
		if err != nil {
			t.Fatal(err)
		}

		if stepA.Reward != stepB.Reward {
			t.Fatalf("step %d: rewards differ: %v != %v", i, stepA.Reward,
				stepB.Reward)
		}
		if !mat.Equal(stepA.Observation, stepB.Observation) {
			t.Fatalf("step %d: observations differ", i)
		}
		if lastA != lastB {
			t.Fatalf("step %d: termination differs", i)
		}

		if lastA {
			if _, err := a.Reset(); err != nil {
				t.Fatal(err)
			}
			if _, err := b.Reset(); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestStepActionDimensions(t *testing.T) {
	task := NewFollowPath(NewDefaultStarter(5), 500)
	e, _, err := New(task, DefaultConfig(), 0.99, 5)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := e.Step(mat.NewVecDense(3, nil)); err == nil {
		t.Error("expected an error for a 3-dimensional action")
	}
}

func TestAtGoal(t *testing.T) {
	curve := straightCurve(t, 100)
	task := NewFollowPath(zeroNoiseStarter(), 2000)

	_, _, err := NewScenario(task, DefaultConfig(), 0.99, curve, nil, 1)
	if err != nil {
		t.Fatal(err)
	}

	if !task.AtGoal(mat.NewDense(2, 1, []float64{95, 3})) {
		t.Error("position near the endpoint should be at goal")
	}
	if task.AtGoal(mat.NewDense(2, 1, []float64{50, 0})) {
		t.Error("position far from the endpoint should not be at goal")
	}
	if task.AtGoal(mat.NewDense(3, 1, []float64{95, 3, 0})) {
		t.Error("a non 2x1 state should never be at goal")
	}
}

func TestSpecs(t *testing.T) {
	task := NewFollowPath(NewDefaultStarter(9), 500)
	e, _, err := New(task, DefaultConfig(), 0.99, 9)
	if err != nil {
		t.Fatal(err)
	}

	obsSpec := e.ObservationSpec()
	if obsSpec.Shape.Len() != NumStates+NumSectors {
		t.Errorf("observation dimensions = %v, want %v", obsSpec.Shape.Len(),
			NumStates+NumSectors)
	}

	actionSpec := e.ActionSpec()
	if actionSpec.Shape.Len() != NumActions {
		t.Errorf("action dimensions = %v, want %v", actionSpec.Shape.Len(),
			NumActions)
	}
	if actionSpec.LowerBound.AtVec(0) != 0 ||
		actionSpec.LowerBound.AtVec(1) != -1 {
		t.Errorf("action lower bound = %v", actionSpec.LowerBound)
	}

	discountSpec := e.DiscountSpec()
	if discountSpec.LowerBound.AtVec(0) != 0.99 {
		t.Errorf("discount = %v, want 0.99", discountSpec.LowerBound.AtVec(0))
	}
}

func BenchmarkStep(b *testing.B) {
	task := NewFollowPath(NewDefaultStarter(21), 1000)
	e, _, err := New(task, DefaultConfig(), 0.99, 21)
	if err != nil {
		b.Fatal(err)
	}

	action := mat.NewVecDense(2, []float64{1, 0.1})
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, last, err := e.Step(action)
		if err != nil {
			b.Fatal(err)
		}
		if last {
			if _, err := e.Reset(); err != nil {
				b.Fatal(err)
			}
		}
	}
}
