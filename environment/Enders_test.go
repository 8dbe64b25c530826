package environment

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"sfneuman.com/goauv/timestep"
)

func step(number int, obs []float64) timestep.TimeStep {
	return timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(len(obs), obs), number)
}

func TestStepLimit(t *testing.T) {
	ender := NewStepLimit(10)

	ts := step(9, []float64{0})
	if ender.End(&ts) {
		t.Error("episode ended before the step limit")
	}
	if ts.StepType != timestep.Mid {
		t.Errorf("step type = %v, want Mid", ts.StepType)
	}

	ts = step(10, []float64{0})
	if !ender.End(&ts) {
		t.Error("episode did not end at the step limit")
	}
	if ts.StepType != timestep.Last {
		t.Errorf("step type = %v, want Last", ts.StepType)
	}
	if ts.End() != timestep.Timeout {
		t.Errorf("end type = %v, want Timeout", ts.End())
	}
}

func TestFunctionEnder(t *testing.T) {
	ender := NewFunctionEnder(func(obs *mat.VecDense) bool {
		return obs.AtVec(0) > 1
	}, timestep.TerminalStateReached)

	ts := step(3, []float64{0.5})
	if ender.End(&ts) {
		t.Error("episode ended although the function returned false")
	}

	ts = step(4, []float64{1.5})
	if !ender.End(&ts) {
		t.Error("episode did not end although the function returned true")
	}
	if ts.End() != timestep.TerminalStateReached {
		t.Errorf("end type = %v, want TerminalStateReached", ts.End())
	}
}

func TestIntervalLimit(t *testing.T) {
	ender := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}}, []int{1},
		timestep.TerminalStateReached)

	ts := step(0, []float64{5, 0.5})
	if ender.End(&ts) {
		t.Error("episode ended although the feature was inside the interval")
	}

	ts = step(1, []float64{0, 1.5})
	if !ender.End(&ts) {
		t.Error("episode did not end although the feature left the interval")
	}
	if ts.StepType != timestep.Last {
		t.Errorf("step type = %v, want Last", ts.StepType)
	}
	if ts.End() != timestep.TerminalStateReached {
		t.Errorf("end type = %v, want TerminalStateReached", ts.End())
	}
}

func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{{Min: -1, Max: 1}, {Min: 3, Max: 4}}
	starter := NewUniformStarter(bounds, 42)

	for i := 0; i < 100; i++ {
		start := starter.Start()
		if start.Len() != 2 {
			t.Fatalf("start state has %d features, want 2", start.Len())
		}
		for j, b := range bounds {
			if start.AtVec(j) < b.Min || start.AtVec(j) > b.Max {
				t.Errorf("feature %d = %v outside [%v, %v]", j,
					start.AtVec(j), b.Min, b.Max)
			}
		}
	}
}
