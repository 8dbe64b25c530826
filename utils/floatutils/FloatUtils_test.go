package floatutils

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	cases := []struct {
		value, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-0.5, 0, 1, 0},
		{1.5, 0, 1, 1},
		{-2, -1, 1, -1},
		{1, 1, 1, 1},
	}

	for _, c := range cases {
		if got := Clip(c.value, c.min, c.max); got != c.want {
			t.Errorf("clip(%v, %v, %v) = %v, want %v", c.value, c.min,
				c.max, got, c.want)
		}
	}
}

func TestLerp(t *testing.T) {
	interval := r1.Interval{Min: -2, Max: 4}

	if got := Lerp(0, interval); got != -2 {
		t.Errorf("lerp(0) = %v, want -2", got)
	}
	if got := Lerp(1, interval); got != 4 {
		t.Errorf("lerp(1) = %v, want 4", got)
	}
	if got := Lerp(0.5, interval); got != 1 {
		t.Errorf("lerp(0.5) = %v, want 1", got)
	}
}

func TestMinMax(t *testing.T) {
	if got := Min(3, -1, 2); got != -1 {
		t.Errorf("min = %v, want -1", got)
	}
	if got := Max(3, -1, 2); got != 3 {
		t.Errorf("max = %v, want 3", got)
	}
}
