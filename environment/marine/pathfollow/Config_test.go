package pathfollow

import (
	"strings"
	"testing"
)

const validConfigJSON = `{
	"reward_ds": 1.0,
	"reward_closeness": -0.5,
	"reward_surge_error": -1.0,
	"reward_cross_track_error": -0.5,
	"reward_collision": -500,
	"nobstacles": 20,
	"los_dist": 20,
	"obst_range": 50,
	"t_step": 0.1,
	"cruise_speed": 1.5,
	"end_on_collision": true
}`

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(validConfigJSON))
	if err != nil {
		t.Fatal(err)
	}

	if config.RewardDs != 1.0 {
		t.Errorf("reward_ds = %v, want 1.0", config.RewardDs)
	}
	if config.NumObstacles != 20 {
		t.Errorf("nobstacles = %v, want 20", config.NumObstacles)
	}
	if config.TimeStep != 0.1 {
		t.Errorf("t_step = %v, want 0.1", config.TimeStep)
	}
	if !config.EndOnCollision {
		t.Error("end_on_collision = false, want true")
	}
}

func TestParseConfigMissingOption(t *testing.T) {
	data := strings.Replace(validConfigJSON, `"cruise_speed": 1.5,`, "", 1)

	_, err := ParseConfig([]byte(data))
	if err == nil {
		t.Fatal("expected an error for a missing option")
	}
	if !strings.Contains(err.Error(), "cruise_speed") {
		t.Errorf("error %q does not name the missing option", err)
	}
}

func TestParseConfigMalformedOption(t *testing.T) {
	data := strings.Replace(validConfigJSON, `"los_dist": 20`,
		`"los_dist": "twenty"`, 1)

	_, err := ParseConfig([]byte(data))
	if err == nil {
		t.Fatal("expected an error for a non-numeric option")
	}
	if !strings.Contains(err.Error(), "los_dist") {
		t.Errorf("error %q does not name the malformed option", err)
	}
}

func TestParseConfigMalformedFlag(t *testing.T) {
	data := strings.Replace(validConfigJSON, `"end_on_collision": true`,
		`"end_on_collision": 1`, 1)

	if _, err := ParseConfig([]byte(data)); err == nil {
		t.Error("expected an error for a non-boolean end_on_collision")
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	cases := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero t_step", func(c *Config) { c.TimeStep = 0 }},
		{"negative los_dist", func(c *Config) { c.LOSDistance = -1 }},
		{"zero obst_range", func(c *Config) { c.ObstacleRange = 0 }},
		{"negative nobstacles", func(c *Config) { c.NumObstacles = -1 }},
		{"zero cruise_speed", func(c *Config) { c.CruiseSpeed = 0 }},
	}

	for _, c := range cases {
		config := DefaultConfig()
		c.modify(&config)
		if err := config.Validate(); err == nil {
			t.Errorf("%v: expected a validation error", c.name)
		}
	}
}

func TestNewStaticObstacle(t *testing.T) {
	obstacle, err := NewStaticObstacle([2]float64{3, -4}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if obstacle.Position != [2]float64{3, -4} || obstacle.Radius != 2 {
		t.Errorf("obstacle = %v", obstacle)
	}

	if _, err := NewStaticObstacle([2]float64{0, 0}, 0); err == nil {
		t.Error("expected an error for a non-positive radius")
	}
	if _, err := NewStaticObstacle([2]float64{0, 0}, -1); err == nil {
		t.Error("expected an error for a negative radius")
	}
}
