package pathfollow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Config holds every option recognized by the path-following
// environment. All numeric options are required: reward weights shape
// the learning signal, so a silently defaulted weight would silently
// change the task.
type Config struct {
	// RewardDs is the reward per unit of arc-length progress in one
	// timestep. Backward progress is penalized by the same weight.
	RewardDs float64 `json:"reward_ds"`

	// RewardCloseness weighs the squared per-sector obstacle closeness.
	// Usually negative, making it a quadratic proximity penalty.
	RewardCloseness float64 `json:"reward_closeness"`

	// RewardSurgeError weighs how far the surge observation falls below
	// the cruise target. Overspeed is never rewarded.
	RewardSurgeError float64 `json:"reward_surge_error"`

	// RewardCrossTrackError weighs the absolute cross-track error
	RewardCrossTrackError float64 `json:"reward_cross_track_error"`

	// RewardCollision is added once when a collision ends the episode.
	// It only takes effect when EndOnCollision is set.
	RewardCollision float64 `json:"reward_collision"`

	// NumObstacles is the number of obstacles scattered along the path
	NumObstacles int `json:"nobstacles"`

	// LOSDistance is the line-of-sight look-ahead distance along the
	// path
	LOSDistance float64 `json:"los_dist"`

	// ObstacleRange is the obstacle detection range
	ObstacleRange float64 `json:"obst_range"`

	// TimeStep is the simulation timestep in seconds
	TimeStep float64 `json:"t_step"`

	// CruiseSpeed is the desired cruising speed
	CruiseSpeed float64 `json:"cruise_speed"`

	// EndOnCollision ends the episode (with RewardCollision added) when
	// the vehicle overlaps an obstacle. Optional; when false, obstacles
	// only shape the reward through the closeness penalty.
	EndOnCollision bool `json:"end_on_collision"`
}

// requiredOptions are the numeric options that must be present when
// parsing a Config
var requiredOptions = []string{
	"reward_ds",
	"reward_closeness",
	"reward_surge_error",
	"reward_cross_track_error",
	"reward_collision",
	"nobstacles",
	"los_dist",
	"obst_range",
	"t_step",
	"cruise_speed",
}

// DefaultConfig returns a Config with the default task parameters
func DefaultConfig() Config {
	return Config{
		RewardDs:              1.0,
		RewardCloseness:       -0.5,
		RewardSurgeError:      -1.0,
		RewardCrossTrackError: -0.5,
		RewardCollision:       -500.0,
		NumObstacles:          20,
		LOSDistance:           20.0,
		ObstacleRange:         50.0,
		TimeStep:              0.1,
		CruiseSpeed:           1.5,
	}
}

// ParseConfig decodes a Config from JSON. Every option in
// requiredOptions must be present and numeric; a missing or malformed
// option is an error naming the offending key. The parsed Config is
// validated before being returned.
func ParseConfig(data []byte) (Config, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("parseConfig: %v", err)
	}

	options := make(map[string]float64, len(requiredOptions))
	for _, key := range requiredOptions {
		value, ok := raw[key]
		if !ok {
			return Config{}, fmt.Errorf("parseConfig: missing required "+
				"option %q", key)
		}
		number, ok := value.(json.Number)
		if !ok {
			return Config{}, fmt.Errorf("parseConfig: option %q must be "+
				"numeric, have %v", key, value)
		}
		f, err := number.Float64()
		if err != nil {
			return Config{}, fmt.Errorf("parseConfig: option %q: %v", key,
				err)
		}
		options[key] = f
	}

	config := Config{
		RewardDs:              options["reward_ds"],
		RewardCloseness:       options["reward_closeness"],
		RewardSurgeError:      options["reward_surge_error"],
		RewardCrossTrackError: options["reward_cross_track_error"],
		RewardCollision:       options["reward_collision"],
		NumObstacles:          int(options["nobstacles"]),
		LOSDistance:           options["los_dist"],
		ObstacleRange:         options["obst_range"],
		TimeStep:              options["t_step"],
		CruiseSpeed:           options["cruise_speed"],
	}

	if value, ok := raw["end_on_collision"]; ok {
		flag, ok := value.(bool)
		if !ok {
			return Config{}, fmt.Errorf("parseConfig: option "+
				"\"end_on_collision\" must be a boolean, have %v", value)
		}
		config.EndOnCollision = flag
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the ranges of every option once, at construction time
func (c Config) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("validate: t_step must be positive, have %v",
			c.TimeStep)
	}
	if c.LOSDistance <= 0 {
		return fmt.Errorf("validate: los_dist must be positive, have %v",
			c.LOSDistance)
	}
	if c.ObstacleRange <= 0 {
		return fmt.Errorf("validate: obst_range must be positive, have %v",
			c.ObstacleRange)
	}
	if c.NumObstacles < 0 {
		return fmt.Errorf("validate: nobstacles must be non-negative, "+
			"have %v", c.NumObstacles)
	}
	if c.CruiseSpeed <= 0 {
		return fmt.Errorf("validate: cruise_speed must be positive, have %v",
			c.CruiseSpeed)
	}
	return nil
}
