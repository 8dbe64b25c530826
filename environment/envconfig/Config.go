// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	env "sfneuman.com/goauv/environment"
	"sfneuman.com/goauv/environment/marine/pathfollow"
	ts "sfneuman.com/goauv/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	AUVPathFollow EnvName = "AUVPathFollow"
)

// TaskName stores the tasks that can be configured with this package.
// The tasks that can be used with each environment are as follows:
//
//	Environment			Task
//	AUVPathFollow		FollowPath
type TaskName string

// Tasks available for configuration
const (
	FollowPath TaskName = "FollowPath"
)

// Config implements a specific configuration of a specific environment
// and specific task. Not all environments can have all tasks.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff uint
	Discount      float64
	PathFollow    pathfollow.Config
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, taskName TaskName, episodeCutoff uint,
	discount float64, pathFollowConfig pathfollow.Config) Config {
	return Config{
		Environment:   envName,
		Task:          taskName,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
		PathFollow:    pathFollowConfig,
	}
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	switch c.Environment {
	case AUVPathFollow:
		return CreateAUVPathFollow(c.Task, c.PathFollow,
			int(c.EpisodeCutoff), seed, c.Discount)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: cannot create "+
		"environment %v, no such environment", c.Environment)
}

// CreateAUVPathFollow is a factory for creating the AUV path-following
// environment with the reference start-pose noise and task parameters.
func CreateAUVPathFollow(taskName TaskName, config pathfollow.Config,
	cutoff int, seed uint64, discount float64) (env.Environment,
	ts.TimeStep, error) {
	var task env.Task
	switch taskName {
	case FollowPath:
		s := pathfollow.NewDefaultStarter(seed)
		task = pathfollow.NewFollowPath(s, cutoff)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createAUVPathFollow: "+
			"AUVPathFollow environment has no task %v", taskName)
	}

	auvEnv, firstStep, err := pathfollow.New(task, config, discount, seed)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}
	return auvEnv, firstStep, nil
}
