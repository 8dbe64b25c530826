package main

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"sfneuman.com/goauv/environment/envconfig"
	"sfneuman.com/goauv/environment/marine/pathfollow"
)

func main() {
	var seed uint64 = 192382

	// Create the environment
	conf := envconfig.NewConfig(envconfig.AUVPathFollow,
		envconfig.FollowPath, 2000, 0.99, pathfollow.DefaultConfig())
	e, step, err := conf.Create(seed)
	if err != nil {
		panic(err)
	}

	// Random policy
	src := rand.NewSource(seed)
	propeller := distuv.Uniform{Min: 0.0, Max: 1.0, Src: src}
	rudder := distuv.Uniform{Min: -1.0, Max: 1.0, Src: src}

	for episode := 0; episode < 3; episode++ {
		for {
			action := mat.NewVecDense(2, []float64{
				propeller.Rand(),
				rudder.Rand(),
			})

			next, last, err := e.Step(action)
			if err != nil {
				panic(err)
			}
			step = next

			if last {
				break
			}
		}

		auvEnv := e.(*pathfollow.PathFollow)
		fmt.Printf("episode %d: %v  end: %v\n", episode, step, step.End())
		fmt.Printf("episode %d: return: %.2f  progress: %.1f/%.1f\n",
			episode, auvEnv.TotalReward(), auvEnv.Progress(),
			auvEnv.Path().Length())

		if _, err := e.Reset(); err != nil {
			panic(err)
		}
	}
}
