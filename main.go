package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gridrl/cliffwalk/agent"
	"github.com/gridrl/cliffwalk/agent/actorcritic"
	"github.com/gridrl/cliffwalk/agent/reinforce"
	"github.com/gridrl/cliffwalk/environment/cliffwalking"
	"github.com/gridrl/cliffwalk/experiment"
	"github.com/gridrl/cliffwalk/experiment/tracker"
	"github.com/gridrl/cliffwalk/initwfn"
	"github.com/gridrl/cliffwalk/network"
	"github.com/gridrl/cliffwalk/solver"
)

// Config collects the settings of a single training run
type Config struct {
	Rows      int
	Cols      int
	StepLimit int

	Gamma        float64
	LearningRate float64
	HiddenSize   int
	Seed         uint64

	Episodes     int
	EvalInterval int
	EvalRollouts int
	LogInterval  int
}

// hiddenSize returns the configured hidden layer width, falling back
// to the algorithm default when unset
func hiddenSize(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}

func main() {
	var algorithm string
	config := Config{}

	flag.StringVar(&algorithm, "agent", "reinforce",
		"learning algorithm to run: reinforce or actorcritic")
	flag.IntVar(&config.Rows, "rows", 4, "number of grid rows")
	flag.IntVar(&config.Cols, "cols", 12, "number of grid columns")
	flag.IntVar(&config.StepLimit, "steplimit", 500,
		"maximum number of steps per episode")
	flag.Float64Var(&config.Gamma, "gamma", 1.0, "discount factor")
	flag.Float64Var(&config.LearningRate, "lr", 1e-4, "learning rate")
	flag.IntVar(&config.HiddenSize, "hidden", 0,
		"hidden layer width (0 uses the algorithm default)")
	flag.Uint64Var(&config.Seed, "seed", 1111, "random seed")
	flag.IntVar(&config.Episodes, "episodes", 6000,
		"number of training episodes")
	flag.IntVar(&config.EvalInterval, "evalinterval", 20,
		"training episodes between evaluations")
	flag.IntVar(&config.EvalRollouts, "evalrollouts", 100,
		"episodes per evaluation")
	flag.IntVar(&config.LogInterval, "loginterval", 10,
		"training episodes between loss reports")
	flag.Parse()

	env, _, err := cliffwalking.New(config.Rows, config.Cols,
		config.Gamma, config.StepLimit)
	if err != nil {
		log.Fatalf("could not create environment: %v", err)
	}
	log.Printf("%v", env)

	init, err := initwfn.NewGlorotU(1.0, config.Seed)
	if err != nil {
		log.Fatalf("could not create weight initializer: %v", err)
	}
	var agentConfig agent.Config
	switch algorithm {
	case "reinforce":
		adam, err := solver.NewDefaultAdam(config.LearningRate, 1)
		if err != nil {
			log.Fatalf("could not create solver: %v", err)
		}
		agentConfig = reinforce.Config{
			HiddenSizes: []int{hiddenSize(config.HiddenSize, 256)},
			Biases:      []bool{true},
			Activations: []*network.Activation{network.ReLU()},
			InitWFn:     init,
			Solver:      adam,
			Gamma:       config.Gamma,
			BatchSize:   config.StepLimit,
		}
	case "actorcritic":
		adam, err := solver.NewClippedAdam(config.LearningRate, 1.0, 1)
		if err != nil {
			log.Fatalf("could not create solver: %v", err)
		}
		agentConfig = actorcritic.Config{
			HiddenSizes: []int{hiddenSize(config.HiddenSize, 20)},
			Biases:      []bool{true},
			Activations: []*network.Activation{network.SELU()},
			InitWFn:     init,
			Solver:      adam,
			Gamma:       config.Gamma,
		}
	default:
		log.Fatalf("unknown agent %q: expected reinforce or actorcritic",
			algorithm)
	}

	a, err := agentConfig.CreateAgent(env, config.Seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	returns := tracker.NewReturn(fmt.Sprintf("%s_returns.bin", algorithm))
	e, err := experiment.NewOnline(env, a, experiment.Config{
		Episodes:     config.Episodes,
		EvalInterval: config.EvalInterval,
		EvalRollouts: config.EvalRollouts,
		LogInterval:  config.LogInterval,
	}, returns)
	if err != nil {
		log.Fatalf("could not create experiment: %v", err)
	}

	if err := e.Run(); err != nil {
		log.Fatalf("experiment failed: %v", err)
	}
	if err := e.Save(); err != nil {
		log.Fatalf("could not save experiment data: %v", err)
	}

	curve := tracker.NewLearningCurve(
		fmt.Sprintf("%s_learning_curve.png", algorithm))
	episodes := e.EvalEpisodes()
	for i, score := range e.EvalScores() {
		curve.Add(episodes[i], score)
	}
	if err := curve.Save(); err != nil {
		log.Fatalf("could not save learning curve: %v", err)
	}

	scores := e.EvalScores()
	if len(scores) > 0 {
		log.Printf("final average evaluation score: %.2f",
			scores[len(scores)-1])
	}
}
