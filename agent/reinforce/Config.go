package reinforce

import (
	"fmt"

	"github.com/gridrl/cliffwalk/agent"
	"github.com/gridrl/cliffwalk/environment"
	"github.com/gridrl/cliffwalk/initwfn"
	"github.com/gridrl/cliffwalk/network"
	"github.com/gridrl/cliffwalk/solver"
)

// Config implements a configuration of the REINFORCE algorithm
type Config struct {
	// Policy network architecture
	HiddenSizes []int
	Biases      []bool
	Activations []*network.Activation
	InitWFn     *initwfn.InitWFn

	// Solver for updating the policy weights
	Solver *solver.Solver

	// Gamma is the discount factor applied when computing episodic
	// returns
	Gamma float64

	// BatchSize is the maximum episode length, which fixes the batch
	// size of the training policy. It should equal the step limit of
	// the environment the agent acts in.
	BatchSize int
}

// Validate returns an error describing any illegal setting in the
// Config and nil otherwise
func (c Config) Validate() error {
	if len(c.HiddenSizes) == 0 {
		return fmt.Errorf("config: policy must have at least one hidden " +
			"layer")
	}
	if len(c.HiddenSizes) != len(c.Biases) ||
		len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("config: HiddenSizes, Biases, and Activations "+
			"must have equal lengths\n\thidden sizes(%v)\n\tbiases(%v)"+
			"\n\tactivations(%v)", len(c.HiddenSizes), len(c.Biases),
			len(c.Activations))
	}
	if c.InitWFn == nil {
		return fmt.Errorf("config: no weight initializer given")
	}
	if c.Solver == nil {
		return fmt.Errorf("config: no solver given")
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("config: discount factor must be in [0, 1], "+
			"got %v", c.Gamma)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch size must be positive, got %v",
			c.BatchSize)
	}
	return nil
}

// CreateAgent returns a new REINFORCE agent as described by the Config
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(env, c, seed)
}
