package actorcritic

import (
	"fmt"

	"github.com/gridrl/cliffwalk/agent"
	"github.com/gridrl/cliffwalk/environment"
	"github.com/gridrl/cliffwalk/initwfn"
	"github.com/gridrl/cliffwalk/network"
	"github.com/gridrl/cliffwalk/solver"
)

// Config implements a configuration of the one-step actor-critic
// algorithm
type Config struct {
	// Architecture of the root network shared between the actor and
	// critic leaves
	HiddenSizes []int
	Biases      []bool
	Activations []*network.Activation
	InitWFn     *initwfn.InitWFn

	// Solver for updating the actor and critic weights. The TD error
	// on a cliff transition is two orders of magnitude larger than on
	// a regular step, so the solver should clip gradients
	Solver *solver.Solver

	// Gamma is the discount factor used in the one-step update target
	Gamma float64
}

// Validate returns an error describing any illegal setting in the
// Config and nil otherwise
func (c Config) Validate() error {
	if len(c.HiddenSizes) == 0 {
		return fmt.Errorf("config: root network must have at least one " +
			"hidden layer")
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
	return nil
}

// CreateAgent returns a new ActorCritic agent as described by the
// Config
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(env, c, seed)
}
