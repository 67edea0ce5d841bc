// Package agent defines an agent interface
package agent

import (
	"github.com/gridrl/cliffwalk/environment"
	"github.com/gridrl/cliffwalk/network"
	"github.com/gridrl/cliffwalk/timestep"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a Policy
// which chooses actions in each state. The Policy chooses which actions
// are taken, and the Learner uses these actions to update the Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()

	// Loss returns the loss computed at the most recent update
	Loss() float64
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. For a given agent, the
// Policy and Learner should have pointers to the same weights so that
// any changes the learner makes to the weights are reflected in the
// actions the Policy chooses. While a Policy is in evaluation mode, the
// Learner performs no updates.
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// NNPolicy represents a policy that uses neural network function
// approximation.
type NNPolicy interface {
	Policy
	Network() network.NeuralNet
}

// LogPdfOfer implements a policy type that can calculate the log
// of the probability density function of the policy for taking some
// (externally inputted) action in some (externally inputted) state.
// Because of this, the gradient will not be computed through the
// action selection process.
type LogPdfOfer interface {
	NNPolicy

	// LogPdfNode returns the node that calculates the log probability
	// of the policy's selected actions
	LogPdfNode() *G.Node

	// LogPdfOf sets the log probability node to calculate the log
	// probability of taking the argument actions in the argument
	// states. Inputs should be constructed in row major order.
	LogPdfOf(states, actions []float64) error
}

// Config represents a configuration of an agent and can create the
// agent it describes.
type Config interface {
	// CreateAgent returns the agent that the Config describes, set up
	// to act in and learn from the argument environment
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// Validate returns an error describing any illegal setting in the
	// Config
	Validate() error
}
