// Package reinforce implements the REINFORCE Monte Carlo policy
// gradient algorithm for discrete action spaces. This implementation
// is adapted from:
//
// Sutton, R. S., Barto, A. G. (2018). Reinforcement Learning: An
// Introduction, chapter 13.
package reinforce

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/gridrl/cliffwalk/agent/policy"
	"github.com/gridrl/cliffwalk/environment"
	"github.com/gridrl/cliffwalk/network"
	ts "github.com/gridrl/cliffwalk/timestep"
)

// REINFORCE implements the REINFORCE algorithm. A behaviour policy
// with a batch size of 1 selects actions, while a training policy with
// a batch size equal to the maximum episode length computes the policy
// gradient over a full episode at once. Episodes shorter than the
// maximum length are zero padded; padded rows carry a zero action
// indicator and a zero return, so they contribute nothing to the loss
// or its gradient.
//
// The learner performs one gradient step at the end of each episode,
// maximizing the log probability of each taken action weighted by the
// discounted return following it. Returns are normalized to zero mean
// and unit standard deviation within each episode, and the loss is
// averaged over the batch. After each step the behaviour policy
// weights are set to the updated training policy weights.
type REINFORCE struct {
	behaviour   *policy.CategoricalMLP // Has its own VM
	trainPolicy *policy.CategoricalMLP
	solver      G.Solver
	vm          G.VM

	returns *G.Node // For gradient construction
	lossVal G.Value

	buffer    *episodeBuffer
	batchSize int
	features  int
	gamma     float64

	prevStep ts.TimeStep
	lastLoss float64
	eval     bool
}

// New returns a new REINFORCE agent acting in and learning from env.
func New(env environment.Environment, c Config, seed uint64) (*REINFORCE,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	features := env.ObservationSpec().Shape.Len()
	actionDims := env.ActionSpec().Shape.Len()
	init := c.InitWFn.InitWFn()

	behaviour, err := policy.NewCategoricalMLP(env, 1, G.NewGraph(),
		c.HiddenSizes, c.Biases, c.Activations, init, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour policy: %v",
			err)
	}

	trainPolicy, err := policy.NewCategoricalMLP(env, c.BatchSize,
		G.NewGraph(), c.HiddenSizes, c.Biases, c.Activations, init, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create training policy: %v",
			err)
	}

	// Both policies share a single weight initializer, so their initial
	// weights differ until synced
	if err := network.Set(behaviour.Network(),
		trainPolicy.Network()); err != nil {
		return nil, fmt.Errorf("new: could not sync policies: %v", err)
	}

	g := trainPolicy.Network().Graph()
	returns := G.NewVector(
		g,
		tensor.Float64,
		G.WithName("returns"),
		G.WithShape(c.BatchSize),
		G.WithInit(G.Zeroes()),
	)

	logProb := trainPolicy.LogPdfNode()
	loss := G.Must(G.HadamardProd(logProb, returns))
	loss = G.Must(G.Mean(loss))
	loss = G.Must(G.Neg(loss))

	r := &REINFORCE{
		behaviour:   behaviour,
		trainPolicy: trainPolicy,
		solver:      c.Solver,
		returns:     returns,

		buffer:    newEpisodeBuffer(features, actionDims),
		batchSize: c.BatchSize,
		features:  features,
		gamma:     c.Gamma,
	}
	G.Read(loss, &r.lossVal)

	learnables := trainPolicy.Network().Learnables()
	if _, err := G.Grad(loss, learnables...); err != nil {
		return nil, fmt.Errorf("new: could not compute gradient: %v", err)
	}
	r.vm = G.NewTapeMachine(g, G.BindDualValues(learnables...))

	return r, nil
}

// SelectAction samples an action from the behaviour policy at the
// given timestep.
func (r *REINFORCE) SelectAction(t ts.TimeStep) *mat.VecDense {
	return r.behaviour.SelectAction(t)
}

// ObserveFirst observes and records the first timestep in an episode
func (r *REINFORCE) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be "+
			"called on the first timestep (current timestep = %d)\n", t.Number)
	}
	r.prevStep = t
	return nil
}

// Observe observes and records any timestep other than the first
// timestep
func (r *REINFORCE) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	if !r.eval {
		transition := ts.NewTransition(r.prevStep, action.(*mat.VecDense),
			nextStep)
		if err := r.buffer.push(transition); err != nil {
			return fmt.Errorf("observe: %v", err)
		}
	}
	r.prevStep = nextStep
	return nil
}

// Step updates the training policy if a full episode has been
// observed. If the agent is in evaluation mode or the current episode
// is not over, this function simply returns.
func (r *REINFORCE) Step() error {
	if r.eval || !r.prevStep.Last() {
		return nil
	}

	obs, actions, rewards, masks := r.buffer.drain()
	episodeLength := len(actions)
	if episodeLength > r.batchSize {
		return fmt.Errorf("step: episode length (%d) exceeds the policy "+
			"batch size (%d)", episodeLength, r.batchSize)
	}

	returns := discountedReturns(rewards, masks, r.gamma)
	normalizeReturns(returns)

	// Zero pad the episode up to the policy batch size
	paddedObs := make([]float64, r.batchSize*r.features)
	copy(paddedObs, obs)
	paddedReturns := make([]float64, r.batchSize)
	copy(paddedReturns, returns)

	if err := r.trainPolicy.LogPdfOf(paddedObs, actions); err != nil {
		return fmt.Errorf("step: %v", err)
	}

	returnsTensor := tensor.NewDense(
		tensor.Float64,
		r.returns.Shape(),
		tensor.WithBacking(paddedReturns),
	)
	if err := G.Let(r.returns, returnsTensor); err != nil {
		return fmt.Errorf("step: could not set returns: %v", err)
	}

	if err := r.vm.RunAll(); err != nil {
		return fmt.Errorf("step: could not run policy gradient: %v", err)
	}
	r.lastLoss = r.lossVal.Data().(float64)

	if err := r.solver.Step(r.trainPolicy.Network().Model()); err != nil {
		return fmt.Errorf("step: could not step solver: %v", err)
	}
	r.vm.Reset()

	return network.Set(r.behaviour.Network(), r.trainPolicy.Network())
}

// EndEpisode performs cleanup at the end of an episode
func (r *REINFORCE) EndEpisode() {
	r.buffer.reset()
}

// Loss returns the loss computed at the most recent update
func (r *REINFORCE) Loss() float64 {
	return r.lastLoss
}

// Network returns the behaviour policy network
func (r *REINFORCE) Network() network.NeuralNet {
	return r.behaviour.Network()
}

// Eval sets the agent into evaluation mode. No updates are performed
// and no transitions recorded while in evaluation mode.
func (r *REINFORCE) Eval() {
	r.eval = true
	r.behaviour.Eval()
}

// Train sets the agent into training mode
func (r *REINFORCE) Train() {
	r.eval = false
	r.behaviour.Train()
}

// IsEval returns whether the agent is in evaluation mode
func (r *REINFORCE) IsEval() bool { return r.eval }
