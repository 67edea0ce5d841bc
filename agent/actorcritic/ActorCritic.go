// Package actorcritic implements the one-step actor-critic algorithm
// for discrete action spaces. This implementation is adapted from:
//
// Sutton, R. S., Barto, A. G. (2018). Reinforcement Learning: An
// Introduction, chapter 13.
package actorcritic

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

// ActorCritic implements the one-step actor-critic algorithm. A single
// tree MLP parameterizes both the actor and the critic: a shared root
// network feeds an actor leaf predicting action logits and a critic
// leaf predicting the state value.
//
// The learner performs one gradient step per environmental step on the
// combined loss
//
//	-logπ(A|S)·(δ) + (v(S) - target)²
//
// where target = R + γ·v(S') and δ = target - v(S). Both the advantage
// δ and the value target are computed outside the computation graph
// from the behaviour network, so the gradient does not flow through
// them. After each step the behaviour network weights are set to the
// updated training network weights.
type ActorCritic struct {
	behaviour   *policy.CategoricalMLP // Has its own VM
	trainPolicy *policy.CategoricalMLP
	solver      G.Solver
	vm          G.VM

	advantage   *G.Node // For gradient construction
	valueTarget *G.Node // For gradient construction
	lossVal     G.Value

	gamma    float64
	features int

	prevStep       ts.TimeStep
	transition     ts.Transition
	haveTransition bool

	lossSum   float64
	lossSteps int
	eval      bool
}

// New returns a new ActorCritic agent acting in and learning from env.
func New(env environment.Environment, c Config, seed uint64) (*ActorCritic,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if env.ActionSpec().Cardinality == environment.Continuous {
		return nil, fmt.Errorf("new: actor-critic softmax policy cannot " +
			"be used with continuous actions")
	}

	features := env.ObservationSpec().Shape.Len()
	numActions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1
	init := c.InitWFn.InitWFn()

	behaviourNet, err := network.NewTreeMLP(features, 1,
		[]int{numActions, 1}, G.NewGraph(), c.HiddenSizes, c.Biases,
		c.Activations, init)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour network: %v",
			err)
	}
	behaviour, err := policy.NewCategoricalMLPFromNet(behaviourNet, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour policy: %v",
			err)
	}

	trainNet, err := network.NewTreeMLP(features, 1,
		[]int{numActions, 1}, G.NewGraph(), c.HiddenSizes, c.Biases,
		c.Activations, init)
	if err != nil {
		return nil, fmt.Errorf("new: could not create training network: %v",
			err)
	}
	trainPolicy, err := policy.NewCategoricalMLPFromNet(trainNet, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create training policy: %v",
			err)
	}

	// Both networks share a single weight initializer, so their
	// initial weights differ until synced
	if err := network.Set(behaviourNet, trainNet); err != nil {
		return nil, fmt.Errorf("new: could not sync networks: %v", err)
	}

	g := trainNet.Graph()
	advantage := G.NewVector(
		g,
		tensor.Float64,
		G.WithName("advantage"),
		G.WithShape(1),
		G.WithInit(G.Zeroes()),
	)
	valueTarget := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithName("valueTarget"),
		G.WithShape(1, 1),
		G.WithInit(G.Zeroes()),
	)

	logProb := trainPolicy.LogPdfNode()
	policyLoss := G.Must(G.HadamardProd(logProb, advantage))
	policyLoss = G.Must(G.Mean(policyLoss))
	policyLoss = G.Must(G.Neg(policyLoss))

	value := trainNet.Prediction()[1]
	valueLoss := G.Must(G.Sub(value, valueTarget))
	valueLoss = G.Must(G.Square(valueLoss))
	valueLoss = G.Must(G.Mean(valueLoss))

	loss := G.Must(G.Add(policyLoss, valueLoss))

	a := &ActorCritic{
		behaviour:   behaviour,
		trainPolicy: trainPolicy,
		solver:      c.Solver,
		advantage:   advantage,
		valueTarget: valueTarget,

		gamma:    c.Gamma,
		features: features,
	}
	G.Read(loss, &a.lossVal)

	learnables := trainNet.Learnables()
	if _, err := G.Grad(loss, learnables...); err != nil {
		return nil, fmt.Errorf("new: could not compute gradient: %v", err)
	}
	a.vm = G.NewTapeMachine(g, G.BindDualValues(learnables...))

	return a, nil
}

// SelectAction samples an action from the behaviour policy at the
// given timestep.
func (a *ActorCritic) SelectAction(t ts.TimeStep) *mat.VecDense {
	return a.behaviour.SelectAction(t)
}

// ObserveFirst observes and records the first timestep in an episode
func (a *ActorCritic) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be "+
			"called on the first timestep (current timestep = %d)\n", t.Number)
	}
	a.prevStep = t
	a.haveTransition = false
	return nil
}

// Observe observes and records any timestep other than the first
// timestep
func (a *ActorCritic) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	if !a.eval {
		a.transition = ts.NewTransition(a.prevStep, action.(*mat.VecDense),
			nextStep)
		a.haveTransition = true
	}
	a.prevStep = nextStep
	return nil
}

// Step updates the actor and critic on the most recently observed
// transition. If the agent is in evaluation mode, this function simply
// returns.
func (a *ActorCritic) Step() error {
	if a.eval || !a.haveTransition {
		return nil
	}
	a.haveTransition = false

	state := a.transition.State.RawVector().Data
	nextState := a.transition.NextState.RawVector().Data

	stateValue, err := a.value(state)
	if err != nil {
		return fmt.Errorf("step: could not predict state value: %v", err)
	}
	nextStateValue, err := a.value(nextState)
	if err != nil {
		return fmt.Errorf("step: could not predict next state value: %v", err)
	}

	target := tdTarget(a.transition.Reward, a.gamma, a.transition.Mask,
		nextStateValue)
	advantage := target - stateValue

	action := a.transition.Action.RawVector().Data
	if err := a.trainPolicy.LogPdfOf(state, action); err != nil {
		return fmt.Errorf("step: %v", err)
	}

	advantageTensor := tensor.NewDense(
		tensor.Float64,
		a.advantage.Shape(),
		tensor.WithBacking([]float64{advantage}),
	)
	if err := G.Let(a.advantage, advantageTensor); err != nil {
		return fmt.Errorf("step: could not set advantage: %v", err)
	}

	targetTensor := tensor.NewDense(
		tensor.Float64,
		a.valueTarget.Shape(),
		tensor.WithBacking([]float64{target}),
	)
	if err := G.Let(a.valueTarget, targetTensor); err != nil {
		return fmt.Errorf("step: could not set value target: %v", err)
	}

	if err := a.vm.RunAll(); err != nil {
		return fmt.Errorf("step: could not run update: %v", err)
	}
	a.lossSum += a.lossVal.Data().(float64)
	a.lossSteps++

	if err := a.solver.Step(a.trainPolicy.Network().Model()); err != nil {
		return fmt.Errorf("step: could not step solver: %v", err)
	}
	a.vm.Reset()

	return network.Set(a.behaviour.Network(), a.trainPolicy.Network())
}

// value runs the behaviour network on obs and returns the predicted
// state value
func (a *ActorCritic) value(obs []float64) (float64, error) {
	if _, err := a.behaviour.Run(obs); err != nil {
		return 0, err
	}

	value := a.behaviour.Network().Output()[1].Data().([]float64)
	if len(value) != 1 {
		return 0, fmt.Errorf("value: multiple values predicted for state "+
			"value: %v", len(value))
	}
	return value[0], nil
}

// tdTarget computes the one-step temporal difference update target.
// The mask is 0 if the next state is terminal, so that terminal states
// are never bootstrapped from.
func tdTarget(reward, gamma, mask, nextValue float64) float64 {
	return reward + gamma*mask*nextValue
}

// EndEpisode performs cleanup at the end of an episode
func (a *ActorCritic) EndEpisode() {
	a.lossSum = 0
	a.lossSteps = 0
	a.haveTransition = false
}

// Loss returns the mean combined actor and critic loss over the
// current episode
func (a *ActorCritic) Loss() float64 {
	if a.lossSteps == 0 {
		return 0
	}
	return a.lossSum / float64(a.lossSteps)
}

// Network returns the behaviour network
func (a *ActorCritic) Network() network.NeuralNet {
	return a.behaviour.Network()
}

// Eval sets the agent into evaluation mode. No updates are performed
// while in evaluation mode.
func (a *ActorCritic) Eval() {
	a.eval = true
	a.behaviour.Eval()
}

// Train sets the agent into training mode
func (a *ActorCritic) Train() {
	a.eval = false
	a.behaviour.Train()
}

// IsEval returns whether the agent is in evaluation mode
func (a *ActorCritic) IsEval() bool { return a.eval }
