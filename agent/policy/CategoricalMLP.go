// Package policy implements policies for selecting actions in
// environments with discrete action spaces.
package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/gridrl/cliffwalk/environment"
	"github.com/gridrl/cliffwalk/network"
	"github.com/gridrl/cliffwalk/timestep"
)

// CategoricalMLP implements a softmax policy over discrete actions,
// parameterized by a neural network. The first output layer of the
// network holds the unnormalized action preferences (logits).
//
// A CategoricalMLP samples actions from the categorical distribution
// induced by the logits. It can also compute the log probability of
// externally inputted actions in externally inputted states, in which
// case the gradient is not computed through the action selection
// process.
type CategoricalMLP struct {
	net network.NeuralNet
	vm  G.VM

	logits     *G.Node
	logitsVals G.Value

	logProbInputActions *G.Node
	actionIndices       *G.Node

	batchForLogProb int
	numActions      int

	source rand.Source
	eval   bool
}

// NewCategoricalMLP returns a new CategoricalMLP parameterized by a
// multi-head MLP with the given hidden layer configuration. The
// network is placed on graph g.
func NewCategoricalMLP(env environment.Environment, batchForLogProb int,
	g *G.ExprGraph, hiddenSizes []int, biases []bool,
	activations []*network.Activation, init G.InitWFn,
	seed uint64) (*CategoricalMLP, error) {
	if env.ActionSpec().Cardinality == environment.Continuous {
		return nil, fmt.Errorf("newCategoricalMLP: softmax policy cannot " +
			"be used with continuous actions")
	}

	features := env.ObservationSpec().Shape.Len()
	numActions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1

	net, err := network.NewMultiHeadMLP(features, batchForLogProb,
		numActions, g, hiddenSizes, biases, init, activations)
	if err != nil {
		return nil, fmt.Errorf("newCategoricalMLP: could not create "+
			"policy network: %v", err)
	}

	return NewCategoricalMLPFromNet(net, seed)
}

// NewCategoricalMLPFromNet returns a new CategoricalMLP parameterized
// by an existing network. The first output layer of the network is
// interpreted as the action logits; any further output layers are
// ignored by the policy but remain available through Network().
func NewCategoricalMLPFromNet(net network.NeuralNet,
	seed uint64) (*CategoricalMLP, error) {
	logits := net.Prediction()[0]
	numActions := logits.Shape()[1]
	batch := net.BatchSize()

	// Log probability of actions inputted with LogPdfOf()
	actionIndices := G.NewMatrix(
		net.Graph(),
		tensor.Float64,
		G.WithShape(logits.Shape()...),
		G.WithInit(G.Zeroes()),
		G.WithName(fmt.Sprintf("actionIndices%d", batch)),
	)
	logitsInputActions := G.Must(G.HadamardProd(actionIndices, logits))
	logitsInputActions = G.Must(G.Sum(logitsInputActions, 1))
	logProbInputActions := G.Must(G.Sub(logitsInputActions,
		LogSumExp(logits, 1)))

	pol := &CategoricalMLP{
		net:    net,
		logits: logits,

		actionIndices:       actionIndices,
		logProbInputActions: logProbInputActions,

		batchForLogProb: batch,
		numActions:      numActions,

		source: rand.NewSource(seed),
	}
	G.Read(pol.logits, &pol.logitsVals)

	// Policies used for action selection run their own VM over the
	// forward pass. Batch policies used only for gradient computation
	// are run by the learner's VM instead.
	if batch == 1 {
		pol.vm = G.NewTapeMachine(net.Graph())
	}

	return pol, nil
}

// LogSumExp calculates the log of the summed exponentials of logits
// along the given axis in a numerically stable manner.
func LogSumExp(logits *G.Node, along int) *G.Node {
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
	exponent = G.Must(G.Exp(exponent))

	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}

// LogPdfNode returns the node that calculates the log probability of
// the actions last inputted with LogPdfOf
func (c *CategoricalMLP) LogPdfNode() *G.Node {
	return c.logProbInputActions
}

// LogPdfOf sets the log probability node to calculate the log
// probability of taking actions a in states s. Both slices are in row
// major order. If fewer actions than the network batch size are given,
// the remaining rows contribute zero to the log probability node.
func (c *CategoricalMLP) LogPdfOf(s, a []float64) error {
	if len(a) > c.batchForLogProb {
		return fmt.Errorf("logPdfOf: more actions (%d) than the policy "+
			"batch size (%d)", len(a), c.batchForLogProb)
	}
	if err := c.net.SetInput(s); err != nil {
		return fmt.Errorf("logPdfOf: could not set state input: %v", err)
	}

	actionIndices := make([]float64, c.numActions*c.batchForLogProb)
	for i := range a {
		actionIndices[i*c.numActions+int(a[i])] = 1.0
	}
	actionIndicesTensor := tensor.NewDense(tensor.Float64,
		[]int{c.batchForLogProb, c.numActions},
		tensor.WithBacking(actionIndices),
	)

	return G.Let(c.actionIndices, actionIndicesTensor)
}

// SelectAction runs the policy network on the observation of t and
// samples an action from the resulting categorical distribution.
func (c *CategoricalMLP) SelectAction(t timestep.TimeStep) *mat.VecDense {
	if c.vm == nil {
		panic("selectAction: cannot select actions with a policy that " +
			"has a batch size larger than 1")
	}

	obs := t.Observation.RawVector().Data
	logits, err := c.Run(obs)
	if err != nil {
		panic(fmt.Sprintf("selectAction: %v", err))
	}

	// Max-shifted softmax of the logits
	max := logits[0]
	for _, logit := range logits[1:] {
		if logit > max {
			max = logit
		}
	}
	probs := make([]float64, len(logits))
	for i, logit := range logits {
		probs[i] = math.Exp(logit - max)
	}

	dist := distuv.NewCategorical(probs, c.source)
	action := dist.Rand()

	return mat.NewVecDense(1, []float64{action})
}

// Run computes the forward pass of the policy network on obs and
// returns the resulting action logits.
func (c *CategoricalMLP) Run(obs []float64) ([]float64, error) {
	if err := c.net.SetInput(obs); err != nil {
		return nil, fmt.Errorf("run: could not set network input: %v", err)
	}
	if err := c.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("run: could not run forward pass: %v", err)
	}
	c.vm.Reset()

	return c.logitsVals.Data().([]float64), nil
}

// Network returns the network that parameterizes the policy
func (c *CategoricalMLP) Network() network.NeuralNet {
	return c.net
}

// Eval sets the policy to evaluation mode
func (c *CategoricalMLP) Eval() { c.eval = true }

// Train sets the policy to training mode
func (c *CategoricalMLP) Train() { c.eval = false }

// IsEval returns whether the policy is in evaluation mode
func (c *CategoricalMLP) IsEval() bool { return c.eval }
