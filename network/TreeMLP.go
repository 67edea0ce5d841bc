package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// TreeMLP implements a multi-layered perceptron with a shared root
// network feeding multiple linear leaf layers, one per predicted
// quantity. A diagram of a tree MLP with two leaves, as used by the
// actor-critic agent:
//
//	                  ╭─→ actor leaf  ─→ action logits
//	Input ─→ Root Net ┤
//	                  ╰─→ critic leaf ─→ state value
//
// Each leaf is a single linear layer with a bias unit and its own
// output size; the shared root carries all the nonlinearity.
type TreeMLP struct {
	g          *G.ExprGraph
	rootLayers []Layer
	leafLayers []Layer
	input      *G.Node

	numOutputs []int
	numInputs  int
	batchSize  int

	learnables G.Nodes
	model      []G.ValueGrad

	prediction []*G.Node
	predVal    []G.Value
}

// NewTreeMLP returns a new NeuralNet with a tree MLP architecture on
// graph g.
//
// The root network has number of layers equal to len(rootHiddenSizes),
// configured exactly as in NewMultiHeadMLP. The number of leaf layers
// is len(outputs); leaf i is a linear layer predicting outputs[i]
// values from the root output.
func NewTreeMLP(features, batch int, outputs []int, g *G.ExprGraph,
	rootHiddenSizes []int, rootBiases []bool,
	rootActivations []*Activation, init G.InitWFn) (NeuralNet, error) {
	if features <= 0 {
		return nil, fmt.Errorf("newtreemlp: non-positive number of "+
			"features %d", features)
	}
	if batch <= 0 {
		return nil, fmt.Errorf("newtreemlp: non-positive batch size %d", batch)
	}
	if len(rootHiddenSizes) == 0 {
		return nil, fmt.Errorf("newtreemlp: root network must have at " +
			"least one hidden layer")
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("newtreemlp: at least one leaf layer must " +
			"be specified")
	}
	for i, out := range outputs {
		if out <= 0 {
			return nil, fmt.Errorf("newtreemlp: leaf %d has non-positive "+
				"output size %d", i, out)
		}
	}
	if err := validateFCLayers(rootHiddenSizes, rootBiases,
		rootActivations); err != nil {
		return nil, fmt.Errorf("newtreemlp: %v", err)
	}

	// Set up the input node
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName(fmt.Sprintf("treeInput%d", batch)), G.WithInit(G.Zeroes()))

	rootLayers := addFCLayers(g, rootHiddenSizes, rootBiases,
		rootActivations, init, features, "Root")

	rootOutputs := rootHiddenSizes[len(rootHiddenSizes)-1]
	leafLayers := make([]Layer, len(outputs))
	for i := range outputs {
		leafLayers[i] = addFCLayers(g, []int{outputs[i]}, []bool{true},
			[]*Activation{Identity()}, init, rootOutputs,
			fmt.Sprintf("Leaf%d", i))[0]
	}

	net := &TreeMLP{
		g:          g,
		rootLayers: rootLayers,
		leafLayers: leafLayers,
		input:      input,
		numOutputs: append([]int{}, outputs...),
		numInputs:  features,
		batchSize:  batch,
	}
	if err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newtreemlp: could not compute forward "+
			"pass: %v", err)
	}

	return net, nil
}

// fwd computes the forward pass of the TreeMLP on the input node
func (t *TreeMLP) fwd(input *G.Node) error {
	rootOut := input
	var err error
	for i, l := range t.rootLayers {
		if rootOut, err = l.fwd(rootOut); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"root layer %v: %v", i, err)
		}
	}

	t.prediction = make([]*G.Node, len(t.leafLayers))
	t.predVal = make([]G.Value, len(t.leafLayers))
	for i, l := range t.leafLayers {
		leafOut, err := l.fwd(rootOut)
		if err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"leaf layer %v: %v", i, err)
		}
		t.prediction[i] = leafOut
		G.Read(t.prediction[i], &t.predVal[i])
	}

	return nil
}

// Graph returns the computation graph of the network
func (t *TreeMLP) Graph() *G.ExprGraph {
	return t.g
}

// BatchSize returns the batch size for inputs to the network
func (t *TreeMLP) BatchSize() int {
	return t.batchSize
}

// Features returns the number of input features
func (t *TreeMLP) Features() int {
	return t.numInputs
}

// Outputs returns the number of outputs per leaf layer
func (t *TreeMLP) Outputs() []int {
	return t.numOutputs
}

// OutputLayers returns the number of output layers in the network.
// There is one output layer per leaf.
func (t *TreeMLP) OutputLayers() int {
	return len(t.Prediction())
}

// SetInput sets the value of the input node before running the forward
// pass.
func (t *TreeMLP) SetInput(input []float64) error {
	if len(input) != t.numInputs*t.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", t.numInputs*t.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(t.input.Shape()...),
	)
	return G.Let(t.input, inputTensor)
}

// Set sets the weights of the TreeMLP to be equal to the weights of
// another NeuralNet with the same architecture
func (t *TreeMLP) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := t.Learnables()
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes in the TreeMLP
func (t *TreeMLP) Learnables() G.Nodes {
	// Lazy instantiation
	if t.learnables == nil {
		t.learnables = t.computeLearnables()
	}
	return t.learnables
}

func (t *TreeMLP) computeLearnables() G.Nodes {
	layers := make([]Layer, 0, len(t.rootLayers)+len(t.leafLayers))
	layers = append(layers, t.rootLayers...)
	layers = append(layers, t.leafLayers...)

	learnables := make([]*G.Node, 0, 2*len(layers))
	for i := range layers {
		learnables = append(learnables, layers[i].Weights())
		if bias := layers[i].Bias(); bias != nil {
			learnables = append(learnables, bias)
		}
	}
	return G.Nodes(learnables)
}

// Model returns the learnable nodes with their gradients.
func (t *TreeMLP) Model() []G.ValueGrad {
	// Lazy instantiation
	if t.model == nil {
		model := make([]G.ValueGrad, 0, len(t.Learnables()))
		for _, learnable := range t.Learnables() {
			model = append(model, learnable)
		}
		t.model = model
	}
	return t.model
}

// Output returns the output of each leaf layer after the graph was
// last run. The first output layer of the actor-critic network holds
// the action logits and the second holds the state value.
func (t *TreeMLP) Output() []G.Value {
	return t.predVal
}

// Prediction returns the nodes of the computation graph that store
// the output of each leaf layer
func (t *TreeMLP) Prediction() []*G.Node {
	return t.prediction
}
