package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer implements a single layer of a neural network
type Layer interface {
	fwd(*G.Node) (*G.Node, error)
	Weights() *G.Node
	Bias() *G.Node
	Activation() *Activation
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// fwd adds the forward pass of the fcLayer to the computation graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	if f.Weights() != nil {
		x = G.Must(G.Mul(x, f.Weights()))
	}
	if f.Bias() != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		x = G.Must(G.BroadcastAdd(x, f.Bias(), nil, []byte{0}))
	}
	if f.Activation().IsNil() || f.Activation().IsIdentity() {
		return x, nil
	}
	return f.Activation().fwd(x)
}

func (f *fcLayer) Activation() *Activation {
	return f.act
}

func (f *fcLayer) Bias() *G.Node {
	return f.bias
}

func (f *fcLayer) Weights() *G.Node {
	return f.weights
}

// addFCLayers creates the fully connected layers described by sizes,
// biases, and activations on graph g, with input dimensionality
// features. The prefix distinguishes node names when a graph holds
// multiple networks.
func addFCLayers(g *G.ExprGraph, sizes []int, biases []bool,
	activations []*Activation, init G.InitWFn, features int,
	prefix string) []Layer {
	layers := make([]Layer, 0, len(sizes))
	inputs := features

	for i := range sizes {
		weights := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(inputs, sizes[i]),
			G.WithName(fmt.Sprintf("%vL%dW", prefix, i)),
			G.WithInit(init),
		)

		var bias *G.Node
		if biases[i] {
			bias = G.NewVector(
				g,
				tensor.Float64,
				G.WithShape(sizes[i]),
				G.WithName(fmt.Sprintf("%vL%dB", prefix, i)),
				G.WithInit(G.Zeroes()),
			)
		}

		layers = append(layers, &fcLayer{
			weights: weights,
			bias:    bias,
			act:     activations[i],
		})
		inputs = sizes[i]
	}

	return layers
}

// validateFCLayers ensures there is one bias flag and one activation
// per hidden layer and that each layer has a positive size.
func validateFCLayers(sizes []int, biases []bool,
	activations []*Activation) error {
	if len(sizes) != len(activations) {
		return fmt.Errorf("invalid number of activations \n\twant(%d)"+
			"\n\thave(%d)", len(sizes), len(activations))
	}
	if len(sizes) != len(biases) {
		return fmt.Errorf("invalid number of biases \n\twant(%d)"+
			"\n\thave(%d)", len(sizes), len(biases))
	}
	for i, size := range sizes {
		if size <= 0 {
			return fmt.Errorf("layer %d has non-positive size %d", i, size)
		}
	}
	return nil
}
