// Package network implements the neural network function
// approximators used by the learning agents. Networks are built on
// Gorgonia computation graphs; callers run the graphs with their own
// virtual machines.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a neural network on a Gorgonia computation
// graph. A NeuralNet may have multiple output layers, e.g. an actor
// head and a critic head sharing hidden layers.
type NeuralNet interface {
	// Graph returns the computation graph the network is built on
	Graph() *G.ExprGraph

	// BatchSize returns the number of rows of the network input
	BatchSize() int

	// Features returns the number of features in a single input
	// observation vector
	Features() int

	// Outputs returns the number of predicted values per output layer
	Outputs() []int

	// OutputLayers returns the number of output layers
	OutputLayers() int

	// SetInput sets the value of the input node before running the
	// forward pass. The input is given in row major order.
	SetInput([]float64) error

	// Set sets the weights of the network to those of another network
	Set(NeuralNet) error

	// Learnables returns the learnable nodes of the network
	Learnables() G.Nodes

	// Model returns the learnable nodes with their gradients
	Model() []G.ValueGrad

	// Prediction returns the nodes holding each output layer's
	// prediction
	Prediction() []*G.Node

	// Output returns the value of each output layer after the last
	// run of the network's graph
	Output() []G.Value
}

// Set sets the weights of dest to be equal to the weights of source.
func Set(dest, source NeuralNet) error {
	return dest.Set(source)
}
