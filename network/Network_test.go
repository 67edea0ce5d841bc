package network

import (
	"testing"

	G "gorgonia.org/gorgonia"
)

func TestNewMultiHeadMLPValidation(t *testing.T) {
	tests := []struct {
		name        string
		features    int
		batch       int
		outputs     int
		hiddenSizes []int
		biases      []bool
		activations []*Activation
	}{
		{"non-positive features", 0, 1, 4, []int{16}, []bool{true},
			[]*Activation{ReLU()}},
		{"non-positive batch", 48, 0, 4, []int{16}, []bool{true},
			[]*Activation{ReLU()}},
		{"non-positive outputs", 48, 1, 0, []int{16}, []bool{true},
			[]*Activation{ReLU()}},
		{"non-positive hidden size", 48, 1, 4, []int{0}, []bool{true},
			[]*Activation{ReLU()}},
		{"mismatched biases", 48, 1, 4, []int{16}, []bool{true, true},
			[]*Activation{ReLU()}},
		{"mismatched activations", 48, 1, 4, []int{16}, []bool{true},
			[]*Activation{ReLU(), TanH()}},
	}

	for _, test := range tests {
		_, err := NewMultiHeadMLP(test.features, test.batch, test.outputs,
			G.NewGraph(), test.hiddenSizes, test.biases, G.Zeroes(),
			test.activations)
		if err == nil {
			t.Errorf("%v: expected error", test.name)
		}
	}
}

func TestNewMultiHeadMLPShapes(t *testing.T) {
	net, err := NewMultiHeadMLP(48, 1, 4, G.NewGraph(), []int{16},
		[]bool{true}, G.GlorotU(1.0), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	if net.Features() != 48 {
		t.Errorf("expected 48 features, got %d", net.Features())
	}
	if net.BatchSize() != 1 {
		t.Errorf("expected batch size 1, got %d", net.BatchSize())
	}
	if len(net.Outputs()) != 1 || net.Outputs()[0] != 4 {
		t.Errorf("unexpected outputs: %v", net.Outputs())
	}
	if net.OutputLayers() != 1 {
		t.Errorf("expected 1 output layer, got %d", net.OutputLayers())
	}

	prediction := net.Prediction()[0]
	if prediction.Shape()[0] != 1 || prediction.Shape()[1] != 4 {
		t.Errorf("unexpected prediction shape: %v", prediction.Shape())
	}

	// One weight matrix and one bias per layer, including the output
	// layer
	if len(net.Learnables()) != 4 {
		t.Errorf("expected 4 learnables, got %d", len(net.Learnables()))
	}
}

func TestNewTreeMLPValidation(t *testing.T) {
	tests := []struct {
		name    string
		outputs []int
		hidden  []int
	}{
		{"no leaves", []int{}, []int{16}},
		{"non-positive leaf size", []int{4, 0}, []int{16}},
		{"no root layers", []int{4, 1}, []int{}},
	}

	for _, test := range tests {
		biases := make([]bool, len(test.hidden))
		activations := make([]*Activation, len(test.hidden))
		for i := range test.hidden {
			biases[i] = true
			activations[i] = TanH()
		}

		_, err := NewTreeMLP(48, 1, test.outputs, G.NewGraph(), test.hidden,
			biases, activations, G.Zeroes())
		if err == nil {
			t.Errorf("%v: expected error", test.name)
		}
	}
}

func TestNewTreeMLPShapes(t *testing.T) {
	net, err := NewTreeMLP(48, 1, []int{4, 1}, G.NewGraph(), []int{20},
		[]bool{true}, []*Activation{SELU()}, G.GlorotU(1.0))
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	if net.OutputLayers() != 2 {
		t.Errorf("expected 2 output layers, got %d", net.OutputLayers())
	}

	logits := net.Prediction()[0]
	if logits.Shape()[0] != 1 || logits.Shape()[1] != 4 {
		t.Errorf("unexpected actor leaf shape: %v", logits.Shape())
	}
	value := net.Prediction()[1]
	if value.Shape()[0] != 1 || value.Shape()[1] != 1 {
		t.Errorf("unexpected critic leaf shape: %v", value.Shape())
	}

	// Root layer and two leaves, each with a weight matrix and a bias
	if len(net.Learnables()) != 6 {
		t.Errorf("expected 6 learnables, got %d", len(net.Learnables()))
	}
}

func TestSetCopiesWeights(t *testing.T) {
	source, err := NewMultiHeadMLP(4, 1, 2, G.NewGraph(), []int{3},
		[]bool{true}, G.GlorotU(1.0), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create source network: %v", err)
	}
	dest, err := NewMultiHeadMLP(4, 1, 2, G.NewGraph(), []int{3},
		[]bool{true}, G.GlorotU(1.0), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create destination network: %v", err)
	}

	if err := Set(dest, source); err != nil {
		t.Fatalf("could not set destination weights: %v", err)
	}

	sourceLearnables := source.Learnables()
	for i, destLearnable := range dest.Learnables() {
		sourceData := sourceLearnables[i].Value().Data().([]float64)
		destData := destLearnable.Value().Data().([]float64)
		for j := range sourceData {
			if sourceData[j] != destData[j] {
				t.Fatalf("learnable %d weight %d differs after Set", i, j)
			}
		}
	}
}
