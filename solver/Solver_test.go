package solver

import (
	"encoding/json"
	"testing"
)

func TestNewAdamRejectsInvalidHyperparameters(t *testing.T) {
	tests := []struct {
		name                            string
		stepSize, epsilon, beta1, beta2 float64
		batch                           int
	}{
		{"non-positive step size", 0, 1e-8, 0.9, 0.999, 1},
		{"non-positive epsilon", 1e-4, 0, 0.9, 0.999, 1},
		{"beta1 out of range", 1e-4, 1e-8, 1.0, 0.999, 1},
		{"beta2 out of range", 1e-4, 1e-8, 0.9, -0.1, 1},
		{"non-positive batch", 1e-4, 1e-8, 0.9, 0.999, 0},
	}

	for _, test := range tests {
		_, err := NewAdam(test.stepSize, test.epsilon, test.beta1,
			test.beta2, test.batch, 0)
		if err == nil {
			t.Errorf("%v: expected error", test.name)
		}
	}
}

func TestNewVanillaRejectsInvalidHyperparameters(t *testing.T) {
	if _, err := NewVanilla(0, 1, 0); err == nil {
		t.Error("expected error for non-positive step size")
	}
	if _, err := NewVanilla(1e-4, 0, 0); err == nil {
		t.Error("expected error for non-positive batch size")
	}
}

func TestSolverJSONRoundTrip(t *testing.T) {
	original, err := NewAdam(1e-3, 1e-8, 0.9, 0.999, 32, 0.5)
	if err != nil {
		t.Fatalf("could not create solver: %v", err)
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("could not marshal solver: %v", err)
	}

	var loaded Solver
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("could not unmarshal solver: %v", err)
	}

	if loaded.Type != Adam {
		t.Errorf("expected type %v, got %v", Adam, loaded.Type)
	}
	config, ok := loaded.Config.(*AdamConfig)
	if !ok {
		t.Fatalf("expected *AdamConfig, got %T", loaded.Config)
	}
	if config.StepSize != 1e-3 || config.Batch != 32 || config.Clip != 0.5 {
		t.Errorf("unexpected config after round trip: %+v", config)
	}
	if loaded.Solver == nil {
		t.Error("expected solver to be created on unmarshal")
	}
}
