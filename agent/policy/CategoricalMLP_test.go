package policy

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"

	"github.com/gridrl/cliffwalk/environment/cliffwalking"
	"github.com/gridrl/cliffwalk/network"
)

func testPolicy(t *testing.T, seed uint64) *CategoricalMLP {
	t.Helper()

	env, _, err := cliffwalking.New(4, 12, 1.0, 100)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}

	pol, err := NewCategoricalMLP(env, 1, G.NewGraph(), []int{16},
		[]bool{true}, []*network.Activation{network.ReLU()}, G.GlorotU(1.0),
		seed)
	if err != nil {
		t.Fatalf("could not create policy: %v", err)
	}
	return pol
}

func TestSelectActionReturnsValidActions(t *testing.T) {
	env, firstStep, err := cliffwalking.New(4, 12, 1.0, 100)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	pol := testPolicy(t, 42)

	step := firstStep
	for i := 0; i < 20; i++ {
		action := pol.SelectAction(step)
		a := action.AtVec(0)
		if a != math.Trunc(a) || a < 0 ||
			a >= float64(cliffwalking.NumActions) {
			t.Fatalf("invalid action %v", a)
		}
		step, _ = env.Step(action)
		if step.Last() {
			step = env.Reset()
		}
	}
}

func TestSelectActionIsSeeded(t *testing.T) {
	_, firstStep, err := cliffwalking.New(4, 12, 1.0, 100)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}

	first := testPolicy(t, 7)
	second := testPolicy(t, 7)

	// Identically seeded policies on identical weights must select
	// identical action sequences
	if err := network.Set(second.Network(), first.Network()); err != nil {
		t.Fatalf("could not sync policy networks: %v", err)
	}

	for i := 0; i < 10; i++ {
		a := first.SelectAction(firstStep).AtVec(0)
		b := second.SelectAction(firstStep).AtVec(0)
		if a != b {
			t.Fatalf("action %d differs between identically seeded "+
				"policies: %v != %v", i, a, b)
		}
	}
}

func TestLogPdfOfRejectsTooManyActions(t *testing.T) {
	pol := testPolicy(t, 3)

	states := make([]float64, 2*48)
	actions := []float64{0, 1}
	if err := pol.LogPdfOf(states, actions); err == nil {
		t.Error("expected error when actions exceed the policy batch size")
	}
}

func TestEvalAndTrainModes(t *testing.T) {
	pol := testPolicy(t, 3)

	if pol.IsEval() {
		t.Error("expected new policy to start in training mode")
	}
	pol.Eval()
	if !pol.IsEval() {
		t.Error("expected policy to be in evaluation mode")
	}
	pol.Train()
	if pol.IsEval() {
		t.Error("expected policy to be back in training mode")
	}
}
