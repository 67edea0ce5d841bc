package experiment

import (
	"path/filepath"
	"testing"

	"github.com/gridrl/cliffwalk/agent"
	"github.com/gridrl/cliffwalk/agent/reinforce"
	"github.com/gridrl/cliffwalk/environment"
	"github.com/gridrl/cliffwalk/environment/cliffwalking"
	"github.com/gridrl/cliffwalk/experiment/tracker"
	"github.com/gridrl/cliffwalk/initwfn"
	"github.com/gridrl/cliffwalk/network"
	"github.com/gridrl/cliffwalk/solver"
)

const testStepLimit int = 25

func testEnvironment(t *testing.T) environment.Environment {
	t.Helper()

	env, _, err := cliffwalking.New(4, 12, 1.0, testStepLimit)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return env
}

func testAgent(t *testing.T, env environment.Environment) agent.Agent {
	t.Helper()

	init, err := initwfn.NewGlorotU(1.0, 13)
	if err != nil {
		t.Fatalf("could not create weight initializer: %v", err)
	}
	adam, err := solver.NewDefaultAdam(1e-4, 1)
	if err != nil {
		t.Fatalf("could not create solver: %v", err)
	}

	config := reinforce.Config{
		HiddenSizes: []int{16},
		Biases:      []bool{true},
		Activations: []*network.Activation{network.ReLU()},
		InitWFn:     init,
		Solver:      adam,
		Gamma:       1.0,
		BatchSize:   testStepLimit,
	}
	a, err := config.CreateAgent(env, 13)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}
	return a
}

// learnableData copies the current weight values of an agent's
// behaviour network
func learnableData(t *testing.T, a agent.Agent) [][]float64 {
	t.Helper()

	type networker interface {
		Network() network.NeuralNet
	}
	n, ok := a.(networker)
	if !ok {
		t.Fatal("agent does not expose its network")
	}

	var weights [][]float64
	for _, learnable := range n.Network().Learnables() {
		data := learnable.Value().Data().([]float64)
		weights = append(weights, append([]float64{}, data...))
	}
	return weights
}

func TestEvaluateDoesNotUpdateWeights(t *testing.T) {
	env := testEnvironment(t)
	a := testAgent(t, env)

	before := learnableData(t, a)
	score := Evaluate(env, a, 3)
	after := learnableData(t, a)

	if score > 0 {
		t.Errorf("expected non-positive evaluation score, got %v", score)
	}
	if a.IsEval() {
		t.Error("expected training mode to be restored after evaluation")
	}

	for i := range before {
		for j := range before[i] {
			if before[i][j] != after[i][j] {
				t.Fatalf("evaluation changed weight %d of learnable %d", j, i)
			}
		}
	}
}

func TestOnlineRunRecordsEvaluationsAndReturns(t *testing.T) {
	env := testEnvironment(t)
	a := testAgent(t, env)

	returnFile := filepath.Join(t.TempDir(), "returns.bin")
	returns := tracker.NewReturn(returnFile)

	config := Config{
		Episodes:     4,
		EvalInterval: 2,
		EvalRollouts: 2,
	}
	experiment, err := NewOnline(env, a, config, returns)
	if err != nil {
		t.Fatalf("could not create experiment: %v", err)
	}

	if err := experiment.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	if len(experiment.EvalScores()) != 2 {
		t.Errorf("expected 2 evaluation scores, got %d",
			len(experiment.EvalScores()))
	}
	if len(experiment.EvalEpisodes()) != 2 ||
		experiment.EvalEpisodes()[0] != 2 ||
		experiment.EvalEpisodes()[1] != 4 {
		t.Errorf("unexpected evaluation episodes: %v",
			experiment.EvalEpisodes())
	}

	// Only training episodes are tracked
	if len(returns.Returns()) != 4 {
		t.Errorf("expected 4 episodic returns, got %d",
			len(returns.Returns()))
	}

	if err := experiment.Save(); err != nil {
		t.Fatalf("could not save experiment data: %v", err)
	}
	loaded, err := tracker.LoadData(returnFile)
	if err != nil {
		t.Fatalf("could not load return data: %v", err)
	}
	if len(loaded) != 4 {
		t.Errorf("expected 4 saved returns, got %d", len(loaded))
	}
}

func TestTrainingImprovesEvaluationScore(t *testing.T) {
	// A small grid keeps the optimal path short enough for REINFORCE
	// to find within a few hundred episodes
	env, _, err := cliffwalking.New(3, 4, 1.0, 30)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}

	init, err := initwfn.NewGlorotU(1.0, 29)
	if err != nil {
		t.Fatalf("could not create weight initializer: %v", err)
	}
	adam, err := solver.NewDefaultAdam(1e-2, 1)
	if err != nil {
		t.Fatalf("could not create solver: %v", err)
	}
	config := reinforce.Config{
		HiddenSizes: []int{32},
		Biases:      []bool{true},
		Activations: []*network.Activation{network.ReLU()},
		InitWFn:     init,
		Solver:      adam,
		Gamma:       1.0,
		BatchSize:   30,
	}
	a, err := config.CreateAgent(env, 29)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}

	// Score of the untrained policy, dominated by cliff falls and
	// episode cutoffs
	baseline := Evaluate(env, a, 20)

	experiment, err := NewOnline(env, a, Config{
		Episodes:     300,
		EvalInterval: 50,
		EvalRollouts: 20,
	})
	if err != nil {
		t.Fatalf("could not create experiment: %v", err)
	}
	if err := experiment.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}

	scores := experiment.EvalScores()
	if len(scores) < 2 {
		t.Fatalf("expected at least 2 evaluation scores, got %d",
			len(scores))
	}
	last := scores[len(scores)-1]
	if last <= baseline {
		t.Errorf("expected evaluation score to improve with training: "+
			"untrained %.2f, final %.2f", baseline, last)
	}
}

func TestOnlineConfigValidation(t *testing.T) {
	env := testEnvironment(t)
	a := testAgent(t, env)

	invalid := []Config{
		{Episodes: 0},
		{Episodes: 10, EvalInterval: -1},
		{Episodes: 10, EvalInterval: 5, EvalRollouts: 0},
		{Episodes: 10, LogInterval: -2},
	}
	for i, config := range invalid {
		if _, err := NewOnline(env, a, config); err == nil {
			t.Errorf("config %d: expected validation error", i)
		}
	}
}
