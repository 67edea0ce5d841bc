package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/gridrl/cliffwalk/timestep"
)

// step returns a TimeStep with the given type, reward, and step number
func step(stepType timestep.StepType, reward float64,
	number int) timestep.TimeStep {
	obs := mat.NewVecDense(2, []float64{0, 1})
	return timestep.New(stepType, reward, 1.0, obs, number)
}

func TestReturnRecordsEpisodicReturns(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	tracker := NewReturn(filename)

	// First episode: rewards 0, -1, -100
	tracker.Track(step(timestep.First, 0, 0))
	tracker.Track(step(timestep.Mid, -1, 1))
	tracker.Track(step(timestep.Last, -100, 2))

	// Second episode: rewards 0, -1, 0
	tracker.Track(step(timestep.First, 0, 0))
	tracker.Track(step(timestep.Mid, -1, 1))
	tracker.Track(step(timestep.Last, 0, 2))

	expected := []float64{-101, -1}
	returns := tracker.Returns()
	if len(returns) != len(expected) {
		t.Fatalf("expected %v episodic returns, got %v", len(expected),
			len(returns))
	}
	for i := range expected {
		if returns[i] != expected[i] {
			t.Errorf("episode %v: expected return %v, got %v", i,
				expected[i], returns[i])
		}
	}

	if err := tracker.Save(); err != nil {
		t.Fatalf("could not save returns: %v", err)
	}
	loaded, err := LoadData(filename)
	if err != nil {
		t.Fatalf("could not load returns: %v", err)
	}
	if len(loaded) != len(expected) {
		t.Fatalf("expected %v saved returns, got %v", len(expected),
			len(loaded))
	}
	for i := range expected {
		if loaded[i] != expected[i] {
			t.Errorf("episode %v: expected saved return %v, got %v", i,
				expected[i], loaded[i])
		}
	}
}

func TestReturnDoesNotRecordUnfinishedEpisode(t *testing.T) {
	tracker := NewReturn(filepath.Join(t.TempDir(), "returns.bin"))

	tracker.Track(step(timestep.First, 0, 0))
	tracker.Track(step(timestep.Mid, -1, 1))

	if returns := tracker.Returns(); len(returns) != 0 {
		t.Errorf("expected no recorded returns, got %v", returns)
	}
}

func TestReturnTrackPanicsOnNonSequentialTimesteps(t *testing.T) {
	tracker := NewReturn(filepath.Join(t.TempDir(), "returns.bin"))
	tracker.Track(step(timestep.First, 0, 0))

	defer func() {
		if recover() == nil {
			t.Error("expected panic when tracking non-sequential timesteps")
		}
	}()
	tracker.Track(step(timestep.Mid, -1, 2))
}

func TestLearningCurveSavesPlot(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "curve.png")
	curve := NewLearningCurve(filename)

	curve.Add(20, -250)
	curve.Add(40, -100)
	curve.Add(60, -17)

	scores := curve.Scores()
	expected := []float64{-250, -100, -17}
	if len(scores) != len(expected) {
		t.Fatalf("expected %v scores, got %v", len(expected), len(scores))
	}
	for i := range expected {
		if scores[i] != expected[i] {
			t.Errorf("point %v: expected score %v, got %v", i, expected[i],
				scores[i])
		}
	}

	if err := curve.Save(); err != nil {
		t.Fatalf("could not save learning curve: %v", err)
	}
	info, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("expected plot file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected plot file to be non-empty")
	}
}
