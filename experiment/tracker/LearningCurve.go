package tracker

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// LearningCurve records the average evaluation score of an agent at
// each evaluation point in an experiment and renders the resulting
// learning curve to an image file.
type LearningCurve struct {
	points   plotter.XYs
	filename string
}

// NewLearningCurve creates and returns a new *LearningCurve which
// saves its plot to filename
func NewLearningCurve(filename string) *LearningCurve {
	return &LearningCurve{filename: filename}
}

// Add records the average evaluation score measured after episode
func (l *LearningCurve) Add(episode int, score float64) {
	l.points = append(l.points, plotter.XY{X: float64(episode), Y: score})
}

// Scores returns the evaluation scores recorded so far
func (l *LearningCurve) Scores() []float64 {
	scores := make([]float64, len(l.points))
	for i, point := range l.points {
		scores[i] = point.Y
	}
	return scores
}

// Save renders the learning curve to disk
func (l *LearningCurve) Save() error {
	p := plot.New()
	p.Title.Text = "Learning Curve"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Average Evaluation Return"

	line, err := plotter.NewLine(l.points)
	if err != nil {
		return fmt.Errorf("save: could not create line plot: %v", err)
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, l.filename); err != nil {
		return fmt.Errorf("save: could not save plot: %v", err)
	}
	return nil
}
