// Package experiment implements functionality for running an
// agent-environment interaction loop and evaluating the resulting
// agents
package experiment

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat"

	"github.com/gridrl/cliffwalk/agent"
	env "github.com/gridrl/cliffwalk/environment"
	"github.com/gridrl/cliffwalk/experiment/tracker"
	ts "github.com/gridrl/cliffwalk/timestep"
)

// Config describes the schedule of an online experiment
type Config struct {
	// Episodes is the total number of training episodes to run
	Episodes int

	// EvalInterval determines how many training episodes are run
	// between offline evaluations of the agent. No weight updates are
	// performed during evaluation.
	EvalInterval int

	// EvalRollouts is the number of episodes to run per evaluation,
	// the scores of which are averaged
	EvalRollouts int

	// LogInterval determines how many training episodes are run
	// between loss reports. If 0, losses are not reported.
	LogInterval int
}

// Validate returns an error describing any illegal setting in the
// Config and nil otherwise
func (c Config) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("config: number of episodes must be positive, "+
			"got %v", c.Episodes)
	}
	if c.EvalInterval < 0 {
		return fmt.Errorf("config: evaluation interval cannot be negative, "+
			"got %v", c.EvalInterval)
	}
	if c.EvalInterval > 0 && c.EvalRollouts <= 0 {
		return fmt.Errorf("config: number of evaluation rollouts must be "+
			"positive, got %v", c.EvalRollouts)
	}
	if c.LogInterval < 0 {
		return fmt.Errorf("config: log interval cannot be negative, got %v",
			c.LogInterval)
	}
	return nil
}

// Online is an Experiment that trains an agent by running episodes in
// an environment, periodically pausing training to evaluate the agent
// offline.
type Online struct {
	environment env.Environment
	agent       agent.Agent
	config      Config
	trackers    []tracker.Tracker

	evalEpisodes []int
	evalScores   []float64
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The trackers determine what data is
// recorded during training episodes.
func NewOnline(e env.Environment, a agent.Agent, c Config,
	trackers ...tracker.Tracker) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOnline: %v", err)
	}

	return &Online{
		environment: e,
		agent:       a,
		config:      c,
		trackers:    trackers,
	}, nil
}

// RunEpisode runs a single training episode of the experiment and
// returns the episodic return
func (o *Online) RunEpisode() (float64, error) {
	step := o.environment.Reset()
	if err := o.agent.ObserveFirst(step); err != nil {
		return 0, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	episodicReturn := 0.0
	for !step.Last() {
		action := o.agent.SelectAction(step)
		step, _ = o.environment.Step(action)
		episodicReturn += step.Reward
		o.track(step)

		if err := o.agent.Observe(action, step); err != nil {
			return 0, fmt.Errorf("runEpisode: %v", err)
		}
		if err := o.agent.Step(); err != nil {
			return 0, fmt.Errorf("runEpisode: %v", err)
		}
	}
	o.agent.EndEpisode()

	return episodicReturn, nil
}

// Run runs the entire experiment for all episodes, evaluating the
// agent every EvalInterval episodes
func (o *Online) Run() error {
	for episode := 1; episode <= o.config.Episodes; episode++ {
		if _, err := o.RunEpisode(); err != nil {
			return fmt.Errorf("run: %v", err)
		}

		if o.config.LogInterval > 0 && episode%o.config.LogInterval == 0 {
			log.Printf("[loss] episode %d: %.2f", episode, o.agent.Loss())
		}

		if o.config.EvalInterval > 0 && episode%o.config.EvalInterval == 0 {
			score := Evaluate(o.environment, o.agent, o.config.EvalRollouts)
			o.evalEpisodes = append(o.evalEpisodes, episode)
			o.evalScores = append(o.evalScores, score)
			log.Printf("[eval] episode %d: average score %.2f", episode,
				score)
		}
	}
	return nil
}

// EvalEpisodes returns the training episodes after which the agent was
// evaluated
func (o *Online) EvalEpisodes() []int {
	return o.evalEpisodes
}

// EvalScores returns the average evaluation score measured at each
// evaluation point
func (o *Online) EvalScores() []float64 {
	return o.evalScores
}

// Save saves all the data recorded by the experiment's trackers to
// disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track records the current timestep in each tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}

// Evaluate measures the average episodic return of an agent over a
// number of evaluation rollouts. The agent is placed in evaluation
// mode for the duration, so no weight updates are performed and no
// transitions recorded; training mode is restored before returning.
func Evaluate(e env.Environment, a agent.Agent, rollouts int) float64 {
	a.Eval()
	defer a.Train()

	scores := make([]float64, rollouts)
	for i := 0; i < rollouts; i++ {
		step := e.Reset()

		for !step.Last() {
			action := a.SelectAction(step)
			step, _ = e.Step(action)
			scores[i] += step.Reward
		}
	}

	return stat.Mean(scores, nil)
}
