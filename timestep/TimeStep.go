// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes how an episode ended: by reaching a terminal state
// or by hitting an environment step limit. Steps that do not end an
// episode have end type Nil.
type EndType int

const (
	Nil EndType = iota
	TerminalStateReached
	Cutoff
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Cutoff:
		return "Cutoff"
	default:
		return "Nil"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Discount    float64
	Observation *mat.VecDense
	Number      int
	End         EndType
}

// New returns a new TimeStep. Last steps default to ending in a
// terminal state; use SetEnd to mark a step limit cutoff instead.
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	end := Nil
	if t == Last {
		end = TerminalStateReached
	}
	return TimeStep{t, r, d, o, n, end}
}

// SetEnd sets the end type of the TimeStep
func (t *TimeStep) SetEnd(e EndType) {
	t.End = e
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.stepType == Last
}

// TerminalEnd returns whether the TimeStep ends its episode in a
// terminal state. Cutoff steps are Last steps but not terminal ends,
// so value bootstraps are not zeroed across them.
func (t *TimeStep) TerminalEnd() bool {
	return t.stepType == Last && t.End == TerminalStateReached
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.stepType, t.Reward, t.Discount, t.Number)
}

// Transition packages together a single transition of the
// agent-environment interaction: taking action Action in State leads
// to NextState with reward Reward. Mask is 1.0 if the episode
// continues after the transition and 0.0 if NextState is terminal.
type Transition struct {
	State     *mat.VecDense
	Action    *mat.VecDense
	Reward    float64
	NextState *mat.VecDense
	Mask      float64
}

// NewTransition constructs a Transition from two consecutive
// timesteps and the action that joined them.
func NewTransition(step TimeStep, action *mat.VecDense,
	nextStep TimeStep) Transition {
	mask := 1.0
	if nextStep.TerminalEnd() {
		mask = 0.0
	}

	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		NextState: nextStep.Observation,
		Mask:      mask,
	}
}
