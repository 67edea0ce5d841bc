package reinforce

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	ts "github.com/gridrl/cliffwalk/timestep"
)

// episodeBuffer stores the transitions of a single episode in the
// order in which they occurred. The buffer is drained once per episode
// to compute the Monte Carlo policy gradient.
type episodeBuffer struct {
	obsSize    int
	actionSize int

	obs     []float64
	actions []float64
	rewards []float64
	masks   []float64
}

// newEpisodeBuffer returns a new episodeBuffer for storing transitions
// with the given observation and action dimensions
func newEpisodeBuffer(obsSize, actionSize int) *episodeBuffer {
	return &episodeBuffer{
		obsSize:    obsSize,
		actionSize: actionSize,
	}
}

// push stores a transition in the buffer
func (e *episodeBuffer) push(t ts.Transition) error {
	obs := t.State.RawVector().Data
	if len(obs) != e.obsSize {
		return fmt.Errorf("push: invalid observation size\n\twant(%v)"+
			"\n\thave(%v)", e.obsSize, len(obs))
	}
	action := t.Action.RawVector().Data
	if len(action) != e.actionSize {
		return fmt.Errorf("push: invalid action size\n\twant(%v)"+
			"\n\thave(%v)", e.actionSize, len(action))
	}

	e.obs = append(e.obs, obs...)
	e.actions = append(e.actions, action...)
	e.rewards = append(e.rewards, t.Reward)
	e.masks = append(e.masks, t.Mask)

	return nil
}

// length returns the number of transitions stored in the buffer
func (e *episodeBuffer) length() int {
	return len(e.rewards)
}

// drain empties the buffer, returning the stored observations,
// actions, rewards, and episode continuation masks in row major order.
func (e *episodeBuffer) drain() (obs, actions, rewards, masks []float64) {
	obs = e.obs
	actions = e.actions
	rewards = e.rewards
	masks = e.masks

	e.reset()
	return
}

// reset clears the buffer
func (e *episodeBuffer) reset() {
	e.obs = nil
	e.actions = nil
	e.rewards = nil
	e.masks = nil
}

// discountedReturns computes the discounted return following each
// timestep of an episode. The mask at index i is 0 if the transition
// at index i reached a terminal state and 1 otherwise, so that rewards
// are never propagated backward across episode boundaries.
func discountedReturns(rewards, masks []float64, gamma float64) []float64 {
	returns := make([]float64, len(rewards))

	running := 0.0
	for i := len(rewards) - 1; i >= 0; i-- {
		running = rewards[i] + gamma*masks[i]*running
		returns[i] = running
	}
	return returns
}

// normalizeReturns rescales returns to zero mean and unit standard
// deviation in place. Cliff falls produce returns two orders of
// magnitude larger than regular steps, and unscaled they dominate the
// gradient of a single episode. Returns are left untouched when there
// are too few of them to estimate a spread.
func normalizeReturns(returns []float64) {
	if len(returns) < 2 {
		return
	}

	mean := stat.Mean(returns, nil)
	std := stat.StdDev(returns, nil) + 1e-8
	for i := range returns {
		returns[i] = (returns[i] - mean) / std
	}
}
