// Package cliffwalking implements the Cliff Walking gridworld
// environment.
//
// The environment is a rows × cols grid. The agent starts in the
// bottom-left cell and must reach the goal in the bottom-right cell.
// Every cell of the bottom row between start and goal is a cliff.
// Each move costs reward -1. Taking an action from a cliff cell costs
// reward -100 and teleports the agent back to the start without
// ending the episode. Taking an action from the goal cell keeps the
// agent at the goal with reward 0 and ends the episode, so the
// optimal episodic return on the standard 4×12 grid is -13.
//
// All (position, action) outcomes are enumerated once at construction
// time into a flat transition table; stepping is a single lookup. The
// cliff membership of the source cell is checked before the move and
// the goal check runs after it, matching the conventional Cliff
// Walking reward shaping.
package cliffwalking

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gridrl/cliffwalk/environment"
	"github.com/gridrl/cliffwalk/timestep"
)

// Action is a movement direction on the grid.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

// NumActions is the number of available movement directions.
const NumActions = 4

// Default rewards of the Cliff Walking task.
const (
	StepReward  = -1.0
	CliffReward = -100.0
	GoalReward  = 0.0
)

// Delta returns the (row, col) shift that the Action performs.
func (a Action) Delta() (int, int) {
	switch a {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	panic(fmt.Sprintf("delta: illegal action %v", int(a)))
}

func (a Action) String() string {
	switch a {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// transition is a single precomputed outcome of the environment
// dynamics.
type transition struct {
	next     int
	reward   float64
	terminal bool
}

// SingleStart is a Starter that always starts episodes from a single
// fixed cell.
type SingleStart struct {
	state *mat.VecDense
}

// NewSingleStart returns a Starter placing the agent at (row, col) on
// an r × c grid.
func NewSingleStart(row, col, r, c int) (environment.Starter, error) {
	if row < 0 || row >= r {
		return nil, fmt.Errorf("newsinglestart: row = %d out of range [0, %d)",
			row, r)
	}
	if col < 0 || col >= c {
		return nil, fmt.Errorf("newsinglestart: col = %d out of range [0, %d)",
			col, c)
	}

	state := mat.NewVecDense(r*c, nil)
	state.SetVec(row*c+col, 1.0)
	return &SingleStart{state}, nil
}

// Start returns the one-hot starting state observation.
func (s *SingleStart) Start() *mat.VecDense {
	out := mat.NewVecDense(s.state.Len(), nil)
	out.CopyVec(s.state)
	return out
}

// CliffWalking implements the Cliff Walking environment. The cell the
// agent occupies is tracked as a linearized position; observations are
// one-hot encodings over all rows*cols cells.
type CliffWalking struct {
	environment.Starter
	rows, cols int
	start      int
	goal       int
	cliff      []bool
	table      []transition

	position    int
	discount    float64
	stepLimit   int
	stepsTaken  int
	currentStep timestep.TimeStep
}

// New creates a new Cliff Walking environment with the given grid
// dimensions and discount factor. Episodes that have not reached a
// terminal state after stepLimit steps are cut off. The returned
// TimeStep is the first step of the first episode.
func New(rows, cols int, discount float64,
	stepLimit int) (*CliffWalking, timestep.TimeStep, error) {
	if rows < 2 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: rows = %d, "+
			"cliff walking needs at least 2 rows", rows)
	}
	if cols < 2 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: cols = %d, "+
			"cliff walking needs at least 2 columns", cols)
	}
	if discount < 0 || discount > 1 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: discount = %v "+
			"not in [0, 1]", discount)
	}
	if stepLimit <= 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: step limit = %d "+
			"must be positive", stepLimit)
	}

	startRow, startCol := rows-1, 0
	starter, err := NewSingleStart(startRow, startCol, rows, cols)
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	start := startRow*cols + startCol
	goal := (rows-1)*cols + (cols - 1)

	cliff := make([]bool, rows*cols)
	for col := 1; col < cols-1; col++ {
		cliff[(rows-1)*cols+col] = true
	}

	c := &CliffWalking{
		Starter:   starter,
		rows:      rows,
		cols:      cols,
		start:     start,
		goal:      goal,
		cliff:     cliff,
		discount:  discount,
		stepLimit: stepLimit,
	}
	c.table = c.buildTable()

	return c, c.Reset(), nil
}

// buildTable enumerates every (position, action) outcome. The cliff
// check reads the source cell before the move; the goal check runs
// after it and is the only terminal case.
func (c *CliffWalking) buildTable() []transition {
	table := make([]transition, c.rows*c.cols*NumActions)
	for pos := 0; pos < c.rows*c.cols; pos++ {
		row, col := pos/c.cols, pos%c.cols
		for a := Action(0); a < NumActions; a++ {
			dRow, dCol := a.Delta()
			newRow := clamp(row+dRow, 0, c.rows-1)
			newCol := clamp(col+dCol, 0, c.cols-1)

			tr := transition{
				next:     newRow*c.cols + newCol,
				reward:   StepReward,
				terminal: false,
			}

			if c.cliff[pos] {
				tr.reward = CliffReward
				tr.next = c.start
				tr.terminal = false
			}

			if pos == c.goal {
				tr.reward = GoalReward
				tr.next = c.goal
				tr.terminal = true
			}

			table[pos*NumActions+int(a)] = tr
		}
	}
	return table
}

func clamp(x, low, high int) int {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// Reset resets the environment to the start of a new episode and
// returns the starting timestep.
func (c *CliffWalking) Reset() timestep.TimeStep {
	c.position = c.start
	c.stepsTaken = 0

	startStep := timestep.New(timestep.First, 0, c.discount,
		c.getObservation(), 0)
	c.currentStep = startStep
	return startStep
}

// Step takes a single environmental step with the argument action,
// which must be a 1-dimensional vector holding the action index. The
// second return value indicates whether the returned timestep was the
// last in the episode.
func (c *CliffWalking) Step(action mat.Vector) (timestep.TimeStep, bool) {
	if action.Len() != 1 {
		panic(fmt.Sprintf("step: action dimension incorrect \n\twant(1)"+
			"\n\thave(%d)", action.Len()))
	}
	index := int(action.AtVec(0))
	if index < 0 || index >= NumActions {
		panic(fmt.Sprintf("step: illegal action index %d", index))
	}

	tr := c.table[c.position*NumActions+index]
	c.position = tr.next
	c.stepsTaken++

	stepType := timestep.Mid
	end := timestep.Nil
	if tr.terminal {
		stepType = timestep.Last
		end = timestep.TerminalStateReached
	} else if c.stepsTaken >= c.stepLimit {
		stepType = timestep.Last
		end = timestep.Cutoff
	}

	step := timestep.New(stepType, tr.reward, c.discount,
		c.getObservation(), c.currentStep.Number+1)
	step.SetEnd(end)
	c.currentStep = step

	return step, step.Last()
}

// Transition returns the precomputed outcome of taking action a at
// cell (row, col) without mutating the environment.
func (c *CliffWalking) Transition(row, col int, a Action) (nextRow,
	nextCol int, reward float64, terminal bool) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		panic(fmt.Sprintf("transition: cell (%d, %d) out of bounds (%d, %d)",
			row, col, c.rows, c.cols))
	}
	if a < 0 || a >= NumActions {
		panic(fmt.Sprintf("transition: illegal action %v", int(a)))
	}

	tr := c.table[(row*c.cols+col)*NumActions+int(a)]
	return tr.next / c.cols, tr.next % c.cols, tr.reward, tr.terminal
}

// AtGoal returns whether the one-hot state observation is the goal
// cell.
func (c *CliffWalking) AtGoal(state mat.Vector) bool {
	return state.AtVec(c.goal) != 0.0
}

// AtCliff returns whether cell (row, col) is a cliff cell.
func (c *CliffWalking) AtCliff(row, col int) bool {
	return c.cliff[row*c.cols+col]
}

// Coordinates returns the (row, col) coordinates of the agent.
func (c *CliffWalking) Coordinates() (int, int) {
	return c.position / c.cols, c.position % c.cols
}

// Dims gets the rows and columns of the grid.
func (c *CliffWalking) Dims() (r, col int) {
	return c.rows, c.cols
}

// At checks the value at position (i, j) in the grid. A value of 1.0
// indicates that the agent is at position (i, j).
func (c *CliffWalking) At(i, j int) float64 {
	if i*c.cols+j == c.position {
		return 1.0
	}
	return 0.0
}

func (c *CliffWalking) String() string {
	row, col := c.Coordinates()
	return fmt.Sprintf("CliffWalking | At: (%d, %d)  |  Goal: (%d, %d)  |"+
		"  Bounds: (%d, %d)", row, col, c.goal/c.cols, c.goal%c.cols,
		c.rows, c.cols)
}

// getObservation returns the one-hot encoding of the current position.
func (c *CliffWalking) getObservation() *mat.VecDense {
	position := mat.NewVecDense(c.rows*c.cols, nil)
	position.SetVec(c.position, 1.0)
	return position
}

// ObservationSpec returns the observation specification of the
// environment
func (c *CliffWalking) ObservationSpec() environment.Spec {
	cells := c.rows * c.cols
	shape := mat.NewVecDense(cells, nil)
	lowerBound := mat.NewVecDense(cells, nil)
	upperBound := mat.NewVecDense(cells, ones(cells))

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Discrete)
}

// ActionSpec returns the action specification of the environment
func (c *CliffWalking) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(Up)})
	upperBound := mat.NewVecDense(1, []float64{float64(Right)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// RewardSpec returns the reward specification of the environment
func (c *CliffWalking) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{CliffReward})
	upperBound := mat.NewVecDense(1, []float64{GoalReward})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (c *CliffWalking) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{c.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		lowerBound, environment.Continuous)
}

func ones(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1.0
	}
	return data
}
