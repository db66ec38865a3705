package wirefit

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"
)

// Default tuning of the gradient ascent used to maximize the
// interpolated reward surface over the continuous action space.
const (
	DefaultActionAscentRate       = 0.05
	DefaultActionAscentIterations = 10
)

// maxGridActions caps the number of candidate actions that Boltzmann
// selection may enumerate, baseOfDimensions^actionDimensions. Larger
// grids are a configuration error rather than a silent truncation.
const maxGridActions = 1 << 20

// Config represents a configuration of the WireFitQLearn agent. All
// fields are fixed once a learner is constructed.
type Config struct {
	// StateDimensions is the dimension of the state vectors fed to the
	// learner, and ActionDimensions the dimension of the action
	// vectors it outputs.
	StateDimensions  int
	ActionDimensions int

	// NumberOfWires is the number of control points the function
	// approximator outputs per state. The more complex the task, the
	// more wires are needed.
	NumberOfWires int

	// BaseOfDimensions is the number of discrete levels per action
	// dimension used to build the Boltzmann candidate grid. For
	// example BaseOfDimensions = 2 with bounds [0, 1]² enumerates
	// {0, 0}, {0, 1}, {1, 0}, {1, 1}.
	BaseOfDimensions int

	// ActionBounds holds the per-dimension interval every generated
	// action component must lie in.
	ActionBounds []r1.Interval

	// LearningRate weighs how strongly one reinforcement moves the
	// long-term reward estimate; DevaluationFactor weighs estimated
	// future reward against immediate reward. Both lie in [0, 1].
	LearningRate      float64
	DevaluationFactor float64

	// Tuning of the control-point gradient descent that refits the
	// wires to a newly computed reward target.
	ControlPointsGDErrorTarget   float64
	ControlPointsGDLearningRate  float64
	ControlPointsGDMaxIterations int

	// Tuning of the gradient ascent used to maximize the interpolated
	// reward surface when selecting the best action. Zero values fall
	// back to the package defaults.
	ActionAscentRate       float64
	ActionAscentIterations int
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return &Error{
			Op:  "validate",
			Err: fmt.Errorf("%w: %v", errInvalidConfig, fmt.Sprintf(format, args...)),
		}
	}

	if c.StateDimensions < 1 {
		return fail("state dimensions must be positive: have(%v)",
			c.StateDimensions)
	}
	if c.ActionDimensions < 1 {
		return fail("action dimensions must be positive: have(%v)",
			c.ActionDimensions)
	}
	if c.NumberOfWires < 1 {
		return fail("number of wires must be positive: have(%v)",
			c.NumberOfWires)
	}
	if c.BaseOfDimensions < 1 {
		return fail("base of dimensions must be positive: have(%v)",
			c.BaseOfDimensions)
	}

	if len(c.ActionBounds) != c.ActionDimensions {
		return fail("need one action bound per action dimension: "+
			"want(%v) have(%v)", c.ActionDimensions, len(c.ActionBounds))
	}
	for i, bound := range c.ActionBounds {
		if bound.Min > bound.Max {
			return fail("action bound %v has min above max: [%v, %v]", i,
				bound.Min, bound.Max)
		}
	}

	if c.LearningRate < 0 || c.LearningRate > 1 {
		return fail("learning rate must be in [0, 1]: have(%v)",
			c.LearningRate)
	}
	if c.DevaluationFactor < 0 || c.DevaluationFactor > 1 {
		return fail("devaluation factor must be in [0, 1]: have(%v)",
			c.DevaluationFactor)
	}

	if c.ControlPointsGDErrorTarget < 0 {
		return fail("control point error target cannot be negative: have(%v)",
			c.ControlPointsGDErrorTarget)
	}
	if c.ControlPointsGDLearningRate <= 0 {
		return fail("control point learning rate must be positive: have(%v)",
			c.ControlPointsGDLearningRate)
	}
	if c.ControlPointsGDMaxIterations < 1 {
		return fail("control point iteration cap must be positive: have(%v)",
			c.ControlPointsGDMaxIterations)
	}

	if c.ActionAscentRate < 0 {
		return fail("action ascent rate cannot be negative: have(%v)",
			c.ActionAscentRate)
	}
	if c.ActionAscentIterations < 0 {
		return fail("action ascent iterations cannot be negative: have(%v)",
			c.ActionAscentIterations)
	}

	if _, ok := c.gridSize(); !ok {
		return fail("boltzmann candidate grid %v^%v exceeds the enumeration "+
			"cap of %v actions", c.BaseOfDimensions, c.ActionDimensions,
			maxGridActions)
	}

	return nil
}

// gridSize returns baseOfDimensions^actionDimensions and whether the
// enumeration stays within the supported cap.
func (c Config) gridSize() (int, bool) {
	size := 1
	for i := 0; i < c.ActionDimensions; i++ {
		size *= c.BaseOfDimensions
		if size > maxGridActions {
			return 0, false
		}
	}
	return size, true
}

// outputs returns the flat approximator output length the Config
// implies: one action vector plus one reward per wire.
func (c Config) outputs() int {
	return c.NumberOfWires * (c.ActionDimensions + 1)
}
