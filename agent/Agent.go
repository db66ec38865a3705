// Package agent defines the capability interfaces consumed by learners.
//
// A learner is composed with two collaborators: an Approximator, which
// maps a state vector to a flat numeric output, and a Trainer, which
// adjusts the Approximator's internal parameters toward a target
// output. The two capabilities are independent so that any regression
// technique can be substituted without touching the learner.
package agent

// Approximator maps a state vector of Features() components to an
// output vector of Outputs() components. Predictions must be
// deterministic for a fixed parameter state.
type Approximator interface {
	Predict(state []float64) ([]float64, error)
	Features() int
	Outputs() int

	// Reset reinitializes the internal parameters to a fresh,
	// untrained state. The reinitialization policy is an implementation
	// concern, chosen at construction.
	Reset() error
}

// Trainer performs one internal parameter-adjustment step on an
// Approximator, moving its prediction for state toward target. The
// target vector must have the Approximator's output length.
type Trainer interface {
	Train(state, target []float64) error
}
