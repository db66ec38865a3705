// Package interpolator turns a sparse set of labelled control wires
// into a continuous reward landscape over actions. The interpolated
// surface and its analytic partial derivatives are what a wire-fitting
// learner optimizes during its reinforcement update.
package interpolator

import (
	"errors"

	"github.com/rangsansith/Fido/wire"
)

// Interpolator estimates the reward of a candidate action from a
// non-empty set of control wires, and exposes the partial derivatives
// of that estimate needed for control-point gradient descent.
type Interpolator interface {
	// GetReward returns the interpolated reward of action given the
	// control wires.
	GetReward(controlWires []wire.Wire, action wire.Action) float64

	// RewardDerivative returns the partial derivative of the
	// interpolated reward at action with respect to the reward of w.
	RewardDerivative(action wire.Action, w wire.Wire,
		controlWires []wire.Wire) float64

	// ActionTermDerivative returns the partial derivative of the
	// interpolated reward at action with respect to one term of the
	// action vector of w. The actionTerm and wireActionTerm arguments
	// are the corresponding components of action and w.Action.
	ActionTermDerivative(actionTerm, wireActionTerm float64,
		action wire.Action, w wire.Wire, controlWires []wire.Wire) float64

	// Name returns a stable identifier for the interpolation strategy,
	// usable for configuration-driven selection.
	Name() string
}

// Distancer is implemented by interpolators whose blending weights
// derive from a distance metric between a wire and an action. Callers
// that need the interpolator's own notion of nearness (such as the
// nearest-wire pull of the control-point update) should prefer this
// metric over plain Euclidean distance when available.
type Distancer interface {
	Distance(w wire.Wire, action wire.Action, maxReward float64) float64
}

var errDegenerateSmoothing = errors.New("degenerate smoothing constant")

// IsNumericDegeneracy returns whether an error reports an interpolator
// configuration that would make the interpolation formula degenerate,
// such as a non-positive smoothing constant.
func IsNumericDegeneracy(err error) bool {
	return errors.Is(err, errDegenerateSmoothing)
}
