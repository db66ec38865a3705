package interpolator

import (
	"fmt"

	"github.com/rangsansith/Fido/wire"
)

// DefaultSmoothing is the smoothing constant used by wire-fit
// interpolators constructed with NewWireFit.
const DefaultSmoothing = 0.001

// WireFit implements the wire-fitting interpolation function of
// Gaskett et al. The estimated reward of an action is an inverse
// distance weighted average of the control wire rewards, where the
// distance to a wire grows with the gap between the wire's reward and
// the best reward in the set:
//
//	distance_i = ‖action − action_i‖² + c·(maxReward − reward_i)
//	reward     = Σ_i (reward_i / distance_i) / Σ_i (1 / distance_i)
//
// The smoothing constant c keeps the distance of every wire except the
// best one strictly positive, which both avoids division by zero and
// biases the blend toward higher-reward wires.
type WireFit struct {
	smoothing float64
}

// NewWireFit returns a wire-fit interpolator with the default
// smoothing constant.
func NewWireFit() *WireFit {
	return &WireFit{smoothing: DefaultSmoothing}
}

// NewWireFitSmoothed returns a wire-fit interpolator with a custom
// smoothing constant. The constant must be strictly positive; a zero
// or negative value would make the interpolation formula degenerate.
func NewWireFitSmoothed(smoothing float64) (*WireFit, error) {
	if smoothing <= 0 {
		return nil, fmt.Errorf("newwirefitsmoothed: %w: want > 0, have %v",
			errDegenerateSmoothing, smoothing)
	}
	return &WireFit{smoothing: smoothing}, nil
}

// Name returns the stable identifier of the wire-fit strategy.
func (wf *WireFit) Name() string {
	return "wirefit"
}

// Distance returns the weighted distance between a wire and an action.
// The maxReward argument must be the maximum reward across the wire's
// set, so that the reward penalty term vanishes exactly for the best
// wire.
func (wf *WireFit) Distance(w wire.Wire, action wire.Action,
	maxReward float64) float64 {

	dist := wf.smoothing * (maxReward - w.Reward)
	for i := 0; i < action.Len(); i++ {
		diff := action.AtVec(i) - w.Action.AtVec(i)
		dist += diff * diff
	}
	return dist
}

// GetReward returns the interpolated reward of action. The result is a
// weighted average of the control wire rewards and therefore always
// lies within their [min, max] range. When the action coincides with
// the best wire's action the weighted average is undefined, and the
// wire's own reward is returned as the limiting value.
func (wf *WireFit) GetReward(controlWires []wire.Wire,
	action wire.Action) float64 {

	maxReward := wire.MaxReward(controlWires)

	var wsum, norm float64
	for _, w := range controlWires {
		dist := wf.Distance(w, action, maxReward)
		if dist == 0 {
			// Only the max-reward wire evaluated at its own action.
			return w.Reward
		}
		wsum += w.Reward / dist
		norm += 1 / dist
	}
	return wsum / norm
}

// RewardDerivative returns ∂getReward/∂(w.Reward) at action, by the
// quotient rule on the weighted-average expression. The smoothing
// reference maxReward is held fixed, so the derivative is the
// piecewise-smooth branch away from ties for the best reward.
func (wf *WireFit) RewardDerivative(action wire.Action, w wire.Wire,
	controlWires []wire.Wire) float64 {

	maxReward := wire.MaxReward(controlWires)
	norm := wf.normalize(controlWires, action, maxReward)
	wsum := wf.weightedSum(controlWires, action, maxReward)
	dist := wf.Distance(w, action, maxReward)
	if dist == 0 {
		// The surface pins to the wire's own reward here.
		return 0
	}

	scale := norm * dist
	return (norm*(dist+w.Reward*wf.smoothing) - wsum*wf.smoothing) /
		(scale * scale)
}

// ActionTermDerivative returns ∂getReward/∂(one term of w.Action) at
// action, by the chain rule through the wire's distance and hence its
// interpolation weight.
func (wf *WireFit) ActionTermDerivative(actionTerm, wireActionTerm float64,
	action wire.Action, w wire.Wire, controlWires []wire.Wire) float64 {

	maxReward := wire.MaxReward(controlWires)
	norm := wf.normalize(controlWires, action, maxReward)
	wsum := wf.weightedSum(controlWires, action, maxReward)
	dist := wf.Distance(w, action, maxReward)
	if dist == 0 {
		return 0
	}

	scale := norm * dist
	return (wsum - w.Reward*norm) * 2 * (wireActionTerm - actionTerm) /
		(scale * scale)
}

// weightedSum returns Σ_i reward_i / distance_i over the wires.
func (wf *WireFit) weightedSum(wires []wire.Wire, action wire.Action,
	maxReward float64) float64 {

	var sum float64
	for _, w := range wires {
		sum += w.Reward / wf.Distance(w, action, maxReward)
	}
	return sum
}

// normalize returns Σ_i 1 / distance_i over the wires.
func (wf *WireFit) normalize(wires []wire.Wire, action wire.Action,
	maxReward float64) float64 {

	var norm float64
	for _, w := range wires {
		norm += 1 / wf.Distance(w, action, maxReward)
	}
	return norm
}
