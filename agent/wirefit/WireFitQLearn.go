// Package wirefit implements wire-fitted Q-learning (Gaskett et al.),
// which extends Q-learning to continuous, multi-dimensional state and
// action spaces. A function approximator maps each state to a set of
// control wires, a wire-fit interpolator turns those wires into a
// continuous reward landscape over actions, and reinforcement is
// applied by gradient descent on the control points followed by one
// training step of the approximator.
//
// A WireFitQLearn is not safe for concurrent use: each decision step
// strictly depends on the previous one's outcome, so callers must
// serialize access to a single learner instance.
package wirefit

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rangsansith/Fido/agent"
	"github.com/rangsansith/Fido/interpolator"
	"github.com/rangsansith/Fido/utils/floatutils"
	"github.com/rangsansith/Fido/utils/matutils"
	"github.com/rangsansith/Fido/wire"
)

// WireFitQLearn selects continuous actions believed to maximize
// long-term reward and updates its reward model from reinforcement.
//
// The learner alternates between two logical states: idle, and
// awaiting feedback for the single most recent action. Choosing an
// action records it; ApplyReinforcementToLastAction consumes it. Both
// calls fail when made out of turn.
type WireFitQLearn struct {
	approximator agent.Approximator
	trainer      agent.Trainer
	interp       interpolator.Interpolator
	config       Config

	rng rand.Source

	lastState  *mat.VecDense
	lastAction wire.Action
	pending    bool
}

// New returns a new WireFitQLearn that owns the given approximator,
// trainer, and interpolator for its lifetime. The approximator's
// output length must equal NumberOfWires × (ActionDimensions + 1) so
// that its raw output partitions exactly into wires.
func New(approximator agent.Approximator, trainer agent.Trainer,
	interp interpolator.Interpolator, config Config,
	seed uint64) (*WireFitQLearn, error) {

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if approximator.Features() != config.StateDimensions {
		return nil, &Error{Op: "new", Err: fmt.Errorf("%w: approximator "+
			"features want(%v) have(%v)", errDimensionMismatch,
			config.StateDimensions, approximator.Features())}
	}
	if approximator.Outputs() != config.outputs() {
		return nil, &Error{Op: "new", Err: fmt.Errorf("%w: approximator "+
			"outputs want(%v) have(%v)", errDimensionMismatch,
			config.outputs(), approximator.Outputs())}
	}

	if config.ActionAscentRate == 0 {
		config.ActionAscentRate = DefaultActionAscentRate
	}
	if config.ActionAscentIterations == 0 {
		config.ActionAscentIterations = DefaultActionAscentIterations
	}

	return &WireFitQLearn{
		approximator: approximator,
		trainer:      trainer,
		interp:       interp,
		config:       config,
		rng:          rand.NewSource(seed),
	}, nil
}

// Interpolator returns the learner's interpolation strategy.
func (l *WireFitQLearn) Interpolator() interpolator.Interpolator {
	return l.interp
}

// ChooseBestAction returns the action the learner deems most
// beneficial for the current state: the maximizer of the interpolated
// reward surface over the continuous action space, clipped to the
// action bounds. The action is recorded and must be reinforced before
// another one may be chosen.
func (l *WireFitQLearn) ChooseBestAction(state wire.State) (wire.Action,
	error) {
	const op = "choosebestaction"

	if l.pending {
		return nil, &Error{Op: op, Err: fmt.Errorf("%w: an action is "+
			"already awaiting reinforcement", errInvalidSequence)}
	}

	controlWires, err := l.getWires(state)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	action, _ := l.maximize(controlWires)
	l.record(state, action)
	return action, nil
}

// ChooseBoltzmanAction returns an action sampled from the Boltzmann
// softmax distribution over a discretized candidate grid, so that the
// learner explores actions despite their reward value. The probability
// of a candidate is proportional to exp(reward / explorationConstant):
// the lower the exploration constant, the more likely the best
// candidate is picked; larger values flatten the distribution toward
// uniform. The action is recorded and must be reinforced before
// another one may be chosen.
func (l *WireFitQLearn) ChooseBoltzmanAction(state wire.State,
	explorationConstant float64) (wire.Action, error) {
	const op = "chooseboltzmanaction"

	if l.pending {
		return nil, &Error{Op: op, Err: fmt.Errorf("%w: an action is "+
			"already awaiting reinforcement", errInvalidSequence)}
	}
	if explorationConstant <= 0 {
		return nil, &Error{Op: op, Err: fmt.Errorf("%w: exploration "+
			"constant must be positive: have(%v)", errInvalidConfig,
			explorationConstant)}
	}

	controlWires, err := l.getWires(state)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	candidates := l.getSetOfWires(controlWires)
	rewards := make([]float64, len(candidates))
	for i, candidate := range candidates {
		rewards[i] = candidate.Reward
	}

	// Softmax weights, shifted by the maximum reward for numerical
	// stability
	maxReward, _ := floatutils.MaxSlice(rewards)
	weights := make([]float64, len(rewards))
	for i, reward := range rewards {
		weights[i] = math.Exp((reward - maxReward) / explorationConstant)
	}

	dist := distuv.NewCategorical(weights, l.rng)
	chosen := candidates[int(dist.Rand())]

	action := mat.VecDenseCopyOf(chosen.Action)
	l.record(state, action)
	return action, nil
}

// ApplyReinforcementToLastAction updates the learner's reward model
// from the reward of the last action taken and the state it led to.
// The long-term reward target blends the previous estimate with the
// discounted best reward reachable from newState, the control wires
// for the last state are refitted toward that target, and the trainer
// adjusts the approximator to output the refitted wires.
func (l *WireFitQLearn) ApplyReinforcementToLastAction(reward float64,
	newState wire.State) error {
	const op = "applyreinforcementtolastaction"

	if !l.pending {
		return &Error{Op: op, Err: fmt.Errorf("%w: no action is awaiting "+
			"reinforcement", errInvalidSequence)}
	}

	controlWires, err := l.getWires(l.lastState)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	target, err := l.qValue(reward, newState, controlWires)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	correctWire := wire.Wire{Action: l.lastAction, Reward: target}
	updated := l.newControlWires(correctWire, controlWires)

	err = l.trainer.Train(matutils.VecData(l.lastState), getRawOutput(updated))
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	l.pending = false
	return nil
}

// Reset discards the pending decision, if any, and reinitializes the
// approximator's parameters to a fresh, untrained state.
func (l *WireFitQLearn) Reset() error {
	l.lastState = nil
	l.lastAction = nil
	l.pending = false

	if err := l.approximator.Reset(); err != nil {
		return &Error{Op: "reset", Err: err}
	}
	return nil
}

// record stores a decision as the learner's episodic memory.
func (l *WireFitQLearn) record(state wire.State, action wire.Action) {
	l.lastState = mat.VecDenseCopyOf(state)
	l.lastAction = mat.VecDenseCopyOf(action)
	l.pending = true
}

// getWires feeds a state to the approximator and partitions the raw
// output into wires: wire k occupies ActionDimensions action slots
// followed by one reward slot. This layout is the contract the
// approximator and trainer must honor.
func (l *WireFitQLearn) getWires(state wire.State) ([]wire.Wire, error) {
	if state == nil || state.Len() != l.config.StateDimensions {
		have := 0
		if state != nil {
			have = state.Len()
		}
		return nil, fmt.Errorf("%w: state length want(%v) have(%v)",
			errDimensionMismatch, l.config.StateDimensions, have)
	}

	raw, err := l.approximator.Predict(matutils.VecData(state))
	if err != nil {
		return nil, err
	}
	if len(raw) != l.config.outputs() {
		return nil, fmt.Errorf("%w: approximator output length want(%v) "+
			"have(%v)", errDimensionMismatch, l.config.outputs(), len(raw))
	}

	dims := l.config.ActionDimensions
	wires := make([]wire.Wire, l.config.NumberOfWires)
	for k := range wires {
		slot := raw[k*(dims+1) : (k+1)*(dims+1)]
		action := make([]float64, dims)
		copy(action, slot[:dims])
		wires[k] = wire.New(action, slot[dims])
	}
	return wires, nil
}

// getRawOutput flattens a set of wires back into the approximator's
// raw output layout.
func getRawOutput(wires []wire.Wire) []float64 {
	if len(wires) == 0 {
		return nil
	}

	dims := wires[0].Action.Len()
	raw := make([]float64, 0, len(wires)*(dims+1))
	for _, w := range wires {
		raw = append(raw, matutils.VecData(w.Action)...)
		raw = append(raw, w.Reward)
	}
	return raw
}

// getSetOfWires enumerates the Boltzmann candidate grid: every
// combination of BaseOfDimensions evenly spaced levels per action
// dimension between the action bounds, labelled with its interpolated
// reward under the control wires.
func (l *WireFitQLearn) getSetOfWires(controlWires []wire.Wire) []wire.Wire {
	base := l.config.BaseOfDimensions
	dims := l.config.ActionDimensions
	size, _ := l.config.gridSize()

	candidates := make([]wire.Wire, size)
	for i := 0; i < size; i++ {
		action := mat.NewVecDense(dims, nil)
		remainder := i
		for d := 0; d < dims; d++ {
			level := remainder % base
			remainder /= base

			bound := l.config.ActionBounds[d]
			if base == 1 {
				action.SetVec(d, (bound.Min+bound.Max)/2)
			} else {
				spacing := (bound.Max - bound.Min) / float64(base-1)
				action.SetVec(d, bound.Min+float64(level)*spacing)
			}
		}
		candidates[i] = wire.Wire{
			Action: action,
			Reward: l.interp.GetReward(controlWires, action),
		}
	}
	return candidates
}

// highestReward returns the best interpolated reward reachable in a
// state.
func (l *WireFitQLearn) highestReward(state wire.State) (float64, error) {
	controlWires, err := l.getWires(state)
	if err != nil {
		return 0, err
	}
	_, reward := l.maximize(controlWires)
	return reward, nil
}

// maximize finds the action maximizing the interpolated reward surface
// over the continuous action space spanned by the control wires. The
// wires serve as both data and seed points: fixed-step gradient ascent
// is run from every wire's own action, iterates are clipped to the
// action bounds, and the best iterate seen is retained.
func (l *WireFitQLearn) maximize(controlWires []wire.Wire) (wire.Action,
	float64) {

	dims := l.config.ActionDimensions
	grad := make([]float64, dims)

	var best wire.Action
	bestReward := math.Inf(-1)
	consider := func(action wire.Action, reward float64) {
		if reward > bestReward {
			best = mat.VecDenseCopyOf(action)
			bestReward = reward
		}
	}

	for _, seed := range controlWires {
		action := mat.VecDenseCopyOf(seed.Action)
		matutils.VecClipIntervals(action, l.config.ActionBounds)
		consider(action, l.interp.GetReward(controlWires, action))

		for it := 0; it < l.config.ActionAscentIterations; it++ {
			// The interpolated surface depends only on differences
			// between the candidate and the wire actions, so its
			// gradient with respect to the candidate is the negated sum
			// of the wire action derivatives.
			for t := 0; t < dims; t++ {
				grad[t] = 0
				for _, w := range controlWires {
					grad[t] -= l.interp.ActionTermDerivative(action.AtVec(t),
						w.Action.AtVec(t), action, w, controlWires)
				}
			}

			for t := 0; t < dims; t++ {
				action.SetVec(t, floatutils.ClipInterval(
					action.AtVec(t)+l.config.ActionAscentRate*grad[t],
					l.config.ActionBounds[t]))
			}
			consider(action, l.interp.GetReward(controlWires, action))
		}
	}
	return best, bestReward
}

// qValue computes the updated long-term reward estimate for the last
// action: the old interpolated estimate blended, by the learning rate,
// with the immediate reward plus the devalued best reward reachable
// from the new state.
func (l *WireFitQLearn) qValue(reward float64, newState wire.State,
	controlWires []wire.Wire) (float64, error) {

	futureReward, err := l.highestReward(newState)
	if err != nil {
		return 0, err
	}

	oldEstimate := l.interp.GetReward(controlWires, l.lastAction)
	alpha := l.config.LearningRate
	newEstimate := reward + l.config.DevaluationFactor*futureReward

	return (1-alpha)*oldEstimate + alpha*newEstimate, nil
}

// newControlWires refits the control wires so that the interpolated
// reward at the correct wire's action moves toward its reward, using
// gradient descent on the squared error through the interpolator's
// analytic derivatives. The single nearest wire is additionally pulled
// toward the correct action, which lets the wire set track a moving
// optimum instead of only reshaping reward values. Descent stops at
// the error target or after the iteration cap; a non-converged result
// is still returned as a best effort.
func (l *WireFitQLearn) newControlWires(correctWire wire.Wire,
	controlWires []wire.Wire) []wire.Wire {

	wires := wire.CloneAll(controlWires)
	dims := l.config.ActionDimensions
	rate := l.config.ControlPointsGDLearningRate

	for it := 0; it < l.config.ControlPointsGDMaxIterations; it++ {
		interpolated := l.interp.GetReward(wires, correctWire.Action)
		delta := interpolated - correctWire.Reward
		if delta*delta <= l.config.ControlPointsGDErrorTarget {
			break
		}

		for j := range wires {
			rewardDeriv := l.interp.RewardDerivative(correctWire.Action,
				wires[j], wires)
			wires[j].Reward -= rate * delta * rewardDeriv

			for t := 0; t < dims; t++ {
				actionDeriv := l.interp.ActionTermDerivative(
					correctWire.Action.AtVec(t), wires[j].Action.AtVec(t),
					correctWire.Action, wires[j], wires)
				wires[j].Action.SetVec(t,
					wires[j].Action.AtVec(t)-rate*delta*actionDeriv)
			}
		}

		nearest := l.nearestWire(wires, correctWire.Action)
		for t := 0; t < dims; t++ {
			current := wires[nearest].Action.AtVec(t)
			wires[nearest].Action.SetVec(t,
				current+rate*(correctWire.Action.AtVec(t)-current))
		}
	}
	return wires
}

// nearestWire returns the index of the wire closest to action,
// measured by the interpolator's own distance metric when it exposes
// one and by squared Euclidean distance otherwise.
func (l *WireFitQLearn) nearestWire(wires []wire.Wire,
	action wire.Action) int {

	distance := func(w wire.Wire) float64 {
		var dist float64
		for t := 0; t < action.Len(); t++ {
			diff := action.AtVec(t) - w.Action.AtVec(t)
			dist += diff * diff
		}
		return dist
	}
	if metric, ok := l.interp.(interpolator.Distancer); ok {
		maxReward := wire.MaxReward(wires)
		distance = func(w wire.Wire) float64 {
			return metric.Distance(w, action, maxReward)
		}
	}

	nearest, nearestDist := 0, math.Inf(1)
	for j := range wires {
		if dist := distance(wires[j]); dist < nearestDist {
			nearest, nearestDist = j, dist
		}
	}
	return nearest
}
