// Package wire implements the geometric primitives of wire-fitted
// Q-learning: state and action vectors, and the labelled control
// points ("wires") that anchor an interpolated reward surface.
package wire

import "gonum.org/v1/gonum/mat"

// State is an observation vector fed to a learner. Its dimension must
// stay consistent across all calls on one learner instance.
type State = mat.Vector

// Action is a continuous, multi-dimensional action vector.
type Action = *mat.VecDense

// Wire pairs an action with a scalar estimate of its long-term reward.
// Wires are ephemeral: a learner produces a fresh set from its function
// approximator on every decision or update step.
type Wire struct {
	Action Action
	Reward float64
}

// New returns a Wire holding the given action data and reward.
func New(action []float64, reward float64) Wire {
	return Wire{Action: mat.NewVecDense(len(action), action), Reward: reward}
}

// Clone returns a deep copy of a Wire.
func Clone(w Wire) Wire {
	return Wire{Action: mat.VecDenseCopyOf(w.Action), Reward: w.Reward}
}

// CloneAll returns a deep copy of a set of Wires.
func CloneAll(wires []Wire) []Wire {
	cloned := make([]Wire, len(wires))
	for i := range wires {
		cloned[i] = Clone(wires[i])
	}
	return cloned
}

// MaxReward returns the maximum reward held by any wire in the set.
// The set must be non-empty.
func MaxReward(wires []Wire) float64 {
	max := wires[0].Reward
	for _, w := range wires {
		if w.Reward > max {
			max = w.Reward
		}
	}
	return max
}

// MinReward returns the minimum reward held by any wire in the set.
// The set must be non-empty.
func MinReward(wires []Wire) float64 {
	min := wires[0].Reward
	for _, w := range wires {
		if w.Reward < min {
			min = w.Reward
		}
	}
	return min
}
