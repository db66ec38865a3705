package wirefit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/rangsansith/Fido/agent"
	"github.com/rangsansith/Fido/interpolator"
	"github.com/rangsansith/Fido/wire"
)

// stubApproximator is a parameter table posing as a function
// approximator: it ignores the state and returns its parameter vector,
// so tests can dictate the learner's control wires exactly.
type stubApproximator struct {
	features int
	params   []float64
	truncate bool
	resets   int
}

func (s *stubApproximator) Predict(state []float64) ([]float64, error) {
	out := make([]float64, len(s.params))
	copy(out, s.params)
	if s.truncate {
		return out[:len(out)-1], nil
	}
	return out, nil
}

func (s *stubApproximator) Features() int { return s.features }

func (s *stubApproximator) Outputs() int { return len(s.params) }

func (s *stubApproximator) Reset() error {
	for i := range s.params {
		s.params[i] = 0
	}
	s.resets++
	return nil
}

// stubTrainer moves the stub's parameters a fixed fraction of the way
// toward the training target.
type stubTrainer struct {
	approx *stubApproximator
	rate   float64
}

func (t *stubTrainer) Train(state, target []float64) error {
	for i := range t.approx.params {
		t.approx.params[i] += t.rate * (target[i] - t.approx.params[i])
	}
	return nil
}

// discardTrainer ignores all training, freezing the approximator.
type discardTrainer struct{}

func (discardTrainer) Train(state, target []float64) error { return nil }

func testConfig() Config {
	return Config{
		StateDimensions:              1,
		ActionDimensions:             1,
		NumberOfWires:                3,
		BaseOfDimensions:             5,
		ActionBounds:                 []r1.Interval{{Min: 0.0, Max: 1.0}},
		LearningRate:                 1.0,
		DevaluationFactor:            0.0,
		ControlPointsGDErrorTarget:   1e-4,
		ControlPointsGDLearningRate:  0.1,
		ControlPointsGDMaxIterations: 100,
	}
}

// testLearner returns a learner over three wires with actions 0.1,
// 0.5, 0.9 and zero rewards, backed by a parameter table.
func testLearner(t *testing.T, config Config, trainRate float64,
	seed uint64) (*WireFitQLearn, *stubApproximator) {
	t.Helper()

	approx := &stubApproximator{
		features: config.StateDimensions,
		params:   []float64{0.1, 0.0, 0.5, 0.0, 0.9, 0.0},
	}

	var trainer agent.Trainer = &stubTrainer{approx: approx, rate: trainRate}
	if trainRate == 0 {
		trainer = discardTrainer{}
	}

	learner, err := New(approx, trainer, interpolator.NewWireFit(), config,
		seed)
	if err != nil {
		t.Fatalf("could not construct learner: %v", err)
	}
	return learner, approx
}

func state(values ...float64) wire.State {
	return mat.NewVecDense(len(values), values)
}

func TestNewRejectsMismatchedApproximator(t *testing.T) {
	config := testConfig()
	interp := interpolator.NewWireFit()

	approx := &stubApproximator{features: 2,
		params: make([]float64, config.outputs())}
	_, err := New(approx, discardTrainer{}, interp, config, 1)
	if !IsDimensionMismatch(err) {
		t.Errorf("expected dimension mismatch for wrong feature count, "+
			"got %v", err)
	}

	approx = &stubApproximator{features: 1,
		params: make([]float64, config.outputs()+1)}
	_, err = New(approx, discardTrainer{}, interp, config, 1)
	if !IsDimensionMismatch(err) {
		t.Errorf("expected dimension mismatch for wrong output count, "+
			"got %v", err)
	}
}

func TestValidateRejectsOversizedGrid(t *testing.T) {
	config := testConfig()
	config.ActionDimensions = 21
	config.BaseOfDimensions = 2
	config.ActionBounds = make([]r1.Interval, 21)
	for i := range config.ActionBounds {
		config.ActionBounds[i] = r1.Interval{Min: 0.0, Max: 1.0}
	}

	if err := config.Validate(); !IsConfigurationError(err) {
		t.Errorf("expected configuration error for 2^21 candidate grid, "+
			"got %v", err)
	}
}

func TestChooseRejectsBadState(t *testing.T) {
	learner, _ := testLearner(t, testConfig(), 0, 1)

	if _, err := learner.ChooseBestAction(state(1.0, 2.0)); !IsDimensionMismatch(err) {
		t.Errorf("expected dimension mismatch for 2-dimensional state, "+
			"got %v", err)
	}
	if _, err := learner.ChooseBestAction(nil); !IsDimensionMismatch(err) {
		t.Errorf("expected dimension mismatch for nil state, got %v", err)
	}
}

func TestChooseRejectsShortApproximatorOutput(t *testing.T) {
	learner, approx := testLearner(t, testConfig(), 0, 1)
	approx.truncate = true

	if _, err := learner.ChooseBestAction(state(0.0)); !IsDimensionMismatch(err) {
		t.Errorf("expected dimension mismatch for truncated output, "+
			"got %v", err)
	}
}

func TestBoltzmanRejectsNonPositiveExploration(t *testing.T) {
	learner, _ := testLearner(t, testConfig(), 0, 1)

	if _, err := learner.ChooseBoltzmanAction(state(0.0), 0.0); !IsConfigurationError(err) {
		t.Errorf("expected configuration error for zero exploration "+
			"constant, got %v", err)
	}
}

func TestDecideThenReinforceProtocol(t *testing.T) {
	learner, _ := testLearner(t, testConfig(), 0, 1)

	// Reinforcement with nothing outstanding
	err := learner.ApplyReinforcementToLastAction(1.0, state(0.0))
	if !IsInvalidSequence(err) {
		t.Errorf("expected invalid sequence before any action, got %v", err)
	}

	if _, err := learner.ChooseBestAction(state(0.0)); err != nil {
		t.Fatalf("could not choose action: %v", err)
	}

	// A second decision while the first awaits feedback
	if _, err := learner.ChooseBestAction(state(0.0)); !IsInvalidSequence(err) {
		t.Errorf("expected invalid sequence for back-to-back decisions, "+
			"got %v", err)
	}
	if _, err := learner.ChooseBoltzmanAction(state(0.0), 1.0); !IsInvalidSequence(err) {
		t.Errorf("expected invalid sequence for back-to-back decisions, "+
			"got %v", err)
	}

	if err := learner.ApplyReinforcementToLastAction(1.0, state(0.0)); err != nil {
		t.Fatalf("could not apply reinforcement: %v", err)
	}

	// The feedback was consumed
	err = learner.ApplyReinforcementToLastAction(1.0, state(0.0))
	if !IsInvalidSequence(err) {
		t.Errorf("expected invalid sequence for repeated reinforcement, "+
			"got %v", err)
	}
}

func TestResetClearsPendingAction(t *testing.T) {
	learner, approx := testLearner(t, testConfig(), 0, 1)

	if _, err := learner.ChooseBestAction(state(0.0)); err != nil {
		t.Fatalf("could not choose action: %v", err)
	}
	if err := learner.Reset(); err != nil {
		t.Fatalf("could not reset learner: %v", err)
	}
	if approx.resets != 1 {
		t.Errorf("expected reset to reinitialize the approximator: "+
			"want(1) have(%v)", approx.resets)
	}

	err := learner.ApplyReinforcementToLastAction(1.0, state(0.0))
	if !IsInvalidSequence(err) {
		t.Errorf("expected invalid sequence after reset, got %v", err)
	}
	if _, err := learner.ChooseBestAction(state(0.0)); err != nil {
		t.Errorf("expected a fresh decision after reset, got %v", err)
	}
}

func TestBestActionPrefersHighestRewardWire(t *testing.T) {
	learner, approx := testLearner(t, testConfig(), 0, 1)
	approx.params = []float64{0.1, 0.0, 0.5, 5.0, 0.9, 0.0}

	action, err := learner.ChooseBestAction(state(0.0))
	if err != nil {
		t.Fatalf("could not choose action: %v", err)
	}
	if math.Abs(action.AtVec(0)-0.5) > 0.05 {
		t.Errorf("expected the best action near the top reward wire: "+
			"want(0.5) have(%v)", action.AtVec(0))
	}
}

func TestBestActionRespectsBounds(t *testing.T) {
	learner, approx := testLearner(t, testConfig(), 0, 1)
	// The top wire sits outside the action bounds
	approx.params = []float64{0.1, 0.0, 0.5, 0.0, 1.7, 5.0}

	action, err := learner.ChooseBestAction(state(0.0))
	if err != nil {
		t.Fatalf("could not choose action: %v", err)
	}
	if action.AtVec(0) < 0.0 || action.AtVec(0) > 1.0 {
		t.Errorf("expected the chosen action within [0, 1]: have(%v)",
			action.AtVec(0))
	}
}

func TestBoltzmanGreedyLimit(t *testing.T) {
	learner, approx := testLearner(t, testConfig(), 0, 14)
	approx.params = []float64{0.1, 0.0, 0.5, 5.0, 0.9, 0.0}

	for i := 0; i < 20; i++ {
		action, err := learner.ChooseBoltzmanAction(state(0.0), 1e-3)
		if err != nil {
			t.Fatalf("could not choose action: %v", err)
		}
		if math.Abs(action.AtVec(0)-0.5) > 1e-12 {
			t.Errorf("expected the near-greedy draw to pick the best grid "+
				"candidate: want(0.5) have(%v)", action.AtVec(0))
		}
		if err := learner.ApplyReinforcementToLastAction(0.0, state(0.0)); err != nil {
			t.Fatalf("could not apply reinforcement: %v", err)
		}
	}
}

func TestBoltzmanHighTemperatureSpread(t *testing.T) {
	learner, approx := testLearner(t, testConfig(), 0, 14)
	approx.params = []float64{0.1, 0.0, 0.5, 5.0, 0.9, 0.0}

	const draws = 500
	counts := make(map[float64]int)
	for i := 0; i < draws; i++ {
		action, err := learner.ChooseBoltzmanAction(state(0.0), 1e6)
		if err != nil {
			t.Fatalf("could not choose action: %v", err)
		}
		counts[action.AtVec(0)]++
		if err := learner.ApplyReinforcementToLastAction(0.0, state(0.0)); err != nil {
			t.Fatalf("could not apply reinforcement: %v", err)
		}
	}

	if len(counts) != 5 {
		t.Fatalf("expected all 5 grid candidates drawn: have(%v)",
			len(counts))
	}
	for action, count := range counts {
		if count < draws/10 {
			t.Errorf("expected a near-uniform spread at high temperature: "+
				"action %v drawn %v of %v times", action, count, draws)
		}
	}
}

func TestControlWireFitImprovesWithIterations(t *testing.T) {
	correct := wire.Wire{
		Action: mat.NewVecDense(1, []float64{0.5}),
		Reward: 2.0,
	}

	fitError := func(iterations int) float64 {
		config := testConfig()
		config.ControlPointsGDErrorTarget = 0.0
		config.ControlPointsGDLearningRate = 0.01
		config.ControlPointsGDMaxIterations = iterations

		learner, _ := testLearner(t, config, 0, 1)
		controlWires, err := learner.getWires(state(0.0))
		if err != nil {
			t.Fatalf("could not compute control wires: %v", err)
		}

		fitted := learner.newControlWires(correct, controlWires)
		diff := learner.interp.GetReward(fitted, correct.Action) -
			correct.Reward
		return diff * diff
	}

	previous := math.Inf(1)
	for _, iterations := range []int{1, 10, 100} {
		current := fitError(iterations)
		if current > previous+1e-9 {
			t.Errorf("expected the fit error to shrink with more "+
				"iterations: %v iterations gave %v after %v", iterations,
				current, previous)
		}
		previous = current
	}
	if previous > 0.5 {
		t.Errorf("expected the fit to approach the target reward: "+
			"squared error still %v after 100 iterations", previous)
	}
}

// TestLearnsPeakedReward runs the full decide-then-reinforce loop on a
// one-dimensional task whose reward is 1 only within 0.06 of 0.8, and
// checks that the learner's best action converges near the peak. The
// window is wide enough that the Boltzmann candidate grid
// {0, 0.25, 0.5, 0.75, 1.0} can land strictly inside it, so exploration
// is guaranteed to be able to earn the reward.
func TestLearnsPeakedReward(t *testing.T) {
	learner, _ := testLearner(t, testConfig(), 1.0, 27)
	s := state(0.5)

	rewardAt := func(action float64) float64 {
		if math.Abs(action-0.8) <= 0.06 {
			return 1.0
		}
		return 0.0
	}

	var hits int
	for step := 0; step < 300; step++ {
		action, err := learner.ChooseBoltzmanAction(s, 0.3)
		if err != nil {
			t.Fatalf("could not choose action at step %v: %v", step, err)
		}
		r := rewardAt(action.AtVec(0))
		if r > 0 {
			hits++
		}
		err = learner.ApplyReinforcementToLastAction(r, s)
		if err != nil {
			t.Fatalf("could not apply reinforcement at step %v: %v", step,
				err)
		}
	}

	if hits == 0 {
		t.Fatal("exploration never reached the reward region, so the " +
			"approximator had nothing to learn from")
	}

	action, err := learner.ChooseBestAction(s)
	if err != nil {
		t.Fatalf("could not choose the final action: %v", err)
	}
	if math.Abs(action.AtVec(0)-0.8) > 0.1 {
		t.Errorf("expected the learner to find the reward peak: "+
			"want an action within 0.1 of 0.8, have(%v)", action.AtVec(0))
	}
}
