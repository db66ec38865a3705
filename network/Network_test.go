package network

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"

	"github.com/rangsansith/Fido/initwfn"
	"github.com/rangsansith/Fido/solver"
)

func newTestPredictor(t *testing.T, features, outputs int) *Predictor {
	t.Helper()

	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		t.Fatalf("could not create initialization scheme: %v", err)
	}

	net, err := NewMLP(features, 1, outputs, G.NewGraph(), []int{8},
		[]bool{true}, []*Activation{TanH()}, init)
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	predictor, err := NewPredictor(net)
	if err != nil {
		t.Fatalf("could not create predictor: %v", err)
	}
	return predictor
}

func TestPredictorOutputShape(t *testing.T) {
	predictor := newTestPredictor(t, 2, 3)

	out, err := predictor.Predict([]float64{0.25, -1.0})
	if err != nil {
		t.Fatalf("could not predict: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("wrong prediction length\n\twant(3)\n\thave(%v)", len(out))
	}

	if _, err := predictor.Predict([]float64{0.25}); err == nil {
		t.Error("expected an error for a short state vector")
	}
}

func TestPredictorIsDeterministic(t *testing.T) {
	predictor := newTestPredictor(t, 2, 3)
	state := []float64{0.25, -1.0}

	first, err := predictor.Predict(state)
	if err != nil {
		t.Fatalf("could not predict: %v", err)
	}
	second, err := predictor.Predict(state)
	if err != nil {
		t.Fatalf("could not predict: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("repeated forward passes disagree at %v: %v != %v", i,
				first[i], second[i])
		}
	}
}

func TestPredictorResetKeepsShape(t *testing.T) {
	predictor := newTestPredictor(t, 2, 3)

	if err := predictor.Reset(); err != nil {
		t.Fatalf("could not reset predictor: %v", err)
	}
	out, err := predictor.Predict([]float64{0.25, -1.0})
	if err != nil {
		t.Fatalf("could not predict after reset: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("wrong prediction length after reset\n\twant(3)"+
			"\n\thave(%v)", len(out))
	}
}

func TestBackpropMovesPredictionTowardTarget(t *testing.T) {
	predictor := newTestPredictor(t, 2, 3)

	sol, err := solver.NewVanilla(0.1, 1)
	if err != nil {
		t.Fatalf("could not create solver: %v", err)
	}
	trainer, err := NewBackprop(predictor, sol, 10)
	if err != nil {
		t.Fatalf("could not create trainer: %v", err)
	}

	state := []float64{0.25, -1.0}
	target := []float64{0.9, -0.4, 0.2}

	squaredError := func() float64 {
		out, err := predictor.Predict(state)
		if err != nil {
			t.Fatalf("could not predict: %v", err)
		}
		var sum float64
		for i := range out {
			diff := out[i] - target[i]
			sum += diff * diff
		}
		return sum
	}

	before := squaredError()
	for i := 0; i < 20; i++ {
		if err := trainer.Train(state, target); err != nil {
			t.Fatalf("could not train: %v", err)
		}
	}
	after := squaredError()

	if after >= before {
		t.Errorf("training did not reduce the error\n\tbefore(%v)"+
			"\n\tafter(%v)", before, after)
	}
	if math.Sqrt(after) > 0.5 {
		t.Errorf("prediction still far from the target after training: "+
			"distance %v", math.Sqrt(after))
	}
}

func TestBackpropRejectsBadLengths(t *testing.T) {
	predictor := newTestPredictor(t, 2, 3)

	sol, err := solver.NewVanilla(0.1, 1)
	if err != nil {
		t.Fatalf("could not create solver: %v", err)
	}
	trainer, err := NewBackprop(predictor, sol, 1)
	if err != nil {
		t.Fatalf("could not create trainer: %v", err)
	}

	if err := trainer.Train([]float64{0.25}, []float64{0, 0, 0}); err == nil {
		t.Error("expected an error for a short state vector")
	}
	if err := trainer.Train([]float64{0.25, -1.0}, []float64{0}); err == nil {
		t.Error("expected an error for a short target vector")
	}
}
