package main

import (
	"fmt"
	"log"

	G "gorgonia.org/gorgonia"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/rangsansith/Fido/agent/wirefit"
	"github.com/rangsansith/Fido/initwfn"
	"github.com/rangsansith/Fido/interpolator"
	"github.com/rangsansith/Fido/network"
	"github.com/rangsansith/Fido/solver"
)

func main() {
	var seed uint64 = 192382

	// The task: a one-dimensional continuous action in [0, 1] whose
	// reward peaks at 0.2 in state 0 and at 0.8 in state 1.
	peak := map[float64]float64{0.0: 0.2, 1.0: 0.8}
	reward := func(state, action float64) float64 {
		diff := action - peak[state]
		return 1.0 - diff*diff
	}

	config := wirefit.Config{
		StateDimensions:              1,
		ActionDimensions:             1,
		NumberOfWires:                4,
		BaseOfDimensions:             11,
		ActionBounds:                 []r1.Interval{{Min: 0.0, Max: 1.0}},
		LearningRate:                 0.95,
		DevaluationFactor:            0.4,
		ControlPointsGDErrorTarget:   1e-4,
		ControlPointsGDLearningRate:  0.1,
		ControlPointsGDMaxIterations: 100,
	}

	// Create the function approximator: a small MLP predicting one
	// action vector and one reward per wire
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		log.Fatal(err)
	}
	outputs := config.NumberOfWires * (config.ActionDimensions + 1)
	net, err := network.NewMLP(config.StateDimensions, 1, outputs,
		G.NewGraph(), []int{16}, []bool{true},
		[]*network.Activation{network.TanH()}, init)
	if err != nil {
		log.Fatal(err)
	}

	predictor, err := network.NewPredictor(net)
	if err != nil {
		log.Fatal(err)
	}

	sol, err := solver.NewDefaultAdam(0.01, 1)
	if err != nil {
		log.Fatal(err)
	}
	trainer, err := network.NewBackprop(predictor, sol, 5)
	if err != nil {
		log.Fatal(err)
	}

	// Create the learning algorithm
	learner, err := wirefit.New(predictor, trainer, interpolator.NewWireFit(),
		config, seed)
	if err != nil {
		log.Fatal(err)
	}

	// Learn with Boltzmann exploration, cooling toward greedy
	exploration := 0.5
	var averageReward float64
	for step := 1; step <= 3000; step++ {
		state := mat.NewVecDense(1, []float64{float64(step % 2)})

		action, err := learner.ChooseBoltzmanAction(state, exploration)
		if err != nil {
			log.Fatal(err)
		}
		r := reward(state.AtVec(0), action.AtVec(0))
		averageReward += 0.01 * (r - averageReward)

		next := mat.NewVecDense(1, []float64{float64((step + 1) % 2)})
		if err := learner.ApplyReinforcementToLastAction(r, next); err != nil {
			log.Fatal(err)
		}

		exploration *= 0.999
		if step%500 == 0 {
			fmt.Printf("step %4d  exploration %.3f  average reward %.3f\n",
				step, exploration, averageReward)
		}
	}

	// Report the greedy policy
	for _, s := range []float64{0.0, 1.0} {
		state := mat.NewVecDense(1, []float64{s})
		action, err := learner.ChooseBestAction(state)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("state %.0f: best action %.3f (reward peak at %.1f)\n",
			s, action.AtVec(0), peak[s])
		if err := learner.ApplyReinforcementToLastAction(
			reward(s, action.AtVec(0)), state); err != nil {
			log.Fatal(err)
		}
	}
}
