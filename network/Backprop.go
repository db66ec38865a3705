package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/rangsansith/Fido/solver"
)

// Backprop trains a Predictor's network by backpropagation: it clones
// the network onto a training graph with a mean squared error loss
// toward a target node, and steps the weights with a Gorgonia solver.
// Backprop exposes the agent.Trainer capability.
//
// Each Train call pulls the Predictor's current weights, performs
// epochs gradient steps toward the target output, and pushes the
// updated weights back, so the Predictor always predicts with the
// newest parameters.
type Backprop struct {
	predictor *Predictor
	net       NeuralNet // Training clone with the loss attached
	target    *G.Node
	vm        G.VM
	sol       *solver.Solver
	epochs    int
}

// NewBackprop returns a new Backprop trainer for the network wrapped
// by p. The epochs parameter is the number of gradient steps taken per
// Train call.
func NewBackprop(p *Predictor, sol *solver.Solver,
	epochs int) (*Backprop, error) {
	if epochs < 1 {
		return nil, fmt.Errorf("newbackprop: epochs must be positive: "+
			"have(%v)", epochs)
	}

	net, err := p.Net().CloneWithBatch(1)
	if err != nil {
		return nil, fmt.Errorf("newbackprop: could not clone network: %v",
			err)
	}
	g := net.Graph()

	// Mean squared error toward the target output
	target := G.NewMatrix(g, tensor.Float64,
		G.WithShape(1, net.Outputs()), G.WithName("target"))
	losses := G.Must(G.Sub(net.Prediction(), target))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	if _, err := G.Grad(cost, net.Learnables()...); err != nil {
		return nil, fmt.Errorf("newbackprop: could not compute gradient: %v",
			err)
	}

	vm := G.NewTapeMachine(g, G.BindDualValues(net.Learnables()...))

	return &Backprop{
		predictor: p,
		net:       net,
		target:    target,
		vm:        vm,
		sol:       sol,
		epochs:    epochs,
	}, nil
}

// Train adjusts the network parameters so that the prediction for
// state moves toward target.
func (b *Backprop) Train(state, target []float64) error {
	if len(state) != b.net.Features() {
		return fmt.Errorf("train: invalid state length\n\twant(%v)"+
			"\n\thave(%v)", b.net.Features(), len(state))
	}
	if len(target) != b.net.Outputs() {
		return fmt.Errorf("train: invalid target length\n\twant(%v)"+
			"\n\thave(%v)", b.net.Outputs(), len(target))
	}

	// Pull the current weights from the predicting network
	if err := b.net.Set(b.predictor.Net()); err != nil {
		return fmt.Errorf("train: could not sync weights: %v", err)
	}

	input := make([]float64, len(state))
	copy(input, state)
	if err := b.net.SetInput(input); err != nil {
		return fmt.Errorf("train: could not set input: %v", err)
	}

	targetData := make([]float64, len(target))
	copy(targetData, target)
	targetTensor := tensor.New(
		tensor.WithShape(1, b.net.Outputs()),
		tensor.WithBacking(targetData),
	)
	if err := G.Let(b.target, targetTensor); err != nil {
		return fmt.Errorf("train: could not set target: %v", err)
	}

	for epoch := 0; epoch < b.epochs; epoch++ {
		if err := b.vm.RunAll(); err != nil {
			return fmt.Errorf("train: could not run training pass: %v", err)
		}
		if err := b.sol.Step(b.net.Model()); err != nil {
			return fmt.Errorf("train: could not step solver: %v", err)
		}
		b.vm.Reset()
	}

	// Push the adjusted weights back to the predicting network
	if err := b.predictor.Net().Set(b.net); err != nil {
		return fmt.Errorf("train: could not sync weights: %v", err)
	}
	return nil
}
