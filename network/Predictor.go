package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Predictor runs a NeuralNet as the function approximator consumed by
// a learner: it owns the virtual machine for the net's graph and
// exposes the agent.Approximator capability. The wrapped net must
// operate on single input rows.
type Predictor struct {
	net NeuralNet
	vm  G.VM
}

// NewPredictor returns a new Predictor running net, which must have a
// batch size of 1.
func NewPredictor(net NeuralNet) (*Predictor, error) {
	if net.BatchSize() != 1 {
		return nil, fmt.Errorf("newpredictor: predictors operate on single "+
			"states\n\twant batch(1)\n\thave batch(%v)", net.BatchSize())
	}
	return &Predictor{
		net: net,
		vm:  G.NewTapeMachine(net.Graph()),
	}, nil
}

// Net returns the wrapped NeuralNet.
func (p *Predictor) Net() NeuralNet {
	return p.net
}

// Features returns the length of state vectors the Predictor accepts.
func (p *Predictor) Features() int {
	return p.net.Features()
}

// Outputs returns the length of the prediction vector.
func (p *Predictor) Outputs() int {
	return p.net.Outputs()
}

// Predict runs the forward pass of the wrapped net on state and
// returns the predicted output vector.
func (p *Predictor) Predict(state []float64) ([]float64, error) {
	if len(state) != p.net.Features() {
		return nil, fmt.Errorf("predict: invalid state length\n\twant(%v)"+
			"\n\thave(%v)", p.net.Features(), len(state))
	}

	input := make([]float64, len(state))
	copy(input, state)
	if err := p.net.SetInput(input); err != nil {
		return nil, fmt.Errorf("predict: could not set input: %v", err)
	}

	if err := p.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("predict: could not run forward pass: %v", err)
	}
	defer p.vm.Reset()

	switch data := p.net.Output().Data().(type) {
	case []float64:
		output := make([]float64, len(data))
		copy(output, data)
		return output, nil

	case float64:
		return []float64{data}, nil

	default:
		return nil, fmt.Errorf("predict: unexpected output type %T", data)
	}
}

// Reset reinitializes the wrapped net's parameters from the weight
// initialization scheme it was constructed with.
func (p *Predictor) Reset() error {
	return p.net.Reinit()
}
