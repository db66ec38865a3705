// Package network implements neural network function approximators
// using Gorgonia, together with the Predictor and Backprop adapters
// that expose them through the capability interfaces a learner
// consumes.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet is a neural network whose forward pass has been added to a
// Gorgonia computational graph. A NeuralNet holds no virtual machine of
// its own; an external VM runs the graph, after which Output() holds
// the prediction (see Predictor).
type NeuralNet interface {
	Graph() *G.ExprGraph
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Set(NeuralNet) error
	Reinit() error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Output() G.Value
	Prediction() *G.Node
}
