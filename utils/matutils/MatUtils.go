// Package matutils implements utility functions for working with
// gonum vectors and matrices
package matutils

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/rangsansith/Fido/utils/floatutils"
)

// MaxVec finds and returns the index of the maximum value in a vector.
// If multiple equal max values exist, only the first one is returned.
func MaxVec(values mat.Vector) int {
	max, idx := values.AtVec(0), 0

	for i := 0; i < values.Len(); i++ {
		if values.AtVec(i) > max {
			max = values.AtVec(i)
			idx = i
		}
	}
	return idx
}

// VecData returns the components of a vector as a new []float64.
func VecData(v mat.Vector) []float64 {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return data
}

// VecClipIntervals performs an element-wise clipping of a vector's
// values such that each value lies within the corresponding interval.
// The vector and interval slice must have equal lengths.
func VecClipIntervals(a *mat.VecDense, bounds []r1.Interval) {
	for i := 0; i < a.Len(); i++ {
		a.SetVec(i, floatutils.ClipInterval(a.AtVec(i), bounds[i]))
	}
}
