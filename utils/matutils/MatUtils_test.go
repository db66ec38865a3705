package matutils

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestMaxVec(t *testing.T) {
	v := mat.NewVecDense(4, []float64{1.0, 3.0, 2.0, 3.0})

	// Only the first of tied maxima is reported
	if have := MaxVec(v); have != 1 {
		t.Errorf("wrong index of the maximum\n\twant(1)\n\thave(%v)", have)
	}
}

func TestVecDataCopies(t *testing.T) {
	v := mat.NewVecDense(3, []float64{0.1, 0.2, 0.3})

	data := VecData(v)
	if len(data) != 3 {
		t.Fatalf("wrong data length\n\twant(3)\n\thave(%v)", len(data))
	}
	data[0] = 99.0

	if v.AtVec(0) != 0.1 {
		t.Errorf("mutating the returned slice changed the vector: have(%v)",
			v.AtVec(0))
	}
}

func TestVecClipIntervals(t *testing.T) {
	v := mat.NewVecDense(3, []float64{-2.0, 0.5, 3.0})
	bounds := []r1.Interval{
		{Min: 0.0, Max: 1.0},
		{Min: 0.0, Max: 1.0},
		{Min: -1.0, Max: 2.0},
	}

	VecClipIntervals(v, bounds)

	want := []float64{0.0, 0.5, 2.0}
	for i := range want {
		if v.AtVec(i) != want[i] {
			t.Errorf("wrong clipped value at %v\n\twant(%v)\n\thave(%v)", i,
				want[i], v.AtVec(i))
		}
	}
}
