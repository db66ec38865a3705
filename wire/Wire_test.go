package wire

import "testing"

func TestCloneAllIsDeep(t *testing.T) {
	wires := []Wire{
		New([]float64{0.1, 0.2}, 1.0),
		New([]float64{0.3, 0.4}, -2.0),
	}

	cloned := CloneAll(wires)
	cloned[0].Action.SetVec(0, 99.0)
	cloned[1].Reward = 99.0

	if wires[0].Action.AtVec(0) != 0.1 {
		t.Errorf("mutating a clone changed the original action: have(%v)",
			wires[0].Action.AtVec(0))
	}
	if wires[1].Reward != -2.0 {
		t.Errorf("mutating a clone changed the original reward: have(%v)",
			wires[1].Reward)
	}
}

func TestRewardExtremes(t *testing.T) {
	wires := []Wire{
		New([]float64{0.0}, 1.5),
		New([]float64{0.5}, -3.0),
		New([]float64{1.0}, 0.25),
	}

	if max := MaxReward(wires); max != 1.5 {
		t.Errorf("wrong maximum reward\n\twant(1.5)\n\thave(%v)", max)
	}
	if min := MinReward(wires); min != -3.0 {
		t.Errorf("wrong minimum reward\n\twant(-3.0)\n\thave(%v)", min)
	}
}
