package localize

import (
	"fmt"
	"math"
)

// MotionModel maps a commanded direction and a resulting direction to a
// transition probability through a 4-entry table indexed by the offset
// (result - command) mod 4: 0 = forward, 1 = rotated 90° anticlockwise,
// 2 = reversed, 3 = rotated 90° clockwise. Offsets are relative to the
// fixed world directions; the robot carries no heading state.
//
// The model never renormalizes: when invalid source cells drop
// contributions, the resulting mass drift is corrected by the next
// sensor update, not here.
type MotionModel struct {
	stay  float64
	table [4]float64
}

// NewMotionModel validates the configured probabilities and builds the
// transition table. All five values must be present and non-negative;
// they are not required to sum to 1.
func NewMotionModel(params MotionParams) (*MotionModel, error) {
	vals, err := params.values()
	if err != nil {
		return nil, err
	}
	return &MotionModel{
		stay:  vals[0],
		table: [4]float64{vals[1], vals[2], vals[3], vals[4]},
	}, nil
}

// values extracts the five probabilities in order (stay, forward,
// rightTurn, back, leftTurn), rejecting missing, negative, or NaN
// entries.
func (p MotionParams) values() ([5]float64, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"stayProbability", p.Stay},
		{"forwardProbability", p.Forward},
		{"rightTurnProbability", p.RightTurn},
		{"backProbability", p.Back},
		{"leftTurnProbability", p.LeftTurn},
	}

	var out [5]float64
	for i, f := range fields {
		if f.v == nil {
			return out, fmt.Errorf("motion parameter %s is required", f.name)
		}
		if math.IsNaN(*f.v) || *f.v < 0 {
			return out, fmt.Errorf("motion parameter %s must be non-negative, got %v", f.name, *f.v)
		}
		out[i] = *f.v
	}
	return out, nil
}

// TransitionProbability returns the probability of ending up moving in
// result given that cmd was commanded.
func (m *MotionModel) TransitionProbability(cmd, result Direction) float64 {
	return m.table[(int(result)-int(cmd)+4)%4]
}

// StayProbability returns the probability of not moving at all,
// regardless of the command.
func (m *MotionModel) StayProbability() float64 {
	return m.stay
}
