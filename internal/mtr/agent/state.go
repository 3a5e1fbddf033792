package agent

import "math"

// AgentState is a snapshot of one agent at one timestamp.
// States are passed by value and never mutated after construction.
type AgentState struct {
	UUID      string     `json:"uuid"`
	Timestamp float64    `json:"timestamp"` // milliseconds
	LabelID   int        `json:"label_id"`
	XYZ       [3]float64 `json:"xyz"`
	Size      [3]float64 `json:"size"`
	Yaw       float64    `json:"yaw"` // radians
	VXY       [2]float64 `json:"vxy"`
	IsValid   bool       `json:"is_valid"`
}

// SentinelState returns the padding state used before real observations
// arrive: timestamp -Inf, label -1, zero kinematics, invalid.
func SentinelState(uuid string) AgentState {
	return AgentState{
		UUID:      uuid,
		Timestamp: math.Inf(-1),
		LabelID:   -1,
	}
}

// XY returns the planar position.
func (s AgentState) XY() [2]float64 {
	return [2]float64{s.XYZ[0], s.XYZ[1]}
}

// Row packs the state into the trajectory channel layout.
func (s AgentState) Row() [NumDim]float64 {
	var valid float64
	if s.IsValid {
		valid = 1
	}
	return [NumDim]float64{
		s.XYZ[0], s.XYZ[1], s.XYZ[2],
		s.Size[0], s.Size[1], s.Size[2],
		s.Yaw,
		s.VXY[0], s.VXY[1],
		valid,
	}
}

// Info carries auxiliary per-agent data that the model-serving layer needs
// to map predictions back to the source object.
type Info struct {
	UUID                 string     `json:"uuid"`
	LabelID              int        `json:"label_id"`
	Classification       string     `json:"classification,omitempty"`
	ExistenceProbability float64    `json:"existence_probability"`
	Dimensions           [3]float64 `json:"dimensions"`
}

// InfoFromState derives an Info from a state when no richer source exists.
func InfoFromState(s AgentState) Info {
	return Info{
		UUID:                 s.UUID,
		LabelID:              s.LabelID,
		ExistenceProbability: 1.0,
		Dimensions:           s.Size,
	}
}
