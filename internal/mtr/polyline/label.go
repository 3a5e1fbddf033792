package polyline

import (
	"fmt"
	"strings"
)

// Label is the map-feature category of a polyline. Its integer value is the
// type id written into full-form point arrays.
type Label int

const (
	LabelUnknown Label = iota
	LabelLane
	LabelBikeLane
	LabelRoadLine
	LabelDashedRoadLine
	LabelRoadEdge
	LabelCrosswalk
	LabelStopLine
	LabelSpeedBump
)

var labelNames = map[Label]string{
	LabelUnknown:        "UNKNOWN",
	LabelLane:           "LANE",
	LabelBikeLane:       "BIKE_LANE",
	LabelRoadLine:       "ROADLINE",
	LabelDashedRoadLine: "DASHED_ROADLINE",
	LabelRoadEdge:       "ROADEDGE",
	LabelCrosswalk:      "CROSSWALK",
	LabelStopLine:       "STOPLINE",
	LabelSpeedBump:      "SPEED_BUMP",
}

// String returns the canonical upper-case name.
func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// ParseLabel resolves a case-insensitive label name.
func ParseLabel(s string) (Label, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for label, name := range labelNames {
		if name == want {
			return label, nil
		}
	}
	return LabelUnknown, fmt.Errorf("unknown polyline label %q", s)
}
