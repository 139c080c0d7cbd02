package geo

import (
	"fmt"
	"math"
)

// Location is a point in world space. It is a value type: operations return
// new Locations rather than mutating the receiver.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between l and other.
func (l Location) Distance(other Location) float64 {
	dx := other.X - l.X
	dy := other.Y - l.Y
	dz := other.Z - l.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// StepToward moves l toward target by at most step units. It returns the new
// location and whether the target was reached. When step covers the remaining
// distance the result snaps exactly to target, so repeated stepping never
// overshoots or oscillates.
func (l Location) StepToward(target Location, step float64) (Location, bool) {
	remaining := l.Distance(target)
	if step >= remaining {
		return target, true
	}
	if step <= 0 || remaining == 0 {
		return l, remaining == 0
	}

	frac := step / remaining
	return Location{
		X: l.X + (target.X-l.X)*frac,
		Y: l.Y + (target.Y-l.Y)*frac,
		Z: l.Z + (target.Z-l.Z)*frac,
	}, false
}

func (l Location) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", l.X, l.Y, l.Z)
}
