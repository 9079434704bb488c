// pkg/core/prediction.go
package core

import "math"

// Verb classifies a predicted surface contact.
type Verb string

const (
	VerbNone      Verb = ""
	VerbImpact    Verb = "Impact"
	VerbSplash    Verb = "Splash"
	VerbTouchdown Verb = "Touchdown"
)

// HeightEstimate is the distance from a vehicle's reference point down to
// its lowest collidable extent. LowestPart is a copy, never a pointer into
// the frame's part slice.
type HeightEstimate struct {
	Height     float64
	LowestPart *Part
}

// Prediction is either "no impact" or an impact with time, speed and verb.
// Use NoImpact and Impact to build one.
type Prediction struct {
	predicted bool

	Seconds  float64
	Speed    float64
	Verb     Verb
	Estimate HeightEstimate
}

// NoImpact returns the prediction for "no trackable impact".
func NoImpact() Prediction {
	return Prediction{Seconds: math.Inf(1), Speed: math.NaN()}
}

// Impact returns a predicted impact.
func Impact(seconds, speed float64, verb Verb, est HeightEstimate) Prediction {
	return Prediction{
		predicted: true,
		Seconds:   seconds,
		Speed:     speed,
		Verb:      verb,
		Estimate:  est,
	}
}

// Predicted reports whether p carries a finite time-to-impact.
func (p Prediction) Predicted() bool {
	return p.predicted
}
