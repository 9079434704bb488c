// Package solver predicts unpowered ground contact for a falling vehicle
// using a constant-acceleration model over locally flat terrain.
package solver

import (
	"math"
	"time"

	"github.com/impactwatch/extension/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MinFallSpeed is the fall speed (m/s) below which no impact is tracked.
	MinFallSpeed = 2.0
	// SurfaceMargin is added to the clearance when checking whether a
	// decelerating fall can still reach the surface.
	SurfaceMargin = 1.0
)

// HeightSource supplies the vehicle's height above its lowest point.
type HeightSource interface {
	GetHeight(v *core.Vehicle, b *core.CelestialBody, now time.Time) core.HeightEstimate
}

// Solver predicts time-to-impact, impact speed and verb.
type Solver struct {
	heights HeightSource
}

// New creates a Solver that reads vehicle heights from heights.
func New(heights HeightSource) *Solver {
	return &Solver{heights: heights}
}

// Solve returns the impact prediction for v falling towards b, or
// core.NoImpact when contact is not expected on the current trajectory.
// Height is only queried once the cheap early exits have passed.
func (s *Solver) Solve(v *core.Vehicle, b *core.CelestialBody, now time.Time) core.Prediction {
	if v == nil || b == nil || v.Landed || v.Splashed {
		return core.NoImpact()
	}

	fallSpeed := -v.VerticalSpeed
	if fallSpeed < MinFallSpeed {
		return core.NoImpact()
	}

	// Uses the current osculating orbit; it can be briefly wrong mid-burn.
	if v.Orbit.Periapsis() > b.Radius+b.TimeWarpAltitude {
		return core.NoImpact()
	}

	est := s.heights.GetHeight(v, b, now)
	clearance := v.Altitude - b.TerrainHeight(v) - est.Height
	verb := core.VerbImpact

	// Ground below sea level: the water surface is hit first.
	if b.Ocean && clearance > v.Altitude {
		clearance = v.Altitude
		verb = core.VerbSplash
	}
	if clearance <= 0 {
		return core.NoImpact()
	}

	radial := r3.Sub(v.Position, b.Position)
	centripetal := 0.0
	if r := r3.Norm(radial); r > 0 {
		lateral := LateralSpeed(v.OrbitalVelocity, radial)
		centripetal = lateral * lateral / r
	}
	accel := r3.Norm(v.Gravity) - centripetal

	if accel < 0 && fallSpeed*fallSpeed/(-2*accel) < clearance+SurfaceMargin {
		return core.NoImpact()
	}

	t := TimeToImpact(fallSpeed, clearance, accel)
	if math.IsInf(t, 1) {
		return core.NoImpact()
	}

	speed := ImpactSpeed(fallSpeed, accel, t, v.SurfaceSpeed)
	if verb == core.VerbImpact && est.LowestPart != nil && speed <= est.LowestPart.CrashTolerance {
		verb = core.VerbTouchdown
	}

	return core.Impact(t, speed, verb, est)
}

// TimeToImpact solves clearance = fallSpeed*t + accel*t²/2 for the first
// positive t. It returns +Inf when the surface is never reached or the
// inputs are inconsistent.
func TimeToImpact(fallSpeed, clearance, accel float64) float64 {
	if clearance <= 0 || fallSpeed <= 0 {
		return math.Inf(1)
	}
	disc := fallSpeed*fallSpeed + 2*accel*clearance
	if disc < 0 {
		return math.Inf(1)
	}
	// Rationalised root; reduces to clearance/fallSpeed at zero accel.
	t := 2 * clearance / (fallSpeed + math.Sqrt(disc))
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return math.Inf(1)
	}
	return t
}

// ImpactSpeed returns the total speed at contact after falling for t seconds.
func ImpactSpeed(fallSpeed, accel, t, horizontalSpeed float64) float64 {
	vertical := fallSpeed + t*accel
	return math.Hypot(vertical, horizontalSpeed)
}

// LateralSpeed returns the magnitude of velocity perpendicular to radial.
func LateralSpeed(velocity, radial core.Vec3) float64 {
	n := r3.Norm(radial)
	if n == 0 {
		return r3.Norm(velocity)
	}
	up := r3.Scale(1/n, radial)
	return r3.Norm(r3.Sub(velocity, r3.Scale(r3.Dot(velocity, up), up)))
}
