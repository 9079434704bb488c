// pkg/core/vehicle.go
package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a world-space vector in metres (or m/s, m/s² depending on use).
type Vec3 = r3.Vec

// Bounds is the world-space axis-aligned bounding region of a collision volume.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// ClosestPoint returns the point on or inside the bounds nearest to p.
func (b Bounds) ClosestPoint(p Vec3) Vec3 {
	return Vec3{
		X: clamp(p.X, b.Min.X, b.Max.X),
		Y: clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// Collider is a part's collision volume.
type Collider struct {
	Enabled bool
	Bounds  Bounds
}

// Part is one rigid sub-part of a vehicle.
// A part with a nil or disabled Collider has no collidable geometry.
type Part struct {
	Name           string
	Position       Vec3
	Collider       *Collider
	CrashTolerance float64 // m/s
}

// Collidable reports whether the part has an enabled collision volume.
func (p *Part) Collidable() bool {
	return p.Collider != nil && p.Collider.Enabled
}

// Orbit holds the osculating elements the tracker needs.
type Orbit struct {
	SemiMajorAxis float64
	Eccentricity  float64
}

// Periapsis returns the periapsis radius, measured from the body centre.
func (o Orbit) Periapsis() float64 {
	return o.SemiMajorAxis * (1 - o.Eccentricity)
}

// Vehicle is the active vehicle as reported by the host for one frame.
// Parts are only valid for the frame they arrived with.
type Vehicle struct {
	ID        string
	Name      string
	Position  Vec3    // reference point
	Altitude  float64 // above the body's mean datum
	Latitude  float64
	Longitude float64

	VerticalSpeed float64 // positive = ascending
	SurfaceSpeed  float64 // horizontal speed relative to the surface

	Orbit    Orbit
	Landed   bool
	Splashed bool
	Packed   bool // on rails, no physics geometry
	Crew     bool // bodiless crew entity

	Gravity         Vec3
	OrbitalVelocity Vec3

	Parts []Part
}
