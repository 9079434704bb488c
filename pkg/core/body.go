// pkg/core/body.go
package core

// ElevationSource returns terrain elevation above the mean datum at a location.
type ElevationSource interface {
	ElevationAt(lat, lon float64) float64
}

// FixedElevation is an ElevationSource sampled by the host below the vehicle.
type FixedElevation float64

// ElevationAt returns the sampled elevation regardless of location.
func (f FixedElevation) ElevationAt(lat, lon float64) float64 {
	return float64(f)
}

// CelestialBody is the body the active vehicle is orbiting.
type CelestialBody struct {
	Name       string
	Position   Vec3
	Radius     float64
	Atmosphere bool
	Ocean      bool
	Terrain    ElevationSource

	// TimeWarpAltitude is the lowest altitude at which time acceleration is permitted.
	TimeWarpAltitude float64
}

// TerrainHeight returns the terrain elevation directly below v.
func (b *CelestialBody) TerrainHeight(v *Vehicle) float64 {
	if b.Terrain == nil {
		return 0
	}
	return b.Terrain.ElevationAt(v.Latitude, v.Longitude)
}
