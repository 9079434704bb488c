package parser

import "github.com/impactwatch/extension/pkg/core"

// The snapshot document sent with :FRAME:. Vectors are [x, y, z] in
// world space. A missing vehicle or body decodes to nil.
//
//	{
//	  "burnCountdownActive": false,
//	  "vehicle": {
//	    "id": "…", "name": "…", "position": [x, y, z],
//	    "altitude": 0, "latitude": 0, "longitude": 0,
//	    "verticalSpeed": 0, "surfaceSpeed": 0,
//	    "orbit": {"semiMajorAxis": 0, "eccentricity": 0},
//	    "landed": false, "splashed": false, "packed": false, "crew": false,
//	    "gravity": [x, y, z], "orbitalVelocity": [x, y, z],
//	    "parts": [{"name": "…", "position": [x, y, z], "crashTolerance": 0,
//	               "collider": {"enabled": true, "min": [x, y, z], "max": [x, y, z]}}]
//	  },
//	  "body": {
//	    "name": "…", "position": [x, y, z], "radius": 0,
//	    "atmosphere": false, "ocean": false,
//	    "terrainHeight": 0, "timeWarpAltitude": 0
//	  }
//	}
type snapshotJSON struct {
	BurnCountdownActive bool         `json:"burnCountdownActive"`
	Vehicle             *vehicleJSON `json:"vehicle"`
	Body                *bodyJSON    `json:"body"`
}

type vec [3]float64

func (v vec) core() core.Vec3 {
	return core.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

type vehicleJSON struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Position        vec        `json:"position"`
	Altitude        float64    `json:"altitude"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	VerticalSpeed   float64    `json:"verticalSpeed"`
	SurfaceSpeed    float64    `json:"surfaceSpeed"`
	Orbit           orbitJSON  `json:"orbit"`
	Landed          bool       `json:"landed"`
	Splashed        bool       `json:"splashed"`
	Packed          bool       `json:"packed"`
	Crew            bool       `json:"crew"`
	Gravity         vec        `json:"gravity"`
	OrbitalVelocity vec        `json:"orbitalVelocity"`
	Parts           []partJSON `json:"parts"`
}

type orbitJSON struct {
	SemiMajorAxis float64 `json:"semiMajorAxis"`
	Eccentricity  float64 `json:"eccentricity"`
}

type partJSON struct {
	Name           string        `json:"name"`
	Position       vec           `json:"position"`
	CrashTolerance float64       `json:"crashTolerance"`
	Collider       *colliderJSON `json:"collider"`
}

type colliderJSON struct {
	Enabled bool `json:"enabled"`
	Min     vec  `json:"min"`
	Max     vec  `json:"max"`
}

type bodyJSON struct {
	Name             string  `json:"name"`
	Position         vec     `json:"position"`
	Radius           float64 `json:"radius"`
	Atmosphere       bool    `json:"atmosphere"`
	Ocean            bool    `json:"ocean"`
	TerrainHeight    float64 `json:"terrainHeight"`
	TimeWarpAltitude float64 `json:"timeWarpAltitude"`
}

func (s snapshotJSON) toCore() *core.Snapshot {
	snap := &core.Snapshot{BurnCountdownActive: s.BurnCountdownActive}
	if s.Vehicle != nil {
		snap.Vehicle = s.Vehicle.toCore()
	}
	if s.Body != nil {
		snap.Body = &core.CelestialBody{
			Name:             s.Body.Name,
			Position:         s.Body.Position.core(),
			Radius:           s.Body.Radius,
			Atmosphere:       s.Body.Atmosphere,
			Ocean:            s.Body.Ocean,
			Terrain:          core.FixedElevation(s.Body.TerrainHeight),
			TimeWarpAltitude: s.Body.TimeWarpAltitude,
		}
	}
	return snap
}

func (v *vehicleJSON) toCore() *core.Vehicle {
	out := &core.Vehicle{
		ID:              v.ID,
		Name:            v.Name,
		Position:        v.Position.core(),
		Altitude:        v.Altitude,
		Latitude:        v.Latitude,
		Longitude:       v.Longitude,
		VerticalSpeed:   v.VerticalSpeed,
		SurfaceSpeed:    v.SurfaceSpeed,
		Orbit:           core.Orbit{SemiMajorAxis: v.Orbit.SemiMajorAxis, Eccentricity: v.Orbit.Eccentricity},
		Landed:          v.Landed,
		Splashed:        v.Splashed,
		Packed:          v.Packed,
		Crew:            v.Crew,
		Gravity:         v.Gravity.core(),
		OrbitalVelocity: v.OrbitalVelocity.core(),
		Parts:           make([]core.Part, 0, len(v.Parts)),
	}
	for _, p := range v.Parts {
		part := core.Part{
			Name:           p.Name,
			Position:       p.Position.core(),
			CrashTolerance: p.CrashTolerance,
		}
		if p.Collider != nil {
			part.Collider = &core.Collider{
				Enabled: p.Collider.Enabled,
				Bounds:  core.Bounds{Min: p.Collider.Min.core(), Max: p.Collider.Max.core()},
			}
		}
		out.Parts = append(out.Parts, part)
	}
	return out
}
