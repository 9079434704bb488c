// pkg/core/session.go
package core

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is one host frame: the active vehicle, the body it orbits, and
// whether a higher-priority burn countdown overlay is showing.
// Vehicle and Body are nil when the host has nothing to report.
type Snapshot struct {
	Vehicle             *Vehicle
	Body                *CelestialBody
	BurnCountdownActive bool
}

// Session is one tracking session, from :SESSION:START: to :SESSION:END:.
type Session struct {
	ID               uuid.UUID
	StartTime        time.Time
	VehicleName      string
	ExtensionVersion string
}

// PredictionSample is a published prediction as recorded by telemetry sinks.
type PredictionSample struct {
	SessionID   uuid.UUID
	Time        time.Time
	VehicleID   string
	VehicleName string
	BodyName    string
	Seconds     float64
	Speed       float64
	Verb        Verb
	Height      float64
	LowestPart  string
	Altitude    float64
	Latitude    float64
	Longitude   float64
}
