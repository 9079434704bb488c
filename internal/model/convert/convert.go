// Package convert provides functions to convert between GORM models and core types
package convert

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/impactwatch/extension/internal/model"
	"github.com/impactwatch/extension/pkg/core"
)

// sampleDetails is the JSON payload stored alongside each sample.
type sampleDetails struct {
	LowestPart string  `json:"lowestPart,omitempty"`
	Altitude   float64 `json:"altitude"`
}

// locationToPoint stores a surface location as an XYZ point.
func locationToPoint(lon, lat, alt float64) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: lon, Y: lat},
		Z:    alt,
		Type: geom.DimXYZ,
	})
}

// CoreToSession converts a core.Session to a GORM TrackingSession.
func CoreToSession(s core.Session) model.TrackingSession {
	return model.TrackingSession{
		SessionID:        s.ID.String(),
		VehicleName:      s.VehicleName,
		ExtensionVersion: s.ExtensionVersion,
		StartTime:        s.StartTime,
	}
}

// SessionToCore converts a GORM TrackingSession back to a core.Session.
func SessionToCore(s model.TrackingSession) core.Session {
	id, _ := uuid.Parse(s.SessionID)
	return core.Session{
		ID:               id,
		StartTime:        s.StartTime,
		VehicleName:      s.VehicleName,
		ExtensionVersion: s.ExtensionVersion,
	}
}

// EndTime marks a session as ended at t.
func EndTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

// CoreToSample converts a core.PredictionSample to a GORM model.
// TrackingSessionID is stamped by the writer.
func CoreToSample(s core.PredictionSample) model.PredictionSample {
	details, _ := json.Marshal(sampleDetails{
		LowestPart: s.LowestPart,
		Altitude:   s.Altitude,
	})

	return model.PredictionSample{
		Time:        s.Time,
		VehicleID:   s.VehicleID,
		VehicleName: s.VehicleName,
		BodyName:    s.BodyName,
		Seconds:     s.Seconds,
		Speed:       s.Speed,
		Verb:        string(s.Verb),
		Height:      s.Height,
		Location:    locationToPoint(s.Longitude, s.Latitude, s.Altitude),
		Details:     datatypes.JSON(details),
	}
}

// SampleToCore converts a GORM PredictionSample to a core.PredictionSample.
// SessionID is left zero; the caller knows which session it asked for.
func SampleToCore(s model.PredictionSample) core.PredictionSample {
	var details sampleDetails
	if len(s.Details) > 0 {
		_ = json.Unmarshal(s.Details, &details)
	}

	out := core.PredictionSample{
		Time:        s.Time,
		VehicleID:   s.VehicleID,
		VehicleName: s.VehicleName,
		BodyName:    s.BodyName,
		Seconds:     s.Seconds,
		Speed:       s.Speed,
		Verb:        core.Verb(s.Verb),
		Height:      s.Height,
		LowestPart:  details.LowestPart,
		Altitude:    details.Altitude,
	}
	if c, ok := s.Location.Coordinates(); ok {
		out.Longitude = c.XY.X
		out.Latitude = c.XY.Y
	}
	return out
}
