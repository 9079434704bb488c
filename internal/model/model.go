package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&TrackingSession{},
	&PredictionSample{},
}

// TrackingSession is one :SESSION:START: .. :SESSION:END: span.
type TrackingSession struct {
	gorm.Model
	SessionID        string       `json:"sessionId" gorm:"size:36;uniqueIndex:idx_session_uuid"`
	VehicleName      string       `json:"vehicleName" gorm:"size:128"`
	ExtensionVersion string       `json:"extensionVersion" gorm:"size:32"`
	StartTime        time.Time    `json:"startTime" gorm:"type:timestamptz;index:idx_session_start"`
	EndTime          sql.NullTime `json:"endTime" gorm:"type:timestamptz"`
	Samples          []PredictionSample
}

func (*TrackingSession) TableName() string {
	return "tracking_sessions"
}

// PredictionSample is written each time the published whole-second
// countdown or verb changes.
type PredictionSample struct {
	ID                uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	Time              time.Time       `json:"time" gorm:"type:timestamptz;index:idx_sample_time"`
	TrackingSessionID uint            `json:"trackingSessionId" gorm:"index:idx_sample_session_id"`
	TrackingSession   TrackingSession `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	VehicleID   string  `json:"vehicleId" gorm:"size:64"`
	VehicleName string  `json:"vehicleName" gorm:"size:128"`
	BodyName    string  `json:"bodyName" gorm:"size:64"`
	Seconds     float64 `json:"seconds"`
	Speed       float64 `json:"speed"`
	Verb        string  `json:"verb" gorm:"size:16"`
	Height      float64 `json:"height"`

	Location geom.Point     `json:"location"` // XYZ = longitude, latitude, altitude
	Details  datatypes.JSON `json:"details" gorm:"default:'{}'"`
}

func (*PredictionSample) TableName() string {
	return "prediction_samples"
}
