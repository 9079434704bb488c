package convert

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactwatch/extension/pkg/core"
)

func TestCoreToSample(t *testing.T) {
	s := core.PredictionSample{
		SessionID:   uuid.New(),
		Time:        time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		VehicleID:   "v1",
		VehicleName: "Lander",
		BodyName:    "Mun",
		Seconds:     12.4,
		Speed:       30.2,
		Verb:        core.VerbTouchdown,
		Height:      1.5,
		LowestPart:  "legs",
		Altitude:    620,
		Latitude:    3.25,
		Longitude:   -45.5,
	}

	m := CoreToSample(s)

	assert.Equal(t, "Touchdown", m.Verb)
	assert.Equal(t, uint(0), m.TrackingSessionID)
	assert.JSONEq(t, `{"lowestPart":"legs","altitude":620}`, string(m.Details))

	c, ok := m.Location.Coordinates()
	require.True(t, ok)
	assert.Equal(t, -45.5, c.XY.X)
	assert.Equal(t, 3.25, c.XY.Y)
	assert.Equal(t, 620.0, c.Z)
}

func TestSampleToCore_RoundTrip(t *testing.T) {
	in := core.PredictionSample{
		Time:        time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		VehicleID:   "v1",
		VehicleName: "Lander",
		BodyName:    "Minmus",
		Seconds:     8,
		Speed:       4.5,
		Verb:        core.VerbSplash,
		Altitude:    70.25,
		Latitude:    -1,
		Longitude:   2,
	}

	got := SampleToCore(CoreToSample(in))

	if diff := cmp.Diff(in, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_RoundTrip(t *testing.T) {
	in := core.Session{
		ID:               uuid.New(),
		StartTime:        time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
		VehicleName:      "Lander",
		ExtensionVersion: "1.0.0",
	}

	m := CoreToSession(in)
	assert.Equal(t, in.ID.String(), m.SessionID)
	assert.False(t, m.EndTime.Valid)

	assert.Equal(t, in, SessionToCore(m))
}

func TestEndTime(t *testing.T) {
	now := time.Now()
	nt := EndTime(now)
	assert.True(t, nt.Valid)
	assert.Equal(t, now, nt.Time)
}
