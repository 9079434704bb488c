// internal/storage/memory/export_test.go
package memory

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactwatch/extension/internal/config"
	"github.com/impactwatch/extension/pkg/core"
)

func recordedBackend(t *testing.T, compress bool) *Backend {
	t.Helper()
	b := New(config.MemoryConfig{OutputDir: filepath.Join(t.TempDir(), "out"), CompressOutput: compress})
	b.now = func() time.Time { return time.Date(2026, 3, 1, 12, 35, 0, 0, time.UTC) }

	require.NoError(t, b.StartSession(testSession()))
	require.NoError(t, b.RecordPrediction(&core.PredictionSample{
		Time:        time.Date(2026, 3, 1, 12, 31, 0, 0, time.UTC),
		VehicleID:   "v1",
		VehicleName: "Mun Lander",
		BodyName:    "Mun",
		Seconds:     42,
		Speed:       150.5,
		Verb:        core.VerbImpact,
		Height:      3,
		LowestPart:  "engine",
		Altitude:    4000,
		Latitude:    1.5,
		Longitude:   -20,
	}))
	require.NoError(t, b.RecordPrediction(&core.PredictionSample{
		VehicleID: "v1",
		BodyName:  "Mun",
		Seconds:   41,
		Speed:     151,
		Verb:      core.VerbImpact,
	}))
	return b
}

func TestExportFileName(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)

	tests := []struct {
		name     string
		vehicle  string
		compress bool
		want     string
	}{
		{"plain", "Lander", false, "Lander_20260301_123045.json"},
		{"compressed", "Lander", true, "Lander_20260301_123045.json.gz"},
		{"spaces and separators", "Mun Lander: Mk2/b", false, "Mun_Lander__Mk2_b_20260301_123045.json"},
		{"empty", "", false, "session_20260301_123045.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exportFileName(tt.vehicle, start, tt.compress))
		})
	}
}

func TestBuildExport(t *testing.T) {
	b := recordedBackend(t, false)

	export := b.buildExport()
	assert.Equal(t, "0b6f1c1e-7f0a-4c59-9a57-52f1d2f0c001", export.SessionID)
	assert.Equal(t, "Mun Lander", export.VehicleName)
	assert.Equal(t, "1.0.0", export.ExtensionVersion)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 35, 0, 0, time.UTC), export.EndTime)
	require.Len(t, export.Samples, 2)

	first := export.Samples[0]
	assert.Equal(t, "Impact", first.Verb)
	assert.Equal(t, "engine", first.LowestPart)
	assert.Equal(t, []float64{-20, 1.5, 4000}, first.Position)
}

func TestExportJSON(t *testing.T) {
	b := recordedBackend(t, false)
	require.NoError(t, b.EndSession())

	path := b.GetExportedFilePath()
	assert.Equal(t, "Mun_Lander_20260301_123045.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got SessionExport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Mun Lander", got.VehicleName)
	assert.Len(t, got.Samples, 2)
	assert.Equal(t, 41.0, got.Samples[1].Seconds)
	assert.NotContains(t, string(data), `"lowestPart":""`)
}

func TestExportGzipJSON(t *testing.T) {
	b := recordedBackend(t, true)
	require.NoError(t, b.EndSession())

	path := b.GetExportedFilePath()
	assert.Equal(t, ".gz", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var got SessionExport
	require.NoError(t, json.NewDecoder(gz).Decode(&got))
	assert.Equal(t, "0b6f1c1e-7f0a-4c59-9a57-52f1d2f0c001", got.SessionID)
	require.Len(t, got.Samples, 2)
	assert.Equal(t, 150.5, got.Samples[0].Speed)
}

func TestExportJSON_BadOutputDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	b := New(config.MemoryConfig{OutputDir: file})
	require.NoError(t, b.StartSession(testSession()))
	assert.Error(t, b.EndSession())
}
