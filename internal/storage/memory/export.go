// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// SessionExport is the root JSON structure
type SessionExport struct {
	SessionID        string       `json:"sessionId"`
	VehicleName      string       `json:"vehicleName"`
	ExtensionVersion string       `json:"extensionVersion"`
	StartTime        time.Time    `json:"startTime"`
	EndTime          time.Time    `json:"endTime"`
	Samples          []SampleJSON `json:"samples"`
}

// SampleJSON is one published prediction
type SampleJSON struct {
	Time       time.Time `json:"time"`
	VehicleID  string    `json:"vehicleId"`
	BodyName   string    `json:"bodyName"`
	Seconds    float64   `json:"seconds"`
	Speed      float64   `json:"speed"`
	Verb       string    `json:"verb"`
	Height     float64   `json:"height"`
	LowestPart string    `json:"lowestPart,omitempty"`
	Altitude   float64   `json:"altitude"`
	Position   []float64 `json:"position"` // [lon, lat, alt]
}

// exportFileName builds <vehicle>_<YYYYMMDD_HHMMSS>.json[.gz]
func exportFileName(vehicle string, start time.Time, compress bool) string {
	name := strings.NewReplacer(" ", "_", ":", "_", "/", "_", `\`, "_").Replace(vehicle)
	if name == "" {
		name = "session"
	}
	ext := ".json"
	if compress {
		ext = ".json.gz"
	}
	return fmt.Sprintf("%s_%s%s", name, start.Format("20060102_150405"), ext)
}

// exportJSON writes the session data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir,
		exportFileName(b.session.VehicleName, b.session.StartTime, b.cfg.CompressOutput))

	if err := writeExport(outputPath, export, b.cfg.CompressOutput); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() SessionExport {
	export := SessionExport{
		SessionID:        b.session.ID.String(),
		VehicleName:      b.session.VehicleName,
		ExtensionVersion: b.session.ExtensionVersion,
		StartTime:        b.session.StartTime,
		EndTime:          b.now(),
		Samples:          make([]SampleJSON, 0, len(b.samples)),
	}

	for _, s := range b.samples {
		export.Samples = append(export.Samples, SampleJSON{
			Time:       s.Time,
			VehicleID:  s.VehicleID,
			BodyName:   s.BodyName,
			Seconds:    s.Seconds,
			Speed:      s.Speed,
			Verb:       string(s.Verb),
			Height:     s.Height,
			LowestPart: s.LowestPart,
			Altitude:   s.Altitude,
			Position:   []float64{s.Longitude, s.Latitude, s.Altitude},
		})
	}
	return export
}

func writeExport(path string, data SessionExport, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if !compress {
		return json.NewEncoder(f).Encode(data)
	}

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
