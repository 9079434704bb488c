// Package parser turns raw host arguments into core types.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/impactwatch/extension/pkg/core"
)

// ErrNoSnapshot is returned when a frame command carries no payload.
var ErrNoSnapshot = errors.New("no snapshot in arguments")

// DefaultVehicleName names sessions started without one.
const DefaultVehicleName = "Unnamed vehicle"

// cleanArg strips one pair of host quotes and collapses the doubled quotes
// inside them. Unquoted arguments are returned as they are.
func cleanArg(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
}

// Parser provides pure []string -> core struct conversion.
type Parser struct {
	logger           *slog.Logger
	extensionVersion string
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger, extensionVersion string) *Parser {
	return &Parser{
		logger:           logger,
		extensionVersion: extensionVersion,
	}
}

// ParseSession builds a new session from :SESSION:START: arguments.
// The optional first argument names the vehicle.
func (p *Parser) ParseSession(data []string, now time.Time) *core.Session {
	name := DefaultVehicleName
	if len(data) > 0 {
		if n := strings.TrimSpace(cleanArg(data[0])); n != "" {
			name = n
		}
	}
	return &core.Session{
		ID:               uuid.New(),
		StartTime:        now,
		VehicleName:      name,
		ExtensionVersion: p.extensionVersion,
	}
}

// ParseSnapshot parses the JSON snapshot in data[0].
func (p *Parser) ParseSnapshot(data []string) (*core.Snapshot, error) {
	if len(data) == 0 {
		return nil, ErrNoSnapshot
	}
	raw := cleanArg(data[0])
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoSnapshot
	}
	return p.ParseSnapshotJSON([]byte(raw))
}

// ParseSnapshotJSON parses one snapshot document.
func (p *Parser) ParseSnapshotJSON(b []byte) (*core.Snapshot, error) {
	var w snapshotJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("error unmarshalling snapshot: %w", err)
	}

	snap := w.toCore()
	if snap.Vehicle != nil {
		p.logger.Debug("Parsed snapshot",
			"vehicle", snap.Vehicle.Name,
			"parts", len(snap.Vehicle.Parts))
	}
	return snap, nil
}
