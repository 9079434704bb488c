// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/impactwatch/extension/pkg/core"
)

// ErrNoSession is returned when a sample arrives before StartSession.
var ErrNoSession = errors.New("no tracking session started")

// Backend is the interface all telemetry backends must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.Session) error
	EndSession() error

	// Recording
	RecordPrediction(s *core.PredictionSample) error
}

// Exportable is an optional interface for backends that write a file
// when a session ends.
type Exportable interface {
	GetExportedFilePath() string
}
