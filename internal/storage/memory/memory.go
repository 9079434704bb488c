// internal/storage/memory/memory.go
package memory

import (
	"sync"
	"time"

	"github.com/impactwatch/extension/internal/config"
	"github.com/impactwatch/extension/internal/storage"
	"github.com/impactwatch/extension/pkg/core"
)

// Backend stores prediction samples in memory and exports them to JSON
// when the session ends.
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session
	samples []core.PredictionSample

	lastExportPath string
	now            func() time.Time
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg: cfg,
		now: time.Now,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session, discarding anything
// recorded before.
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	session := *s
	b.session = &session
	b.samples = nil
	b.lastExportPath = ""
	return nil
}

// EndSession exports the session and stops accepting samples.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return storage.ErrNoSession
	}
	if err := b.exportJSON(); err != nil {
		return err
	}
	b.session = nil
	return nil
}

// RecordPrediction appends a sample to the active session.
func (b *Backend) RecordPrediction(s *core.PredictionSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return storage.ErrNoSession
	}
	b.samples = append(b.samples, *s)
	return nil
}

// Samples returns a copy of the recorded samples.
func (b *Backend) Samples() []core.PredictionSample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.PredictionSample, len(b.samples))
	copy(out, b.samples)
	return out
}

// GetExportedFilePath returns the path of the last export, or "" if the
// current session has not been exported.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
