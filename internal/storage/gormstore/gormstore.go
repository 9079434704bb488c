// Package gormstore implements the storage.Backend interface using GORM
// with a bounded write queue and a background DB writer goroutine.
package gormstore

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/impactwatch/extension/internal/model"
	"github.com/impactwatch/extension/internal/model/convert"
	"github.com/impactwatch/extension/internal/queue"
	"github.com/impactwatch/extension/internal/storage"
	"github.com/impactwatch/extension/pkg/core"
)

const (
	defaultFlushInterval = 2 * time.Second
	// QueueLimit caps pending samples while the database is unreachable.
	QueueLimit = 10000
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        zerolog.Logger
	FlushInterval time.Duration
}

// Backend implements storage.Backend with queue-based batch writes.
type Backend struct {
	deps    Dependencies
	samples *queue.Queue[model.PredictionSample]

	// row ID of the active tracking_sessions entry, 0 when none
	sessionID atomic.Uint64

	writeMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:    deps,
		samples: queue.NewBounded[model.PredictionSample](QueueLimit),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("no database connection")
	}

	b.deps.Logger.Info().Msg("Migrating schema")
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writerLoop()
	return nil
}

// Close stops the writer and flushes what is left.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	return b.Flush()
}

// StartSession inserts the session row synchronously so samples can
// reference it.
func (b *Backend) StartSession(s *core.Session) error {
	row := convert.CoreToSession(*s)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert tracking session: %w", err)
	}
	b.sessionID.Store(uint64(row.ID))
	b.deps.Logger.Info().
		Str("session", row.SessionID).
		Str("vehicle", row.VehicleName).
		Msg("Tracking session started")
	return nil
}

// EndSession flushes pending samples and stamps the session end time.
func (b *Backend) EndSession() error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return storage.ErrNoSession
	}

	if err := b.Flush(); err != nil {
		return err
	}

	err := b.deps.DB.Model(&model.TrackingSession{}).
		Where("id = ?", id).
		Update("end_time", convert.EndTime(time.Now())).Error
	if err != nil {
		return fmt.Errorf("failed to close tracking session: %w", err)
	}
	b.sessionID.Store(0)
	return nil
}

// RecordPrediction converts and queues a sample under the active session.
func (b *Backend) RecordPrediction(s *core.PredictionSample) error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return storage.ErrNoSession
	}
	row := convert.CoreToSample(*s)
	row.TrackingSessionID = id
	b.samples.Push(row)
	return nil
}

// Pending returns the number of queued samples.
func (b *Backend) Pending() int {
	return b.samples.Len()
}

// Flush writes all queued samples now.
func (b *Backend) Flush() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return writeQueue(b.deps.DB, b.samples, "prediction samples", b.deps.Logger)
}

// LoadSession reads a stored session and its samples in time order.
func (b *Backend) LoadSession(id uuid.UUID) (core.Session, []core.PredictionSample, error) {
	var row model.TrackingSession
	err := b.deps.DB.
		Preload("Samples", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "time"}},
				{Column: clause.Column{Name: "id"}},
			}})
		}).
		Where("session_id = ?", id.String()).
		First(&row).Error
	if err != nil {
		return core.Session{}, nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	samples := make([]core.PredictionSample, 0, len(row.Samples))
	for _, s := range row.Samples {
		sample := convert.SampleToCore(s)
		sample.SessionID = id
		samples = append(samples, sample)
	}
	return convert.SessionToCore(row), samples, nil
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed batches go back on the queue for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log zerolog.Logger) error {
	if q.Empty() {
		return nil
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if err := tx.Create(&items).Error; err != nil {
		log.Error().Err(err).Int("count", len(items)).Msgf("Error creating %s", name)
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := tx.Commit().Error; err != nil {
		q.Push(items...)
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	log.Debug().Int("count", len(items)).Msgf("Wrote %s", name)
	return nil
}

// writerLoop periodically drains the queue into the DB.
func (b *Backend) writerLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
			if dropped := b.samples.Dropped(); dropped > 0 {
				b.deps.Logger.Warn().Uint64("dropped", dropped).Msg("Sample queue over limit")
			}
		}
	}
}
