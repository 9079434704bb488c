// internal/storage/factory/factory.go
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/impactwatch/extension/internal/config"
	"github.com/impactwatch/extension/internal/database"
	"github.com/impactwatch/extension/internal/storage"
	"github.com/impactwatch/extension/internal/storage/gormstore"
	"github.com/impactwatch/extension/internal/storage/memory"
	"github.com/impactwatch/extension/internal/storage/sqlite"
)

// NewBackend creates a telemetry backend based on configuration
func NewBackend(cfg config.TelemetryConfig, log zerolog.Logger) (storage.Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := database.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return gormstore.New(gormstore.Dependencies{
			DB:            db,
			Logger:        log,
			FlushInterval: cfg.FlushInterval,
		}), nil
	case "sqlite":
		b, err := sqlite.New(sqlite.Config{
			DumpPath:      cfg.SQLite.Path,
			DumpInterval:  cfg.SQLite.DumpInterval,
			FlushInterval: cfg.FlushInterval,
		}, log)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown telemetry type: %s", cfg.Type)
	}
}
