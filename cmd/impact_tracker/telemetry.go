package main

import (
	"context"
	"errors"
	"time"

	"github.com/impactwatch/extension/internal/config"
	"github.com/impactwatch/extension/internal/influx"
	"github.com/impactwatch/extension/internal/storage"
	"github.com/impactwatch/extension/internal/storage/factory"
	"github.com/impactwatch/extension/internal/tracker"
	"github.com/impactwatch/extension/pkg/core"
)

// initTelemetry creates the optional prediction sinks. Failures are logged
// and the sink is left out; the tracker works without any.
func initTelemetry() {
	telemetryCfg := config.GetTelemetryConfig()
	if telemetryCfg.Enabled {
		telemetryCfg.Memory.OutputDir = resolvePath(telemetryCfg.Memory.OutputDir)
		telemetryCfg.SQLite.Path = resolvePath(telemetryCfg.SQLite.Path)

		backend, err := factory.NewBackend(telemetryCfg, ZLogger)
		if err != nil {
			Logger.Error("Failed to create telemetry backend", "error", err)
		} else if err := backend.Init(); err != nil {
			Logger.Error("Failed to initialize telemetry backend", "error", err)
		} else {
			storageBackend = backend
			Logger.Info("Telemetry backend initialized", "type", telemetryCfg.Type)
		}
	}

	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		backupPath := resolvePath(ExtensionName + "_influx_backup.lp.gz")
		m := influx.NewManager(influxCfg, ZLogger, backupPath)
		if err := m.Connect(context.Background()); err != nil {
			Logger.Error("Failed to connect to InfluxDB", "error", err)
		} else {
			influxManager = m
			Logger.Info("InfluxDB sink ready", "connected", m.Valid())
		}
	}
}

// recorders returns the sinks the tracker writes samples to.
func recorders() []tracker.Recorder {
	var out []tracker.Recorder
	if storageBackend != nil {
		out = append(out, storageBackend)
	}
	if influxManager != nil {
		out = append(out, influxManager)
	}
	return out
}

// startSession resets the tracker and opens a telemetry session, closing
// any session that was left open.
func startSession(s *core.Session) {
	endSession()
	impactTracker.StartSession(s)

	if storageBackend != nil {
		if err := storageBackend.StartSession(s); err != nil {
			Logger.Error("Failed to start telemetry session", "error", err)
		}
	}
}

// endSession closes the telemetry session and flushes logs.
func endSession() error {
	var err error
	if storageBackend != nil {
		err = storageBackend.EndSession()
		switch {
		case errors.Is(err, storage.ErrNoSession):
			err = nil
		case err != nil:
			Logger.Error("Failed to end telemetry session", "error", err)
		default:
			if exp, ok := storageBackend.(storage.Exportable); ok {
				Logger.Info("Telemetry session saved", "path", exp.GetExportedFilePath())
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if flushErr := SlogManager.Flush(ctx); flushErr != nil {
		Logger.Warn("Failed to flush OTel data", "error", flushErr)
	}
	return err
}

func closeTelemetry() {
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error("Failed to close telemetry backend", "error", err)
		}
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB sink", "error", err)
		}
	}
}
