package main

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C" // This is required to import the C code

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/impactwatch/extension/internal/config"
	"github.com/impactwatch/extension/internal/dispatcher"
	"github.com/impactwatch/extension/internal/influx"
	"github.com/impactwatch/extension/internal/logging"
	intOtel "github.com/impactwatch/extension/internal/otel"
	"github.com/impactwatch/extension/internal/parser"
	"github.com/impactwatch/extension/internal/session"
	"github.com/impactwatch/extension/internal/storage"
	"github.com/impactwatch/extension/internal/tracker"
	"github.com/impactwatch/extension/pkg/hostabi"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "1.0.0"
	BuildDate               string = "unknown"

	ExtensionName string = "impact_tracker"
)

// file paths
var (
	// ModuleFolder holds the shared library and its config file.
	ModuleFolder string

	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger is the zerolog logger used by storage, influx and the dispatcher
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	// Board holds the current session and published prediction
	Board *session.Context

	// Services
	impactTracker   *tracker.Tracker
	parserService   *parser.Parser
	eventDispatcher *dispatcher.Dispatcher

	// Telemetry sinks (optional)
	storageBackend storage.Backend
	influxManager  *influx.Manager
)

// init is run automatically when the module is loaded
func init() {
	ModuleFolder = hostabi.ModuleDir()

	// log to stdout until the log file is open
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(ModuleFolder); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logsDir := resolvePath(config.GetString("logsDir"))
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	LogFilePath = logging.LogFilePath(logsDir, ExtensionName, SessionStartTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	Board = session.NewContext()
	setupLogging()
	Logger.Info("Begin logging in logs directory", "path", LogFilePath)

	parserService = parser.NewParser(Logger, CurrentExtensionVersion)

	initTelemetry()

	settings := trackerSettings()
	impactTracker, err = tracker.New(tracker.Dependencies{
		Settings:  settings,
		Board:     Board,
		Logger:    Logger,
		Recorders: recorders(),
	})
	if err != nil {
		Logger.Error("Failed to create tracker!", "error", err)
		panic(err)
	}
	Logger.Info("Tracker ready", "enabled", settings.Enabled, "maxSeconds", settings.MaxSeconds)

	if err := setupHostABI(); err != nil {
		Logger.Error("Failed to set up host interface!", "error", err)
		panic(err)
	}
	Logger.Info("Set up host interface")
}

// trackerSettings reads the two tracker tunables.
func trackerSettings() tracker.Settings {
	s := config.GetTrackerSettings()
	return tracker.Settings{
		Enabled:    s.Enabled,
		MaxSeconds: s.MaxSeconds,
	}
}

// resolvePath anchors relative config paths at the module folder.
func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ModuleFolder, p)
}

// logWriter returns the open log file, or nil so loggers fall back to stdout.
func logWriter() io.Writer {
	if LogFile == nil {
		return nil
	}
	return LogFile
}

func setupLogging() {
	level := config.GetString("logLevel")

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var err error
		OTelProvider, err = intOtel.New(otelCfg, CurrentExtensionVersion, logWriter())
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}

	opts := []logging.Option{logging.WithSession(Board)}
	if config.GetBool("graylog.enabled") {
		address := config.GetString("graylog.address")
		w, err := logging.NewGraylogWriter(address)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err, "address", address)
		} else {
			opts = append(opts, logging.WithGraylog(w))
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(logWriter(), level, otelLogProvider, opts...)
	Logger = SlogManager.Logger()

	zOut := logWriter()
	if zOut == nil {
		zOut = os.Stdout
	}
	ZLogger = logging.NewZerolog(zOut, level, Board)
}

func setupHostABI() error {
	hostabi.SetVersion(CurrentExtensionVersion)

	d, err := dispatcher.New(logging.NewDispatcherLogger(ZLogger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	registerHandlers(d)
	hostabi.SetDispatcher(d)
	eventDispatcher = d
	return nil
}

// shutdown flushes every sink. It is used by the CLI; the host never
// unloads the library.
func shutdown() {
	if eventDispatcher != nil {
		if err := eventDispatcher.Close(); err != nil {
			Logger.Warn("Failed to close dispatcher", "error", err)
		}
	}
	endSession()
	closeTelemetry()
	if impactTracker != nil {
		if err := impactTracker.Close(); err != nil {
			Logger.Warn("Failed to close tracker", "error", err)
		}
	}

	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if LogFile != nil {
		LogFile.Close()
	}
}

func main() {
	Logger.Info("Starting up...")
	defer shutdown()

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Println("No arguments provided.")
		fmt.Println("usage: impact_tracker replay <file.jsonl> [frameStep]")
		return
	}

	switch strings.ToLower(args[0]) {
	case "replay":
		if len(args) < 2 {
			fmt.Println("No snapshot file provided.")
			return
		}
		step := defaultFrameStep
		if len(args) > 2 {
			d, err := time.ParseDuration(args[2])
			if err != nil {
				fmt.Printf("Invalid frame step %q: %v\n", args[2], err)
				return
			}
			step = d
		}
		if err := replayFile(args[1], step); err != nil {
			Logger.Error("Replay failed", "error", err)
			fmt.Println("Replay failed:", err)
		}
	default:
		fmt.Printf("Unknown command %q.\n", args[0])
	}
}
