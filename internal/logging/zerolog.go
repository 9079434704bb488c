package logging

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/impactwatch/extension/internal/session"
)

func zerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewZerolog builds the logger used by the storage, influx and dispatcher
// components: console format without colors, UTC timestamps, and the
// current session id when board is non-nil.
func NewZerolog(w io.Writer, level string, board *session.Context) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	logger := zerolog.New(out).Level(zerologLevel(level)).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	if board == nil {
		return logger
	}
	return logger.Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		if s := board.GetSession(); s.ID != uuid.Nil {
			e.Str("session", s.ID.String())
		}
	}))
}
