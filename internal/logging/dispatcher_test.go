package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestDispatcherLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	tests := []struct {
		level string
		log   func(msg string, kv ...any)
	}{
		{"debug", dl.Debug},
		{"info", dl.Info},
		{"error", dl.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			tt.log("handling event", "command", ":SESSION:START:", "args", 1)

			entry := lastEntry(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "handling event", entry["message"])
			assert.Equal(t, ":SESSION:START:", entry["command"])
			assert.Equal(t, float64(1), entry["args"])
			assert.Equal(t, "dispatcher", entry["component"])
		})
	}
}

func TestDispatcherLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	dl.Debug("event complete", "command", ":FRAME:")

	assert.Empty(t, buf.String())
}

func TestDispatcherLogger_TypedFields(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Error("event failed",
		"command", ":SESSION:END:",
		"duration", 1500*time.Microsecond,
		"error", errors.New("no session in progress"),
		"panic", map[string]int{"frame": 3},
		42, "non-string key",
		"dangling")

	entry := lastEntry(t, &buf)
	assert.Equal(t, ":SESSION:END:", entry["command"])
	assert.Equal(t, 1.5, entry["duration"])
	assert.Equal(t, "no session in progress", entry["error"])
	assert.Equal(t, map[string]any{"frame": float64(3)}, entry["panic"])
	assert.NotContains(t, entry, "dangling")
}
