package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger keeps every line for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) log(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, kv))
}

func (l *recordingLogger) Debug(msg string, kv ...any) { l.log("DEBUG", msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...any)  { l.log("INFO", msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...any) { l.log("ERROR", msg, kv) }

func (l *recordingLogger) withPrefix(prefix string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, line := range l.lines {
		if strings.HasPrefix(line, prefix) {
			out = append(out, line)
		}
	}
	return out
}

func newDispatcher(t *testing.T) (*Dispatcher, *recordingLogger) {
	t.Helper()
	log := &recordingLogger{}
	d, err := New(log)
	require.NoError(t, err)
	return d, log
}

func TestDispatch_QueryCommands(t *testing.T) {
	d, _ := newDispatcher(t)
	d.Register(":IMPACT:DESC:", func(Event) (any, error) { return "Splash in 4s", nil })
	d.Register(":IMPACT:SECONDS:", func(Event) (any, error) { return 4.0, nil })
	d.Register(":SESSION:START:", func(e Event) (any, error) { return e.Args[0], nil })

	tests := []struct {
		event Event
		want  any
	}{
		{Event{Command: ":IMPACT:DESC:"}, "Splash in 4s"},
		{Event{Command: ":IMPACT:SECONDS:"}, 4.0},
		{Event{Command: ":SESSION:START:", Args: []string{"Lander"}}, "Lander"},
	}

	for _, tt := range tests {
		t.Run(tt.event.Command, func(t *testing.T) {
			got, err := d.Dispatch(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d, _ := newDispatcher(t)

	_, err := d.Dispatch(Event{Command: ":BURN:PLAN:"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.EqualError(t, err, "unknown command: :BURN:PLAN:")
	assert.False(t, d.HasHandler(":BURN:PLAN:"))
}

func TestHasHandler(t *testing.T) {
	d, _ := newDispatcher(t)
	d.Register(":FRAME:", func(Event) (any, error) { return "", nil })

	assert.True(t, d.HasHandler(":FRAME:"))
	assert.False(t, d.HasHandler(":frame:"))
}

func TestBuffered_HostLogLines(t *testing.T) {
	d, _ := newDispatcher(t)

	var (
		mu    sync.Mutex
		lines []string
		wg    sync.WaitGroup
	)
	wg.Add(3)
	d.Register(":LOG:", func(e Event) (any, error) {
		defer wg.Done()
		mu.Lock()
		lines = append(lines, e.Args[0])
		mu.Unlock()
		return nil, nil
	}, Buffered(16))

	for _, msg := range []string{"staging", "chute armed", "legs deployed"} {
		got, err := d.Dispatch(Event{Command: ":LOG:", Args: []string{msg}})
		require.NoError(t, err)
		assert.Equal(t, "queued", got)
	}
	wg.Wait()

	assert.Equal(t, []string{"staging", "chute armed", "legs deployed"}, lines, "one worker keeps order")
}

func TestBuffered_DropsWhenFull(t *testing.T) {
	d, _ := newDispatcher(t)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	d.Register(":LOG:", func(Event) (any, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil, nil
	}, Buffered(2))
	t.Cleanup(func() { close(release) })

	_, err := d.Dispatch(Event{Command: ":LOG:"})
	require.NoError(t, err)
	<-started

	for i := 0; i < 2; i++ {
		_, err := d.Dispatch(Event{Command: ":LOG:"})
		require.NoError(t, err)
	}

	_, err = d.Dispatch(Event{Command: ":LOG:"})
	assert.EqualError(t, err, "queue full: :LOG:")
}

func TestBuffered_HandlerErrorIsLogged(t *testing.T) {
	d, log := newDispatcher(t)

	done := make(chan struct{})
	d.Register(":LOG:", func(Event) (any, error) {
		defer close(done)
		return nil, errors.New("log sink closed")
	}, Buffered(1))

	_, err := d.Dispatch(Event{Command: ":LOG:"})
	require.NoError(t, err)
	<-done

	assert.Eventually(t, func() bool {
		return len(log.withPrefix("ERROR buffered event failed")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestLogged_SessionCommands(t *testing.T) {
	d, log := newDispatcher(t)
	d.Register(":SESSION:START:", func(Event) (any, error) { return "id", nil }, Logged())
	d.Register(":SESSION:END:", func(Event) (any, error) {
		return nil, errors.New("no session in progress")
	}, Logged())

	_, err := d.Dispatch(Event{Command: ":SESSION:START:", Args: []string{"Lander"}})
	require.NoError(t, err)
	debug := log.withPrefix("DEBUG")
	require.Len(t, debug, 2)
	assert.Contains(t, debug[0], "handling event [command :SESSION:START: args 1]")
	assert.Contains(t, debug[1], "event complete")

	_, err = d.Dispatch(Event{Command: ":SESSION:END:"})
	require.Error(t, err)
	failed := log.withPrefix("ERROR event failed")
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0], "no session in progress")
}

func TestLogged_WithBuffer(t *testing.T) {
	d, log := newDispatcher(t)

	var processed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)
	d.Register(":LOG:", func(Event) (any, error) {
		defer wg.Done()
		processed.Add(1)
		return nil, nil
	}, Buffered(8), Logged())

	got, err := d.Dispatch(Event{Command: ":LOG:", Args: []string{"hello"}})
	require.NoError(t, err)
	assert.Equal(t, "queued", got)
	wg.Wait()

	assert.Equal(t, int32(1), processed.Load())
	assert.Len(t, log.withPrefix("DEBUG"), 2, "logging wraps the enqueue")
}

func TestRecovered_FramePanic(t *testing.T) {
	d, log := newDispatcher(t)
	d.Register(":FRAME:", func(Event) (any, error) {
		panic("nil vehicle")
	}, Recovered())

	got, err := d.Dispatch(Event{Command: ":FRAME:"})

	assert.Nil(t, got)
	assert.EqualError(t, err, ":FRAME: failed: nil vehicle")
	errs := log.withPrefix("ERROR handler panicked")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "nil vehicle")
}

func TestRecovered_PassesResultThrough(t *testing.T) {
	d, log := newDispatcher(t)
	d.Register(":FRAME:", func(Event) (any, error) { return "Impact in 12s", nil }, Recovered())

	got, err := d.Dispatch(Event{Command: ":FRAME:"})
	require.NoError(t, err)
	assert.Equal(t, "Impact in 12s", got)
	assert.Empty(t, log.withPrefix("ERROR"))
}

func TestUnrecovered_PanicPropagates(t *testing.T) {
	d, _ := newDispatcher(t)
	d.Register(":FRAME:", func(Event) (any, error) { panic("nil vehicle") })

	assert.PanicsWithValue(t, "nil vehicle", func() {
		_, _ = d.Dispatch(Event{Command: ":FRAME:"})
	})
}

func TestBufferedRecovered_WorkerSurvivesPanic(t *testing.T) {
	d, _ := newDispatcher(t)

	var handled atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)
	d.Register(":LOG:", func(e Event) (any, error) {
		defer wg.Done()
		if len(e.Args) > 0 && e.Args[0] == "boom" {
			panic("bad log line")
		}
		handled.Add(1)
		return nil, nil
	}, Buffered(4), Recovered())

	_, err := d.Dispatch(Event{Command: ":LOG:", Args: []string{"boom"}})
	require.NoError(t, err)
	_, err = d.Dispatch(Event{Command: ":LOG:", Args: []string{"touchdown"}})
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, int32(1), handled.Load())
}

func TestDispatch_StampsEvents(t *testing.T) {
	d, _ := newDispatcher(t)

	var seen time.Time
	d.Register(":FRAME:", func(e Event) (any, error) {
		seen = e.Timestamp
		return "", nil
	})

	before := time.Now()
	_, err := d.Dispatch(Event{Command: ":FRAME:"})
	require.NoError(t, err)
	assert.False(t, seen.Before(before))

	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = d.Dispatch(Event{Command: ":FRAME:", Timestamp: fixed})
	require.NoError(t, err)
	assert.Equal(t, fixed, seen)
}

func TestClose_DrainsQueuedLogLines(t *testing.T) {
	d, _ := newDispatcher(t)

	var handled atomic.Int32
	d.Register(":LOG:", func(Event) (any, error) {
		time.Sleep(time.Millisecond)
		handled.Add(1)
		return nil, nil
	}, Buffered(32))

	for i := 0; i < 10; i++ {
		_, err := d.Dispatch(Event{Command: ":LOG:", Args: []string{fmt.Sprintf("line %d", i)}})
		require.NoError(t, err)
	}

	require.NoError(t, d.Close())
	assert.Equal(t, int32(10), handled.Load())

	_, err := d.Dispatch(Event{Command: ":LOG:"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, d.Close())
}

func TestClose_SyncCommandsStillAnswer(t *testing.T) {
	d, _ := newDispatcher(t)
	d.Register(":IMPACT:STATE:", func(Event) (any, error) { return "Idle", nil })
	require.NoError(t, d.Close())

	got, err := d.Dispatch(Event{Command: ":IMPACT:STATE:"})
	require.NoError(t, err)
	assert.Equal(t, "Idle", got)
}
