// Package dispatcher routes host commands to registered handlers.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrUnknownCommand is returned by Dispatch for unregistered commands.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrClosed is returned for buffered commands after Close.
	ErrClosed = errors.New("dispatcher closed")
)

// Event is one command call from the host.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*options)

type options struct {
	queueSize int
	logged    bool
	recovered bool
}

// Buffered answers "queued" at once and runs the handler on a worker that
// drains a queue of the given size in order.
func Buffered(size int) Option {
	return func(o *options) { o.queueSize = size }
}

// Logged logs the start and outcome of every call.
func Logged() Option {
	return func(o *options) { o.logged = true }
}

// Recovered turns a panic in the handler into an error result.
func Recovered() Option {
	return func(o *options) { o.recovered = true }
}

// Dispatcher routes events to registered handlers. Handlers are registered
// before the first Dispatch; Dispatch itself may be called from any thread.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger
	metrics  *instruments

	mu      sync.RWMutex
	queues  map[string]chan Event
	closed  bool
	workers sync.WaitGroup
}

// New creates a Dispatcher. Metrics go to the global OTel meter, which is a
// no-op until a provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		queues:   make(map[string]chan Event),
		logger:   logger,
	}

	ins, err := newInstruments(d)
	if err != nil {
		return nil, err
	}
	d.metrics = ins
	return d, nil
}

// Register adds the handler for command. Recovery wraps the handler
// itself, so a buffered worker survives a panic; logging wraps the whole
// call as the host sees it.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.recovered {
		h = d.withRecovery(command, h)
	}
	if o.queueSize > 0 {
		h = d.withQueue(command, o.queueSize, h)
	}
	if o.logged {
		h = d.withLogging(command, h)
	}
	d.handlers[command] = h
}

// Dispatch routes an event to its handler and records how long it took.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	result, err := h(e)
	d.metrics.latency.Record(context.Background(),
		float64(time.Since(e.Timestamp))/float64(time.Millisecond), commandAttr(e.Command))
	return result, err
}

// HasHandler reports whether command is registered.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

// Close stops accepting buffered events, waits for the queued ones to be
// handled and unregisters the queue gauge.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.workers.Wait()
	return d.metrics.callback.Unregister()
}

func (d *Dispatcher) withRecovery(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				d.metrics.recovered.Add(context.Background(), 1, commandAttr(command))
				d.logger.Error("handler panicked", "command", command, "panic", r)
				result, err = nil, fmt.Errorf("%s failed: %v", command, r)
			}
		}()
		return h(e)
	}
}

// withQueue runs h on a single worker. Events are dropped, with an error
// result, while the queue is full.
func (d *Dispatcher) withQueue(command string, size int, h HandlerFunc) HandlerFunc {
	q := make(chan Event, size)

	d.mu.Lock()
	d.queues[command] = q
	d.mu.Unlock()

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for e := range q {
			if _, err := h(e); err != nil {
				d.logger.Error("buffered event failed", "command", command, "error", err)
			}
			d.metrics.processed.Add(context.Background(), 1, commandAttr(command))
		}
	}()

	return func(e Event) (any, error) {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.closed {
			return nil, ErrClosed
		}
		select {
		case q <- e:
			return "queued", nil
		default:
			d.metrics.dropped.Add(context.Background(), 1, commandAttr(command))
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)
		elapsed := time.Since(e.Timestamp)
		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", elapsed, "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", elapsed)
		}
		return result, err
	}
}
