package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/impactwatch/extension/internal/dispatcher"

type instruments struct {
	latency   metric.Float64Histogram
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	recovered metric.Int64Counter
	queueSize metric.Int64ObservableGauge
	callback  metric.Registration
}

func commandAttr(command string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("command", command))
}

// newInstruments registers the dispatcher's metrics on the global meter.
// The queue gauge reports the depth of every buffered command of d.
func newInstruments(d *Dispatcher) (*instruments, error) {
	m := otel.Meter(instrumentationName)
	ins := &instruments{}

	var err error
	ins.latency, err = m.Float64Histogram(
		"dispatcher.call.duration",
		metric.WithDescription("Time spent answering a host call"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating call duration histogram: %w", err)
	}

	ins.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Buffered events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	ins.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Events dropped due to a full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	ins.recovered, err = m.Int64Counter(
		"dispatcher.events.recovered",
		metric.WithDescription("Handler panics turned into errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating recovered counter: %w", err)
	}

	ins.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Events waiting in a command queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	ins.callback, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for cmd, q := range d.queues {
				o.ObserveInt64(ins.queueSize, int64(len(q)), commandAttr(cmd))
			}
			return nil
		},
		ins.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	return ins, nil
}
