package tracker

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/impactwatch/extension/internal/session"
)

const instrumentationName = "github.com/impactwatch/extension/internal/tracker"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	frames      metric.Int64Counter
	recomputes  metric.Int64Counter
	faults      metric.Int64Counter
	predictions metric.Int64Counter
	seconds     metric.Float64ObservableGauge
	callback    metric.Registration
}

// newInstruments creates the tracker's counters and registers a gauge
// that observes the published time-to-impact on board.
func newInstruments(board *session.Context) (*instruments, error) {
	m := meter()
	ins := &instruments{}

	var err error
	ins.frames, err = m.Int64Counter(
		"tracker.frames",
		metric.WithDescription("Frames evaluated by the impact tracker"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}

	ins.recomputes, err = m.Int64Counter(
		"tracker.height.recomputes",
		metric.WithDescription("Fresh vehicle height estimates"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating recompute counter: %w", err)
	}

	ins.faults, err = m.Int64Counter(
		"tracker.faults",
		metric.WithDescription("Frames abandoned after an unexpected fault"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fault counter: %w", err)
	}

	ins.predictions, err = m.Int64Counter(
		"tracker.predictions",
		metric.WithDescription("Published prediction changes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating prediction counter: %w", err)
	}

	ins.seconds, err = m.Float64ObservableGauge(
		"tracker.impact.seconds",
		metric.WithDescription("Published seconds until impact"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating seconds gauge: %w", err)
	}

	ins.callback, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			p, ok := board.Current()
			if !ok {
				return nil
			}
			o.ObserveFloat64(ins.seconds, p.Seconds,
				metric.WithAttributes(attribute.String("verb", string(p.Verb))))
			return nil
		},
		ins.seconds,
	)
	if err != nil {
		return nil, fmt.Errorf("registering seconds callback: %w", err)
	}

	return ins, nil
}

func (ins *instruments) close() error {
	if ins.callback == nil {
		return nil
	}
	err := ins.callback.Unregister()
	ins.callback = nil
	if err != nil {
		return fmt.Errorf("unregistering seconds callback: %w", err)
	}
	return nil
}
