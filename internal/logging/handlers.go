package logging

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/impactwatch/extension/internal/session"
)

// fanout sends each record to every sink that accepts its level. A failing
// sink does not stop the others.
type fanout []slog.Handler

func newFanout(sinks ...slog.Handler) fanout {
	f := make(fanout, 0, len(sinks))
	for _, h := range sinks {
		if h != nil {
			f = append(f, h)
		}
	}
	return f
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(wrap func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = wrap(h)
	}
	return out
}

// sessionHandler tags every record with the tracking session read from the
// board at log time, plus the verb and seconds while a prediction is shown.
type sessionHandler struct {
	slog.Handler
	board *session.Context
}

func (h sessionHandler) Handle(ctx context.Context, r slog.Record) error {
	s := h.board.GetSession()
	r.AddAttrs(slog.String("vehicle", s.VehicleName))
	if s.ID != uuid.Nil {
		r.AddAttrs(slog.String("session", s.ID.String()))
	}
	if p, ok := h.board.Current(); ok {
		r.AddAttrs(slog.String("verb", string(p.Verb)), slog.Float64("seconds", p.Seconds))
	}
	return h.Handler.Handle(ctx, r)
}

func (h sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return sessionHandler{Handler: h.Handler.WithAttrs(attrs), board: h.board}
}

func (h sessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return sessionHandler{Handler: h.Handler.WithGroup(name), board: h.board}
}
