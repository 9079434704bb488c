// Package tracker runs the per-frame impact prediction state machine and
// publishes its result to a session.Context.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/impactwatch/extension/internal/cache"
	"github.com/impactwatch/extension/internal/durationfmt"
	"github.com/impactwatch/extension/internal/height"
	"github.com/impactwatch/extension/internal/session"
	"github.com/impactwatch/extension/internal/solver"
	"github.com/impactwatch/extension/pkg/core"
)

// State is the tracker's display state.
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Tracking:
		return "Tracking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Settings are the two tunables read once at startup.
type Settings struct {
	Enabled    bool
	MaxSeconds float64
}

// Recorder receives a sample every time the published prediction changes.
type Recorder interface {
	RecordPrediction(s *core.PredictionSample) error
}

// Dependencies holds everything the tracker needs. Board is required; the
// rest default when nil.
type Dependencies struct {
	Settings  Settings
	Board     *session.Context
	Logger    *slog.Logger
	Clock     Clock
	Format    func(seconds int) string
	Recorders []Recorder
}

// Tracker decides once per frame whether an impact prediction is shown.
// Its methods may be called from any host thread.
type Tracker struct {
	mu       sync.Mutex
	deps     Dependencies
	log      *slog.Logger
	throttle *cache.Throttle
	solver   *solver.Solver
	metrics  *instruments

	state       State
	lastSeconds int
	lastVerb    core.Verb
	description string
	vehicleID   string
}

// New creates an Idle tracker whose first frame recomputes the height.
func New(deps Dependencies) (*Tracker, error) {
	if deps.Board == nil {
		return nil, fmt.Errorf("tracker: board is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if deps.Format == nil {
		deps.Format = durationfmt.Format
	}

	ins, err := newInstruments(deps.Board)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		deps:        deps,
		log:         deps.Logger.With("component", "tracker"),
		throttle:    cache.NewThrottle(height.Estimate),
		metrics:     ins,
		lastSeconds: -1,
	}
	t.throttle.OnRecompute = func() {
		t.metrics.recomputes.Add(context.Background(), 1)
	}
	t.solver = solver.New(t.throttle)
	return t, nil
}

// State returns the current display state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Close unregisters the tracker's gauge callback.
func (t *Tracker) Close() error {
	return t.metrics.close()
}

// Board returns the context the tracker publishes to.
func (t *Tracker) Board() *session.Context {
	return t.deps.Board
}

// StartSession begins a new session: nothing published, cache cold.
func (t *Tracker) StartSession(s *core.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.deps.Board.SetSession(s)
	t.reset()
	t.vehicleID = ""
	t.log.Info("Tracking session started", "session", s.ID, "vehicle", s.VehicleName)
}

// Update evaluates one frame. A fault anywhere in the evaluation is
// recovered, logged and returned; published state is left as it was.
func (t *Tracker) Update(snap *core.Snapshot) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := context.Background()
	t.metrics.frames.Add(ctx, 1)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame update failed: %v", r)
			t.metrics.faults.Add(ctx, 1)
			t.log.Error("Frame abandoned", "error", err)
		}
	}()

	t.update(snap)
	return nil
}

func (t *Tracker) update(snap *core.Snapshot) {
	// The burn countdown overlay owns the display while it is showing.
	if snap == nil || snap.BurnCountdownActive {
		t.reset()
		return
	}

	v, b := snap.Vehicle, snap.Body
	if !t.deps.Settings.Enabled || v == nil || b == nil || b.Atmosphere {
		t.reset()
		return
	}

	if v.ID != t.vehicleID {
		t.throttle.Reset()
		t.vehicleID = v.ID
	}

	p := t.solver.Solve(v, b, t.deps.Clock.Now())
	if !p.Predicted() || p.Seconds > t.deps.Settings.MaxSeconds {
		t.reset()
		return
	}

	t.publish(v, b, p)
}

// publish shows p. Text is only re-rendered when the whole-second value
// or the verb changes. Nothing is committed until the frame's work is done.
func (t *Tracker) publish(v *core.Vehicle, b *core.CelestialBody, p core.Prediction) {
	whole := int(math.Round(p.Seconds))
	changed := t.state != Tracking || whole != t.lastSeconds || p.Verb != t.lastVerb

	description := t.description
	if changed {
		description = fmt.Sprintf("%s in %s", p.Verb, t.deps.Format(whole))
	}

	if t.state != Tracking {
		t.log.Debug("Prediction published", "vehicle", v.Name, "body", b.Name, "verb", p.Verb, "seconds", whole)
	}
	t.state = Tracking
	t.lastSeconds = whole
	t.lastVerb = p.Verb
	t.description = description

	t.deps.Board.Publish(session.Published{
		Seconds:     float64(whole),
		Speed:       p.Speed,
		Verb:        p.Verb,
		Description: description,
		LowestPart:  p.Estimate.LowestPart,
	})

	if changed {
		t.metrics.predictions.Add(context.Background(), 1)
		t.record(v, b, p)
	}
}

func (t *Tracker) record(v *core.Vehicle, b *core.CelestialBody, p core.Prediction) {
	if len(t.deps.Recorders) == 0 {
		return
	}

	sample := &core.PredictionSample{
		SessionID:   t.deps.Board.GetSession().ID,
		Time:        t.deps.Clock.Now(),
		VehicleID:   v.ID,
		VehicleName: v.Name,
		BodyName:    b.Name,
		Seconds:     p.Seconds,
		Speed:       p.Speed,
		Verb:        p.Verb,
		Height:      p.Estimate.Height,
		Altitude:    v.Altitude,
		Latitude:    v.Latitude,
		Longitude:   v.Longitude,
	}
	if p.Estimate.LowestPart != nil {
		sample.LowestPart = p.Estimate.LowestPart.Name
	}

	for _, r := range t.deps.Recorders {
		if err := r.RecordPrediction(sample); err != nil {
			t.log.Warn("Failed to record prediction", "error", err)
		}
	}
}

// reset returns to Idle and clears everything published.
func (t *Tracker) reset() {
	if t.state == Tracking {
		t.log.Debug("Prediction cleared")
	}
	t.state = Idle
	t.lastSeconds = -1
	t.lastVerb = core.VerbNone
	t.description = ""
	t.throttle.Reset()
	t.deps.Board.Clear()
}
