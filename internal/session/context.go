package session

import (
	"math"
	"sync"

	"github.com/impactwatch/extension/pkg/core"
)

// Reader is the read-only view handed to display code.
type Reader interface {
	CurrentImpactSpeed() float64
	CurrentDescription() (string, bool)
	CurrentSecondsUntilImpact() float64
}

// Published is the prediction currently shown to the player.
type Published struct {
	Seconds     float64 // whole seconds
	Speed       float64
	Verb        core.Verb
	Description string
	LowestPart  *core.Part
}

// Context holds the current session and the last published prediction.
// The tracker is its only writer.
type Context struct {
	mu        sync.RWMutex
	session   *core.Session
	published Published
	tracking  bool
}

// NewContext creates a Context with nothing published.
func NewContext() *Context {
	return &Context{
		session: &core.Session{VehicleName: "No session started"},
	}
}

// GetSession returns the current session
func (c *Context) GetSession() *core.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession replaces the session and clears any published prediction
func (c *Context) SetSession(s *core.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.published = Published{}
	c.tracking = false
}

// Publish makes p the current prediction.
func (c *Context) Publish(p Published) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = p
	c.tracking = true
}

// Clear withdraws the current prediction.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = Published{}
	c.tracking = false
}

// Current returns the published prediction and whether one is showing.
func (c *Context) Current() (Published, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.published, c.tracking
}

// CurrentImpactSpeed returns the predicted impact speed, or NaN.
func (c *Context) CurrentImpactSpeed() float64 {
	p, ok := c.Current()
	if !ok {
		return math.NaN()
	}
	return p.Speed
}

// CurrentDescription returns the rendered "<verb> in <duration>" text.
func (c *Context) CurrentDescription() (string, bool) {
	p, ok := c.Current()
	if !ok {
		return "", false
	}
	return p.Description, true
}

// CurrentSecondsUntilImpact returns whole seconds until impact, or NaN.
func (c *Context) CurrentSecondsUntilImpact() float64 {
	p, ok := c.Current()
	if !ok {
		return math.NaN()
	}
	return p.Seconds
}

// LowestPart returns a copy of the part expected to touch first.
func (c *Context) LowestPart() (core.Part, bool) {
	p, ok := c.Current()
	if !ok || p.LowestPart == nil {
		return core.Part{}, false
	}
	return *p.LowestPart, true
}

// Verb returns the published verb, VerbNone when idle.
func (c *Context) Verb() core.Verb {
	p, _ := c.Current()
	return p.Verb
}
