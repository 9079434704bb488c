// Package cache rate-limits height estimation and holds the last estimate
// between recomputes.
package cache

import (
	"time"

	"github.com/impactwatch/extension/pkg/core"
)

// RefreshInterval is the minimum wall-clock time between height recomputes.
const RefreshInterval = 250 * time.Millisecond

// HeightCache holds the last height estimate and the time after which it
// must be recomputed. The zero value is invalid, so the first query always
// recomputes.
type HeightCache struct {
	value      core.HeightEstimate
	validUntil time.Time
	valid      bool
	interval   time.Duration
}

// NewHeightCache creates an empty cache refreshed at most once per interval.
func NewHeightCache(interval time.Duration) *HeightCache {
	return &HeightCache{interval: interval}
}

// MaybeRefresh returns the cached estimate, or calls recompute and caches its
// result if the cache is empty or now is past the deadline.
// It reports whether recompute ran.
func (c *HeightCache) MaybeRefresh(now time.Time, recompute func() core.HeightEstimate) (core.HeightEstimate, bool) {
	if c.valid && !now.After(c.validUntil) {
		return c.value, false
	}
	c.value = recompute()
	c.validUntil = now.Add(c.interval)
	c.valid = true
	return c.value, true
}

// Invalidate forgets the cached estimate so the next query recomputes.
func (c *HeightCache) Invalidate() {
	c.value = core.HeightEstimate{}
	c.validUntil = time.Time{}
	c.valid = false
}

// Valid reports whether an estimate is cached.
func (c *HeightCache) Valid() bool {
	return c.valid
}

// EstimateFunc computes a fresh height estimate.
type EstimateFunc func(v *core.Vehicle, b *core.CelestialBody) core.HeightEstimate

// Throttle pairs a HeightCache with the estimator it rate-limits.
type Throttle struct {
	cache    *HeightCache
	estimate EstimateFunc

	// OnRecompute, if set, is called after every fresh estimate.
	OnRecompute func()
}

// NewThrottle creates a Throttle around estimate using RefreshInterval.
func NewThrottle(estimate EstimateFunc) *Throttle {
	return &Throttle{
		cache:    NewHeightCache(RefreshInterval),
		estimate: estimate,
	}
}

// GetHeight returns a height estimate for v over b, recomputing at most once
// per refresh interval.
func (t *Throttle) GetHeight(v *core.Vehicle, b *core.CelestialBody, now time.Time) core.HeightEstimate {
	est, fresh := t.cache.MaybeRefresh(now, func() core.HeightEstimate {
		return t.estimate(v, b)
	})
	if fresh && t.OnRecompute != nil {
		t.OnRecompute()
	}
	return est
}

// Reset invalidates the cached estimate.
func (t *Throttle) Reset() {
	t.cache.Invalidate()
}

// Valid reports whether an estimate is cached.
func (t *Throttle) Valid() bool {
	return t.cache.Valid()
}
