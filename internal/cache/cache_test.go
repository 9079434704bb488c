package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactwatch/extension/internal/height"
	"github.com/impactwatch/extension/pkg/core"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func counter(values ...float64) (func() core.HeightEstimate, *int) {
	calls := 0
	return func() core.HeightEstimate {
		v := values[len(values)-1]
		if calls < len(values) {
			v = values[calls]
		}
		calls++
		return core.HeightEstimate{Height: v}
	}, &calls
}

func TestHeightCache_FirstQueryRecomputes(t *testing.T) {
	c := NewHeightCache(RefreshInterval)
	recompute, calls := counter(4.5)

	assert.False(t, c.Valid())

	got, fresh := c.MaybeRefresh(epoch, recompute)

	assert.True(t, fresh)
	assert.Equal(t, 4.5, got.Height)
	assert.Equal(t, 1, *calls)
	assert.True(t, c.Valid())
}

func TestHeightCache_WithinIntervalReturnsCached(t *testing.T) {
	c := NewHeightCache(RefreshInterval)
	recompute, calls := counter(4.5, 9.0)

	first, _ := c.MaybeRefresh(epoch, recompute)
	second, fresh := c.MaybeRefresh(epoch.Add(100*time.Millisecond), recompute)
	third, _ := c.MaybeRefresh(epoch.Add(RefreshInterval), recompute)

	assert.False(t, fresh)
	assert.Equal(t, first, second)
	assert.Equal(t, first, third, "deadline itself is still inside the interval")
	assert.Equal(t, 1, *calls)
}

func TestHeightCache_AfterIntervalRecomputes(t *testing.T) {
	c := NewHeightCache(RefreshInterval)
	recompute, calls := counter(4.5, 9.0)

	c.MaybeRefresh(epoch, recompute)
	got, fresh := c.MaybeRefresh(epoch.Add(RefreshInterval+time.Millisecond), recompute)

	assert.True(t, fresh)
	assert.Equal(t, 9.0, got.Height)
	assert.Equal(t, 2, *calls)
}

func TestHeightCache_Invalidate(t *testing.T) {
	c := NewHeightCache(RefreshInterval)
	recompute, calls := counter(4.5, 9.0)

	c.MaybeRefresh(epoch, recompute)
	c.Invalidate()
	assert.False(t, c.Valid())

	got, fresh := c.MaybeRefresh(epoch.Add(time.Millisecond), recompute)

	assert.True(t, fresh)
	assert.Equal(t, 9.0, got.Height)
	assert.Equal(t, 2, *calls)
}

func TestThrottle_MatchesDirectEstimateAfterInterval(t *testing.T) {
	body := &core.CelestialBody{Radius: 200000}
	v := &core.Vehicle{
		Position: core.Vec3{Y: 200100},
		Parts: []core.Part{{
			Name: "legs",
			Collider: &core.Collider{Enabled: true, Bounds: core.Bounds{
				Min: core.Vec3{X: -1, Y: 200092, Z: -1},
				Max: core.Vec3{X: 1, Y: 200096, Z: 1},
			}},
		}},
	}

	recomputes := 0
	th := NewThrottle(height.Estimate)
	th.OnRecompute = func() { recomputes++ }

	a := th.GetHeight(v, body, epoch)
	b := th.GetHeight(v, body, epoch.Add(10*time.Millisecond))
	require.Equal(t, a, b)
	assert.Equal(t, 1, recomputes)

	c := th.GetHeight(v, body, epoch.Add(time.Second))
	direct := height.Estimate(v, body)
	assert.InDelta(t, direct.Height, c.Height, 1e-9)
	assert.Equal(t, 2, recomputes)
}

func TestThrottle_ResetForcesRecompute(t *testing.T) {
	calls := 0
	th := NewThrottle(func(v *core.Vehicle, b *core.CelestialBody) core.HeightEstimate {
		calls++
		return core.HeightEstimate{Height: float64(calls)}
	})

	th.GetHeight(nil, nil, epoch)
	th.Reset()
	got := th.GetHeight(nil, nil, epoch)

	assert.Equal(t, 2.0, got.Height)
}
