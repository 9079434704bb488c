// Package height estimates how far a vehicle's reference point sits above
// its lowest collidable extent.
package height

import (
	"math"
	"sort"

	"github.com/impactwatch/extension/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// FullScanLimit is the part count below which every part is examined.
	FullScanLimit = 50
	// NearestPartCount is how many parts nearest the body centre are
	// examined on vehicles at or above FullScanLimit.
	NearestPartCount = 30
)

// Estimate returns the vertical distance from v's reference point to its
// lowest collidable point, measured along the line to b's centre.
// Packed and crew vehicles, and vehicles with no collidable geometry,
// yield a zero estimate with no lowest part.
func Estimate(v *core.Vehicle, b *core.CelestialBody) core.HeightEstimate {
	if v == nil || b == nil || v.Packed || v.Crew {
		return core.HeightEstimate{}
	}

	lowest := -1
	lowestDist := math.Inf(1)
	for _, i := range workingSet(v.Parts, b.Position) {
		p := &v.Parts[i]
		if !p.Collidable() {
			continue
		}
		d := r3.Norm(r3.Sub(p.Collider.Bounds.ClosestPoint(b.Position), b.Position))
		if d < lowestDist {
			lowest, lowestDist = i, d
		}
	}
	if lowest < 0 {
		return core.HeightEstimate{}
	}

	part := v.Parts[lowest]
	return core.HeightEstimate{
		Height:     r3.Norm(r3.Sub(v.Position, b.Position)) - lowestDist,
		LowestPart: &part,
	}
}

// workingSet returns the indices of the parts to examine. Small vehicles
// use every part; large ones keep the NearestPartCount collidable parts
// closest to centre, ties in input order.
func workingSet(parts []core.Part, centre core.Vec3) []int {
	if len(parts) < FullScanLimit {
		idx := make([]int, len(parts))
		for i := range parts {
			idx[i] = i
		}
		return idx
	}

	type ranked struct {
		index int
		dist  float64
	}
	candidates := make([]ranked, 0, len(parts))
	for i := range parts {
		if !parts[i].Collidable() {
			continue
		}
		candidates = append(candidates, ranked{
			index: i,
			dist:  r3.Norm(r3.Sub(parts[i].Position, centre)),
		})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].dist < candidates[b].dist
	})
	if len(candidates) > NearestPartCount {
		candidates = candidates[:NearestPartCount]
	}

	idx := make([]int, len(candidates))
	for i, c := range candidates {
		idx[i] = c.index
	}
	return idx
}
