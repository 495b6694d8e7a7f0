package path

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Faultbox/drops/pkg/math"
)

// ErrInvalidRegion is returned for a region with a negative or all-zero size.
var ErrInvalidRegion = errors.New("path: invalid region")

// MaxRandomPointAttempts bounds the rerolls in GetRandomPoint.
const MaxRandomPointAttempts = 16

// Region is an axis-aligned box entities wander inside. Origin is the box
// centre. A zero size component keeps points on that plane.
type Region struct {
	Origin math.Vec3
	Size   math.Vec3
}

// NewRegion validates and returns a region.
func NewRegion(origin, size math.Vec3) (Region, error) {
	r := Region{Origin: origin, Size: size}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// Validate checks the size invariants.
func (r Region) Validate() error {
	if r.Size.X < 0 || r.Size.Y < 0 || r.Size.Z < 0 {
		return fmt.Errorf("%w: negative size %v", ErrInvalidRegion, r.Size)
	}
	if r.Size.IsZero() {
		return fmt.Errorf("%w: zero size", ErrInvalidRegion)
	}
	return nil
}

// Contains reports whether p lies inside the region.
func (r Region) Contains(p math.Vec3) bool {
	d := p.Sub(r.Origin)
	h := r.Size.Scale(0.5)
	return absf(d.X) <= h.X && absf(d.Y) <= h.Y && absf(d.Z) <= h.Z
}

// GetRandomPoint samples a point inside the region at least margin away
// from previous. When no such point is found within MaxRandomPointAttempts
// draws, the farthest candidate is returned with ok set to false.
func (r Region) GetRandomPoint(previous math.Vec3, margin float32, rng *rand.Rand) (point math.Vec3, ok bool) {
	best := r.Origin
	bestDist := float32(-1)
	for i := 0; i < MaxRandomPointAttempts; i++ {
		p := r.sample(rng)
		d := p.Distance(previous)
		if d >= margin {
			return p, true
		}
		if d > bestDist {
			best, bestDist = p, d
		}
	}
	return best, false
}

func (r Region) sample(rng *rand.Rand) math.Vec3 {
	f := rand.Float32
	if rng != nil {
		f = rng.Float32
	}
	return math.Vec3{
		X: r.Origin.X + (f()-0.5)*r.Size.X,
		Y: r.Origin.Y + (f()-0.5)*r.Size.Y,
		Z: r.Origin.Z + (f()-0.5)*r.Size.Z,
	}
}

// RegionWalker wanders a region, implementing Traversal. Each goal faces
// away from the previous one.
type RegionWalker struct {
	region Region
	margin float32
	rng    *rand.Rand
	goal   Waypoint
}

// NewRegionWalker starts a walker at start. The first goal is drawn
// immediately.
func NewRegionWalker(region Region, start math.Vec3, margin float32, rng *rand.Rand) (*RegionWalker, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	w := &RegionWalker{
		region: region,
		margin: margin,
		rng:    rng,
		goal:   Waypoint{Position: start, Rotation: math.QuatIdentity()},
	}
	w.Advance()
	return w, nil
}

// Region returns the wandered region.
func (w *RegionWalker) Region() Region { return w.region }

// Goal returns the current target point.
func (w *RegionWalker) Goal() Waypoint { return w.goal }

// Advance draws the next goal. It never fails.
func (w *RegionWalker) Advance() (Waypoint, error) {
	prev := w.goal.Position
	next, _ := w.region.GetRandomPoint(prev, w.margin, w.rng)
	rot := w.goal.Rotation
	if dir := next.Sub(prev); !dir.IsZero() {
		rot = math.LookRotation(dir, math.Up)
	}
	w.goal = Waypoint{Position: next, Rotation: rot}
	return w.goal, nil
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
