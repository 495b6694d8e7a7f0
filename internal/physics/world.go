package physics

import (
	"github.com/Faultbox/drops/pkg/math"
)

// Collider is a static solid box in the collision world.
type Collider struct {
	ID  string
	Tag string
	Box AABB

	// Slippery ground makes characters standing on it slide.
	Slippery bool
}

// Hit describes a contact between a moving body and a collider.
type Hit struct {
	Collider *Collider
	Normal   math.Vec3
	Point    math.Vec3
	Fraction float32
}

// World holds the static colliders characters collide with.
// It is not safe for concurrent use.
type World struct {
	colliders []*Collider
}

// NewWorld creates an empty collision world.
func NewWorld() *World {
	return &World{}
}

// Add registers a collider.
func (w *World) Add(c *Collider) {
	if c == nil {
		return
	}
	w.colliders = append(w.colliders, c)
}

// Remove unregisters the collider with the given ID.
func (w *World) Remove(id string) bool {
	for i, c := range w.colliders {
		if c.ID == id {
			w.colliders = append(w.colliders[:i], w.colliders[i+1:]...)
			return true
		}
	}
	return false
}

// Colliders returns the registered colliders.
func (w *World) Colliders() []*Collider {
	if w == nil {
		return nil
	}
	return w.colliders
}

// Overlapping returns every collider interpenetrating box.
func (w *World) Overlapping(box AABB) []*Collider {
	if w == nil {
		return nil
	}
	var out []*Collider
	for _, c := range w.colliders {
		if c.Box.Overlaps(box) {
			out = append(out, c)
		}
	}
	return out
}

// Linecast reports whether the segment from->to hits any collider.
func (w *World) Linecast(from, to math.Vec3) bool {
	_, ok := w.SegmentCast(from, to)
	return ok
}

// SegmentCast returns the closest collider hit along from->to.
func (w *World) SegmentCast(from, to math.Vec3) (Hit, bool) {
	if w == nil {
		return Hit{}, false
	}
	best := Hit{Fraction: 2}
	for _, c := range w.colliders {
		t, ok := c.Box.IntersectSegment(from, to)
		if !ok || t >= best.Fraction {
			continue
		}
		best = Hit{Collider: c, Fraction: t, Point: from.Lerp(to, t)}
	}
	if best.Collider == nil {
		return Hit{}, false
	}
	best.Normal = faceNormal(best.Collider.Box, best.Point)
	return best, true
}

// faceNormal picks the outward normal of the box face nearest to p.
func faceNormal(b AABB, p math.Vec3) math.Vec3 {
	bestDist := float32(-1)
	var n math.Vec3
	for i := 0; i < 3; i++ {
		lo := axis(p, i) - axis(b.Min, i)
		hi := axis(b.Max, i) - axis(p, i)
		if lo < 0 {
			lo = -lo
		}
		if hi < 0 {
			hi = -hi
		}
		if bestDist < 0 || lo < bestDist {
			bestDist = lo
			n = unitAxis(i, -1)
		}
		if hi < bestDist {
			bestDist = hi
			n = unitAxis(i, 1)
		}
	}
	return n
}
