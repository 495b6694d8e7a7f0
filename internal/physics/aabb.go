// Package physics implements the character force/movement model used by
// drops and enemies, together with the static collision world it moves in.
package physics

import (
	gomath "math"

	"github.com/Faultbox/drops/pkg/math"
)

// overlapEpsilon is the penetration depth below which two boxes are
// considered touching rather than overlapping.
const overlapEpsilon = 1e-4

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// BoxAt returns the box centred on center with the given half extents.
func BoxAt(center, half math.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Center returns the box centre.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// HalfExtents returns half the box size along each axis.
func (b AABB) HalfExtents() math.Vec3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}

// Translate returns the box moved by d.
func (b AABB) Translate(d math.Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Overlaps reports whether the boxes interpenetrate. Boxes that only share
// a face do not overlap.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X < o.Max.X-overlapEpsilon && b.Max.X > o.Min.X+overlapEpsilon &&
		b.Min.Y < o.Max.Y-overlapEpsilon && b.Max.Y > o.Min.Y+overlapEpsilon &&
		b.Min.Z < o.Max.Z-overlapEpsilon && b.Max.Z > o.Min.Z+overlapEpsilon
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectSegment intersects the segment from->to with the box using the
// slab method. t is the fraction along the segment of the first contact;
// a segment starting inside the box reports t = 0.
func (b AABB) IntersectSegment(from, to math.Vec3) (t float32, hit bool) {
	dir := to.Sub(from)
	tmin := float32(0)
	tmax := float32(1)

	origin := [3]float32{from.X, from.Y, from.Z}
	d := [3]float32{dir.X, dir.Y, dir.Z}
	lo := [3]float32{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float32{b.Max.X, b.Max.Y, b.Max.Z}

	for i := 0; i < 3; i++ {
		if gomath.Abs(float64(d[i])) < 1e-12 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / d[i]
		t2 := (hi[i] - origin[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func axis(v math.Vec3, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setAxis(v *math.Vec3, i int, f float32) {
	switch i {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	default:
		v.Z = f
	}
}

func unitAxis(i int, sign float32) math.Vec3 {
	var v math.Vec3
	setAxis(&v, i, sign)
	return v
}
