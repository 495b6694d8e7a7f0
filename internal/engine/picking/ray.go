// Package picking casts rays from screen coordinates into the scene.
package picking

import (
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// ScreenToRay unprojects a pixel position through the inverse
// view-projection. y grows downward as in window coordinates.
func ScreenToRay(x, y, width, height float32, invViewProj math.Mat4) Ray {
	ndcX := 2*x/width - 1
	ndcY := 1 - 2*y/height

	near := invViewProj.TransformVec3(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := invViewProj.TransformVec3(math.Vec3{X: ndcX, Y: ndcY, Z: 1})
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlaneY returns where the ray crosses the horizontal plane at y.
func (r Ray) IntersectPlaneY(y float32) (math.Vec3, bool) {
	if r.Direction.Y > -1e-3 && r.Direction.Y < 1e-3 {
		return math.Vec3{}, false
	}
	t := (y - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.At(t), true
}

// IntersectAABB returns the distance to the first contact with box within
// maxDist. A ray starting inside the box reports 0.
func (r Ray) IntersectAABB(box physics.AABB, maxDist float32) (float32, bool) {
	t, hit := box.IntersectSegment(r.Origin, r.At(maxDist))
	if !hit {
		return 0, false
	}
	return t * maxDist, true
}

// Target is something that can be picked.
type Target struct {
	ID  string
	Box physics.AABB
}

// Pick returns the ID of the nearest target the ray hits within maxDist.
func Pick(r Ray, maxDist float32, targets []Target) (string, bool) {
	best, found := maxDist, false
	var id string
	for _, tg := range targets {
		d, hit := r.IntersectAABB(tg.Box, maxDist)
		if hit && (!found || d < best) {
			best, found, id = d, true, tg.ID
		}
	}
	return id, found
}
