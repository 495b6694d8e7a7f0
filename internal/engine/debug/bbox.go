// Package debug builds line geometry for the trajectory viewer and writes
// screenshots.
package debug

import "github.com/Faultbox/drops/pkg/math"

// BoxEdgeVertexCount is the number of vertices in a box wireframe (12 edges, 2 ends each).
const BoxEdgeVertexCount = 24

// BoxEdges returns the endpoints of the 12 edges of the box spanned by min
// and max, bottom face first, then top face, then the verticals.
func BoxEdges(min, max math.Vec3) [BoxEdgeVertexCount]math.Vec3 {
	c := [8]math.Vec3{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
	}
	return [BoxEdgeVertexCount]math.Vec3{
		c[0], c[1], c[1], c[2], c[2], c[3], c[3], c[0],
		c[4], c[5], c[5], c[6], c[6], c[7], c[7], c[4],
		c[0], c[4], c[1], c[5], c[2], c[6], c[3], c[7],
	}
}

// Pad grows a box by amount on every side, swapping inverted axes first.
func Pad(min, max math.Vec3, amount float32) (math.Vec3, math.Vec3) {
	if min.X > max.X {
		min.X, max.X = max.X, min.X
	}
	if min.Y > max.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	if min.Z > max.Z {
		min.Z, max.Z = max.Z, min.Z
	}
	d := math.Vec3{X: amount, Y: amount, Z: amount}
	return min.Sub(d), max.Add(d)
}
