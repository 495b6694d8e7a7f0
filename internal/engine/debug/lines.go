package debug

import "github.com/Faultbox/drops/pkg/math"

// Color is a linear RGB colour.
type Color struct {
	R, G, B float32
}

// Viewer palette.
var (
	ColorCollider   = Color{0.55, 0.55, 0.6}
	ColorSlippery   = Color{0.3, 0.7, 0.9}
	ColorArea       = Color{0.9, 0.8, 0.2}
	ColorDrop       = Color{0.2, 0.9, 0.4}
	ColorFlying     = Color{1.0, 0.5, 0.1}
	ColorEnemy      = Color{0.9, 0.2, 0.2}
	ColorTrajectory = Color{1.0, 1.0, 1.0}
	ColorAxis       = Color{0.35, 0.35, 0.4}
)

// FloatsPerVertex is the interleaved layout of a Lines vertex: xyz then rgb.
const FloatsPerVertex = 6

// Lines accumulates GL_LINES vertices for one frame.
type Lines struct {
	verts []float32
}

// Reset empties the batch while keeping its storage.
func (l *Lines) Reset() {
	l.verts = l.verts[:0]
}

// Line appends the segment a-b.
func (l *Lines) Line(a, b math.Vec3, c Color) {
	l.verts = append(l.verts,
		a.X, a.Y, a.Z, c.R, c.G, c.B,
		b.X, b.Y, b.Z, c.R, c.G, c.B,
	)
}

// Box appends the wireframe of the box spanned by min and max.
func (l *Lines) Box(min, max math.Vec3, c Color) {
	edges := BoxEdges(min, max)
	for i := 0; i < len(edges); i += 2 {
		l.Line(edges[i], edges[i+1], c)
	}
}

// Strip appends the polyline through points. Fewer than two points draw nothing.
func (l *Lines) Strip(points []math.Vec3, c Color) {
	for i := 1; i < len(points); i++ {
		l.Line(points[i-1], points[i], c)
	}
}

// Cross appends three axis-aligned segments of length 2*size centred on p.
func (l *Lines) Cross(p math.Vec3, size float32, c Color) {
	l.Line(p.Add(math.Vec3{X: -size}), p.Add(math.Vec3{X: size}), c)
	l.Line(p.Add(math.Vec3{Y: -size}), p.Add(math.Vec3{Y: size}), c)
	l.Line(p.Add(math.Vec3{Z: -size}), p.Add(math.Vec3{Z: size}), c)
}

// Grid appends a square grid on the XZ plane at height y.
func (l *Lines) Grid(y, half, step float32, c Color) {
	if step <= 0 || half <= 0 {
		return
	}
	for v := -half; v <= half+step*0.001; v += step {
		l.Line(math.Vec3{X: v, Y: y, Z: -half}, math.Vec3{X: v, Y: y, Z: half}, c)
		l.Line(math.Vec3{X: -half, Y: y, Z: v}, math.Vec3{X: half, Y: y, Z: v}, c)
	}
}

// Vertices returns the interleaved vertex data.
func (l *Lines) Vertices() []float32 { return l.verts }

// Count returns the number of vertices.
func (l *Lines) Count() int { return len(l.verts) / FloatsPerVertex }
