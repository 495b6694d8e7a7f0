package main

import (
	"github.com/Faultbox/drops/internal/engine/debug"
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/internal/sim"
	"github.com/Faultbox/drops/pkg/math"
)

const facingLength = 1.5

// drawScene appends the wireframe of w to l.
func drawScene(l *debug.Lines, w *sim.World, trajectories map[string][]math.Vec3, showTrajectories bool) {
	l.Grid(0, 20, 1, debug.ColorAxis)

	for _, c := range w.Collision().Colliders() {
		color := debug.ColorCollider
		if c.Slippery {
			color = debug.ColorSlippery
		}
		l.Box(c.Box.Min, c.Box.Max, color)
	}

	for _, a := range w.Areas() {
		if !a.Enabled() {
			continue
		}
		lo, hi := a.Box().Min, a.Box().Max
		if a.Active() {
			lo, hi = debug.Pad(lo, hi, 0.05)
		}
		l.Box(lo, hi, debug.ColorArea)
	}

	for _, d := range w.Drops() {
		if !d.Alive() {
			continue
		}
		color := debug.ColorDrop
		if d.Controller().IsFlying() {
			color = debug.ColorFlying
		}
		b := d.Bounds()
		l.Box(b.Min, b.Max, color)
	}

	for _, e := range w.Enemies() {
		b := e.Controller().Bounds()
		l.Box(b.Min, b.Max, debug.ColorEnemy)
		p := e.Position()
		l.Line(p, p.Add(e.Rotation().Forward().Scale(facingLength)), debug.ColorEnemy)
	}

	if !showTrajectories {
		return
	}
	for _, pts := range trajectories {
		l.Strip(pts, debug.ColorTrajectory)
		if len(pts) > 0 {
			l.Cross(pts[len(pts)-1], 0.2, debug.ColorTrajectory)
		}
	}
}

// sceneBounds returns the box enclosing every collider, drop and enemy. An
// empty world yields a unit box at the origin.
func sceneBounds(w *sim.World) (math.Vec3, math.Vec3) {
	var boxes []physics.AABB
	for _, c := range w.Collision().Colliders() {
		boxes = append(boxes, c.Box)
	}
	for _, d := range w.Drops() {
		boxes = append(boxes, d.Bounds())
	}
	for _, e := range w.Enemies() {
		boxes = append(boxes, e.Controller().Bounds())
	}
	if len(boxes) == 0 {
		return math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1}
	}

	lo, hi := boxes[0].Min, boxes[0].Max
	for _, b := range boxes[1:] {
		lo = math.Vec3{X: min(lo.X, b.Min.X), Y: min(lo.Y, b.Min.Y), Z: min(lo.Z, b.Min.Z)}
		hi = math.Vec3{X: max(hi.X, b.Max.X), Y: max(hi.Y, b.Max.Y), Z: max(hi.Z, b.Max.Z)}
	}
	return lo, hi
}
