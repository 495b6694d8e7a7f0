// Package camera provides the orbit camera of the trajectory viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/drops/pkg/math"
)

// OrbitCamera orbits a centre point at a distance. Angles are radians;
// pitch is measured up from the XZ plane and yaw around +Y from +Z.
type OrbitCamera struct {
	Center   math.Vec3
	Distance float32
	Pitch    float32
	Yaw      float32

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	FovY      float32
	Near, Far float32

	// FollowRate is how fast Follow closes the gap to its target, per second.
	FollowRate float32
}

// NewOrbitCamera returns a camera sized for scenes a few tens of metres across.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        25,
		Pitch:           0.5,
		MinDistance:     2,
		MaxDistance:     500,
		MinPitch:        -1.4,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FovY:            float32(gomath.Pi / 4),
		Near:            0.1,
		Far:             2000,
		FollowRate:      4,
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	pitch, yaw := float64(c.Pitch), float64(c.Yaw)
	offset := math.Vec3{
		X: float32(gomath.Cos(pitch) * gomath.Sin(yaw)),
		Y: float32(gomath.Sin(pitch)),
		Z: float32(gomath.Cos(pitch) * gomath.Cos(yaw)),
	}
	return c.Center.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns the world-to-view transform.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Up)
}

// ProjectionMatrix returns the perspective projection for aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// HandleDrag rotates by a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom scales the distance by a scroll delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the centre relative to the current yaw. Positive
// forward moves into the screen.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01
	sin, cos := float32(gomath.Sin(float64(c.Yaw))), float32(gomath.Cos(float64(c.Yaw)))
	c.Center.X += (-sin*forward + cos*right) * speed
	c.Center.Z += (-cos*forward - sin*right) * speed
	c.Center.Y += up * speed
}

// Follow moves the centre toward target, covering FollowRate*dt of the gap.
func (c *OrbitCamera) Follow(target math.Vec3, dt float32) {
	t := c.FollowRate * dt
	if t >= 1 || t <= 0 {
		c.Center = target
		return
	}
	c.Center = c.Center.Lerp(target, t)
}

// FitToBounds centres the camera on a box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(min, max math.Vec3) {
	c.Center = min.Add(max).Scale(0.5)
	size := max.Sub(min).Length()
	// distance at which a sphere of diameter size fills the vertical fov
	d := size / 2 / float32(gomath.Tan(float64(c.FovY)/2))
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
	c.Pitch = clamp(0.6, c.MinPitch, c.MaxPitch)
	c.Yaw = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
