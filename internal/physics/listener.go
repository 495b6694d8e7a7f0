package physics

import (
	gomath "math"

	"github.com/Faultbox/drops/pkg/math"
)

// CollisionInfo is delivered to listeners for every step with contacts.
type CollisionInfo struct {
	PreVelocity  math.Vec3
	PostVelocity math.Vec3
	Hits         []Hit
	Status       Status
}

// ControllerListener receives controller events. Embed
// NopControllerListener to implement only some of them.
type ControllerListener interface {
	OnCollision(c *Controller, info CollisionInfo)
	OnFlyingStarted(c *Controller, velocity math.Vec3)
	OnFlyingStopped(c *Controller, reason StopReason)
}

// NopControllerListener ignores every event.
type NopControllerListener struct{}

func (NopControllerListener) OnCollision(*Controller, CollisionInfo) {}
func (NopControllerListener) OnFlyingStarted(*Controller, math.Vec3) {}
func (NopControllerListener) OnFlyingStopped(*Controller, StopReason) {}

func cosDeg(deg float32) float32 {
	return float32(gomath.Cos(float64(deg) * math.Deg2Rad))
}
