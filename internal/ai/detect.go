package ai

import (
	"github.com/Faultbox/drops/pkg/math"
)

// detectState holds position and eases its facing toward the drop while a
// warning countdown runs.
type detectState struct {
	remaining float32
}

func (s *detectState) ID() StateID { return StateDetect }

func (s *detectState) Enter(e *Enemy) {
	s.remaining = e.params.Detect.TimeWarningDetect
}

func (s *detectState) Update(e *Enemy, dt float32) {
	e.applyGravity(dt)
	if e.checkGoAway() {
		return
	}

	s.remaining -= dt
	if s.remaining <= 0 {
		e.flags.Timer = true
	}

	drop := e.common.ValidDrop()
	if drop == nil {
		return
	}
	to := flatten(drop.Controller().Position().Sub(e.Position()))
	if to.IsZero() {
		return
	}
	target := math.LookRotation(to, math.Up)
	e.rotation = e.rotation.Slerp(target, smoothFactor(e.common.RotationSpeed, dt))
}

func (s *detectState) OnTrigger(e *Enemy, _ Target) {
	e.flags.Reached = true
}

func (s *detectState) Exit(e *Enemy) {
	e.flags.Clear()
}
