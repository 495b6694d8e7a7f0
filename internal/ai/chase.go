package ai

import (
	"github.com/Faultbox/drops/pkg/math"
)

// Chase steering weights. The vertical axis dominates so a drop cannot
// escape by climbing.
const (
	chaseHorizontalBias = 0.5
	chaseVerticalBias   = 1.5
)

type chaseState struct {
	elapsed float32
}

func (s *chaseState) ID() StateID { return StateChase }

func (s *chaseState) Enter(e *Enemy) {
	s.elapsed = 0
	e.notify(func(l Listener) { l.OnBeginChase(e) })
}

func (s *chaseState) Update(e *Enemy, dt float32) {
	e.applyGravity(dt)
	// An oversized drop preempts any movement this tick.
	if e.checkGoAway() {
		return
	}

	p := e.params.Chase
	s.elapsed += dt
	if p.GiveUpAfter > 0 && s.elapsed >= p.GiveUpAfter {
		e.flags.Timer = true
	}

	drop := e.common.ValidDrop()
	if drop == nil {
		e.flags.Timer = true
		return
	}

	to := drop.Controller().Position().Sub(e.Position())
	if to.Length() <= p.NearDistance {
		e.flags.Near = true
	}

	steer := math.Vec3{
		X: to.X * chaseHorizontalBias,
		Y: to.Y * chaseVerticalBias,
		Z: to.Z * chaseHorizontalBias,
	}
	if e.common.OnFloor {
		steer.Y = 0
	}
	if steer.IsZero() || p.Speed <= 0 {
		return
	}
	reach := to.Length()
	if e.common.OnFloor {
		reach = flatten(to).Length()
	}
	delta := steer.Normalize().Scale(min(p.Speed*dt, reach))
	e.ctrl.Move(delta)
	e.turnTowards(delta, e.common.RotationSpeed*dt)
}

func (s *chaseState) OnTrigger(e *Enemy, _ Target) {
	e.flags.Reached = true
}

func (s *chaseState) Exit(e *Enemy) {
	e.notify(func(l Listener) { l.OnEndChase(e) })
	e.flags.Clear()
}
