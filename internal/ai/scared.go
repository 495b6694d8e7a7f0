package ai

// scaredState flees from the drop for a fixed duration.
type scaredState struct {
	elapsed float32
}

func (s *scaredState) ID() StateID { return StateScared }

func (s *scaredState) Enter(e *Enemy) {
	s.elapsed = 0
	drop := e.common.ValidDrop()
	limit := e.common.SizeLimitDrop
	e.notify(func(l Listener) { l.OnBeingScared(e, drop, limit) })
	e.flags.GoAway = false
}

func (s *scaredState) Update(e *Enemy, dt float32) {
	e.applyGravity(dt)
	p := e.params.Scared

	if drop := e.common.ValidDrop(); drop != nil && p.Speed > 0 {
		away := flatten(e.Position().Sub(drop.Controller().Position()))
		if away.IsZero() {
			away = flatten(e.rotation.Forward()).Neg()
		}
		if !away.IsZero() {
			delta := away.Normalize().Scale(p.Speed * dt)
			e.ctrl.Move(delta)
			e.turnTowards(delta, e.common.RotationSpeed*dt)
		}
	}

	s.elapsed += dt
	if s.elapsed >= p.Duration {
		e.flags.Timer = true
	}
}

func (s *scaredState) Exit(e *Enemy) {
	e.flags.Clear()
}
