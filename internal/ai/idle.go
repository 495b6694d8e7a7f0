package ai

// idleState rests in place. Walking enemies count down TimeInIdle and
// then raise Timer; others hold position indefinitely.
type idleState struct {
	remaining float32
}

func (s *idleState) ID() StateID { return StateIdle }

func (s *idleState) Enter(e *Enemy) {
	s.remaining = e.params.Idle.TimeInIdle
}

func (s *idleState) Update(e *Enemy, dt float32) {
	e.applyGravity(dt)
	if e.checkGoAway() {
		return
	}
	if !e.common.Walking {
		return
	}
	s.remaining -= dt
	if s.remaining <= 0 {
		e.flags.Timer = true
	}
}

func (s *idleState) Exit(e *Enemy) {
	e.flags.Clear()
}
