package ai

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/path"
	"github.com/Faultbox/drops/pkg/math"
)

// patrolState implements Walking and Flying. Walkers measure distance on
// the horizontal plane and re-check the drop size; flyers use full 3D
// distance and leave size checks to other states.
type patrolState struct {
	id     StateID
	flying bool

	elapsed float32
	halted  bool
}

func (s *patrolState) ID() StateID { return s.id }

func (s *patrolState) tuning(e *Enemy) (speed, rotVel, untilIdle float32) {
	if s.flying {
		p := e.params.Flying
		return p.Speed, p.RotationVelocity, p.TimeUntilIdle
	}
	p := e.params.Walking
	return p.Speed, p.RotationVelocity, p.TimeUntilIdle
}

func (s *patrolState) Enter(e *Enemy) {
	s.elapsed = 0
	s.halted = false
	speed, rotVel, _ := s.tuning(e)
	e.common.deriveTolerances(speed, rotVel, e.tickDt)
}

func (s *patrolState) Update(e *Enemy, dt float32) {
	e.applyGravity(dt)
	if !s.flying && e.checkGoAway() {
		return
	}

	speed, rotVel, untilIdle := s.tuning(e)
	s.elapsed += dt

	var settled bool
	if e.common.Walking && e.route != nil {
		settled = s.follow(e, dt, speed, rotVel)
	} else {
		settled = s.returnHome(e, dt, speed, rotVel)
	}

	if untilIdle > 0 && settled && s.elapsed >= untilIdle {
		e.flags.Timer = true
	}
}

func (s *patrolState) Exit(e *Enemy) {
	e.flags.Clear()
}

// follow heads for the route goal and advances the route on arrival.
// It reports whether the enemy stands on a waypoint.
func (s *patrolState) follow(e *Enemy, dt, speed, rotVel float32) bool {
	goal := e.route.Goal()
	to := s.offset(e.Position(), goal.Position)
	if to.Length() > e.common.ToleranceDistanceToGoal {
		s.step(e, to, dt, speed, rotVel)
		return false
	}
	if s.halted {
		return true
	}
	if _, err := e.route.Advance(); err != nil {
		if errors.Is(err, path.ErrDeadEnd) {
			s.halted = true
			e.log.Debug("route dead end reached")
		} else {
			e.log.Warn("route advance failed", zap.Error(err))
		}
	}
	return true
}

// returnHome walks back to the initial pose and then turns in place to the
// initial rotation. It reports whether both tolerances are met.
func (s *patrolState) returnHome(e *Enemy, dt, speed, rotVel float32) bool {
	to := s.offset(e.Position(), e.common.InitialPositionEnemy)
	if to.Length() > e.common.ToleranceDistanceToGoal {
		s.step(e, to, dt, speed, rotVel)
		return false
	}
	e.rotation = e.rotation.RotateTowards(e.common.InitialRotationEnemy, rotVel*dt)
	return e.rotation.Angle(e.common.InitialRotationEnemy) <= e.common.ToleranceDegreeToGoal
}

// step moves up to speed*dt along to, turning toward the movement delta.
func (s *patrolState) step(e *Enemy, to math.Vec3, dt, speed, rotVel float32) {
	if to.IsZero() || speed <= 0 {
		return
	}
	from := e.Position()
	delta := from.MoveTowards(from.Add(to), speed*dt).Sub(from)
	e.ctrl.Move(delta)
	if delta.Length() >= e.common.MinimumWalkingDistance {
		e.turnTowards(delta, rotVel*dt)
	}
}

func (s *patrolState) offset(from, to math.Vec3) math.Vec3 {
	d := to.Sub(from)
	if s.flying {
		return d
	}
	return flatten(d)
}
