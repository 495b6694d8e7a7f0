package ai

import (
	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/ballistic"
	"github.com/Faultbox/drops/pkg/math"
)

// attackState turns to a rotation fixed on entry and strikes once when
// the normalized attack time reaches the attack moment.
type attackState struct {
	elapsed  float32
	done     bool
	rotation math.Quat
}

func (s *attackState) ID() StateID { return StateAttack }

func (s *attackState) Enter(e *Enemy) {
	s.elapsed = 0
	s.done = false
	s.rotation = e.rotation

	drop := e.common.ValidDrop()
	if drop == nil {
		return
	}
	to := drop.Controller().Position().Sub(e.Position())
	if e.params.Attack.YawOnly {
		to = flatten(to)
	}
	if !to.IsZero() {
		s.rotation = math.LookRotation(to, math.Up)
	}
}

func (s *attackState) Update(e *Enemy, dt float32) {
	e.applyGravity(dt)
	if e.checkGoAway() {
		return
	}

	p := e.params.Attack
	e.rotation = e.rotation.RotateTowards(s.rotation, e.common.RotationSpeed*dt)

	drop := e.common.ValidDrop()
	if drop != nil && p.Move && p.Speed > 0 {
		to := flatten(drop.Controller().Position().Sub(e.Position()))
		if dist := to.Length(); dist > e.common.ToleranceDistanceToGoal {
			e.ctrl.Move(to.Scale(min(p.Speed*dt, dist) / dist))
		}
	}

	s.elapsed += dt
	normalized := float32(1)
	if p.Duration > 0 {
		normalized = s.elapsed / p.Duration
	}

	if !s.done && normalized >= p.Moment {
		s.done = true
		if drop != nil {
			e.strike(drop, s.rotation)
		}
	}

	e.flags.AirAttack = !e.ctrl.Grounded()
	if normalized >= 1 {
		e.flags.Timer = true
	}
}

func (s *attackState) Exit(e *Enemy) {
	e.flags.Clear()
	e.flags.AirAttack = false
}

// strike stops the target and repels it toward the landing point offset
// from the enemy in its attack frame.
func (e *Enemy) strike(target Target, rotation math.Quat) {
	p := e.params.Attack
	tc := target.Controller()
	tc.Stop()

	landing := e.Position().Add(rotation.Rotate(p.RepelOffset))
	v, err := ballistic.ComputeLaunchVelocityToward(tc.Position(), landing, p.LaunchAngle, tc.Gravity())
	if err != nil {
		e.log.Warn("repel trajectory unreachable",
			zap.String("target", target.ID()), zap.Error(err))
		return
	}
	tc.SendFlying(v, physics.FlyingOptions{ResetVelocity: true, LoseControl: p.LoseControl})

	e.log.Debug("attack", zap.String("target", target.ID()),
		zap.Float32("vx", v.X), zap.Float32("vy", v.Y), zap.Float32("vz", v.Z))
	e.notify(func(l Listener) { l.OnAttack(e, target, v) })
}
