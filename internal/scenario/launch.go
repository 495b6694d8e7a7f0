// Package scenario implements the level elements that act on characters:
// cannons, jump mushrooms, water, wind tubes and enemy detection zones.
// Elements are trigger actions or listeners; the simulation binds them to
// trigger areas.
package scenario

import (
	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/internal/trigger"
	"github.com/Faultbox/drops/pkg/ballistic"
	"github.com/Faultbox/drops/pkg/math"
)

// CannonConfig describes a cannon.
type CannonConfig struct {
	ID string `yaml:"id"`
	// Mouth is where a loaded character is fired from.
	Mouth  math.Vec3 `yaml:"mouth"`
	Target math.Vec3 `yaml:"target"`
	Angle  float32   `yaml:"angle"`
	// LoseControl suppresses input until the character lands.
	LoseControl bool `yaml:"lose_control"`
}

// Cannon fires characters at a fixed target along a ballistic arc.
type Cannon struct {
	cfg CannonConfig
	log *zap.Logger
}

// NewCannon creates a cannon. log may be nil.
func NewCannon(cfg CannonConfig, log *zap.Logger) *Cannon {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cannon{cfg: cfg, log: log.With(zap.String("cannon", cfg.ID))}
}

// Config returns the cannon description.
func (c *Cannon) Config() CannonConfig { return c.cfg }

// DoAction loads b into the mouth and fires it.
func (c *Cannon) DoAction(b trigger.Body) bool {
	ctrl := controllerOf(b)
	if ctrl == nil {
		return false
	}
	return launch(c.log, ctrl, shot{
		origin:      c.cfg.Mouth,
		target:      c.cfg.Target,
		angle:       c.cfg.Angle,
		loseControl: c.cfg.LoseControl,
		reload:      true,
	})
}

// PredictTrajectory samples the arc a character fired under gravity g
// would follow, stopping at the first segment caster reports blocked.
func (c *Cannon) PredictTrajectory(g float32, caster ballistic.LineCaster) ([]math.Vec3, error) {
	v, err := ballistic.ComputeLaunchVelocityToward(c.cfg.Mouth, c.cfg.Target, c.cfg.Angle, g)
	if err != nil {
		return nil, err
	}
	return ballistic.Sample(c.cfg.Mouth, v, ballistic.SampleOptions{Gravity: g, Caster: caster}), nil
}

// MushroomConfig describes a jump mushroom. With a target the bounce is
// solved ballistically; otherwise Impulse is applied as a velocity.
type MushroomConfig struct {
	ID          string     `yaml:"id"`
	Target      *math.Vec3 `yaml:"target"`
	Angle       float32    `yaml:"angle"`
	Impulse     math.Vec3  `yaml:"impulse"`
	LoseControl bool       `yaml:"lose_control"`
}

// JumpMushroom bounces characters that touch it.
type JumpMushroom struct {
	cfg MushroomConfig
	log *zap.Logger
}

// NewJumpMushroom creates a mushroom. log may be nil.
func NewJumpMushroom(cfg MushroomConfig, log *zap.Logger) *JumpMushroom {
	if log == nil {
		log = zap.NewNop()
	}
	return &JumpMushroom{cfg: cfg, log: log.With(zap.String("mushroom", cfg.ID))}
}

// DoAction bounces b.
func (m *JumpMushroom) DoAction(b trigger.Body) bool {
	ctrl := controllerOf(b)
	if ctrl == nil {
		return false
	}
	if m.cfg.Target == nil {
		if m.cfg.Impulse.IsZero() {
			return false
		}
		ctrl.SendFlying(m.cfg.Impulse, physics.FlyingOptions{ResetVelocity: true, LoseControl: m.cfg.LoseControl})
		return true
	}
	return launch(m.log, ctrl, shot{
		origin:      ctrl.Position(),
		target:      *m.cfg.Target,
		angle:       m.cfg.Angle,
		loseControl: m.cfg.LoseControl,
	})
}

// shot describes one ballistic launch. reload stops the body and places
// it at origin before it is fired.
type shot struct {
	origin, target math.Vec3
	angle          float32
	loseControl    bool
	reload         bool
}

// launch sends ctrl flying from s.origin to s.target. Unreachable targets
// are logged and leave the character untouched.
func launch(log *zap.Logger, ctrl *physics.Controller, s shot) bool {
	v, err := ballistic.ComputeLaunchVelocityToward(s.origin, s.target, s.angle, ctrl.Gravity())
	if err != nil {
		log.Warn("launch target unreachable",
			zap.String("character", ctrl.ID()), zap.Float32("angle", s.angle), zap.Error(err))
		return false
	}
	if s.reload {
		ctrl.Stop()
		ctrl.SetPosition(s.origin)
	}
	ctrl.SendFlying(v, physics.FlyingOptions{ResetVelocity: true, LoseControl: s.loseControl})
	return true
}

func controllerOf(b trigger.Body) *physics.Controller {
	c, ok := b.(trigger.Character)
	if !ok {
		return nil
	}
	return c.Controller()
}
