package scenario

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drops/internal/ai"
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/internal/trigger"
	"github.com/Faultbox/drops/pkg/ballistic"
	"github.com/Faultbox/drops/pkg/math"
)

type character struct {
	id   string
	size int
	ctrl *physics.Controller
}

func newCharacter(id string, pos math.Vec3) *character {
	return &character{id: id, size: 1, ctrl: physics.NewController(id, nil, pos, physics.DefaultConfig())}
}

func (c *character) ID() string                      { return c.id }
func (c *character) Tag() string                     { return ai.PlayerTag }
func (c *character) Alive() bool                     { return true }
func (c *character) Size() int                       { return c.size }
func (c *character) Controller() *physics.Controller { return c.ctrl }
func (c *character) Bounds() physics.AABB            { return c.ctrl.Bounds() }

type plainBody struct{}

func (plainBody) ID() string           { return "crate" }
func (plainBody) Tag() string          { return "" }
func (plainBody) Bounds() physics.AABB { return physics.AABB{} }

func TestCannonFiresThroughTarget(t *testing.T) {
	c := newCharacter("drop", math.Vec3{X: 3, Y: 2})
	c.ctrl.SetVelocity(math.Vec3{X: -1})
	cannon := NewCannon(CannonConfig{ID: "c1", Target: math.Vec3{X: 10}, Angle: 45, LoseControl: true}, nil)

	require.True(t, cannon.DoAction(c))
	assert.Equal(t, math.Vec3{}, c.ctrl.Position())
	assert.True(t, c.ctrl.IsFlying())
	assert.False(t, c.ctrl.ControlEnabled())

	v := c.ctrl.Velocity()
	assert.Greater(t, v.X, float32(0))
	assert.InDelta(t, gomath.Sqrt(9.8*10), v.Length(), 1e-3)

	const dt = 0.001
	var elapsed float32
	for i := 0; i < 5000; i++ {
		c.ctrl.Step(dt)
		elapsed += dt
		if elapsed > 0.1 && c.ctrl.Position().Y <= 0 {
			break
		}
	}
	assert.InDelta(t, 10, c.ctrl.Position().X, 0.05)
	assert.InDelta(t, 0, c.ctrl.Position().Z, 1e-4)
}

func TestCannonIgnoresPlainBodies(t *testing.T) {
	cannon := NewCannon(CannonConfig{Target: math.Vec3{X: 10}, Angle: 45}, nil)
	assert.False(t, cannon.DoAction(plainBody{}))
}

func TestCannonUnreachableTarget(t *testing.T) {
	c := newCharacter("drop", math.Vec3{X: 3, Y: 2})
	c.ctrl.SetVelocity(math.Vec3{X: -1})
	cannon := NewCannon(CannonConfig{Target: math.Vec3{X: 10}, Angle: 0}, nil)
	assert.False(t, cannon.DoAction(c))
	assert.False(t, c.ctrl.IsFlying())
	assert.Equal(t, math.Vec3{X: 3, Y: 2}, c.ctrl.Position())
	assert.Equal(t, math.Vec3{X: -1}, c.ctrl.Velocity())
}

func TestPredictTrajectory(t *testing.T) {
	cannon := NewCannon(CannonConfig{Target: math.Vec3{X: 10}, Angle: 45}, nil)

	t.Run("open air", func(t *testing.T) {
		pts, err := cannon.PredictTrajectory(9.8, nil)
		require.NoError(t, err)
		assert.Equal(t, math.Vec3{}, pts[0])
		assert.Len(t, pts, int(ballistic.DefaultMaxTime/ballistic.DefaultStep)+1)
	})

	t.Run("stops at ground", func(t *testing.T) {
		world := physics.NewWorld()
		world.Add(&physics.Collider{ID: "ground", Box: physics.AABB{
			Min: math.Vec3{X: -50, Y: -2, Z: -50},
			Max: math.Vec3{X: 50, Y: -0.5, Z: 50},
		}})
		pts, err := cannon.PredictTrajectory(9.8, world)
		require.NoError(t, err)
		require.Len(t, pts, 16)
		assert.Less(t, pts[15].Y, float32(-0.5))
		assert.Greater(t, pts[14].Y, float32(0))
	})

	t.Run("degenerate", func(t *testing.T) {
		flat := NewCannon(CannonConfig{Target: math.Vec3{X: 10}}, nil)
		_, err := flat.PredictTrajectory(9.8, nil)
		assert.ErrorIs(t, err, ballistic.ErrDegenerateTrajectory)
	})
}

func TestJumpMushroom(t *testing.T) {
	t.Run("impulse", func(t *testing.T) {
		c := newCharacter("drop", math.Vec3{})
		c.ctrl.SetVelocity(math.Vec3{X: 2, Y: -3})
		m := NewJumpMushroom(MushroomConfig{Impulse: math.Vec3{Y: 8}}, nil)
		require.True(t, m.DoAction(c))
		assert.Equal(t, math.Vec3{Y: 8}, c.ctrl.Velocity())
		assert.True(t, c.ctrl.ControlEnabled())
	})

	t.Run("targeted", func(t *testing.T) {
		c := newCharacter("drop", math.Vec3{X: 1})
		m := NewJumpMushroom(MushroomConfig{Target: &math.Vec3{X: 1, Z: 6}, Angle: 60, LoseControl: true}, nil)
		require.True(t, m.DoAction(c))
		v := c.ctrl.Velocity()
		assert.InDelta(t, 0, v.X, 1e-5)
		assert.Greater(t, v.Z, float32(0))
		assert.Greater(t, v.Y, v.Z)
		assert.False(t, c.ctrl.ControlEnabled())
	})

	t.Run("nothing authored", func(t *testing.T) {
		m := NewJumpMushroom(MushroomConfig{}, nil)
		assert.False(t, m.DoAction(newCharacter("drop", math.Vec3{})))
	})
}

func waterEvent(kind trigger.EventKind, c *character) trigger.Event {
	return trigger.Event{Kind: kind, Body: c}
}

func TestWaterExpelsAfterDelay(t *testing.T) {
	w := NewWaterRepulsion(WaterConfig{ID: "pond", Delay: 0.5, Target: math.Vec3{X: 4}, Angle: 45}, nil)
	c := newCharacter("drop", math.Vec3{})

	w.OnTrigger(waterEvent(trigger.EventEnter, c))
	w.OnTrigger(waterEvent(trigger.EventEnter, c))
	assert.Equal(t, 1, w.Pending())

	w.Update(0.3)
	assert.False(t, c.ctrl.IsFlying())
	assert.Equal(t, 1, w.Pending())

	w.Update(0.3)
	assert.True(t, c.ctrl.IsFlying())
	assert.False(t, c.ctrl.ControlEnabled())
	assert.Greater(t, c.ctrl.Velocity().X, float32(0))
	assert.Zero(t, w.Pending())
}

func TestWaterUnreachableTargetKeepsMotion(t *testing.T) {
	w := NewWaterRepulsion(WaterConfig{ID: "pond", Delay: 0.1, Target: math.Vec3{X: 4}, Angle: 0}, nil)
	c := newCharacter("drop", math.Vec3{})
	c.ctrl.SetVelocity(math.Vec3{Z: 2})

	w.OnTrigger(waterEvent(trigger.EventEnter, c))
	w.Update(0.2)

	assert.False(t, c.ctrl.IsFlying())
	assert.Equal(t, math.Vec3{Z: 2}, c.ctrl.Velocity())
	assert.Zero(t, w.Pending())
}

func TestWaterCancellation(t *testing.T) {
	w := NewWaterRepulsion(WaterConfig{Delay: 0.5, Target: math.Vec3{X: 4}, Angle: 45}, nil)

	t.Run("exit", func(t *testing.T) {
		c := newCharacter("a", math.Vec3{})
		w.OnTrigger(waterEvent(trigger.EventEnter, c))
		w.OnTrigger(waterEvent(trigger.EventExit, c))
		w.Update(1)
		assert.False(t, c.ctrl.IsFlying())
		assert.Zero(t, w.Pending())
	})

	t.Run("destroyed", func(t *testing.T) {
		c := newCharacter("b", math.Vec3{})
		w.OnTrigger(waterEvent(trigger.EventEnter, c))
		assert.True(t, w.Cancel("b"))
		assert.False(t, w.Cancel("b"))
		w.Update(1)
		assert.False(t, c.ctrl.IsFlying())
	})

	t.Run("reset", func(t *testing.T) {
		c := newCharacter("c", math.Vec3{})
		d := newCharacter("d", math.Vec3{})
		w.OnTrigger(waterEvent(trigger.EventEnter, c))
		w.OnTrigger(waterEvent(trigger.EventEnter, d))
		assert.Equal(t, 2, w.Pending())
		w.Reset()
		w.Update(1)
		assert.False(t, c.ctrl.IsFlying())
		assert.False(t, d.ctrl.IsFlying())
	})
}

func TestWaterExpelsOnlyExpired(t *testing.T) {
	w := NewWaterRepulsion(WaterConfig{Delay: 0.5, Target: math.Vec3{X: 4}, Angle: 45}, nil)
	first := newCharacter("first", math.Vec3{})
	second := newCharacter("second", math.Vec3{})

	w.OnTrigger(waterEvent(trigger.EventEnter, first))
	w.Update(0.3)
	w.OnTrigger(waterEvent(trigger.EventEnter, second))
	w.Update(0.3)

	assert.True(t, first.ctrl.IsFlying())
	assert.False(t, second.ctrl.IsFlying())
	assert.Equal(t, 1, w.Pending())
}

func TestWindTube(t *testing.T) {
	cfg := physics.DefaultConfig()
	cfg.UseGravity = false
	c := &character{id: "drop", ctrl: physics.NewController("drop", nil, math.Vec3{}, cfg)}

	wind := NewWindTube(WindConfig{Direction: math.Vec3{Y: 2}, Strength: 6})
	require.True(t, wind.DoAction(c))
	c.ctrl.Step(0.5)
	assert.InDelta(t, 3, c.ctrl.Velocity().Y, 1e-5)

	calm := NewWindTube(WindConfig{Direction: math.Vec3{Y: 1}})
	assert.False(t, calm.DoAction(c))
}

func TestDetectionZone(t *testing.T) {
	newGuard := func(t *testing.T) *ai.Enemy {
		ctrl := physics.NewController("guard", nil, math.Vec3{}, physics.DefaultConfig())
		e, err := ai.NewEnemy(ai.Config{ID: "guard", InitialState: ai.StateIdle, Params: ai.DefaultParameters()}, ctrl, nil)
		require.NoError(t, err)
		return e
	}
	drop := newCharacter("drop", math.Vec3{X: 2})

	t.Run("detect and lose", func(t *testing.T) {
		e := newGuard(t)
		zone := NewDetectionZone(DetectionConfig{LoseOnExit: true}, e)
		zone.OnTrigger(trigger.Event{Kind: trigger.EventEnter, Body: drop})
		assert.True(t, e.Flags().Detect)
		assert.Equal(t, ai.Target(drop), e.Common().Drop)
		assert.False(t, e.Common().PriorityDrop)

		zone.OnTrigger(trigger.Event{Kind: trigger.EventExit, Body: drop})
		assert.Nil(t, e.Common().Drop)
	})

	t.Run("priority survives exit", func(t *testing.T) {
		e := newGuard(t)
		zone := NewDetectionZone(DetectionConfig{Priority: true, LoseOnExit: true}, e)
		zone.OnTrigger(trigger.Event{Kind: trigger.EventEnter, Body: drop})
		zone.OnTrigger(trigger.Event{Kind: trigger.EventExit, Body: drop})
		assert.True(t, e.Common().PriorityDrop)
		assert.Equal(t, ai.Target(drop), e.Common().Drop)
	})

	t.Run("non targets", func(t *testing.T) {
		e := newGuard(t)
		zone := NewDetectionZone(DetectionConfig{}, e)
		zone.OnTrigger(trigger.Event{Kind: trigger.EventEnter, Body: plainBody{}})
		assert.False(t, e.Flags().Detect)
	})
}
