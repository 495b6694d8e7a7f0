package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

func stay(t *testing.T, states ...string) func(*Config) {
	raw := map[string]map[string]string{}
	for _, s := range states {
		raw[s] = map[string]string{}
	}
	return func(c *Config) { c.Table = mustTable(t, raw) }
}

func TestIdle_WalkerRaisesTimer(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, func(c *Config) {
		c.Walking = true
		c.Params.Idle.TimeInIdle = 0.5
	})

	run(e, 4, 0.1)
	assert.Equal(t, StateIdle, e.State())
	run(e, 2, 0.1)
	assert.Equal(t, StateWalking, e.State())
}

func TestIdle_NonWalkerHoldsPosition(t *testing.T) {
	e := newEnemy(t, math.Vec3{X: 1}, nil)
	run(e, 100, 0.1)
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, math.Vec3{X: 1}, e.Position())
}

func TestIdle_OversizedDropScares(t *testing.T) {
	rec := &recordingListener{}
	e := newEnemy(t, math.Vec3{}, func(c *Config) { c.SizeLimitDrop = 3 })
	e.AddListener(rec)

	e.Detect(newFakeDrop("big", math.Vec3{X: 2}, 4), false)
	e.Tick(0.1)

	assert.Equal(t, StateScared, e.State())
	assert.Equal(t, []int{3}, rec.scared)
	assert.False(t, e.Flags().GoAway)
}

func TestWalking_FollowsRoute(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, func(c *Config) {
		c.Walking = true
		c.InitialState = StateWalking
	})

	// The first tick arrives on waypoint 0 and advances the route.
	run(e, 30, 0.05)

	assert.Equal(t, StateWalking, e.State())
	assert.InDelta(t, 2.9, e.Position().X, 1e-3)
	assert.InDelta(t, 0, e.Position().Z, 1e-6)
	assert.Greater(t, e.Rotation().Forward().X, float32(0.99))
}

func TestWalking_ReturnsHomeThenIdles(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, func(c *Config) {
		c.Params.Walking.TimeUntilIdle = 0.5
	})
	require.NoError(t, e.Transition(StateWalking))
	e.Controller().SetPosition(math.Vec3{X: 1})

	run(e, 40, 0.05)

	assert.Equal(t, StateIdle, e.State())
	assert.InDelta(t, 0, e.Position().X, 0.05)
	assert.Less(t, e.Rotation().Angle(math.QuatIdentity()), float32(1))
}

func TestWalking_LongTickStopsOnHomeAtHeight(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, nil)
	require.NoError(t, e.Transition(StateWalking))
	e.Controller().SetPosition(math.Vec3{X: 0.3, Y: 2})

	// One second at speed 2 would overshoot home by 1.7.
	run(e, 1, 1)

	assert.InDelta(t, 0, e.Position().X, 1e-4)
	assert.InDelta(t, 2, e.Position().Y, 1e-6)
	assert.InDelta(t, 0, e.Position().Z, 1e-6)
}

func TestFlying_UsesFullDistanceAndIgnoresDropSize(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, func(c *Config) {
		c.SizeLimitDrop = 1
		c.Walking = true
		c.InitialState = StateFlying
		c.Params.Flying = FlyingParameters{Speed: 1, RotationVelocity: 360}
	})
	e.Detect(newFakeDrop("big", math.Vec3{Z: 20}, 9), false)
	// Detect would leave Flying; drop it to observe flight only.
	e.flags.Detect = false

	run(e, 3, 0.1)
	assert.False(t, e.Flags().GoAway)
	assert.Equal(t, StateFlying, e.State())
	assert.Greater(t, e.Position().X, float32(0.1))
}

func TestDetect_TurnsTowardDropAndTimesOut(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, nil)
	e.Detect(newFakeDrop("d", math.Vec3{X: 5}, 1), false)
	require.NoError(t, e.Transition(StateDetect))

	target := math.LookRotation(math.Vec3{X: 1}, math.Up)
	before := e.Rotation().Angle(target)
	e.Tick(0.1)
	after := e.Rotation().Angle(target)
	assert.Less(t, after, before)
	assert.Greater(t, after, float32(0))
	assert.Equal(t, math.Vec3{}, e.Position())

	run(e, 10, 0.1)
	assert.Equal(t, StateChase, e.State())
}

func TestDetect_PlayerContactAttacks(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, nil)
	d := newFakeDrop("d", math.Vec3{X: 5}, 1)
	e.Detect(d, false)
	require.NoError(t, e.Transition(StateDetect))

	e.OnTrigger(d)
	e.Tick(0.01)
	assert.Equal(t, StateAttack, e.State())
}

func TestChase_GoAwayPreemptsMovement(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, func(c *Config) {
		c.SizeLimitDrop = 3
		stay(t, "chase")(c)
	})
	e.Detect(newFakeDrop("big", math.Vec3{X: 4}, 3), false)
	require.NoError(t, e.Transition(StateChase))

	run(e, 1, 0.1)

	assert.True(t, e.Flags().GoAway)
	assert.Equal(t, math.Vec3{}, e.Position())
}

func TestChase_GoAwayFlees(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, func(c *Config) { c.SizeLimitDrop = 3 })
	e.Detect(newFakeDrop("big", math.Vec3{X: 4}, 5), false)
	require.NoError(t, e.Transition(StateChase))

	run(e, 1, 0.1)

	assert.Equal(t, StateScared, e.State())
	assert.Equal(t, math.Vec3{}, e.Position())
}

func TestChase_MovesTowardSmallDrop(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, func(c *Config) {
		c.SizeLimitDrop = 3
		stay(t, "chase")(c)
	})
	e.Detect(newFakeDrop("small", math.Vec3{X: 4}, 1), false)
	require.NoError(t, e.Transition(StateChase))

	run(e, 1, 0.1)
	assert.InDelta(t, 0.3, e.Position().X, 1e-5)
	assert.False(t, e.Flags().GoAway)
}

func TestChase_VerticalBias(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, stay(t, "chase"))
	e.Detect(newFakeDrop("d", math.Vec3{X: 2, Y: 2}, 1), false)
	require.NoError(t, e.Transition(StateChase))

	run(e, 1, 0.1)

	// Steering (1, 3, 0) normalized, times speed 3 * 0.1.
	assert.InDelta(t, 0.0948683, e.Position().X, 1e-5)
	assert.InDelta(t, 0.2846050, e.Position().Y, 1e-5)
}

func TestChase_LostDropGivesUp(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, nil)
	require.NoError(t, e.Transition(StateChase))
	e.Tick(0.1)
	assert.Equal(t, StateWalking, e.State())
}

func TestChase_NearOrReachedAttacks(t *testing.T) {
	near := newEnemy(t, math.Vec3{}, nil)
	near.Detect(newFakeDrop("d", math.Vec3{X: 1}, 1), false)
	require.NoError(t, near.Transition(StateChase))
	near.Tick(0.1)
	assert.Equal(t, StateAttack, near.State())

	far := newEnemy(t, math.Vec3{}, nil)
	d := newFakeDrop("d", math.Vec3{X: 10}, 1)
	far.Detect(d, false)
	require.NoError(t, far.Transition(StateChase))
	far.OnTrigger(d)
	far.Tick(0.1)
	assert.Equal(t, StateAttack, far.State())
}

func TestChase_ListenersBracketChase(t *testing.T) {
	rec := &recordingListener{}
	e := newEnemy(t, math.Vec3{}, nil)
	e.AddListener(rec)

	require.NoError(t, e.Transition(StateChase))
	assert.Equal(t, 1, rec.beginChase)
	assert.Equal(t, 0, rec.endChase)

	require.NoError(t, e.Transition(StateIdle))
	assert.Equal(t, 1, rec.endChase)
}

func TestAttack_StrikesOncePerEntry(t *testing.T) {
	rec := &recordingListener{}
	e := newEnemy(t, math.Vec3{}, func(c *Config) {
		c.Params.Attack.Moment = 0.45
		stay(t, "attack")(c)
	})
	e.AddListener(rec)
	d := newFakeDrop("d", math.Vec3{Z: 2}, 1)
	e.Detect(d, false)
	require.NoError(t, e.Transition(StateAttack))

	for i := 0; i < 4; i++ {
		e.Tick(0.1)
	}
	assert.Empty(t, rec.attacks)

	e.Tick(0.1)
	require.Len(t, rec.attacks, 1)
	assert.Greater(t, rec.attacks[0].Z, float32(0))
	assert.True(t, d.ctrl.IsFlying())
	assert.False(t, d.ctrl.ControlEnabled())
	assert.Equal(t, rec.attacks[0], d.ctrl.Velocity())

	for i := 0; i < 20; i++ {
		e.Tick(0.1)
	}
	assert.Len(t, rec.attacks, 1)
	assert.True(t, e.Flags().Timer)

	require.NoError(t, e.Transition(StateIdle))
	require.NoError(t, e.Transition(StateAttack))
	for i := 0; i < 5; i++ {
		e.Tick(0.1)
	}
	assert.Len(t, rec.attacks, 2)
}

func TestAttack_RepelLandsAtOffset(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, stay(t, "attack"))
	d := newFakeDrop("d", math.Vec3{Z: 2}, 1)
	e.Detect(d, false)
	require.NoError(t, e.Transition(StateAttack))
	for i := 0; i < 6; i++ {
		e.Tick(0.1)
	}
	require.True(t, d.ctrl.IsFlying())

	// Integrate the repelled drop until it falls back to its launch height.
	start := d.ctrl.Position()
	for i := 0; i < 5000; i++ {
		d.ctrl.Step(0.001)
		if d.ctrl.Velocity().Y < 0 && d.ctrl.Position().Y <= start.Y {
			break
		}
	}
	assert.InDelta(t, 6, d.ctrl.Position().Z, 0.05)
	assert.InDelta(t, 0, d.ctrl.Position().X, 0.01)
}

func TestAttack_UnreachableRepelIsSkipped(t *testing.T) {
	rec := &recordingListener{}
	e := newEnemy(t, math.Vec3{}, stay(t, "attack"))
	e.AddListener(rec)

	cfg := physics.DefaultConfig()
	cfg.Gravity = 0
	d := newFakeDrop("d", math.Vec3{Z: 2}, 1)
	d.ctrl = physics.NewController("d", nil, math.Vec3{Z: 2}, cfg)
	d.ctrl.SetVelocity(math.Vec3{X: 1})
	e.Detect(d, false)
	require.NoError(t, e.Transition(StateAttack))

	for i := 0; i < 10; i++ {
		e.Tick(0.1)
	}
	assert.Empty(t, rec.attacks)
	assert.False(t, d.ctrl.IsFlying())
	assert.Equal(t, math.Vec3{}, d.ctrl.Velocity())
}

func TestAttack_TimerReturnsToChase(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, nil)
	e.Detect(newFakeDrop("d", math.Vec3{Z: 20}, 1), false)
	require.NoError(t, e.Transition(StateAttack))
	for i := 0; i < 11; i++ {
		e.Tick(0.1)
	}
	assert.Equal(t, StateChase, e.State())
}

func TestAttack_TurnIsCapped(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, func(c *Config) {
		c.RotationSpeed = 100
		stay(t, "attack")(c)
	})
	e.Detect(newFakeDrop("d", math.Vec3{X: 5}, 1), false)
	require.NoError(t, e.Transition(StateAttack))

	e.Tick(0.1)
	assert.InDelta(t, 10, e.Rotation().Angle(math.QuatIdentity()), 0.5)
}

func TestScared_FleesThenRecovers(t *testing.T) {
	e := newEnemy(t, math.Vec3{}, nil)
	e.Detect(newFakeDrop("d", math.Vec3{X: 1}, 1), false)
	require.NoError(t, e.Transition(StateScared))

	run(e, 10, 0.1)
	assert.InDelta(t, -4, e.Position().X, 1e-4)
	assert.Equal(t, StateScared, e.State())

	run(e, 11, 0.1)
	assert.Equal(t, StateWalking, e.State())
}
