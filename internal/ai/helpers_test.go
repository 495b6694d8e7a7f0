package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drops/internal/path"
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

type fakeDrop struct {
	id    string
	tag   string
	alive bool
	size  int
	ctrl  *physics.Controller
}

func newFakeDrop(id string, pos math.Vec3, size int) *fakeDrop {
	return &fakeDrop{
		id:    id,
		tag:   PlayerTag,
		alive: true,
		size:  size,
		ctrl:  physics.NewController(id, nil, pos, physics.DefaultConfig()),
	}
}

func (d *fakeDrop) ID() string                      { return d.id }
func (d *fakeDrop) Tag() string                     { return d.tag }
func (d *fakeDrop) Alive() bool                     { return d.alive }
func (d *fakeDrop) Size() int                       { return d.size }
func (d *fakeDrop) Controller() *physics.Controller { return d.ctrl }

type recordingListener struct {
	NopListener
	beginChase int
	endChase   int
	attacks    []math.Vec3
	scared     []int
	changes    [][2]StateID
}

func (l *recordingListener) OnBeginChase(*Enemy) { l.beginChase++ }
func (l *recordingListener) OnEndChase(*Enemy)   { l.endChase++ }

func (l *recordingListener) OnAttack(_ *Enemy, _ Target, v math.Vec3) {
	l.attacks = append(l.attacks, v)
}

func (l *recordingListener) OnBeingScared(_ *Enemy, _ Target, limit int) {
	l.scared = append(l.scared, limit)
}

func (l *recordingListener) OnStateAnimationChange(_ *Enemy, prev, next StateID) {
	l.changes = append(l.changes, [2]StateID{prev, next})
}

type panicListener struct{ NopListener }

func (panicListener) OnStateAnimationChange(*Enemy, StateID, StateID) { panic("listener bug") }

func floatingConfig() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.UseGravity = false
	return cfg
}

// newEnemy builds a non-walking enemy at pos without gravity.
func newEnemy(t *testing.T, pos math.Vec3, mutate func(*Config)) *Enemy {
	t.Helper()
	cfg := Config{
		ID:            "slime",
		RotationSpeed: 180,
		InitialState:  StateIdle,
		Params:        DefaultParameters(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	ctrl := physics.NewController(cfg.ID, nil, pos, floatingConfig())
	var route path.Traversal
	if cfg.Walking {
		p, err := path.New([]path.Waypoint{
			{Position: pos, Rotation: math.QuatIdentity()},
			{Position: pos.Add(math.Vec3{X: 5}), Rotation: math.QuatIdentity()},
		}, path.Options{Mode: path.ModeBackAndForward, ReverseAtEnd: true})
		require.NoError(t, err)
		route = p
	}
	e, err := NewEnemy(cfg, ctrl, route)
	require.NoError(t, err)
	return e
}

// run ticks the enemy and integrates its body n times.
func run(e *Enemy, n int, dt float32) {
	for i := 0; i < n; i++ {
		e.Tick(dt)
		e.Controller().Step(dt)
	}
}

func mustTable(t *testing.T, raw map[string]map[string]string) Table {
	t.Helper()
	table, err := ParseTable(raw)
	require.NoError(t, err)
	return table
}
