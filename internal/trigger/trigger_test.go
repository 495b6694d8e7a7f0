package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

type body struct {
	id   string
	tag  string
	pos  math.Vec3
	size int
	ctrl *physics.Controller
}

func (b *body) ID() string  { return b.id }
func (b *body) Tag() string { return b.tag }
func (b *body) Size() int   { return b.size }

func (b *body) Bounds() physics.AABB {
	p := b.pos
	if b.ctrl != nil {
		p = b.ctrl.Position()
	}
	return physics.BoxAt(p, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
}

func (b *body) Controller() *physics.Controller { return b.ctrl }

type eventLog struct {
	events []string
}

func (l *eventLog) OnTrigger(ev Event) {
	l.events = append(l.events, ev.Kind.String()+":"+ev.Body.ID())
}

func unitArea(mode Mode, duration float32) *Area {
	return NewArea(AreaConfig{
		ID:       "zone",
		Box:      physics.BoxAt(math.Vec3{}, math.Vec3{X: 2, Y: 2, Z: 2}),
		Mode:     mode,
		Duration: duration,
	}, nil)
}

var (
	in  = math.Vec3{}
	out = math.Vec3{X: 10}
)

func TestPerformer_OnlyOncePerFrame(t *testing.T) {
	calls := 0
	p := NewPerformer("count", ActionFunc(func(Body) bool { calls++; return true }),
		PerformerOptions{OnlyOncePerFrame: true}, nil)
	b := &body{id: "a"}

	assert.True(t, p.Perform(1, b))
	assert.False(t, p.Perform(1, b))
	assert.True(t, p.Perform(2, b))
	assert.Equal(t, 2, calls)
}

func TestPerformer_AutoDisableAfterSuccess(t *testing.T) {
	results := []bool{false, true, true}
	calls := 0
	p := NewPerformer("flaky", ActionFunc(func(Body) bool {
		r := results[calls]
		calls++
		return r
	}), PerformerOptions{AutoDisable: true}, nil)
	b := &body{id: "a"}

	assert.False(t, p.Perform(1, b))
	assert.True(t, p.Enabled())
	assert.True(t, p.Perform(2, b))
	assert.False(t, p.Enabled())
	assert.False(t, p.Perform(3, b))
	assert.Equal(t, 2, calls)
}

func TestPerformer_PanicIsFailure(t *testing.T) {
	p := NewPerformer("bad", ActionFunc(func(Body) bool { panic("boom") }),
		PerformerOptions{AutoDisable: true}, nil)
	var ok bool
	assert.NotPanics(t, func() { ok = p.Perform(1, &body{id: "a"}) })
	assert.False(t, ok)
	assert.True(t, p.Enabled())
}

func TestArea_Sensor(t *testing.T) {
	log := &eventLog{}
	a := unitArea(ModeSensor, 0)
	a.AddListener(log)
	x := &body{id: "x", pos: in}
	y := &body{id: "y", pos: out}

	a.Update(1, 0.1, []Body{x, y})
	a.Update(2, 0.1, []Body{x, y})
	y.pos = in
	a.Update(3, 0.1, []Body{x, y})
	x.pos = out
	a.Update(4, 0.1, []Body{x, y})

	assert.Equal(t, []string{
		"enter:x",
		"stay:x",
		"stay:x", "enter:y",
		"exit:x", "stay:y",
	}, log.events)
}

func TestArea_Switch(t *testing.T) {
	log := &eventLog{}
	a := unitArea(ModeSwitch, 0)
	a.AddListener(log)
	x := &body{id: "x", pos: in}
	y := &body{id: "y", pos: in}

	a.Update(1, 0.1, []Body{x})
	assert.True(t, a.Active())
	a.Update(2, 0.1, []Body{x, y})
	x.pos = out
	a.Update(3, 0.1, []Body{x, y})
	assert.True(t, a.Active())
	y.pos = out
	a.Update(4, 0.1, []Body{x, y})
	assert.False(t, a.Active())

	assert.Equal(t, []string{
		"enter:x",
		"stay:x", "stay:y",
		"stay:y",
		"exit:y",
	}, log.events)
}

func TestArea_TimedSwitchRevertsAndNeedsFreshEntry(t *testing.T) {
	log := &eventLog{}
	a := unitArea(ModeTimedSwitch, 0.25)
	a.AddListener(log)
	x := &body{id: "x", pos: in}

	a.Update(1, 0.1, []Body{x})
	require.True(t, a.Active())
	a.Update(2, 0.1, []Body{x})
	a.Update(3, 0.1, []Body{x})
	a.Update(4, 0.1, []Body{x})
	assert.False(t, a.Active(), "reverts while the body is still inside")

	a.Update(5, 0.1, []Body{x})
	assert.False(t, a.Active())

	x.pos = out
	a.Update(6, 0.1, []Body{x})
	x.pos = in
	a.Update(7, 0.1, []Body{x})
	assert.True(t, a.Active())

	assert.Equal(t, []string{"enter:x", "stay:x", "stay:x", "exit:x", "enter:x"}, log.events)
}

func TestArea_TagFilter(t *testing.T) {
	log := &eventLog{}
	a := NewArea(AreaConfig{
		ID:   "zone",
		Box:  physics.BoxAt(in, math.Vec3{X: 2, Y: 2, Z: 2}),
		Tags: []string{"Player"},
	}, nil)
	a.AddListener(log)

	a.Update(1, 0.1, []Body{&body{id: "rock", tag: "Rock"}, &body{id: "drop", tag: "Player"}})
	assert.Equal(t, []string{"enter:drop"}, log.events)
}

func TestArea_ReleaseFiresExit(t *testing.T) {
	log := &eventLog{}
	a := unitArea(ModeSensor, 0)
	a.AddListener(log)
	x := &body{id: "x", pos: in}

	a.Update(1, 0.1, []Body{x})
	a.Release(2, x)
	a.Update(3, 0.1, nil)

	assert.Equal(t, []string{"enter:x", "exit:x"}, log.events)
}

func TestArea_DisabledIgnoresBodies(t *testing.T) {
	log := &eventLog{}
	a := unitArea(ModeSensor, 0)
	a.AddListener(log)
	a.SetEnabled(false)
	a.Update(1, 0.1, []Body{&body{id: "x", pos: in}})
	assert.Empty(t, log.events)
}

func TestTriggerAction_Dispatch(t *testing.T) {
	var got []string
	record := func(tag string) *Performer {
		return NewPerformer(tag, ActionFunc(func(b Body) bool {
			got = append(got, tag+":"+b.ID())
			return true
		}), PerformerOptions{}, nil)
	}

	ta := &TriggerAction{}
	ta.Bind(record("enter"), EventEnter)
	ta.Bind(record("any"), EventEnter, EventExit)

	a := unitArea(ModeSensor, 0)
	a.AddListener(ta)
	x := &body{id: "x", pos: in}
	a.Update(1, 0.1, []Body{x})
	a.Update(2, 0.1, []Body{x})
	x.pos = out
	a.Update(3, 0.1, []Body{x})

	assert.Equal(t, []string{"enter:x", "any:x", "any:x"}, got)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":             ModeSensor,
		"Switch":       ModeSwitch,
		"timed_switch": ModeTimedSwitch,
		"TimedSwitch":  ModeTimedSwitch,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("latch")
	assert.Error(t, err)
}

func TestParseEventKind(t *testing.T) {
	k, err := ParseEventKind(" Stay ")
	require.NoError(t, err)
	assert.Equal(t, EventStay, k)

	_, err = ParseEventKind("touch")
	assert.Error(t, err)
}
