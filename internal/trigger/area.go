package trigger

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/physics"
)

// Mode selects how an Area turns overlaps into events.
type Mode uint8

const (
	// ModeSensor fires enter, stay and exit for every body.
	ModeSensor Mode = iota
	// ModeSwitch fires enter for the first body in and exit once every
	// body has left.
	ModeSwitch
	// ModeTimedSwitch activates on an entry and reverts after Duration
	// whether or not bodies remain inside.
	ModeTimedSwitch
)

var modeNames = map[Mode]string{
	ModeSensor:      "sensor",
	ModeSwitch:      "switch",
	ModeTimedSwitch: "timed_switch",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode parses a mode name. Empty means sensor.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return ModeSensor, nil
	}
	for m, name := range modeNames {
		if name == key || strings.ReplaceAll(name, "_", "") == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("trigger: unknown mode %q", s)
}

// EventKind is the kind of a trigger event.
type EventKind uint8

const (
	EventEnter EventKind = iota
	EventStay
	EventExit
)

func (k EventKind) String() string {
	switch k {
	case EventEnter:
		return "enter"
	case EventStay:
		return "stay"
	case EventExit:
		return "exit"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// ParseEventKind parses "enter", "stay" or "exit".
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enter":
		return EventEnter, nil
	case "stay":
		return EventStay, nil
	case "exit":
		return EventExit, nil
	}
	return 0, fmt.Errorf("trigger: unknown event kind %q", s)
}

// Event is delivered to area listeners.
type Event struct {
	Kind  EventKind
	Area  *Area
	Body  Body
	Frame uint64
}

// Listener receives area events.
type Listener interface {
	OnTrigger(ev Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev Event)

// OnTrigger calls f.
func (f ListenerFunc) OnTrigger(ev Event) { f(ev) }

// AreaConfig describes an Area.
type AreaConfig struct {
	ID   string
	Box  physics.AABB
	Mode Mode
	// Tags filters bodies by tag. Empty accepts every body.
	Tags []string
	// Duration is the TimedSwitch activation length in seconds.
	Duration float32
}

// Area is a trigger volume.
type Area struct {
	cfg AreaConfig
	log *zap.Logger

	enabled   bool
	inside    []Body
	active    bool
	activator Body
	remaining float32

	listeners []Listener
}

// NewArea creates an enabled area. log may be nil.
func NewArea(cfg AreaConfig, log *zap.Logger) *Area {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Duration < 0 {
		cfg.Duration = 0
	}
	return &Area{
		cfg:     cfg,
		log:     log.With(zap.String("area", cfg.ID)),
		enabled: true,
	}
}

// ID returns the area identifier.
func (a *Area) ID() string { return a.cfg.ID }

// Box returns the trigger volume.
func (a *Area) Box() physics.AABB { return a.cfg.Box }

// Mode returns the trigger mode.
func (a *Area) Mode() Mode { return a.cfg.Mode }

// Active reports whether a switch area is latched on.
func (a *Area) Active() bool { return a.active }

// Inside returns the bodies inside the area after the last update.
func (a *Area) Inside() []Body { return a.inside }

// Enabled reports whether the area reacts to bodies.
func (a *Area) Enabled() bool { return a.enabled }

// SetEnabled toggles the area. Disabling resets it without events.
func (a *Area) SetEnabled(on bool) {
	if !on {
		a.Reset()
	}
	a.enabled = on
}

// Reset forgets every body and latch without firing events.
func (a *Area) Reset() {
	a.inside = nil
	a.active = false
	a.activator = nil
	a.remaining = 0
}

// AddListener registers l.
func (a *Area) AddListener(l Listener) {
	if l != nil {
		a.listeners = append(a.listeners, l)
	}
}

// Accepts reports whether b passes the tag filter.
func (a *Area) Accepts(b Body) bool {
	return len(a.cfg.Tags) == 0 || slices.Contains(a.cfg.Tags, b.Tag())
}

// Update recomputes which bodies are inside and fires the events the mode
// calls for.
func (a *Area) Update(frame uint64, dt float32, bodies []Body) {
	if !a.enabled {
		return
	}

	var now, entered []Body
	for _, b := range bodies {
		if b == nil || !a.Accepts(b) || !a.cfg.Box.Overlaps(b.Bounds()) {
			continue
		}
		now = append(now, b)
		if !containsBody(a.inside, b) {
			entered = append(entered, b)
		}
	}
	var left []Body
	for _, b := range a.inside {
		if !containsBody(now, b) {
			left = append(left, b)
		}
	}
	a.inside = now

	switch a.cfg.Mode {
	case ModeSensor:
		for _, b := range left {
			a.fire(EventExit, frame, b)
		}
		for _, b := range now {
			if containsBody(entered, b) {
				a.fire(EventEnter, frame, b)
			} else {
				a.fire(EventStay, frame, b)
			}
		}

	case ModeSwitch:
		if !a.active && len(now) > 0 {
			a.active = true
			a.activator = now[0]
			a.fire(EventEnter, frame, now[0])
			return
		}
		if a.active && len(now) == 0 {
			last := a.activator
			if len(left) > 0 {
				last = left[len(left)-1]
			}
			a.active = false
			a.activator = nil
			a.fire(EventExit, frame, last)
			return
		}
		for _, b := range now {
			a.fire(EventStay, frame, b)
		}

	case ModeTimedSwitch:
		if a.active {
			a.remaining -= dt
			if a.remaining <= 0 {
				b := a.activator
				a.active = false
				a.activator = nil
				a.remaining = 0
				a.fire(EventExit, frame, b)
				return
			}
			for _, b := range now {
				a.fire(EventStay, frame, b)
			}
			return
		}
		if len(entered) > 0 {
			a.active = true
			a.activator = entered[0]
			a.remaining = a.cfg.Duration
			a.fire(EventEnter, frame, entered[0])
		}
	}
}

// Release drops b from the area as if it had left, firing exit events.
// It is used when a body is destroyed while inside.
func (a *Area) Release(frame uint64, b Body) {
	if !containsBody(a.inside, b) {
		return
	}
	a.inside = slices.DeleteFunc(a.inside, func(x Body) bool { return x == b })
	switch a.cfg.Mode {
	case ModeSensor:
		a.fire(EventExit, frame, b)
	case ModeSwitch:
		if a.active && len(a.inside) == 0 {
			a.active = false
			a.activator = nil
			a.fire(EventExit, frame, b)
		}
	case ModeTimedSwitch:
		if a.activator == b {
			a.activator = nil
		}
	}
}

func (a *Area) fire(kind EventKind, frame uint64, b Body) {
	ev := Event{Kind: kind, Area: a, Body: b, Frame: frame}
	if ce := a.log.Check(zap.DebugLevel, "trigger event"); ce != nil {
		bodyID := ""
		if b != nil {
			bodyID = b.ID()
		}
		ce.Write(zap.Stringer("kind", kind), zap.String("body", bodyID))
	}
	for _, l := range a.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					a.log.Error("trigger listener panicked", zap.Any("panic", r))
				}
			}()
			l.OnTrigger(ev)
		}()
	}
}

func containsBody(list []Body, b Body) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}
