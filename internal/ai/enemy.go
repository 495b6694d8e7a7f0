// Package ai drives enemies through a closed set of behaviour states.
//
// Each Enemy owns its CommonParameters and Flags. Every tick the active
// state updates and raises flags, then the enemy's transition table picks
// the next state. Flags are cleared whenever a state exits, so a new state
// always starts clean.
package ai

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/path"
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

// DefaultTickDt is the nominal tick used to derive goal tolerances.
const DefaultTickDt = float32(1.0 / 60.0)

// Config describes one enemy.
type Config struct {
	ID  string
	Tag string

	Walking       bool
	OnFloor       bool
	SizeLimitDrop int
	RotationSpeed float32

	InitialState    StateID
	InitialRotation math.Quat

	// TickDt is the nominal simulation tick. Zero uses DefaultTickDt.
	TickDt float32

	Params Parameters
	// Table overrides DefaultTable when set.
	Table Table

	Logger *zap.Logger
}

// Enemy is an AI-driven character.
type Enemy struct {
	id  string
	tag string
	log *zap.Logger

	ctrl   *physics.Controller
	route  path.Traversal
	params Parameters
	table  Table
	tickDt float32

	common   CommonParameters
	flags    Flags
	rotation math.Quat

	states    map[StateID]State
	current   State
	initial   StateID
	started   bool
	listeners []Listener
}

// NewEnemy builds an enemy moving ctrl. route may be nil for enemies that
// never patrol.
func NewEnemy(cfg Config, ctrl *physics.Controller, route path.Traversal) (*Enemy, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("ai: enemy %q has no controller", cfg.ID)
	}
	if cfg.Walking && route == nil {
		return nil, fmt.Errorf("ai: enemy %q walks without a route: %w", cfg.ID, path.ErrEmptyPath)
	}
	if _, ok := stateNames[cfg.InitialState]; !ok {
		return nil, fmt.Errorf("ai: enemy %q initial state: %w", cfg.ID, ErrUnknownState)
	}
	table := cfg.Table
	if table == nil {
		table = DefaultTable()
	}
	if err := table.validate(); err != nil {
		return nil, fmt.Errorf("ai: enemy %q: %w", cfg.ID, err)
	}
	if cfg.Tag == "" {
		cfg.Tag = "Enemy"
	}
	if cfg.TickDt <= 0 {
		cfg.TickDt = DefaultTickDt
	}
	rot := cfg.InitialRotation
	if rot == (math.Quat{}) {
		rot = math.QuatIdentity()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := &Enemy{
		id:       cfg.ID,
		tag:      cfg.Tag,
		log:      log.With(zap.String("entity", cfg.ID)),
		ctrl:     ctrl,
		route:    route,
		params:   cfg.Params,
		table:    table,
		tickDt:   cfg.TickDt,
		rotation: rot,
		initial:  cfg.InitialState,
	}
	e.common = CommonParameters{
		Enemy:                e,
		Walking:              cfg.Walking,
		OnFloor:              cfg.OnFloor,
		SizeLimitDrop:        cfg.SizeLimitDrop,
		InitialPositionEnemy: ctrl.Position(),
		InitialRotationEnemy: rot,
		RootEntityPosition:   ctrl.Position(),
		RotationSpeed:        cfg.RotationSpeed,
	}
	ctrl.SetUseGravity(cfg.OnFloor)

	e.states = map[StateID]State{
		StateIdle:    &idleState{},
		StateWalking: &patrolState{id: StateWalking},
		StateFlying:  &patrolState{id: StateFlying, flying: true},
		StateDetect:  &detectState{},
		StateChase:   &chaseState{},
		StateAttack:  &attackState{},
		StateScared:  &scaredState{},
	}
	return e, nil
}

// ID returns the enemy identifier.
func (e *Enemy) ID() string { return e.id }

// Tag returns the enemy tag.
func (e *Enemy) Tag() string { return e.tag }

// Controller returns the body the enemy moves.
func (e *Enemy) Controller() *physics.Controller { return e.ctrl }

// Position returns the body position.
func (e *Enemy) Position() math.Vec3 { return e.ctrl.Position() }

// Rotation returns the facing.
func (e *Enemy) Rotation() math.Quat { return e.rotation }

// Common exposes the shared state context.
func (e *Enemy) Common() *CommonParameters { return &e.common }

// Flags returns a copy of the current flags.
func (e *Enemy) Flags() Flags { return e.flags }

// Params returns the per-state tuning.
func (e *Enemy) Params() Parameters { return e.params }

// Route returns the traversal the enemy patrols, or nil.
func (e *Enemy) Route() path.Traversal { return e.route }

// State returns the active state, or the initial state before the first tick.
func (e *Enemy) State() StateID {
	if e.current == nil {
		return e.initial
	}
	return e.current.ID()
}

// AddListener registers l.
func (e *Enemy) AddListener(l Listener) {
	if l != nil {
		e.listeners = append(e.listeners, l)
	}
}

// RemoveListener unregisters l.
func (e *Enemy) RemoveListener(l Listener) {
	for i, existing := range e.listeners {
		if existing == l {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

// Start enters the initial state. Tick calls it on first use.
func (e *Enemy) Start() {
	if e.started {
		return
	}
	e.started = true
	e.current = e.states[e.initial]
	e.current.Enter(e)
}

// Tick runs the active state for dt seconds and applies the transition the
// raised flags select.
func (e *Enemy) Tick(dt float32) {
	e.Start()
	e.current.Update(e, dt)

	if d := e.common.ValidDrop(); d != nil {
		e.flags.SizeDrop = d.Size()
	} else {
		e.flags.SizeDrop = 0
	}

	if next, ok := e.table.Next(e.current.ID(), e.flags); ok {
		e.changeState(next)
	}
}

// Transition switches to state to immediately.
func (e *Enemy) Transition(to StateID) error {
	if _, ok := e.states[to]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownState, to)
	}
	e.Start()
	if e.current.ID() != to {
		e.changeState(to)
	}
	return nil
}

func (e *Enemy) changeState(next StateID) {
	prev := e.current.ID()
	e.current.Exit(e)
	e.flags.Clear()
	e.current = e.states[next]
	e.current.Enter(e)

	if ce := e.log.Check(zap.DebugLevel, "state change"); ce != nil {
		ce.Write(zap.Stringer("from", prev), zap.Stringer("to", next))
	}
	e.notify(func(l Listener) { l.OnStateAnimationChange(e, prev, next) })
}

// Detect assigns t as the current drop and raises Detect. A priority drop
// already assigned is only replaced by another priority assignment.
func (e *Enemy) Detect(t Target, priority bool) {
	if t == nil || !t.Alive() {
		return
	}
	current := e.common.ValidDrop()
	if current != nil && e.common.PriorityDrop && !priority && current != t {
		return
	}
	e.common.Drop = t
	e.common.PriorityDrop = priority || (e.common.PriorityDrop && current == t)
	e.flags.Detect = true
}

// Lose releases t if it is the current, non-priority drop.
func (e *Enemy) Lose(t Target) {
	if e.common.Drop == t && !e.common.PriorityDrop {
		e.common.Drop = nil
	}
}

// OnTrigger reports a trigger contact with other. Contacts with the player
// are forwarded to the active state.
func (e *Enemy) OnTrigger(other Target) {
	if other == nil || other.Tag() != PlayerTag || e.current == nil {
		return
	}
	if h, ok := e.current.(triggerHandler); ok {
		h.OnTrigger(e, other)
	}
}

func (e *Enemy) notify(fn func(Listener)) {
	for _, l := range e.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("enemy listener panicked", zap.Any("panic", r))
				}
			}()
			fn(l)
		}()
	}
}

func (e *Enemy) applyGravity(dt float32) {
	if e.common.OnFloor {
		e.ctrl.ApplyGravity(dt)
	}
}

// checkGoAway raises GoAway when the drop is too big to engage.
func (e *Enemy) checkGoAway() bool {
	if e.common.DropTooBig() {
		e.flags.GoAway = true
		return true
	}
	return false
}

// turnTowards rotates the facing toward dir's horizontal heading by at
// most maxDeg degrees.
func (e *Enemy) turnTowards(dir math.Vec3, maxDeg float32) {
	flat := flatten(dir)
	if flat.IsZero() {
		return
	}
	e.rotation = e.rotation.RotateTowards(math.LookRotation(flat, math.Up), maxDeg)
}

func flatten(v math.Vec3) math.Vec3 {
	return v.ProjectOnPlane(math.Up)
}

// smoothFactor is the slerp fraction closing the remaining angle at a rate
// of speedDeg per second.
func smoothFactor(speedDeg, dt float32) float32 {
	if speedDeg <= 0 || dt <= 0 {
		return 0
	}
	return float32(1 - gomath.Exp(-float64(speedDeg)*math.Deg2Rad*float64(dt)))
}

// validate checks every edge targets a known state.
func (t Table) validate() error {
	for from, edges := range t {
		if _, ok := stateNames[from]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownState, from)
		}
		for flag, to := range edges {
			if _, ok := flagNames[flag]; !ok {
				return fmt.Errorf("%w: flag %d", ErrInvalidTransition, flag)
			}
			if _, ok := stateNames[to]; !ok {
				return fmt.Errorf("%w: %s.%s -> %d", ErrUnknownState, from, flag, to)
			}
		}
	}
	return nil
}
