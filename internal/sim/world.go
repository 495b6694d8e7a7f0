// Package sim runs the frame-stepped simulation: drops, enemies and the
// scenario elements acting on them, advanced in a fixed order each tick.
//
// A World is single-threaded. Every entity update is isolated: a panic is
// logged, the entity is faulted and skipped from then on, and the rest of
// the tick proceeds.
package sim

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/ai"
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/internal/scenario"
	"github.com/Faultbox/drops/internal/trigger"
	"github.com/Faultbox/drops/pkg/math"
)

var (
	// ErrDuplicateID is returned when an entity ID is already taken.
	ErrDuplicateID = errors.New("sim: duplicate id")
	// ErrDestroyed is returned for operations on a destroyed drop.
	ErrDestroyed = errors.New("sim: drop destroyed")
	// ErrTooSmall is returned when splitting a size-1 drop.
	ErrTooSmall = errors.New("sim: drop too small to split")
	// ErrEntityFault records a panic inside an entity update.
	ErrEntityFault = errors.New("sim: entity fault")
)

// Updater is a per-tick element such as a water zone timer.
type Updater interface {
	Update(dt float32)
}

// Options configures a World.
type Options struct {
	// TickDt is the fixed tick in seconds.
	TickDt float32
	// Gravity magnitude applied to every body.
	Gravity float32
	Logger  *zap.Logger
}

// DefaultOptions returns a 60 Hz world under standard gravity.
func DefaultOptions() Options {
	return Options{TickDt: 1.0 / 60, Gravity: 9.8}
}

type element struct {
	id string
	u  Updater
}

type cannon struct {
	id     string
	cannon *scenario.Cannon
}

// World owns every simulated entity.
type World struct {
	log     *zap.Logger
	tickDt  float32
	gravity float32

	collision *physics.World
	drops     []*Drop
	enemies   []*ai.Enemy
	areas     []*trigger.Area
	elements  []element
	waters    []*scenario.WaterRepulsion
	cannons   []cannon

	ids    map[string]bool
	faults map[string]error
	frame  uint64
	time   float64
	stats  *eventLog

	bodies []trigger.Body
}

// New creates an empty world.
func New(opts Options) *World {
	if opts.TickDt <= 0 {
		opts.TickDt = DefaultOptions().TickDt
	}
	if opts.Gravity < 0 {
		opts.Gravity = -opts.Gravity
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		log:       log,
		tickDt:    opts.TickDt,
		gravity:   opts.Gravity,
		collision: physics.NewWorld(),
		ids:       make(map[string]bool),
		faults:    make(map[string]error),
		stats:     newEventLog(log),
	}
}

// TickDt returns the fixed tick.
func (w *World) TickDt() float32 { return w.tickDt }

// Gravity returns the gravity magnitude.
func (w *World) Gravity() float32 { return w.gravity }

// Frame returns the number of completed ticks.
func (w *World) Frame() uint64 { return w.frame }

// Time returns the simulated seconds elapsed.
func (w *World) Time() float64 { return w.time }

// Collision returns the static collision world.
func (w *World) Collision() *physics.World { return w.collision }

// Drops returns the live drops.
func (w *World) Drops() []*Drop { return w.drops }

// Enemies returns the enemies.
func (w *World) Enemies() []*ai.Enemy { return w.enemies }

// Areas returns the trigger areas.
func (w *World) Areas() []*trigger.Area { return w.areas }

// Drop returns the live drop with the given ID, or nil.
func (w *World) Drop(id string) *Drop {
	for _, d := range w.drops {
		if d.id == id {
			return d
		}
	}
	return nil
}

// Enemy returns the enemy with the given ID, or nil.
func (w *World) Enemy(id string) *ai.Enemy {
	for _, e := range w.enemies {
		if e.ID() == id {
			return e
		}
	}
	return nil
}

// Fault returns the error that faulted the entity, or nil.
func (w *World) Fault(id string) error { return w.faults[id] }

// Faults returns the IDs of every faulted entity.
func (w *World) Faults() []string {
	ids := make([]string, 0, len(w.faults))
	for id := range w.faults {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (w *World) claim(id string) error {
	if id == "" || w.ids[id] {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	w.ids[id] = true
	return nil
}

// NewController creates a body in this world's collision space under its
// gravity.
func (w *World) NewController(id string, pos, halfExtents math.Vec3) *physics.Controller {
	cfg := physics.DefaultConfig()
	cfg.HalfExtents = halfExtents
	cfg.Gravity = w.gravity
	cfg.Logger = w.log.Named("physics")
	return physics.NewController(id, w.collision, pos, cfg)
}

// AddCollider registers static geometry.
func (w *World) AddCollider(c *physics.Collider) error {
	if err := w.claim(c.ID); err != nil {
		return err
	}
	w.collision.Add(c)
	return nil
}

// AddDrop spawns a drop of the given size.
func (w *World) AddDrop(id string, pos math.Vec3, size int) (*Drop, error) {
	if size < 1 {
		return nil, fmt.Errorf("sim: drop %q: size %d", id, size)
	}
	if err := w.claim(id); err != nil {
		return nil, err
	}
	d := &Drop{
		id:    id,
		size:  size,
		alive: true,
		ctrl:  w.NewController(id, pos, dropExtents(size)),
	}
	w.drops = append(w.drops, d)
	return d, nil
}

// AddEnemy registers an enemy built on a controller from NewController.
func (w *World) AddEnemy(e *ai.Enemy) error {
	if err := w.claim(e.ID()); err != nil {
		return err
	}
	e.AddListener(w.stats)
	w.enemies = append(w.enemies, e)
	return nil
}

// AddArea registers a trigger area updated against the live drops. An
// area may share the ID of the element it belongs to.
func (w *World) AddArea(a *trigger.Area) {
	w.areas = append(w.areas, a)
}

// AddElement registers a per-tick updater under id.
func (w *World) AddElement(id string, u Updater) error {
	if err := w.claim(id); err != nil {
		return err
	}
	w.elements = append(w.elements, element{id: id, u: u})
	if water, ok := u.(*scenario.WaterRepulsion); ok {
		w.waters = append(w.waters, water)
	}
	return nil
}

// AddCannon records a cannon for trajectory previews. The cannon fires
// through the area it is bound to.
func (w *World) AddCannon(id string, c *scenario.Cannon) {
	w.cannons = append(w.cannons, cannon{id: id, cannon: c})
}

// PredictTrajectories samples the arc of every cannon against the static
// geometry. Cannons whose target is unreachable are left out.
func (w *World) PredictTrajectories() map[string][]math.Vec3 {
	out := make(map[string][]math.Vec3, len(w.cannons))
	for _, c := range w.cannons {
		pts, err := c.cannon.PredictTrajectory(w.gravity, w.collision)
		if err != nil {
			continue
		}
		out[c.id] = pts
	}
	return out
}

// Fuse merges b into a. b is destroyed and removed immediately.
func (w *World) Fuse(a, b *Drop) error {
	if a == b {
		return fmt.Errorf("sim: drop %q cannot fuse with itself", a.id)
	}
	if !a.alive || !b.alive {
		return ErrDestroyed
	}
	a.Resize(a.size + b.size)
	w.Destroy(b)
	w.log.Debug("drops fused", zap.String("drop", a.id), zap.String("absorbed", b.id), zap.Int("size", a.size))
	return nil
}

// Split detaches half of d (rounded down) as a new drop beside it,
// moving with d's velocity.
func (w *World) Split(d *Drop, id string) (*Drop, error) {
	if !d.alive {
		return nil, ErrDestroyed
	}
	if d.size < 2 {
		return nil, fmt.Errorf("%w: %q has size %d", ErrTooSmall, d.id, d.size)
	}
	half := d.size / 2
	offset := dropExtents(d.size - half).X + dropExtents(half).X
	child, err := w.AddDrop(id, d.Position().Add(math.Vec3{X: offset}), half)
	if err != nil {
		return nil, err
	}
	d.Resize(d.size - half)
	child.ctrl.SetVelocity(d.ctrl.Velocity())
	w.log.Debug("drop split", zap.String("drop", d.id), zap.String("child", id), zap.Int("size", d.size))
	return child, nil
}

// Destroy destroys d and removes it from the world, firing exit events on
// the areas it was inside and cancelling its pending expulsions.
func (w *World) Destroy(d *Drop) {
	if d.alive {
		d.destroy()
	}
	w.release(d)
}

func (w *World) release(d *Drop) {
	i := slices.Index(w.drops, d)
	if i < 0 {
		return
	}
	for _, a := range w.areas {
		a.Release(w.frame, d)
	}
	for _, water := range w.waters {
		water.Cancel(d.id)
	}
	w.drops = slices.Delete(w.drops, i, i+1)
	delete(w.ids, d.id)
}

// Step advances the world one tick:
//
//  1. enemy AI
//  2. trigger areas against the live drops
//  3. enemy contacts with drops
//  4. element timers
//  5. physics for drops, then enemies
//  6. removal of destroyed drops
func (w *World) Step() {
	dt := w.tickDt
	w.frame++

	for _, e := range w.enemies {
		w.guard(e.ID(), func() { e.Tick(dt) })
	}

	w.bodies = w.bodies[:0]
	for _, d := range w.drops {
		if d.alive {
			w.bodies = append(w.bodies, d)
		}
	}
	for _, a := range w.areas {
		w.guard(a.ID(), func() { a.Update(w.frame, dt, w.bodies) })
	}

	for _, e := range w.enemies {
		box := e.Controller().Bounds()
		w.guard(e.ID(), func() {
			for _, d := range w.drops {
				if d.alive && box.Overlaps(d.Bounds()) {
					e.OnTrigger(d)
				}
			}
		})
	}

	for _, el := range w.elements {
		w.guard(el.id, func() { el.u.Update(dt) })
	}

	for _, d := range w.drops {
		if d.alive {
			w.guard(d.id, func() { d.ctrl.Step(dt) })
		}
	}
	for _, e := range w.enemies {
		w.guard(e.ID(), func() { e.Controller().Step(dt) })
	}

	for i := len(w.drops) - 1; i >= 0; i-- {
		if d := w.drops[i]; !d.alive {
			w.release(d)
		}
	}
	w.time += float64(dt)
}

// Run advances n ticks.
func (w *World) Run(n int) {
	for range n {
		w.Step()
	}
}

// guard runs fn for entity id unless the entity is faulted. A panic faults
// the entity.
func (w *World) guard(id string, fn func()) {
	if _, faulted := w.faults[id]; faulted {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.faults[id] = fmt.Errorf("%w: %s: %v", ErrEntityFault, id, r)
			w.log.Error("entity faulted",
				zap.String("entity", id),
				zap.Uint64("frame", w.frame),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	fn()
}
