package physics

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/pkg/math"
)

// ForceMode selects how AddForce interprets its vector.
type ForceMode uint8

const (
	// ForceModeForce is a continuous force, scaled by dt and divided by mass.
	ForceModeForce ForceMode = iota
	// ForceModeAcceleration is a continuous acceleration, scaled by dt.
	ForceModeAcceleration
	// ForceModeImpulse is an instantaneous momentum change, divided by mass.
	ForceModeImpulse
	// ForceModeVelocityChange is an instantaneous velocity change.
	ForceModeVelocityChange
)

func (m ForceMode) String() string {
	switch m {
	case ForceModeForce:
		return "force"
	case ForceModeAcceleration:
		return "acceleration"
	case ForceModeImpulse:
		return "impulse"
	case ForceModeVelocityChange:
		return "velocity_change"
	}
	return fmt.Sprintf("ForceMode(%d)", uint8(m))
}

// Status is the collision state of a controller after its last step.
type Status uint8

const (
	// StatusFalling covers any airborne motion, rising included.
	StatusFalling Status = iota
	// StatusGrounded means the controller rests on walkable ground.
	StatusGrounded
	// StatusSliding means the controller is on slippery ground or
	// sliding down a wall.
	StatusSliding
)

func (s Status) String() string {
	switch s {
	case StatusFalling:
		return "falling"
	case StatusGrounded:
		return "grounded"
	case StatusSliding:
		return "sliding"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// StopReason tells listeners why a flying override ended.
type StopReason uint8

const (
	StopReasonCancelled StopReason = iota
	StopReasonLanded
	StopReasonTimeout
	StopReasonStopped
)

func (r StopReason) String() string {
	switch r {
	case StopReasonCancelled:
		return "cancelled"
	case StopReasonLanded:
		return "landed"
	case StopReasonTimeout:
		return "timeout"
	case StopReasonStopped:
		return "stopped"
	}
	return fmt.Sprintf("StopReason(%d)", uint8(r))
}

// FlyingOptions configures SendFlying.
type FlyingOptions struct {
	// ResetVelocity zeroes the current velocity before the launch is applied.
	ResetVelocity bool
	// LoseControl suppresses Move input until the override ends.
	LoseControl bool
	// Duration in seconds. Zero keeps the override until landing.
	Duration float32
}

// Config holds controller tuning.
type Config struct {
	HalfExtents math.Vec3
	Mass        float32
	// Gravity is the magnitude of gravitational acceleration along -Up.
	Gravity    float32
	UseGravity bool
	Up         math.Vec3
	// SlopeLimit in degrees. Ground whose normal leans further from Up
	// does not count as floor.
	SlopeLimit float32
	Logger     *zap.Logger
}

// DefaultConfig returns a unit-sized controller under standard gravity.
func DefaultConfig() Config {
	return Config{
		HalfExtents: math.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		Mass:        1,
		Gravity:     9.8,
		UseGravity:  true,
		Up:          math.Up,
		SlopeLimit:  45,
	}
}

type flyingState struct {
	active      bool
	loseControl bool
	timed       bool
	remaining   float32
}

// Controller is a character body driven by forces, gravity, kinematic
// input and collisions with a World. Its methods must be called from the
// simulation goroutine.
type Controller struct {
	id  string
	cfg Config
	log *zap.Logger

	world *World

	position math.Vec3
	velocity math.Vec3

	pendingForce math.Vec3
	pendingAccel math.Vec3
	pendingMove  math.Vec3

	gravityApplied bool
	flying         flyingState
	status         Status
	touching       []*Collider

	listeners []ControllerListener
}

// NewController creates a controller at pos. world may be nil for a
// body that never collides.
func NewController(id string, world *World, pos math.Vec3, cfg Config) *Controller {
	if cfg.Mass <= 0 {
		cfg.Mass = 1
	}
	if cfg.Up.IsZero() {
		cfg.Up = math.Up
	}
	cfg.Up = cfg.Up.Normalize()
	if cfg.Gravity < 0 {
		cfg.Gravity = -cfg.Gravity
	}
	if cfg.SlopeLimit <= 0 {
		cfg.SlopeLimit = 45
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		id:       id,
		cfg:      cfg,
		log:      log.With(zap.String("controller", id)),
		world:    world,
		position: pos,
		status:   StatusFalling,
	}
}

// ID returns the controller identifier.
func (c *Controller) ID() string { return c.id }

// Position returns the body centre.
func (c *Controller) Position() math.Vec3 { return c.position }

// SetPosition teleports the body without collision checks.
func (c *Controller) SetPosition(p math.Vec3) { c.position = p }

// Velocity returns the current velocity.
func (c *Controller) Velocity() math.Vec3 { return c.velocity }

// SetVelocity overwrites the velocity.
func (c *Controller) SetVelocity(v math.Vec3) { c.velocity = v }

// Up returns the controller's up axis.
func (c *Controller) Up() math.Vec3 { return c.cfg.Up }

// TotalMass returns the body mass.
func (c *Controller) TotalMass() float32 { return c.cfg.Mass }

// Gravity returns the gravity magnitude.
func (c *Controller) Gravity() float32 { return c.cfg.Gravity }

// UseGravity reports whether gravity acts on the controller.
func (c *Controller) UseGravity() bool { return c.cfg.UseGravity }

// SetUseGravity toggles gravity.
func (c *Controller) SetUseGravity(on bool) { c.cfg.UseGravity = on }

// HalfExtents returns the collision box half size.
func (c *Controller) HalfExtents() math.Vec3 { return c.cfg.HalfExtents }

// SetHalfExtents resizes the collision box.
func (c *Controller) SetHalfExtents(h math.Vec3) { c.cfg.HalfExtents = h }

// Bounds returns the world-space collision box.
func (c *Controller) Bounds() AABB { return BoxAt(c.position, c.cfg.HalfExtents) }

// Status returns the collision state from the last step.
func (c *Controller) Status() Status { return c.status }

// Grounded reports whether the body rests on walkable ground.
func (c *Controller) Grounded() bool { return c.status == StatusGrounded }

// Falling reports whether the body is airborne.
func (c *Controller) Falling() bool { return c.status == StatusFalling }

// Sliding reports whether the body slides.
func (c *Controller) Sliding() bool { return c.status == StatusSliding }

// Touching returns the colliders contacted during the last step. Each step
// builds a new slice, so a returned slice is never rewritten.
func (c *Controller) Touching() []*Collider { return c.touching }

// IsFlying reports whether a flying override is active.
func (c *Controller) IsFlying() bool { return c.flying.active }

// ControlEnabled reports whether Move input is accepted.
func (c *Controller) ControlEnabled() bool {
	return !(c.flying.active && c.flying.loseControl)
}

// FlyingRemaining returns the seconds left on a timed flying override.
func (c *Controller) FlyingRemaining() (float32, bool) {
	if !c.flying.active || !c.flying.timed {
		return 0, false
	}
	return c.flying.remaining, true
}

// AddListener registers l for controller events.
func (c *Controller) AddListener(l ControllerListener) {
	if l == nil {
		return
	}
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters l.
func (c *Controller) RemoveListener(l ControllerListener) {
	for i, existing := range c.listeners {
		if existing == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// AddForce applies v according to mode. Instantaneous modes change the
// velocity now; continuous modes accumulate until the next Step.
func (c *Controller) AddForce(v math.Vec3, mode ForceMode) {
	if !v.IsFinite() {
		c.log.Warn("ignoring non-finite force", zap.Stringer("mode", mode))
		return
	}
	switch mode {
	case ForceModeVelocityChange:
		c.velocity = c.velocity.Add(v)
	case ForceModeImpulse:
		c.velocity = c.velocity.Add(v.Scale(1 / c.cfg.Mass))
	case ForceModeForce:
		c.pendingForce = c.pendingForce.Add(v)
	case ForceModeAcceleration:
		c.pendingAccel = c.pendingAccel.Add(v)
	}
}

// Move requests a kinematic displacement for the next Step. It is
// ignored while a flying override has taken control away.
func (c *Controller) Move(delta math.Vec3) {
	if !c.ControlEnabled() {
		return
	}
	c.pendingMove = c.pendingMove.Add(delta)
}

// ApplyGravity integrates gravity over dt. Repeated calls before the next
// Step completes are no-ops, so gravity acts exactly once per tick no
// matter how many callers request it.
func (c *Controller) ApplyGravity(dt float32) {
	if !c.cfg.UseGravity || c.gravityApplied || dt <= 0 {
		return
	}
	c.velocity = c.velocity.Sub(c.cfg.Up.Scale(c.cfg.Gravity * dt))
	c.gravityApplied = true
}

// SendFlying launches the body with velocity v. An override already in
// progress is replaced.
func (c *Controller) SendFlying(v math.Vec3, opts FlyingOptions) {
	if !v.IsFinite() {
		c.log.Warn("ignoring non-finite launch velocity")
		return
	}
	if opts.Duration < 0 {
		opts.Duration = 0
	}
	if opts.ResetVelocity {
		c.velocity = math.Vec3{}
	}
	c.velocity = c.velocity.Add(v)
	c.flying = flyingState{
		active:      true,
		loseControl: opts.LoseControl,
		timed:       opts.Duration > 0,
		remaining:   opts.Duration,
	}
	if opts.LoseControl {
		c.pendingMove = math.Vec3{}
	}
	if c.log.Core().Enabled(zap.DebugLevel) {
		c.log.Debug("send flying",
			zap.Float32("vx", v.X), zap.Float32("vy", v.Y), zap.Float32("vz", v.Z),
			zap.Bool("lose_control", opts.LoseControl),
			zap.Float32("duration", opts.Duration))
	}
	c.notify(func(l ControllerListener) { l.OnFlyingStarted(c, v) })
}

// StopFlying ends the flying override. Calling it when not flying is a
// no-op.
func (c *Controller) StopFlying() {
	c.stopFlying(StopReasonCancelled)
}

// Stop zeroes all motion and ends any flying override.
func (c *Controller) Stop() {
	c.velocity = math.Vec3{}
	c.pendingForce = math.Vec3{}
	c.pendingAccel = math.Vec3{}
	c.pendingMove = math.Vec3{}
	c.stopFlying(StopReasonStopped)
}

func (c *Controller) stopFlying(reason StopReason) {
	if !c.flying.active {
		return
	}
	c.flying = flyingState{}
	c.notify(func(l ControllerListener) { l.OnFlyingStopped(c, reason) })
}

// Step advances the body by dt seconds: gravity, accumulated forces,
// kinematic input, collision response and flying bookkeeping.
func (c *Controller) Step(dt float32) {
	if dt < 0 {
		dt = 0
	}
	defer func() { c.gravityApplied = false }()

	c.ApplyGravity(dt)

	// Continuous forces
	c.velocity = c.velocity.Add(c.pendingForce.Scale(dt / c.cfg.Mass))
	c.velocity = c.velocity.Add(c.pendingAccel.Scale(dt))
	c.pendingForce = math.Vec3{}
	c.pendingAccel = math.Vec3{}

	pre := c.velocity
	motion := c.velocity.Scale(dt)
	if c.ControlEnabled() {
		motion = motion.Add(c.pendingMove)
	}
	c.pendingMove = math.Vec3{}

	hits := c.moveAndCollide(motion)
	var landed bool
	c.status, landed = c.classify(hits)

	c.touching = nil
	for _, h := range hits {
		if !containsCollider(c.touching, h.Collider) {
			c.touching = append(c.touching, h.Collider)
		}
	}

	// Flying bookkeeping
	if c.flying.active {
		if c.flying.timed {
			c.flying.remaining -= dt
			if c.flying.remaining <= 0 {
				c.stopFlying(StopReasonTimeout)
			}
		} else if landed && c.velocity.Dot(c.cfg.Up) <= 0 {
			c.stopFlying(StopReasonLanded)
		}
	}

	if len(hits) > 0 {
		info := CollisionInfo{
			PreVelocity:  pre,
			PostVelocity: c.velocity,
			Hits:         hits,
			Status:       c.status,
		}
		c.notify(func(l ControllerListener) { l.OnCollision(c, info) })
	}
}

// moveAndCollide moves the body axis by axis, horizontal axes first.
// Each axis is swept so fast bodies cannot tunnel through thin colliders;
// velocity into a contact face is cancelled.
func (c *Controller) moveAndCollide(motion math.Vec3) []Hit {
	if !motion.IsFinite() {
		c.log.Warn("discarding non-finite motion")
		c.velocity = math.Vec3{}
		return nil
	}
	if c.world == nil || len(c.world.colliders) == 0 {
		c.position = c.position.Add(motion)
		return nil
	}

	var hits []Hit
	for _, i := range [3]int{0, 2, 1} {
		hits = append(hits, c.sweepAxis(i, axis(motion, i))...)
	}
	return hits
}

// sweepAxis moves the body by d along axis i, stopping at the first
// collider face in the way.
func (c *Controller) sweepAxis(i int, d float32) []Hit {
	if d == 0 {
		return nil
	}
	half := c.cfg.HalfExtents
	box := c.Bounds()
	start := axis(c.position, i)
	end := start + d

	sweptLo := axis(box.Min, i) + min(d, 0)
	sweptHi := axis(box.Max, i) + max(d, 0)

	type contact struct {
		col  *Collider
		stop float32
	}
	var contacts []contact
	for _, col := range c.world.colliders {
		if !overlapsExcept(box, col.Box, i) {
			continue
		}
		if axis(col.Box.Max, i) < sweptLo || axis(col.Box.Min, i) > sweptHi {
			continue
		}
		var stop float32
		switch {
		case d > 0:
			stop = axis(col.Box.Min, i) - axis(half, i)
			if stop < start-overlapEpsilon {
				continue
			}
		default:
			stop = axis(col.Box.Max, i) + axis(half, i)
			if stop > start+overlapEpsilon {
				continue
			}
		}
		contacts = append(contacts, contact{col: col, stop: stop})
		if (d > 0 && stop < end) || (d < 0 && stop > end) {
			end = stop
		}
	}

	setAxis(&c.position, i, end)
	if len(contacts) == 0 {
		return nil
	}

	sign := float32(1)
	if d > 0 {
		sign = -1
	}
	normal := unitAxis(i, sign)

	var hits []Hit
	for _, ct := range contacts {
		diff := ct.stop - end
		if diff > overlapEpsilon || diff < -overlapEpsilon {
			continue
		}
		hits = append(hits, Hit{
			Collider: ct.col,
			Normal:   normal,
			Point:    c.position.Sub(normal.Mul(half)),
		})
	}
	if len(hits) > 0 {
		if v := axis(c.velocity, i); v*d > 0 {
			setAxis(&c.velocity, i, 0)
		}
	}
	return hits
}

// overlapsExcept reports whether a and b overlap on every axis but skip.
func overlapsExcept(a, b AABB, skip int) bool {
	for i := 0; i < 3; i++ {
		if i == skip {
			continue
		}
		if axis(a.Min, i) >= axis(b.Max, i)-overlapEpsilon || axis(a.Max, i) <= axis(b.Min, i)+overlapEpsilon {
			return false
		}
	}
	return true
}

// classify derives the contact status. landed reports a floor contact
// within the slope limit, slippery or not.
func (c *Controller) classify(hits []Hit) (status Status, landed bool) {
	minDot := cosDeg(c.cfg.SlopeLimit)
	var ground *Collider
	wall := false
	for _, h := range hits {
		d := h.Normal.Dot(c.cfg.Up)
		switch {
		case d >= minDot:
			ground = h.Collider
		case d > -minDot:
			wall = true
		}
	}
	switch {
	case ground != nil && ground.Slippery:
		return StatusSliding, true
	case ground != nil:
		return StatusGrounded, true
	case wall && c.velocity.Dot(c.cfg.Up) < 0:
		return StatusSliding, false
	}
	return StatusFalling, false
}

func (c *Controller) notify(fn func(ControllerListener)) {
	for _, l := range c.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("controller listener panicked", zap.Any("panic", r))
				}
			}()
			fn(l)
		}()
	}
}

func containsCollider(list []*Collider, c *Collider) bool {
	for _, existing := range list {
		if existing == c {
			return true
		}
	}
	return false
}
