package ai

import (
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

// PlayerTag is the tag carried by player-controlled drops.
const PlayerTag = "Player"

// Target is a character an enemy can detect, chase and attack.
type Target interface {
	ID() string
	Tag() string
	// Alive is false once the character has been destroyed.
	Alive() bool
	Size() int
	Controller() *physics.Controller
}

// CommonParameters is the context shared by every state of one enemy.
// It belongs to that enemy alone.
type CommonParameters struct {
	Enemy *Enemy

	// Drop is the current target, nil when none.
	Drop Target
	// PriorityDrop marks a forcibly assigned drop that normal target
	// acquisition must not replace.
	PriorityDrop bool

	Walking       bool
	OnFloor       bool
	SizeLimitDrop int

	InitialPositionEnemy math.Vec3
	InitialRotationEnemy math.Quat
	RootEntityPosition   math.Vec3

	MinimumWalkingDistance  float32
	ToleranceDistanceToGoal float32
	ToleranceDegreeToGoal   float32

	// RotationSpeed caps turning, in degrees per second.
	RotationSpeed float32
}

// ValidDrop returns the drop when it still exists. A destroyed drop is
// released and nil returned.
func (c *CommonParameters) ValidDrop() Target {
	if c.Drop == nil {
		return nil
	}
	if !c.Drop.Alive() || c.Drop.Controller() == nil {
		c.Drop = nil
		c.PriorityDrop = false
		return nil
	}
	return c.Drop
}

// DropTooBig reports whether the drop exceeds the size this enemy engages.
// A zero limit never triggers.
func (c *CommonParameters) DropTooBig() bool {
	if c.SizeLimitDrop <= 0 {
		return false
	}
	d := c.ValidDrop()
	return d != nil && d.Size() >= c.SizeLimitDrop
}

// deriveTolerances sets the goal tolerances from the distance and angle
// covered in one nominal tick, so a mover cannot overshoot and oscillate.
func (c *CommonParameters) deriveTolerances(speed, rotationSpeed, tickDt float32) {
	c.ToleranceDistanceToGoal = max(speed*tickDt, minToleranceDistance)
	c.ToleranceDegreeToGoal = max(rotationSpeed*tickDt, minToleranceDegrees)
	c.MinimumWalkingDistance = c.ToleranceDistanceToGoal * 0.5
}

const (
	minToleranceDistance = 0.01
	minToleranceDegrees  = 0.5
)

// IdleParameters tunes the Idle state.
type IdleParameters struct {
	// TimeInIdle is how long a walking enemy rests before patrolling again.
	TimeInIdle float32 `yaml:"time_in_idle"`
}

// WalkingParameters tunes the Walking state.
type WalkingParameters struct {
	Speed float32 `yaml:"speed"`
	// RotationVelocity in degrees per second while turning to the
	// movement direction.
	RotationVelocity float32 `yaml:"rotation_velocity"`
	// TimeUntilIdle is how long to walk before resting. Zero never rests.
	TimeUntilIdle float32 `yaml:"time_until_idle"`
}

// FlyingParameters tunes the Flying state.
type FlyingParameters struct {
	Speed            float32 `yaml:"speed"`
	RotationVelocity float32 `yaml:"rotation_velocity"`
	TimeUntilIdle    float32 `yaml:"time_until_idle"`
}

// DetectParameters tunes the Detect state.
type DetectParameters struct {
	// TimeWarningDetect is the warning delay before chasing.
	TimeWarningDetect float32 `yaml:"time_warning_detect"`
}

// ChaseParameters tunes the Chase state.
type ChaseParameters struct {
	Speed float32 `yaml:"speed"`
	// NearDistance raises Near once the drop is this close.
	NearDistance float32 `yaml:"near_distance"`
	// GiveUpAfter raises Timer after chasing this long. Zero chases
	// forever.
	GiveUpAfter float32 `yaml:"give_up_after"`
}

// AttackParameters tunes the Attack state.
type AttackParameters struct {
	Speed float32 `yaml:"speed"`
	// Move keeps closing the distance during the attack.
	Move bool `yaml:"move"`
	// Duration is the attack length in seconds.
	Duration float32 `yaml:"duration"`
	// Moment is the normalized time in [0,1] the hit lands.
	Moment float32 `yaml:"moment"`
	// LaunchAngle is the repel launch angle in degrees.
	LaunchAngle float32 `yaml:"launch_angle"`
	// RepelOffset is the repel landing point relative to the enemy in
	// its attack frame (+Z forward).
	RepelOffset math.Vec3 `yaml:"repel_offset"`
	// LoseControl suppresses the target's input while repelled.
	LoseControl bool `yaml:"lose_control"`
	// YawOnly restricts the attack rotation to the vertical axis.
	YawOnly bool `yaml:"yaw_only"`
}

// ScaredParameters tunes the Scared state.
type ScaredParameters struct {
	Speed    float32 `yaml:"speed"`
	Duration float32 `yaml:"duration"`
}

// Parameters groups every per-state tuning block. It is never mutated by
// the enemy.
type Parameters struct {
	Idle    IdleParameters    `yaml:"idle"`
	Walking WalkingParameters `yaml:"walking"`
	Flying  FlyingParameters  `yaml:"flying"`
	Detect  DetectParameters  `yaml:"detect"`
	Chase   ChaseParameters   `yaml:"chase"`
	Attack  AttackParameters  `yaml:"attack"`
	Scared  ScaredParameters  `yaml:"scared"`
}

// DefaultParameters returns tuning suitable for a ground patroller.
func DefaultParameters() Parameters {
	return Parameters{
		Idle:    IdleParameters{TimeInIdle: 2},
		Walking: WalkingParameters{Speed: 2, RotationVelocity: 360, TimeUntilIdle: 4},
		Flying:  FlyingParameters{Speed: 2, RotationVelocity: 360},
		Detect:  DetectParameters{TimeWarningDetect: 1},
		Chase:   ChaseParameters{Speed: 3, NearDistance: 1.5, GiveUpAfter: 8},
		Attack: AttackParameters{
			Duration:    1,
			Moment:      0.5,
			LaunchAngle: 45,
			RepelOffset: math.Vec3{Z: 6},
			LoseControl: true,
			YawOnly:     true,
		},
		Scared: ScaredParameters{Speed: 4, Duration: 2},
	}
}
