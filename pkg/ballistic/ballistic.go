// Package ballistic solves launch velocities for projectile motion under a
// constant gravity pulling along -Y, and samples the resulting arcs.
//
// ComputeLaunchVelocity works in the XY plane: horizontal displacement is
// measured on X only and the returned velocity has Z = 0.
// ComputeLaunchVelocityToward lifts it to arbitrary horizontal directions.
// Gravity vectors that are not aligned with -Y are not supported.
package ballistic

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/drops/pkg/math"
)

// ErrDegenerateTrajectory is returned when no real launch speed reaches the
// target at the requested angle.
var ErrDegenerateTrajectory = errors.New("ballistic: degenerate trajectory")

// MaxAngle is the largest launch angle magnitude in degrees the solver
// accepts. Angles beyond it are clamped; at 90 degrees cos(θ) is zero.
const MaxAngle = 89.9

// tangentEpsilon is the smallest |dy - tan(θ)·dx| treated as non-zero.
const tangentEpsilon = 1e-9

// EffectiveAngle clamps deg to [-MaxAngle, MaxAngle] and folds negative
// angles onto the far side of the vertical (180 + deg), so the result lies
// in [0, 180). A negative angle therefore launches toward -X.
func EffectiveAngle(deg float64) float64 {
	if deg > MaxAngle {
		deg = MaxAngle
	}
	if deg < -MaxAngle {
		deg = -MaxAngle
	}
	if deg < 0 {
		deg += 180
	}
	return deg
}

// ComputeLaunchVelocity returns the initial velocity that carries a
// projectile from origin to target when launched at angleDeg above the
// horizontal under gravity of the given magnitude (sign is ignored).
//
// It fails with ErrDegenerateTrajectory when the target is unreachable at
// that angle; it never returns a NaN or infinite velocity.
func ComputeLaunchVelocity(origin, target math.Vec3, angleDeg, gravity float32) (math.Vec3, error) {
	g := gomath.Abs(float64(gravity))
	if g == 0 {
		return math.Vec3{}, fmt.Errorf("%w: zero gravity", ErrDegenerateTrajectory)
	}

	theta := EffectiveAngle(float64(angleDeg)) * math.Deg2Rad
	dx := float64(target.X - origin.X)
	dy := float64(target.Y - origin.Y)

	cos := gomath.Cos(theta)
	sin := gomath.Sin(theta)
	tangent := dy - gomath.Tan(theta)*dx
	if gomath.Abs(tangent) < tangentEpsilon {
		return math.Vec3{}, fmt.Errorf("%w: angle %.2f° points straight at target (dx=%.3f dy=%.3f)",
			ErrDegenerateTrajectory, angleDeg, dx, dy)
	}

	squaredSpeed := (-g * dx * dx) / (2 * cos * cos * tangent)
	if squaredSpeed <= 0 || gomath.IsNaN(squaredSpeed) || gomath.IsInf(squaredSpeed, 0) {
		return math.Vec3{}, fmt.Errorf("%w: angle %.2f° cannot reach target (dx=%.3f dy=%.3f)",
			ErrDegenerateTrajectory, angleDeg, dx, dy)
	}

	speed := gomath.Sqrt(squaredSpeed)
	v := math.Vec3{X: float32(cos * speed), Y: float32(sin * speed)}
	if !v.IsFinite() {
		return math.Vec3{}, fmt.Errorf("%w: non-finite velocity", ErrDegenerateTrajectory)
	}
	return v, nil
}

// ComputeLaunchVelocityToward solves the same problem in the vertical plane
// through origin and target, so the horizontal displacement may point
// anywhere in XZ. The returned velocity's horizontal part is aligned with
// that displacement.
func ComputeLaunchVelocityToward(origin, target math.Vec3, angleDeg, gravity float32) (math.Vec3, error) {
	flat := math.Vec3{X: target.X - origin.X, Z: target.Z - origin.Z}
	dist := flat.Length()
	if dist == 0 {
		return math.Vec3{}, fmt.Errorf("%w: target directly above or below origin", ErrDegenerateTrajectory)
	}
	planar, err := ComputeLaunchVelocity(
		math.Vec3{},
		math.Vec3{X: dist, Y: target.Y - origin.Y},
		angleDeg, gravity)
	if err != nil {
		return math.Vec3{}, err
	}
	dir := flat.Scale(1 / dist)
	return math.Vec3{X: dir.X * planar.X, Y: planar.Y, Z: dir.Z * planar.X}, nil
}

// PositionAt returns the position of a projectile t seconds after leaving
// origin with velocity v under gravity of magnitude g along -Y.
func PositionAt(origin, v math.Vec3, g, t float32) math.Vec3 {
	g = float32(gomath.Abs(float64(g)))
	return math.Vec3{
		X: origin.X + v.X*t,
		Y: origin.Y + v.Y*t - 0.5*g*t*t,
		Z: origin.Z + v.Z*t,
	}
}
