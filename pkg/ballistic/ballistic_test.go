package ballistic

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drops/pkg/math"
)

const earthGravity = 9.8

// landingX integrates the launch analytically and returns the horizontal
// displacement at the moment the projectile descends through dy.
func landingX(t *testing.T, v math.Vec3, g, dy float64) float64 {
	t.Helper()
	vx, vy := float64(v.X), float64(v.Y)
	disc := vy*vy - 2*g*dy
	require.GreaterOrEqual(t, disc, 0.0, "projectile never reaches target height")
	flight := (vy + gomath.Sqrt(disc)) / g
	return vx * flight
}

func TestComputeLaunchVelocity_Roundtrip(t *testing.T) {
	tests := []struct {
		name   string
		angle  float32
		target math.Vec3
	}{
		{"flat 45", 45, math.Vec3{X: 10}},
		{"uphill 60", 60, math.Vec3{X: 5, Y: 2}},
		{"downhill 30", 30, math.Vec3{X: 8, Y: -3}},
		{"steep uphill 70", 70, math.Vec3{X: 3, Y: 4}},
		{"leftward", -45, math.Vec3{X: -10}},
		{"leftward downhill", -20, math.Vec3{X: -6, Y: -6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin := math.Vec3{X: 1, Y: 2, Z: 3}
			target := origin.Add(tt.target)

			v, err := ComputeLaunchVelocity(origin, target, tt.angle, earthGravity)
			require.NoError(t, err)
			assert.True(t, v.IsFinite())
			assert.Zero(t, v.Z)

			x := landingX(t, v, earthGravity, float64(tt.target.Y))
			assert.InDelta(t, float64(tt.target.X), x, 1e-3)
		})
	}
}

func TestComputeLaunchVelocity_ClosedForm(t *testing.T) {
	v, err := ComputeLaunchVelocity(math.Vec3{}, math.Vec3{X: 10}, 45, 9.8)
	require.NoError(t, err)

	want := gomath.Sqrt(9.8 * 10 / gomath.Sin(2*45*math.Deg2Rad))
	assert.Greater(t, v.X, float32(0))
	assert.InDelta(t, want, float64(v.Length()), 1e-4)
	assert.InDelta(t, 9.8995, float64(v.Length()), 1e-3)
}

func TestComputeLaunchVelocity_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		angle   float32
		target  math.Vec3
		gravity float32
	}{
		{"flat at zero angle", 0, math.Vec3{X: 10}, 9.8},
		{"target behind", 45, math.Vec3{X: -10}, 9.8},
		{"target above aim line", 10, math.Vec3{X: 1, Y: 5}, 9.8},
		{"straight above", 45, math.Vec3{Y: 5}, 9.8},
		{"zero gravity", 45, math.Vec3{X: 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ComputeLaunchVelocity(math.Vec3{}, tt.target, tt.angle, tt.gravity)
			require.ErrorIs(t, err, ErrDegenerateTrajectory)
			assert.Equal(t, math.Vec3{}, v)
		})
	}
}

func TestComputeLaunchVelocity_GravitySignIgnored(t *testing.T) {
	up, err := ComputeLaunchVelocity(math.Vec3{}, math.Vec3{X: 10}, 45, 9.8)
	require.NoError(t, err)
	down, err := ComputeLaunchVelocity(math.Vec3{}, math.Vec3{X: 10}, 45, -9.8)
	require.NoError(t, err)
	assert.Equal(t, up, down)
}

func TestEffectiveAngle(t *testing.T) {
	assert.Equal(t, 45.0, EffectiveAngle(45))
	assert.Equal(t, 135.0, EffectiveAngle(-45))
	assert.Equal(t, MaxAngle, EffectiveAngle(120))
	assert.InDelta(t, 180-MaxAngle, EffectiveAngle(-95), 1e-9)
	assert.Equal(t, 0.0, EffectiveAngle(0))
}

func TestComputeLaunchVelocityToward_MatchesPlanarAlongX(t *testing.T) {
	planar, err := ComputeLaunchVelocity(math.Vec3{}, math.Vec3{X: 10, Y: 2}, 50, 9.8)
	require.NoError(t, err)
	toward, err := ComputeLaunchVelocityToward(math.Vec3{}, math.Vec3{X: 10, Y: 2}, 50, 9.8)
	require.NoError(t, err)
	assert.InDelta(t, planar.X, toward.X, 1e-5)
	assert.InDelta(t, planar.Y, toward.Y, 1e-5)
	assert.InDelta(t, 0, toward.Z, 1e-6)
}

func TestComputeLaunchVelocityToward_LandsOnTarget(t *testing.T) {
	origin := math.Vec3{X: 1, Y: 0, Z: 1}
	target := math.Vec3{X: -5, Y: 1, Z: 9}
	v, err := ComputeLaunchVelocityToward(origin, target, 55, 9.8)
	require.NoError(t, err)

	// Time of flight from the horizontal speed.
	flat := math.Vec3{X: target.X - origin.X, Z: target.Z - origin.Z}
	hspeed := math.Vec3{X: v.X, Z: v.Z}.Length()
	tof := flat.Length() / hspeed

	got := PositionAt(origin, v, 9.8, tof)
	assert.InDelta(t, target.X, got.X, 1e-3)
	assert.InDelta(t, target.Y, got.Y, 1e-3)
	assert.InDelta(t, target.Z, got.Z, 1e-3)
}

func TestComputeLaunchVelocityToward_VerticalIsDegenerate(t *testing.T) {
	_, err := ComputeLaunchVelocityToward(math.Vec3{}, math.Vec3{Y: 4}, 45, 9.8)
	assert.ErrorIs(t, err, ErrDegenerateTrajectory)
}
