package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

func viewProj() math.Mat4 {
	proj := math.Perspective(0.8, 1, 0.1, 100)
	view := math.LookAt(math.Vec3{Z: 10}, math.Vec3{}, math.Up)
	return proj.Mul(view)
}

func TestScreenCentreRayHitsTarget(t *testing.T) {
	r := ScreenToRay(400, 400, 800, 800, viewProj().Inverse())

	assert.InDelta(t, 0, r.Direction.X, 1e-4)
	assert.InDelta(t, 0, r.Direction.Y, 1e-4)
	assert.InDelta(t, -1, r.Direction.Z, 1e-4)
	assert.InDelta(t, 9.9, r.Origin.Z, 1e-3)
}

func TestIntersectPlaneY(t *testing.T) {
	r := Ray{Origin: math.Vec3{Y: 10}, Direction: math.Vec3{X: 1, Y: -1}.Normalize()}
	p, ok := r.IntersectPlaneY(0)
	require.True(t, ok)
	assert.InDelta(t, 10, p.X, 1e-4)

	_, ok = Ray{Origin: math.Vec3{Y: 10}, Direction: math.Vec3{X: 1}}.IntersectPlaneY(0)
	assert.False(t, ok)
	_, ok = Ray{Origin: math.Vec3{Y: 10}, Direction: math.Vec3{Y: 1}}.IntersectPlaneY(0)
	assert.False(t, ok)
}

func TestPickNearest(t *testing.T) {
	r := Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}
	half := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	targets := []Target{
		{ID: "far", Box: physics.BoxAt(math.Vec3{Z: -5}, half)},
		{ID: "near", Box: physics.BoxAt(math.Vec3{Z: 2}, half)},
		{ID: "aside", Box: physics.BoxAt(math.Vec3{X: 3, Z: 5}, half)},
	}

	id, ok := Pick(r, 100, targets)
	require.True(t, ok)
	assert.Equal(t, "near", id)

	d, hit := r.IntersectAABB(targets[1].Box, 100)
	require.True(t, hit)
	assert.InDelta(t, 7.5, d, 1e-3)

	_, ok = Pick(r, 5, targets)
	assert.False(t, ok)
}
