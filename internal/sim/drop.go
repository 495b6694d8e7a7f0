package sim

import (
	gomath "math"

	"github.com/Faultbox/drops/internal/ai"
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

// DropHalfExtent is the half size of a size-1 drop.
const DropHalfExtent = 0.5

// Drop is a player-controlled resizable character. Its volume grows
// linearly with size, so its extents scale with the cube root.
type Drop struct {
	id    string
	size  int
	alive bool
	ctrl  *physics.Controller
}

// ID returns the drop identifier.
func (d *Drop) ID() string { return d.id }

// Tag returns the player tag.
func (d *Drop) Tag() string { return ai.PlayerTag }

// Alive is false once the drop is destroyed.
func (d *Drop) Alive() bool { return d.alive }

// Size returns the drop size. Destroyed drops have size 0.
func (d *Drop) Size() int { return d.size }

// Controller returns the drop body.
func (d *Drop) Controller() *physics.Controller { return d.ctrl }

// Bounds returns the body box.
func (d *Drop) Bounds() physics.AABB { return d.ctrl.Bounds() }

// Position returns the body position.
func (d *Drop) Position() math.Vec3 { return d.ctrl.Position() }

// Resize sets the size. A size of zero or less destroys the drop; the
// world removes it at the end of the tick.
func (d *Drop) Resize(n int) {
	if !d.alive {
		return
	}
	if n <= 0 {
		d.destroy()
		return
	}
	d.size = n
	d.ctrl.SetHalfExtents(dropExtents(n))
}

func (d *Drop) destroy() {
	d.alive = false
	d.size = 0
	d.ctrl.Stop()
}

func dropExtents(size int) math.Vec3 {
	s := float32(gomath.Cbrt(float64(size))) * DropHalfExtent
	return math.Vec3{X: s, Y: s, Z: s}
}
