package ballistic

import "github.com/Faultbox/drops/pkg/math"

// Sampling defaults.
const (
	DefaultStep       = 0.1
	DefaultMaxTime    = 5.0
	DefaultMaxSamples = 512
)

// LineCaster reports whether the straight segment between two points hits
// solid geometry.
type LineCaster interface {
	Linecast(from, to math.Vec3) bool
}

// SampleOptions configures Sample. Zero values fall back to the defaults.
type SampleOptions struct {
	Step       float32
	MaxTime    float32
	MaxSamples int
	Gravity    float32
	Caster     LineCaster
}

// Sample returns points along the arc starting at origin, one every Step
// seconds. When a Caster is set, the first segment that hits geometry ends
// the arc: its end point is kept and no later samples are produced.
func Sample(origin, velocity math.Vec3, opts SampleOptions) []math.Vec3 {
	step := opts.Step
	if step <= 0 {
		step = DefaultStep
	}
	maxTime := opts.MaxTime
	if maxTime <= 0 {
		maxTime = DefaultMaxTime
	}
	maxSamples := opts.MaxSamples
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}

	points := make([]math.Vec3, 0, min(maxSamples, int(maxTime/step)+2))
	points = append(points, origin)
	prev := origin
	for k := 1; len(points) < maxSamples; k++ {
		t := float32(k) * step
		if t > maxTime {
			break
		}
		p := PositionAt(origin, velocity, opts.Gravity, t)
		points = append(points, p)
		if opts.Caster != nil && opts.Caster.Linecast(prev, p) {
			break
		}
		prev = p
	}
	return points
}
