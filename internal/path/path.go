// Package path implements waypoint paths and bounded regions that patrolling
// and flying entities traverse.
//
// A Path carries a mutable cursor, so an instance must have a single owner.
// Entities that want the same route each need their own Path built from a
// shared waypoint slice.
package path

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Faultbox/drops/pkg/math"
)

var (
	// ErrEmptyPath is returned when a path is built without waypoints.
	ErrEmptyPath = errors.New("path: no waypoints")
	// ErrDeadEnd is returned when a BackAndForward path without
	// reverse-at-end would move past one of its ends.
	ErrDeadEnd = errors.New("path: dead end")
	// ErrOutOfRange is returned by MoveAt for an invalid index.
	ErrOutOfRange = errors.New("path: index out of range")
)

// Mode is the traversal policy of a Path.
type Mode uint8

const (
	// ModeLoop wraps from the last waypoint back to the first.
	ModeLoop Mode = iota
	// ModeBackAndForward travels to one end and then back.
	ModeBackAndForward
	// ModeRandom jumps to a random waypoint other than the current one.
	ModeRandom
)

var modeNames = map[Mode]string{
	ModeLoop:           "loop",
	ModeBackAndForward: "back_and_forward",
	ModeRandom:         "random",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode parses a mode name as written in scenario files.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return ModeLoop, nil
	}
	for m, name := range modeNames {
		if name == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("path: unknown mode %q", s)
}

// Waypoint is a pose along a path.
type Waypoint struct {
	Position math.Vec3
	Rotation math.Quat
}

// Options configures a Path.
type Options struct {
	Mode Mode
	// ReverseAtEnd makes BackAndForward paths turn around at either end.
	// Without it the path refuses to move past an end.
	ReverseAtEnd bool
	// Rand drives ModeRandom. Nil uses the global source.
	Rand *rand.Rand
}

// Path is an ordered list of waypoints with a traversal cursor.
type Path struct {
	points       []Waypoint
	mode         Mode
	reverseAtEnd bool
	rng          *rand.Rand

	index     int
	direction int
}

// New builds a path over points. The slice is copied.
func New(points []Waypoint, opts Options) (*Path, error) {
	if len(points) == 0 {
		return nil, ErrEmptyPath
	}
	if _, ok := modeNames[opts.Mode]; !ok {
		return nil, fmt.Errorf("path: invalid mode %d", opts.Mode)
	}
	cp := make([]Waypoint, len(points))
	copy(cp, points)
	return &Path{
		points:       cp,
		mode:         opts.Mode,
		reverseAtEnd: opts.ReverseAtEnd,
		rng:          opts.Rand,
		direction:    1,
	}, nil
}

// Count returns the number of waypoints.
func (p *Path) Count() int { return len(p.points) }

// Index returns the cursor position.
func (p *Path) Index() int { return p.index }

// Direction is +1 while travelling forward and -1 on the way back.
func (p *Path) Direction() int { return p.direction }

// Mode returns the traversal policy.
func (p *Path) Mode() Mode { return p.mode }

// Waypoints returns a copy of the waypoints.
func (p *Path) Waypoints() []Waypoint {
	out := make([]Waypoint, len(p.points))
	copy(out, p.points)
	return out
}

// Current returns the waypoint under the cursor.
func (p *Path) Current() Waypoint { return p.points[p.index] }

// MoveNext advances the cursor by steps according to the path mode and
// returns the new current waypoint. Negative steps travel backwards.
//
// On a BackAndForward path without reverse-at-end, a move that would cross
// an end returns ErrDeadEnd and leaves the cursor untouched.
func (p *Path) MoveNext(steps int) (Waypoint, error) {
	n := len(p.points)
	if n == 1 || steps == 0 {
		return p.Current(), nil
	}

	switch p.mode {
	case ModeLoop:
		p.index = ((p.index+steps)%n + n) % n

	case ModeBackAndForward:
		if !p.reverseAtEnd {
			next := p.index + steps*p.direction
			if next < 0 || next >= n {
				return p.Current(), ErrDeadEnd
			}
			p.index = next
			break
		}
		p.bounce(steps)

	case ModeRandom:
		for i := 0; i < abs(steps); i++ {
			p.index = p.randomOther()
		}
	}
	return p.Current(), nil
}

// Advance moves one step forward. It implements Traversal.
func (p *Path) Advance() (Waypoint, error) {
	return p.MoveNext(1)
}

// Goal returns the current waypoint. It implements Traversal.
func (p *Path) Goal() Waypoint { return p.Current() }

// Reset places the cursor back on the first waypoint, travelling forward.
func (p *Path) Reset() {
	p.index = 0
	p.direction = 1
}

// MoveAt places the cursor on index i.
func (p *Path) MoveAt(i int) (Waypoint, error) {
	if i < 0 || i >= len(p.points) {
		return p.Current(), fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(p.points))
	}
	p.index = i
	return p.Current(), nil
}

// bounce walks steps waypoints, flipping direction at each end.
func (p *Path) bounce(steps int) {
	n := len(p.points)
	dir := p.direction
	backwards := steps < 0
	if backwards {
		dir = -dir
		steps = -steps
	}
	for i := 0; i < steps; i++ {
		next := p.index + dir
		if next < 0 || next >= n {
			dir = -dir
			next = p.index + dir
		}
		p.index = next
	}
	if backwards {
		dir = -dir
	}
	p.direction = dir
}

// randomOther picks a uniformly random index other than the current one.
func (p *Path) randomOther() int {
	n := len(p.points)
	var r int
	if p.rng != nil {
		r = p.rng.IntN(n - 1)
	} else {
		r = rand.IntN(n - 1)
	}
	if r >= p.index {
		r++
	}
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
