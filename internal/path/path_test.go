package path

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drops/pkg/math"
)

func points(n int) []Waypoint {
	out := make([]Waypoint, n)
	for i := range out {
		out[i] = Waypoint{Position: math.Vec3{X: float32(i)}, Rotation: math.QuatIdentity()}
	}
	return out
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New(nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestNew_CopiesWaypoints(t *testing.T) {
	src := points(2)
	p, err := New(src, Options{})
	require.NoError(t, err)
	src[0].Position.X = 42
	assert.Equal(t, float32(0), p.Current().Position.X)
}

func TestMoveNext_LoopWrapsModulo(t *testing.T) {
	for n := 1; n <= 5; n++ {
		pts := points(n)
		for start := 0; start < n; start++ {
			for steps := -7; steps <= 12; steps++ {
				p, err := New(pts, Options{Mode: ModeLoop})
				require.NoError(t, err)
				_, err = p.MoveAt(start)
				require.NoError(t, err)

				got, err := p.MoveNext(steps)
				require.NoError(t, err)

				want := ((start+steps)%n + n) % n
				assert.Equal(t, pts[want], got, "n=%d start=%d steps=%d", n, start, steps)
				assert.Equal(t, want, p.Index())
			}
		}
	}
}

func TestMoveNext_SingleWaypointNeverMoves(t *testing.T) {
	for _, mode := range []Mode{ModeLoop, ModeBackAndForward, ModeRandom} {
		t.Run(mode.String(), func(t *testing.T) {
			pts := points(1)
			p, err := New(pts, Options{Mode: mode})
			require.NoError(t, err)
			for steps := 1; steps < 5; steps++ {
				got, err := p.MoveNext(steps)
				require.NoError(t, err)
				assert.Equal(t, pts[0], got)
			}
		})
	}
}

func TestMoveNext_BackAndForwardRefusesAtEnd(t *testing.T) {
	p, err := New(points(3), Options{Mode: ModeBackAndForward})
	require.NoError(t, err)

	_, err = p.MoveNext(1)
	require.NoError(t, err)
	_, err = p.MoveNext(1)
	require.NoError(t, err)
	require.Equal(t, 2, p.Index())

	got, err := p.MoveNext(1)
	assert.ErrorIs(t, err, ErrDeadEnd)
	assert.Equal(t, 2, p.Index())
	assert.Equal(t, 1, p.Direction())
	assert.Equal(t, float32(2), got.Position.X)

	// A move that would overshoot is refused as a whole.
	p.Reset()
	_, err = p.MoveNext(5)
	assert.ErrorIs(t, err, ErrDeadEnd)
	assert.Equal(t, 0, p.Index())

	// The start is a boundary too.
	_, err = p.MoveNext(-1)
	assert.ErrorIs(t, err, ErrDeadEnd)
	assert.Equal(t, 0, p.Index())
}

func TestMoveNext_BackAndForwardReverses(t *testing.T) {
	p, err := New(points(3), Options{Mode: ModeBackAndForward, ReverseAtEnd: true})
	require.NoError(t, err)

	var visited []int
	for i := 0; i < 6; i++ {
		_, err := p.MoveNext(1)
		require.NoError(t, err)
		visited = append(visited, p.Index())
	}
	assert.Equal(t, []int{1, 2, 1, 0, 1, 2}, visited)

	p.Reset()
	_, err = p.MoveNext(3)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Index())
	assert.Equal(t, -1, p.Direction())
}

func TestMoveNext_RandomExcludesCurrent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	p, err := New(points(4), Options{Mode: ModeRandom, Rand: rng})
	require.NoError(t, err)

	seen := make(map[int]int)
	for i := 0; i < 400; i++ {
		prev := p.Index()
		_, err := p.MoveNext(1)
		require.NoError(t, err)
		require.NotEqual(t, prev, p.Index())
		require.GreaterOrEqual(t, p.Index(), 0)
		require.Less(t, p.Index(), 4)
		seen[p.Index()]++
	}
	assert.Len(t, seen, 4)
}

func TestMoveAt(t *testing.T) {
	p, err := New(points(3), Options{})
	require.NoError(t, err)

	got, err := p.MoveAt(2)
	require.NoError(t, err)
	assert.Equal(t, float32(2), got.Position.X)

	for _, i := range []int{-1, 3, 100} {
		_, err := p.MoveAt(i)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, 2, p.Index())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeLoop, false},
		{"loop", ModeLoop, false},
		{"Back_And_Forward", ModeBackAndForward, false},
		{" random ", ModeRandom, false},
		{"zigzag", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
