package trigger

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/pkg/math"
)

// ErrScript is returned for scripts that fail to compile or run.
var ErrScript = errors.New("trigger: script")

// scriptMaxAllocs bounds the objects a single script run may allocate.
const scriptMaxAllocs = 1 << 16

// scriptModules are the tengo stdlib modules a script may import. Modules
// touching the host (os) or decoding foreign data are left out.
var scriptModules = []string{"math", "text", "fmt", "times"}

// ScriptAction is an Action written in tengo.
//
// Each run sees a read-only `character` map (id, tag, size, position,
// velocity), may import the math, text, fmt and times modules, and may set:
//
//	result       truthy for success
//	send_flying  [x, y, z] velocity launched with a velocity reset
//	lose_control truthy to suppress the character's input while flying
type ScriptAction struct {
	name     string
	compiled *tengo.Compiled
	log      *zap.Logger
}

// NewScriptAction compiles src. log may be nil.
func NewScriptAction(name, src string, log *zap.Logger) (*ScriptAction, error) {
	if log == nil {
		log = zap.NewNop()
	}
	script := tengo.NewScript([]byte(src))
	for _, v := range []struct {
		name  string
		value any
	}{
		{"character", map[string]any{}},
		{"result", false},
		{"send_flying", nil},
		{"lose_control", false},
	} {
		if err := script.Add(v.name, v.value); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrScript, name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(scriptModules...))
	script.SetMaxAllocs(scriptMaxAllocs)

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrScript, name, err)
	}
	return &ScriptAction{
		name:     name,
		compiled: compiled,
		log:      log.With(zap.String("script", name)),
	}, nil
}

// DoAction runs the script for b.
func (s *ScriptAction) DoAction(b Body) bool {
	if err := s.run(b); err != nil {
		s.log.Warn("script failed", zap.String("body", b.ID()), zap.Error(err))
		return false
	}
	return s.compiled.Get("result").Bool()
}

func (s *ScriptAction) run(b Body) error {
	var ctrl *physics.Controller
	character := map[string]any{
		"id":  b.ID(),
		"tag": b.Tag(),
	}
	if c, ok := b.(Character); ok {
		ctrl = c.Controller()
		character["size"] = c.Size()
		if ctrl != nil {
			character["position"] = vecToArray(ctrl.Position())
			character["velocity"] = vecToArray(ctrl.Velocity())
			character["grounded"] = ctrl.Grounded()
		}
	} else {
		character["position"] = vecToArray(b.Bounds().Center())
	}

	for name, v := range map[string]any{
		"character":    character,
		"result":       false,
		"send_flying":  nil,
		"lose_control": false,
	} {
		if err := s.compiled.Set(name, v); err != nil {
			return fmt.Errorf("%w: set %s: %v", ErrScript, name, err)
		}
	}

	if err := s.compiled.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrScript, err)
	}

	launch := s.compiled.Get("send_flying")
	if launch.IsUndefined() {
		return nil
	}
	v, err := arrayToVec(launch.Array())
	if err != nil {
		return err
	}
	if ctrl == nil {
		return fmt.Errorf("%w: send_flying on %q which has no controller", ErrScript, b.ID())
	}
	ctrl.SendFlying(v, physics.FlyingOptions{
		ResetVelocity: true,
		LoseControl:   s.compiled.Get("lose_control").Bool(),
	})
	return nil
}

func vecToArray(v math.Vec3) []any {
	return []any{float64(v.X), float64(v.Y), float64(v.Z)}
}

func arrayToVec(arr []any) (math.Vec3, error) {
	if len(arr) != 3 {
		return math.Vec3{}, fmt.Errorf("%w: send_flying wants 3 numbers, got %d", ErrScript, len(arr))
	}
	var out [3]float32
	for i, x := range arr {
		switch n := x.(type) {
		case float64:
			out[i] = float32(n)
		case int64:
			out[i] = float32(n)
		default:
			return math.Vec3{}, fmt.Errorf("%w: send_flying[%d] is %T", ErrScript, i, x)
		}
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}
