package sim

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/ai"
	"github.com/Faultbox/drops/internal/config"
	"github.com/Faultbox/drops/internal/path"
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/internal/scenario"
	"github.com/Faultbox/drops/internal/trigger"
	"github.com/Faultbox/drops/pkg/math"
)

// seedMix decorrelates the second PCG word from the authored seed.
const seedMix = 0x9e3779b97f4a7c15

// Build creates a world populated from a validated scenario document. The
// scenario gravity, when set, overrides opts.Gravity.
func Build(s *config.Scenario, opts Options) (*World, error) {
	if s.Gravity > 0 {
		opts.Gravity = s.Gravity
	}
	w := New(opts)
	b := builder{w: w, log: w.log}

	for _, c := range s.Colliders {
		if err := w.AddCollider(&physics.Collider{
			ID:       c.ID,
			Tag:      c.Tag,
			Box:      physics.AABB{Min: c.Min, Max: c.Max},
			Slippery: c.Slippery,
		}); err != nil {
			return nil, err
		}
	}
	for _, d := range s.Drops {
		if _, err := w.AddDrop(d.ID, d.Position, d.Size); err != nil {
			return nil, err
		}
	}
	for _, spec := range s.Enemies {
		if err := b.enemy(spec); err != nil {
			return nil, fmt.Errorf("enemy %q: %w", spec.ID, err)
		}
	}

	for _, spec := range s.Cannons {
		c := scenario.NewCannon(spec.CannonConfig, b.log)
		if err := b.action(spec.ID, spec.Area, c, trigger.EventEnter); err != nil {
			return nil, err
		}
		w.AddCannon(spec.ID, c)
	}
	for _, spec := range s.Mushrooms {
		m := scenario.NewJumpMushroom(spec.MushroomConfig, b.log)
		if err := b.action(spec.ID, spec.Area, m, trigger.EventEnter); err != nil {
			return nil, err
		}
	}
	for _, spec := range s.Winds {
		wind := scenario.NewWindTube(spec.WindConfig)
		if err := b.action(spec.ID, spec.Area, wind, trigger.EventEnter, trigger.EventStay); err != nil {
			return nil, err
		}
	}
	for _, spec := range s.Waters {
		water := scenario.NewWaterRepulsion(spec.WaterConfig, b.log)
		area, err := b.area(spec.ID, spec.Area)
		if err != nil {
			return nil, err
		}
		area.AddListener(water)
		if err := w.AddElement(spec.ID, water); err != nil {
			return nil, err
		}
	}
	for _, spec := range s.Detections {
		enemy := w.Enemy(spec.Enemy)
		if enemy == nil {
			return nil, fmt.Errorf("detection %q: unknown enemy %q", spec.ID, spec.Enemy)
		}
		area, err := b.area(spec.ID, spec.Area)
		if err != nil {
			return nil, err
		}
		area.AddListener(scenario.NewDetectionZone(spec.DetectionConfig, enemy))
	}
	for _, spec := range s.Scripts {
		action, err := trigger.NewScriptAction(spec.ID, spec.Source, b.log.Named("script"))
		if err != nil {
			return nil, err
		}
		kinds := make([]trigger.EventKind, 0, len(spec.On))
		for _, on := range spec.On {
			k, err := trigger.ParseEventKind(on)
			if err != nil {
				return nil, fmt.Errorf("script %q: %w", spec.ID, err)
			}
			kinds = append(kinds, k)
		}
		if err := b.action(spec.ID, spec.Area, action, kinds...); err != nil {
			return nil, err
		}
	}

	w.log.Info("world built",
		zap.String("scenario", s.Name),
		zap.Int("colliders", len(s.Colliders)),
		zap.Int("drops", len(w.drops)),
		zap.Int("enemies", len(w.enemies)),
		zap.Int("areas", len(w.areas)))
	return w, nil
}

type builder struct {
	w   *World
	log *zap.Logger
}

func (b builder) area(id string, spec config.AreaSpec) (*trigger.Area, error) {
	mode, err := trigger.ParseMode(spec.Mode)
	if err != nil {
		return nil, fmt.Errorf("area %q: %w", id, err)
	}
	a := trigger.NewArea(trigger.AreaConfig{
		ID:       id,
		Box:      spec.Bounds(),
		Mode:     mode,
		Tags:     spec.Tags,
		Duration: spec.Duration,
	}, b.log.Named("trigger"))
	b.w.AddArea(a)
	return a, nil
}

// action binds act to a new area through a performer run on kinds.
func (b builder) action(id string, spec config.AreaSpec, act trigger.Action, kinds ...trigger.EventKind) error {
	a, err := b.area(id, spec)
	if err != nil {
		return err
	}
	dispatch := &trigger.TriggerAction{}
	dispatch.Bind(trigger.NewPerformer(id, act, spec.Performer, b.log.Named("trigger")), kinds...)
	a.AddListener(dispatch)
	return nil
}

func (b builder) enemy(spec config.EnemySpec) error {
	initial, err := ai.ParseState(spec.InitialState)
	if err != nil {
		return err
	}
	var table ai.Table
	if len(spec.Transitions) > 0 {
		if table, err = ai.ParseTable(spec.Transitions); err != nil {
			return err
		}
	}

	half := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	if spec.HalfExtents != nil {
		half = *spec.HalfExtents
	}
	ctrl := b.w.NewController(spec.ID, spec.Position, half)

	var route path.Traversal
	switch {
	case spec.Path != nil:
		p, err := buildPath(spec.Path)
		if err != nil {
			return err
		}
		route = p
	case spec.Region != nil:
		region, err := path.NewRegion(spec.Region.Origin, spec.Region.Size)
		if err != nil {
			return err
		}
		walker, err := path.NewRegionWalker(region, spec.Position, spec.Region.Margin, newRand(spec.Region.Seed))
		if err != nil {
			return err
		}
		route = walker
	}

	e, err := ai.NewEnemy(ai.Config{
		ID:              spec.ID,
		Walking:         spec.Walking,
		OnFloor:         spec.OnFloor,
		SizeLimitDrop:   spec.SizeLimitDrop,
		RotationSpeed:   spec.RotationSpeed,
		InitialState:    initial,
		InitialRotation: math.QuatFromYaw(spec.Yaw),
		TickDt:          b.w.tickDt,
		Params:          spec.Parameters,
		Table:           table,
		Logger:          b.log.Named("ai"),
	}, ctrl, route)
	if err != nil {
		return err
	}
	return b.w.AddEnemy(e)
}

func buildPath(spec *config.PathSpec) (*path.Path, error) {
	mode, err := path.ParseMode(spec.Mode)
	if err != nil {
		return nil, err
	}
	points := make([]path.Waypoint, len(spec.Waypoints))
	for i, wp := range spec.Waypoints {
		points[i] = path.Waypoint{Position: wp.Position, Rotation: math.QuatFromYaw(wp.Yaw)}
	}
	return path.New(points, path.Options{
		Mode:         mode,
		ReverseAtEnd: spec.ReverseAtEnd,
		Rand:         newRand(spec.Seed),
	})
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}
