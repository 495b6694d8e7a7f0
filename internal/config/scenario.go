package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/drops/internal/ai"
	"github.com/Faultbox/drops/internal/path"
	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/internal/scenario"
	"github.com/Faultbox/drops/internal/trigger"
	"github.com/Faultbox/drops/pkg/math"
)

// ErrInvalidScenario wraps every scenario validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a level document: static geometry, characters and the
// elements acting on them.
type Scenario struct {
	Name string `yaml:"name"`
	// Gravity overrides the simulation gravity when positive.
	Gravity float32 `yaml:"gravity,omitempty"`

	Colliders  []ColliderSpec  `yaml:"colliders"`
	Drops      []DropSpec      `yaml:"drops"`
	Enemies    []EnemySpec     `yaml:"enemies"`
	Cannons    []CannonSpec    `yaml:"cannons,omitempty"`
	Mushrooms  []MushroomSpec  `yaml:"mushrooms,omitempty"`
	Waters     []WaterSpec     `yaml:"waters,omitempty"`
	Winds      []WindSpec      `yaml:"winds,omitempty"`
	Detections []DetectionSpec `yaml:"detections,omitempty"`
	Scripts    []ScriptSpec    `yaml:"scripts,omitempty"`
}

// ColliderSpec is a static solid box.
type ColliderSpec struct {
	ID       string    `yaml:"id"`
	Tag      string    `yaml:"tag,omitempty"`
	Min      math.Vec3 `yaml:"min"`
	Max      math.Vec3 `yaml:"max"`
	Slippery bool      `yaml:"slippery,omitempty"`
}

// DropSpec places a player drop.
type DropSpec struct {
	ID       string    `yaml:"id"`
	Position math.Vec3 `yaml:"position"`
	Size     int       `yaml:"size"`
}

// WaypointSpec is one authored waypoint. Yaw is in degrees.
type WaypointSpec struct {
	Position math.Vec3 `yaml:"position"`
	Yaw      float32   `yaml:"yaw,omitempty"`
}

// PathSpec is a waypoint route.
type PathSpec struct {
	Mode         string         `yaml:"mode"`
	ReverseAtEnd bool           `yaml:"reverse_at_end,omitempty"`
	Seed         uint64         `yaml:"seed,omitempty"`
	Waypoints    []WaypointSpec `yaml:"waypoints"`
}

// RegionSpec is a free-roam box. Origin is the box centre.
type RegionSpec struct {
	Origin math.Vec3 `yaml:"origin"`
	Size   math.Vec3 `yaml:"size"`
	Margin float32   `yaml:"margin,omitempty"`
	Seed   uint64    `yaml:"seed,omitempty"`
}

// EnemySpec describes one AI enemy. Unset parameters keep their defaults.
type EnemySpec struct {
	ID            string     `yaml:"id"`
	Position      math.Vec3  `yaml:"position"`
	Yaw           float32    `yaml:"yaw,omitempty"`
	HalfExtents   *math.Vec3 `yaml:"half_extents,omitempty"`
	Walking       bool       `yaml:"walking"`
	OnFloor       bool       `yaml:"on_floor"`
	SizeLimitDrop int        `yaml:"size_limit_drop"`
	RotationSpeed float32    `yaml:"rotation_speed"`
	InitialState  string     `yaml:"initial_state"`

	Parameters  ai.Parameters                `yaml:"parameters"`
	Path        *PathSpec                    `yaml:"path,omitempty"`
	Region      *RegionSpec                  `yaml:"region,omitempty"`
	Transitions map[string]map[string]string `yaml:"transitions,omitempty"`
}

// UnmarshalYAML decodes over the default parameters so documents only
// carry what they change.
func (e *EnemySpec) UnmarshalYAML(n *yaml.Node) error {
	type plain EnemySpec
	p := plain{
		RotationSpeed: 180,
		InitialState:  ai.StateIdle.String(),
		Parameters:    ai.DefaultParameters(),
	}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*e = EnemySpec(p)
	return nil
}

// AreaSpec is the trigger volume of a scenario element.
type AreaSpec struct {
	Center      math.Vec3                `yaml:"center"`
	HalfExtents math.Vec3                `yaml:"half_extents"`
	Mode        string                   `yaml:"mode,omitempty"`
	Tags        []string                 `yaml:"tags,omitempty"`
	Duration    float32                  `yaml:"duration,omitempty"`
	Performer   trigger.PerformerOptions `yaml:"performer,omitempty"`
}

// Bounds returns the area box.
func (a AreaSpec) Bounds() physics.AABB { return physics.BoxAt(a.Center, a.HalfExtents) }

// CannonSpec is a cannon and the area that loads it.
type CannonSpec struct {
	scenario.CannonConfig `yaml:",inline"`
	Area                  AreaSpec `yaml:"area"`
}

// MushroomSpec is a jump mushroom and its contact area.
type MushroomSpec struct {
	scenario.MushroomConfig `yaml:",inline"`
	Area                    AreaSpec `yaml:"area"`
}

// WaterSpec is a water zone.
type WaterSpec struct {
	scenario.WaterConfig `yaml:",inline"`
	Area                 AreaSpec `yaml:"area"`
}

// WindSpec is a wind tube.
type WindSpec struct {
	scenario.WindConfig `yaml:",inline"`
	Area                AreaSpec `yaml:"area"`
}

// DetectionSpec is an enemy detection zone.
type DetectionSpec struct {
	scenario.DetectionConfig `yaml:",inline"`
	Area                     AreaSpec `yaml:"area"`
}

// ScriptSpec is a tengo action. Source wins over File; File is relative
// to the scenario document.
type ScriptSpec struct {
	ID     string   `yaml:"id"`
	Source string   `yaml:"source,omitempty"`
	File   string   `yaml:"file,omitempty"`
	On     []string `yaml:"on"`
	Area   AreaSpec `yaml:"area"`
}

// LoadScenario reads, parses and validates a scenario document. Script
// files are resolved relative to the document.
func LoadScenario(p string) (*Scenario, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	s, err := decodeScenario(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", p, err)
	}
	dir := filepath.Dir(p)
	for i := range s.Scripts {
		sc := &s.Scripts[i]
		if sc.Source != "" || sc.File == "" {
			continue
		}
		src, err := os.ReadFile(resolve(dir, sc.File))
		if err != nil {
			return nil, fmt.Errorf("script %q: %w", sc.ID, err)
		}
		sc.Source = string(src)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ScriptFiles returns the script files referenced by the document at p.
func (s *Scenario) ScriptFiles(p string) []string {
	var files []string
	dir := filepath.Dir(p)
	for _, sc := range s.Scripts {
		if sc.File != "" {
			files = append(files, resolve(dir, sc.File))
		}
	}
	return files
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// ParseScenario parses and validates a scenario document held in memory.
func ParseScenario(data []byte) (*Scenario, error) {
	s, err := decodeScenario(data)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	return &s, nil
}

// SaveTo writes the scenario as YAML.
func (s *Scenario) SaveTo(p string) error {
	return writeYAML(p, s)
}

// Validate reports every authoring error in the document.
func (s *Scenario) Validate() error {
	v := validator{seen: make(map[string]string)}

	if s.Gravity < 0 {
		v.fail("gravity is a magnitude, got %g", s.Gravity)
	}
	for _, c := range s.Colliders {
		v.unique("collider", c.ID)
		if c.Min.X > c.Max.X || c.Min.Y > c.Max.Y || c.Min.Z > c.Max.Z {
			v.fail("collider %q: min exceeds max", c.ID)
		}
	}
	for _, d := range s.Drops {
		v.unique("drop", d.ID)
		if d.Size < 1 {
			v.fail("drop %q: size must be at least 1, got %d", d.ID, d.Size)
		}
	}
	enemies := make(map[string]bool, len(s.Enemies))
	for _, e := range s.Enemies {
		v.unique("enemy", e.ID)
		enemies[e.ID] = true
		v.enemy(e)
	}
	for _, c := range s.Cannons {
		v.unique("cannon", c.ID)
		v.area("cannon", c.ID, c.Area)
	}
	for _, m := range s.Mushrooms {
		v.unique("mushroom", m.ID)
		v.area("mushroom", m.ID, m.Area)
		if m.Target == nil && m.Impulse.IsZero() {
			v.fail("mushroom %q: needs a target or an impulse", m.ID)
		}
	}
	for _, w := range s.Waters {
		v.unique("water", w.ID)
		v.area("water", w.ID, w.Area)
		if w.Delay < 0 {
			v.fail("water %q: negative delay", w.ID)
		}
	}
	for _, w := range s.Winds {
		v.unique("wind", w.ID)
		v.area("wind", w.ID, w.Area)
		if w.Direction.IsZero() {
			v.fail("wind %q: zero direction", w.ID)
		}
	}
	for _, d := range s.Detections {
		v.unique("detection", d.ID)
		v.area("detection", d.ID, d.Area)
		if !enemies[d.Enemy] {
			v.fail("detection %q: unknown enemy %q", d.ID, d.Enemy)
		}
	}
	for _, sc := range s.Scripts {
		v.unique("script", sc.ID)
		v.area("script", sc.ID, sc.Area)
		if sc.Source == "" {
			v.fail("script %q: no source", sc.ID)
		}
		if len(sc.On) == 0 {
			v.fail("script %q: no events to run on", sc.ID)
		}
		for _, on := range sc.On {
			if _, err := trigger.ParseEventKind(on); err != nil {
				v.fail("script %q: %v", sc.ID, err)
			}
		}
	}
	return errors.Join(v.errs...)
}

type validator struct {
	seen map[string]string
	errs []error
}

func (v *validator) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...)))
}

// unique checks id against every id seen so far, across kinds.
func (v *validator) unique(kind, id string) {
	if id == "" {
		v.fail("%s without id", kind)
		return
	}
	if prev, ok := v.seen[id]; ok {
		v.fail("%s %q: id already used by a %s", kind, id, prev)
		return
	}
	v.seen[id] = kind
}

func (v *validator) area(kind, id string, a AreaSpec) {
	h := a.HalfExtents
	if h.X <= 0 || h.Y <= 0 || h.Z <= 0 {
		v.fail("%s %q: area half extents must be positive", kind, id)
	}
	if _, err := trigger.ParseMode(a.Mode); err != nil {
		v.fail("%s %q: %v", kind, id, err)
	}
	if a.Duration < 0 {
		v.fail("%s %q: negative area duration", kind, id)
	}
}

func (v *validator) enemy(e EnemySpec) {
	if _, err := ai.ParseState(e.InitialState); err != nil {
		v.fail("enemy %q: %v", e.ID, err)
	}
	if e.SizeLimitDrop < 0 {
		v.fail("enemy %q: negative size limit", e.ID)
	}
	if e.Path != nil && e.Region != nil {
		v.fail("enemy %q: path and region are exclusive", e.ID)
	}
	if e.Walking && e.Path == nil && e.Region == nil {
		v.fail("enemy %q: walks without a path or region", e.ID)
	}
	if e.Path != nil {
		if len(e.Path.Waypoints) == 0 {
			v.fail("enemy %q: %v", e.ID, path.ErrEmptyPath)
		}
		if _, err := path.ParseMode(e.Path.Mode); err != nil {
			v.fail("enemy %q: %v", e.ID, err)
		}
	}
	if e.Region != nil {
		if _, err := path.NewRegion(e.Region.Origin, e.Region.Size); err != nil {
			v.fail("enemy %q: %v", e.ID, err)
		}
	}
	if len(e.Transitions) > 0 {
		if _, err := ai.ParseTable(e.Transitions); err != nil {
			v.fail("enemy %q: %v", e.ID, err)
		}
	}
}
