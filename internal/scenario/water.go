package scenario

import (
	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/physics"
	"github.com/Faultbox/drops/internal/trigger"
	"github.com/Faultbox/drops/pkg/math"
)

// WaterConfig describes a water zone that expels characters.
type WaterConfig struct {
	ID string `yaml:"id"`
	// Delay in seconds between entering the water and being expelled.
	Delay float32 `yaml:"delay"`
	// Target is where expelled characters land.
	Target math.Vec3 `yaml:"target"`
	Angle  float32   `yaml:"angle"`
}

type expulsion struct {
	character trigger.Character
	remaining float32
}

// WaterRepulsion expels characters after they have been in the water for
// Delay seconds. Leaving the water cancels the pending expulsion. It is a
// trigger.Listener and must be ticked with Update.
type WaterRepulsion struct {
	cfg     WaterConfig
	log     *zap.Logger
	pending []*expulsion
}

// NewWaterRepulsion creates a water zone. log may be nil.
func NewWaterRepulsion(cfg WaterConfig, log *zap.Logger) *WaterRepulsion {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	return &WaterRepulsion{cfg: cfg, log: log.With(zap.String("water", cfg.ID))}
}

// OnTrigger schedules an expulsion on entry and cancels it on exit.
func (w *WaterRepulsion) OnTrigger(ev trigger.Event) {
	c, ok := ev.Body.(trigger.Character)
	if !ok {
		return
	}
	switch ev.Kind {
	case trigger.EventEnter:
		if w.find(c.ID()) >= 0 {
			return
		}
		w.pending = append(w.pending, &expulsion{character: c, remaining: w.cfg.Delay})
	case trigger.EventExit:
		w.Cancel(c.ID())
	}
}

// Update counts pending expulsions down and fires the expired ones.
func (w *WaterRepulsion) Update(dt float32) {
	kept := w.pending[:0]
	for _, p := range w.pending {
		p.remaining -= dt
		if p.remaining > 0 {
			kept = append(kept, p)
			continue
		}
		w.expel(p.character)
	}
	clear(w.pending[len(kept):])
	w.pending = kept
}

// Cancel drops the pending expulsion of the character with the given ID.
func (w *WaterRepulsion) Cancel(id string) bool {
	i := w.find(id)
	if i < 0 {
		return false
	}
	w.pending = append(w.pending[:i], w.pending[i+1:]...)
	return true
}

// Reset cancels every pending expulsion.
func (w *WaterRepulsion) Reset() {
	w.pending = nil
}

// Pending returns the number of scheduled expulsions.
func (w *WaterRepulsion) Pending() int { return len(w.pending) }

func (w *WaterRepulsion) find(id string) int {
	for i, p := range w.pending {
		if p.character.ID() == id {
			return i
		}
	}
	return -1
}

func (w *WaterRepulsion) expel(c trigger.Character) {
	ctrl := c.Controller()
	if ctrl == nil {
		return
	}
	if launch(w.log, ctrl, shot{
		origin:      ctrl.Position(),
		target:      w.cfg.Target,
		angle:       w.cfg.Angle,
		loseControl: true,
		reload:      true,
	}) {
		w.log.Debug("expelled", zap.String("character", c.ID()))
	}
}

// WindConfig describes a wind tube.
type WindConfig struct {
	ID        string    `yaml:"id"`
	Direction math.Vec3 `yaml:"direction"`
	Strength  float32   `yaml:"strength"`
}

// WindTube accelerates characters inside it along its direction.
type WindTube struct {
	cfg   WindConfig
	accel math.Vec3
}

// NewWindTube creates a wind tube.
func NewWindTube(cfg WindConfig) *WindTube {
	return &WindTube{cfg: cfg, accel: cfg.Direction.Normalize().Scale(cfg.Strength)}
}

// DoAction pushes b for the current tick.
func (w *WindTube) DoAction(b trigger.Body) bool {
	ctrl := controllerOf(b)
	if ctrl == nil || w.accel.IsZero() {
		return false
	}
	ctrl.AddForce(w.accel, physics.ForceModeAcceleration)
	return true
}
