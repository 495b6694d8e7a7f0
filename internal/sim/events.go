package sim

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/ai"
	"github.com/Faultbox/drops/pkg/math"
)

// Stats summarises a world for periodic reports.
type Stats struct {
	Frame   uint64
	Time    float64
	Drops   int
	Flying  int
	Enemies map[ai.StateID]int
	Faults  int

	Attacks int
	Chases  int
	Scares  int
}

// eventLog records enemy notifications for Stats and logs them.
type eventLog struct {
	ai.NopListener
	log *zap.Logger

	attacks int
	chases  int
	scares  int
}

func newEventLog(log *zap.Logger) *eventLog {
	return &eventLog{log: log.Named("events")}
}

func (l *eventLog) OnBeginChase(e *ai.Enemy) {
	l.chases++
	l.log.Debug("chase started", zap.String("entity", e.ID()))
}

func (l *eventLog) OnAttack(e *ai.Enemy, t ai.Target, v math.Vec3) {
	l.attacks++
	l.log.Info("attack",
		zap.String("entity", e.ID()),
		zap.String("target", t.ID()),
		zap.Float32("speed", v.Length()))
}

func (l *eventLog) OnBeingScared(e *ai.Enemy, t ai.Target, limit int) {
	l.scares++
	if t == nil {
		l.log.Info("scared", zap.String("entity", e.ID()), zap.Int("limit", limit))
		return
	}
	l.log.Info("scared",
		zap.String("entity", e.ID()),
		zap.String("target", t.ID()),
		zap.Int("size", t.Size()),
		zap.Int("limit", limit))
}

// Stats returns a snapshot of the world.
func (w *World) Stats() Stats {
	s := Stats{
		Frame:   w.frame,
		Time:    w.time,
		Drops:   len(w.drops),
		Enemies: make(map[ai.StateID]int),
		Faults:  len(w.faults),
		Attacks: w.stats.attacks,
		Chases:  w.stats.chases,
		Scares:  w.stats.scares,
	}
	for _, d := range w.drops {
		if d.ctrl.IsFlying() {
			s.Flying++
		}
	}
	for _, e := range w.enemies {
		s.Enemies[e.State()]++
	}
	return s
}

// Fields renders the snapshot as log fields.
func (s Stats) Fields() []zap.Field {
	fields := []zap.Field{
		zap.Uint64("frame", s.Frame),
		zap.Float64("time", s.Time),
		zap.Int("drops", s.Drops),
		zap.Int("flying", s.Flying),
		zap.Int("attacks", s.Attacks),
		zap.Int("chases", s.Chases),
		zap.Int("scares", s.Scares),
		zap.Int("faults", s.Faults),
	}
	states := make([]ai.StateID, 0, len(s.Enemies))
	for state := range s.Enemies {
		states = append(states, state)
	}
	slices.Sort(states)
	for _, state := range states {
		fields = append(fields, zap.Int("enemies_"+state.String(), s.Enemies[state]))
	}
	return fields
}
