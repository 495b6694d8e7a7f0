package scenario

import (
	"github.com/Faultbox/drops/internal/ai"
	"github.com/Faultbox/drops/internal/trigger"
)

// DetectionConfig describes a zone that alerts an enemy.
type DetectionConfig struct {
	ID    string `yaml:"id"`
	Enemy string `yaml:"enemy"`
	// Priority assigns the drop forcibly, overriding normal acquisition.
	Priority bool `yaml:"priority"`
	// LoseOnExit releases the drop when it leaves the zone.
	LoseOnExit bool `yaml:"lose_on_exit"`
}

// DetectionZone hands drops entering it to an enemy.
type DetectionZone struct {
	cfg   DetectionConfig
	enemy *ai.Enemy
}

// NewDetectionZone binds a zone to enemy.
func NewDetectionZone(cfg DetectionConfig, enemy *ai.Enemy) *DetectionZone {
	return &DetectionZone{cfg: cfg, enemy: enemy}
}

// OnTrigger implements trigger.Listener.
func (d *DetectionZone) OnTrigger(ev trigger.Event) {
	t, ok := ev.Body.(ai.Target)
	if !ok || d.enemy == nil {
		return
	}
	switch ev.Kind {
	case trigger.EventEnter:
		d.enemy.Detect(t, d.cfg.Priority)
	case trigger.EventExit:
		if d.cfg.LoseOnExit {
			d.enemy.Lose(t)
		}
	}
}
