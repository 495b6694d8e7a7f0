// Package trigger dispatches actions when bodies enter, stay in or leave
// trigger areas.
package trigger

import (
	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/physics"
)

// Body is anything that can be inside a trigger area.
type Body interface {
	ID() string
	Tag() string
	Bounds() physics.AABB
}

// Character is a Body with a size and a controller, such as a drop.
type Character interface {
	Body
	Size() int
	Controller() *physics.Controller
}

// Action runs against a body and reports success.
type Action interface {
	DoAction(b Body) bool
}

// ActionFunc adapts a function to Action.
type ActionFunc func(b Body) bool

// DoAction calls f.
func (f ActionFunc) DoAction(b Body) bool { return f(b) }

// PerformerOptions configures a Performer.
type PerformerOptions struct {
	// OnlyOncePerFrame drops every invocation after the first in a frame.
	OnlyOncePerFrame bool `yaml:"only_once_per_frame"`
	// AutoDisable disables the performer after its first success.
	AutoDisable bool `yaml:"auto_disable"`
}

// Performer guards an Action with per-frame and auto-disable rules.
type Performer struct {
	name   string
	action Action
	opts   PerformerOptions
	log    *zap.Logger

	enabled   bool
	ran       bool
	lastFrame uint64
}

// NewPerformer wraps action. log may be nil.
func NewPerformer(name string, action Action, opts PerformerOptions, log *zap.Logger) *Performer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Performer{
		name:    name,
		action:  action,
		opts:    opts,
		log:     log.With(zap.String("action", name)),
		enabled: true,
	}
}

// Name returns the performer name.
func (p *Performer) Name() string { return p.name }

// Enabled reports whether the performer accepts invocations.
func (p *Performer) Enabled() bool { return p.enabled }

// SetEnabled enables or disables the performer.
func (p *Performer) SetEnabled(on bool) { p.enabled = on }

// Perform runs the action for b during frame. A panicking action counts
// as a failure.
func (p *Performer) Perform(frame uint64, b Body) (ok bool) {
	if !p.enabled || p.action == nil {
		return false
	}
	if p.opts.OnlyOncePerFrame && p.ran && p.lastFrame == frame {
		return false
	}
	p.ran = true
	p.lastFrame = frame

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("action panicked", zap.Any("panic", r), zap.String("body", b.ID()))
			ok = false
		}
		if ok && p.opts.AutoDisable {
			p.enabled = false
		}
	}()
	return p.action.DoAction(b)
}
