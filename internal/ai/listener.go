package ai

import (
	"github.com/Faultbox/drops/pkg/math"
)

// Listener receives cosmetic enemy notifications. Calls are synchronous
// and a panicking listener is logged and ignored. OnBeingScared gets a nil
// target when the state is entered without a tracked drop.
type Listener interface {
	OnBeginChase(e *Enemy)
	OnEndChase(e *Enemy)
	OnAttack(e *Enemy, target Target, velocity math.Vec3)
	OnBeingScared(e *Enemy, target Target, sizeLimit int)
	OnStateAnimationChange(e *Enemy, previous, next StateID)
}

// NopListener implements Listener with no-ops. Embed it to override only
// some callbacks.
type NopListener struct{}

func (NopListener) OnBeginChase(*Enemy) {}
func (NopListener) OnEndChase(*Enemy) {}
func (NopListener) OnAttack(*Enemy, Target, math.Vec3) {}
func (NopListener) OnBeingScared(*Enemy, Target, int) {}
func (NopListener) OnStateAnimationChange(*Enemy, StateID, StateID) {}
