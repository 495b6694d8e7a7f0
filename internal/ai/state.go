package ai

import (
	"fmt"
)

// StateID names one of the closed set of behaviour states.
type StateID uint8

const (
	StateIdle StateID = iota
	StateWalking
	StateFlying
	StateDetect
	StateChase
	StateAttack
	StateScared
)

var stateNames = map[StateID]string{
	StateIdle:    "idle",
	StateWalking: "walking",
	StateFlying:  "flying",
	StateDetect:  "detect",
	StateChase:   "chase",
	StateAttack:  "attack",
	StateScared:  "scared",
}

func (s StateID) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StateID(%d)", uint8(s))
}

// ParseState parses a state name. "detect_player" and "iddle" are accepted
// as aliases.
func ParseState(s string) (StateID, error) {
	key := normalizeName(s)
	switch key {
	case "detectplayer":
		return StateDetect, nil
	case "iddle":
		return StateIdle, nil
	}
	for id, name := range stateNames {
		if name == key {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// State is a behaviour run by the enemy scheduler. Enter and Exit bracket
// every stay in the state; Update runs once per tick in between.
type State interface {
	ID() StateID
	Enter(e *Enemy)
	Update(e *Enemy, dt float32)
	Exit(e *Enemy)
}

// triggerHandler is implemented by states that react to trigger contacts.
type triggerHandler interface {
	OnTrigger(e *Enemy, other Target)
}
