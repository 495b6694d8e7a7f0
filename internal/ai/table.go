package ai

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownState is returned for a state name outside the closed set.
	ErrUnknownState = errors.New("ai: unknown state")
	// ErrInvalidTransition is returned for a malformed transition entry.
	ErrInvalidTransition = errors.New("ai: invalid transition")
)

// Table maps (state, raised flag) to the next state.
type Table map[StateID]map[Flag]StateID

// DefaultTable returns the built-in transition table.
func DefaultTable() Table {
	return Table{
		StateIdle: {
			FlagTimer:  StateWalking,
			FlagDetect: StateDetect,
			FlagGoAway: StateScared,
		},
		StateWalking: {
			FlagTimer:  StateIdle,
			FlagDetect: StateDetect,
			FlagGoAway: StateScared,
		},
		StateFlying: {
			FlagDetect: StateDetect,
		},
		StateDetect: {
			FlagTimer:   StateChase,
			FlagNear:    StateChase,
			FlagReached: StateAttack,
			FlagGoAway:  StateScared,
		},
		StateChase: {
			FlagReached: StateAttack,
			FlagNear:    StateAttack,
			FlagGoAway:  StateScared,
			FlagTimer:   StateWalking,
		},
		StateAttack: {
			FlagTimer:  StateChase,
			FlagGoAway: StateScared,
		},
		StateScared: {
			FlagTimer: StateWalking,
		},
	}
}

// ParseTable builds a table from names as authored in scenario files:
// from-state -> flag -> to-state. Entries override the default table; an
// empty inner map removes every transition out of that state.
func ParseTable(raw map[string]map[string]string) (Table, error) {
	t := DefaultTable()
	froms := make([]string, 0, len(raw))
	for from := range raw {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	for _, fromName := range froms {
		from, err := ParseState(fromName)
		if err != nil {
			return nil, fmt.Errorf("transition from %q: %w", fromName, err)
		}
		edges := raw[fromName]
		if len(edges) == 0 {
			t[from] = map[Flag]StateID{}
			continue
		}
		if t[from] == nil {
			t[from] = map[Flag]StateID{}
		}
		for flagName, toName := range edges {
			flag, err := ParseFlag(flagName)
			if err != nil {
				return nil, fmt.Errorf("transition from %q: %w", fromName, err)
			}
			to, err := ParseState(toName)
			if err != nil {
				return nil, fmt.Errorf("transition %s.%s: %w", fromName, flagName, err)
			}
			if to == from {
				return nil, fmt.Errorf("%w: %s loops back to itself on %s", ErrInvalidTransition, from, flag)
			}
			t[from][flag] = to
		}
	}
	return t, nil
}

// Next returns the state to switch to given the raised flags.
func (t Table) Next(from StateID, flags Flags) (StateID, bool) {
	edges := t[from]
	if len(edges) == 0 {
		return from, false
	}
	for _, f := range flagPriority {
		if !flags.Get(f) {
			continue
		}
		if to, ok := edges[f]; ok {
			return to, true
		}
	}
	return from, false
}
