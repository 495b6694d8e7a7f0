package ai

import (
	"fmt"
	"strings"
)

// Flag is a transition flag raised by a state during its update.
type Flag uint8

const (
	FlagDetect Flag = iota
	FlagTimer
	FlagGoAway
	FlagReached
	FlagNear
)

// flagPriority is the order in which raised flags are matched against the
// transition table.
var flagPriority = [...]Flag{FlagGoAway, FlagReached, FlagNear, FlagDetect, FlagTimer}

var flagNames = map[Flag]string{
	FlagDetect:  "detect",
	FlagTimer:   "timer",
	FlagGoAway:  "go_away",
	FlagReached: "reached",
	FlagNear:    "near",
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

// ParseFlag parses a flag name. Both snake_case and the CamelCase form
// ("GoAway") are accepted.
func ParseFlag(s string) (Flag, error) {
	key := normalizeName(s)
	for f, name := range flagNames {
		if normalizeName(name) == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown flag %q", ErrInvalidTransition, s)
}

// Flags is the per-tick state an enemy exposes to its transition table
// and to anything mirroring it to an animation graph.
type Flags struct {
	Detect  bool
	Timer   bool
	GoAway  bool
	Reached bool
	Near    bool

	// SizeDrop mirrors the current drop's size, 0 without a drop.
	SizeDrop int
	// AirAttack is true while an attack happens off the ground.
	AirAttack bool
}

// Clear resets the five transition flags.
func (f *Flags) Clear() {
	f.Detect = false
	f.Timer = false
	f.GoAway = false
	f.Reached = false
	f.Near = false
}

// Get reports whether flag is raised.
func (f Flags) Get(flag Flag) bool {
	switch flag {
	case FlagDetect:
		return f.Detect
	case FlagTimer:
		return f.Timer
	case FlagGoAway:
		return f.GoAway
	case FlagReached:
		return f.Reached
	case FlagNear:
		return f.Near
	}
	return false
}

// Set raises or lowers flag.
func (f *Flags) Set(flag Flag, v bool) {
	switch flag {
	case FlagDetect:
		f.Detect = v
	case FlagTimer:
		f.Timer = v
	case FlagGoAway:
		f.GoAway = v
	case FlagReached:
		f.Reached = v
	case FlagNear:
		f.Near = v
	}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}
