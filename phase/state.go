package phase

import "fmt"

// State is the phase state of a tracked participant.
type State uint8

const (
	// StateNormal is the state of a tracked participant that is not phasing.
	StateNormal State = iota
	// StateEntering is held for the tick between requesting the phasing mode and applying it.
	StateEntering
	// StatePhasing is the state of a participant that moves through obstacles.
	StatePhasing
	// StateExiting is held for the tick between requesting the prior mode back and applying it.
	StateExiting
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateEntering:
		return "entering"
	case StatePhasing:
		return "phasing"
	case StateExiting:
		return "exiting"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ExitReason is the reason a participant stopped phasing.
type ExitReason uint8

const (
	ExitReasonNone ExitReason = iota
	// ExitReasonDebounce is used when the participant stayed below the exit speed for long enough.
	ExitReasonDebounce
	// ExitReasonPathClear is used when the obstruction re-check found the path ahead clear.
	ExitReasonPathClear
)

func (r ExitReason) String() string {
	switch r {
	case ExitReasonNone:
		return "none"
	case ExitReasonDebounce:
		return "debounce"
	case ExitReasonPathClear:
		return "path clear"
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}
