// Package parking implements the request lifecycle, slot allocation and the
// rollback ledger, coordinated by System.
package parking

import "fmt"

// State is a request lifecycle state.
type State string

const (
	StateRequested State = "requested"
	StateAllocated State = "allocated"
	StateOccupied  State = "occupied"
	StateReleased  State = "released"
	StateCancelled State = "cancelled"
)

// States lists every state in lifecycle order.
var States = []State{StateRequested, StateAllocated, StateOccupied, StateReleased, StateCancelled}

// ValidTransitions maps each state to its valid next states. Terminal states
// map to nothing.
var ValidTransitions = map[State][]State{
	StateRequested: {StateAllocated, StateCancelled},
	StateAllocated: {StateOccupied, StateCancelled},
	StateOccupied:  {StateReleased},
	StateReleased:  {},
	StateCancelled: {},
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to State) bool {
	for _, v := range ValidTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transitions leave s.
func (s State) IsTerminal() bool {
	next, ok := ValidTransitions[s]
	return ok && len(next) == 0
}

// Valid reports whether s is one of the five lifecycle states.
func (s State) Valid() bool {
	_, ok := ValidTransitions[s]
	return ok
}

// ParseState converts a string to a State.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("parking: unknown state %q", s)
	}
	return st, nil
}
