package parking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrZoneNotFound        = errors.New("zone not found")
	ErrNoSlot              = errors.New("no slot available")
	ErrRequestNotFound     = errors.New("request not found")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrInvalidState        = errors.New("invalid state")
	ErrInvalidCount        = errors.New("invalid rollback count")
	ErrInsufficientHistory = errors.New("insufficient rollback history")
)

// TransitionError reports an edge that is not in the lifecycle table.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StateError reports an operation invoked while a request was not in one of
// the required states.
type StateError struct {
	RequestID string
	Actual    State
	Required  []State
}

func (e *StateError) Error() string {
	req := make([]string, len(e.Required))
	for i, s := range e.Required {
		req[i] = string(s)
	}
	return fmt.Sprintf("request %s is %s, must be %s", e.RequestID, e.Actual, strings.Join(req, " or "))
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}
