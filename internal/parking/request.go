package parking

import (
	"fmt"
	"time"

	"github.com/zulandar/parkyard/internal/city"
)

// Vehicle is the party asking for a slot.
type Vehicle struct {
	ID            string `json:"id"`
	PreferredZone string `json:"preferred_zone,omitempty"`
}

// Request is one parking request and its lifecycle.
type Request struct {
	ID            string        `json:"id"`
	Vehicle       Vehicle       `json:"vehicle"`
	RequestedZone string        `json:"requested_zone"`
	CreatedAt     time.Time     `json:"created_at"`
	State         State         `json:"state"`
	Slot          *city.SlotRef `json:"slot,omitempty"`
	StartTime     *time.Time    `json:"start_time,omitempty"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	CrossZone     bool          `json:"cross_zone"`
}

func newRequest(id string, v Vehicle, zoneID string, now time.Time) *Request {
	return &Request{
		ID:            id,
		Vehicle:       v,
		RequestedZone: zoneID,
		CreatedAt:     now,
		State:         StateRequested,
	}
}

// Transition moves the request along a lifecycle edge. Entering occupied
// stamps StartTime and entering released stamps EndTime.
func (r *Request) Transition(to State, now time.Time) error {
	if !CanTransition(r.State, to) {
		return &TransitionError{From: r.State, To: to}
	}
	r.State = to
	switch to {
	case StateOccupied:
		t := now
		r.StartTime = &t
	case StateReleased:
		t := now
		r.EndTime = &t
	}
	return nil
}

// restore overwrites the state without consulting the transition table. Only
// the ledger's reversal path calls it; it is the one way to move backward.
func (r *Request) restore(prev State) {
	r.State = prev
	r.Slot = nil
	r.CrossZone = false
	if prev == StateRequested {
		r.StartTime = nil
	}
}

// Duration is EndTime-StartTime for a completed stay.
func (r Request) Duration() (time.Duration, bool) {
	if r.StartTime == nil || r.EndTime == nil {
		return 0, false
	}
	return r.EndTime.Sub(*r.StartTime), true
}

func (r Request) String() string {
	return fmt.Sprintf("Request(%s, %s)", r.ID, r.State)
}

// clone returns a copy that shares no pointers with r.
func (r *Request) clone() Request {
	c := *r
	if r.Slot != nil {
		s := *r.Slot
		c.Slot = &s
	}
	if r.StartTime != nil {
		t := *r.StartTime
		c.StartTime = &t
	}
	if r.EndTime != nil {
		t := *r.EndTime
		c.EndTime = &t
	}
	return c
}

// requestID renders the n-th request id, e.g. R0007.
func requestID(n int) string {
	return fmt.Sprintf("R%04d", n)
}
