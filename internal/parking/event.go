package parking

import (
	"time"

	"github.com/zulandar/parkyard/internal/city"
)

// EventKind names a committed change in the system.
type EventKind string

const (
	EventCreated          EventKind = "created"
	EventAllocated        EventKind = "allocated"
	EventAllocationFailed EventKind = "allocation_failed"
	EventArrived          EventKind = "arrived"
	EventDeparted         EventKind = "departed"
	EventCancelled        EventKind = "cancelled"
	EventRolledBack       EventKind = "rolled_back"
	EventLedgerEvicted    EventKind = "ledger_evicted"
)

// Event describes one change after it has been committed.
type Event struct {
	Kind      EventKind     `json:"kind"`
	RequestID string        `json:"request_id"`
	VehicleID string        `json:"vehicle_id,omitempty"`
	ZoneID    string        `json:"zone_id,omitempty"`
	Slot      *city.SlotRef `json:"slot,omitempty"`
	CrossZone bool          `json:"cross_zone,omitempty"`
	From      State         `json:"from,omitempty"`
	To        State         `json:"to,omitempty"`
	At        time.Time     `json:"at"`
	Detail    string        `json:"detail,omitempty"`
}

// Observer receives events synchronously, in commit order. Implementations
// must not call back into the System.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
