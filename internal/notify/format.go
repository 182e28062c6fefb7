package notify

import (
	"fmt"

	"github.com/zulandar/parkyard/internal/parking"
)

// Sidebar colors by severity.
const (
	ColorInfo    = "#439fe0"
	ColorWarning = "#daa038"
	ColorError   = "#d00000"
)

// FormatEvent builds the alert for e. Only failed allocations, ledger
// evictions and cross-zone allocations produce one.
func FormatEvent(e parking.Event) (Alert, bool) {
	switch {
	case e.Kind == parking.EventAllocationFailed:
		return Alert{
			Title:    fmt.Sprintf("No slot for %s", e.RequestID),
			Body:     e.Detail,
			Severity: "warning",
			Color:    ColorWarning,
			Fields: []Field{
				{Name: "Vehicle", Value: e.VehicleID, Short: true},
				{Name: "Zone", Value: e.ZoneID, Short: true},
			},
		}, true

	case e.Kind == parking.EventLedgerEvicted:
		slot := ""
		if e.Slot != nil {
			slot = e.Slot.String()
		}
		return Alert{
			Title:    "Rollback ledger full",
			Body:     fmt.Sprintf("Allocation of %s can no longer be rolled back (%s).", e.RequestID, e.Detail),
			Severity: "error",
			Color:    ColorError,
			Fields: []Field{
				{Name: "Request", Value: e.RequestID, Short: true},
				{Name: "Slot", Value: slot, Short: true},
			},
		}, true

	case e.Kind == parking.EventAllocated && e.CrossZone:
		slot := ""
		if e.Slot != nil {
			slot = e.Slot.String()
		}
		return Alert{
			Title:    fmt.Sprintf("%s parked outside %s", e.VehicleID, e.ZoneID),
			Body:     fmt.Sprintf("Zone %s is full; %s was placed in %s.", e.ZoneID, e.RequestID, slot),
			Severity: "info",
			Color:    ColorInfo,
			Fields: []Field{
				{Name: "Request", Value: e.RequestID, Short: true},
				{Name: "Slot", Value: slot, Short: true},
			},
		}, true
	}
	return Alert{}, false
}
