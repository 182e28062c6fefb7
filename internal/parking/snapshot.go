package parking

import (
	"math"

	"github.com/zulandar/parkyard/internal/city"
)

// SlotSnapshot is a read-only view of a slot.
type SlotSnapshot struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`
	Occupant  string `json:"occupant,omitempty"`
}

// AreaSnapshot is a read-only view of an area.
type AreaSnapshot struct {
	ID    string         `json:"id"`
	Slots []SlotSnapshot `json:"slots"`
}

// ZoneSnapshot is a read-only view of a zone and its occupancy.
type ZoneSnapshot struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Adjacent    []string       `json:"adjacent"`
	Total       int            `json:"total_slots"`
	Available   int            `json:"available_slots"`
	Occupied    int            `json:"occupied_slots"`
	Utilization float64        `json:"utilization"` // percent, 2 dp
	Areas       []AreaSnapshot `json:"areas"`
}

// SystemSnapshot aggregates every zone plus request and ledger counters.
type SystemSnapshot struct {
	Zones          []ZoneSnapshot `json:"zones"`
	TotalZones     int            `json:"total_zones"`
	TotalSlots     int            `json:"total_slots"`
	AvailableSlots int            `json:"available_slots"`
	OccupiedSlots  int            `json:"occupied_slots"`
	TotalRequests  int            `json:"total_requests"`
	ByState        map[State]int  `json:"by_state"`
	LedgerDepth    int            `json:"ledger_depth"`
	LedgerMaxDepth int            `json:"ledger_max_depth"`
	LedgerEvicted  int            `json:"ledger_evicted"`
}

func snapshotZone(z *city.Zone) ZoneSnapshot {
	snap := ZoneSnapshot{
		ID:       z.ID,
		Name:     z.Name,
		Adjacent: append([]string{}, z.Adjacent...),
		Areas:    make([]AreaSnapshot, 0, len(z.Areas)),
	}
	for _, a := range z.Areas {
		as := AreaSnapshot{ID: a.ID, Slots: make([]SlotSnapshot, 0, len(a.Slots))}
		for _, s := range a.Slots {
			as.Slots = append(as.Slots, SlotSnapshot{ID: s.ID, Available: s.Available, Occupant: s.Occupant})
			snap.Total++
			if s.Available {
				snap.Available++
			}
		}
		snap.Areas = append(snap.Areas, as)
	}
	snap.Occupied = snap.Total - snap.Available
	snap.Utilization = Percent(snap.Occupied, snap.Total)
	return snap
}

// Percent returns part/whole*100 rounded to two decimals, 0 for an empty whole.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
