// Package analytics aggregates request history and occupancy snapshots into
// usage statistics. Every function is read-only over its inputs.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/zulandar/parkyard/internal/parking"
)

// ZoneUsage is the occupancy of one zone.
type ZoneUsage struct {
	ZoneID      string  `json:"zone_id"`
	ZoneName    string  `json:"zone_name"`
	Utilization float64 `json:"utilization"`
	Occupied    int     `json:"occupied_slots"`
	Total       int     `json:"total_slots"`
}

// Outcomes counts requests by how they ended.
type Outcomes struct {
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Active    int `json:"active"`
	Total     int `json:"total"`
}

// CrossZoneStats summarises how often allocation fell back to a neighbour.
type CrossZoneStats struct {
	TotalAllocations int     `json:"total_allocations"`
	CrossZone        int     `json:"cross_zone_allocations"`
	Percentage       float64 `json:"cross_zone_percentage"`
}

// ZoneCount is the number of requests that asked for one zone.
type ZoneCount struct {
	ZoneID string `json:"zone_id"`
	Count  int    `json:"count"`
}

// AverageDuration is the mean occupied time of released requests. ok is
// false when nothing has completed.
func AverageDuration(history []parking.Request) (avg time.Duration, ok bool) {
	var total time.Duration
	n := 0
	for _, r := range history {
		if r.State != parking.StateReleased {
			continue
		}
		d, has := r.Duration()
		if !has {
			continue
		}
		total += d
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / time.Duration(n), true
}

// Hours converts d to hours rounded to two decimals.
func Hours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

// ZoneUtilization returns every zone's occupancy in directory order. Zones
// without slots report 0.
func ZoneUtilization(snap parking.SystemSnapshot) []ZoneUsage {
	out := make([]ZoneUsage, 0, len(snap.Zones))
	for _, z := range snap.Zones {
		out = append(out, usageOf(z))
	}
	return out
}

// CountOutcomes classifies every request in history.
func CountOutcomes(history []parking.Request) Outcomes {
	o := Outcomes{Total: len(history)}
	for _, r := range history {
		switch r.State {
		case parking.StateReleased:
			o.Completed++
		case parking.StateCancelled:
			o.Cancelled++
		default:
			o.Active++
		}
	}
	return o
}

// PeakZones returns zones with at least one slot ordered by utilization,
// highest first. Ties keep directory order. n <= 0 returns all of them.
func PeakZones(snap parking.SystemSnapshot, n int) []ZoneUsage {
	var out []ZoneUsage
	for _, z := range snap.Zones {
		if z.Total == 0 {
			continue
		}
		out = append(out, usageOf(z))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Utilization > out[j].Utilization
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CrossZone counts requests that hold or held a slot and how many of those
// were placed outside their requested zone.
func CrossZone(history []parking.Request) CrossZoneStats {
	var s CrossZoneStats
	for _, r := range history {
		switch r.State {
		case parking.StateAllocated, parking.StateOccupied, parking.StateReleased:
		default:
			continue
		}
		s.TotalAllocations++
		if r.CrossZone {
			s.CrossZone++
		}
	}
	s.Percentage = parking.Percent(s.CrossZone, s.TotalAllocations)
	return s
}

// Distribution counts requests per requested zone for each of zoneIDs, in
// that order. Requests for zones outside zoneIDs are not counted.
func Distribution(history []parking.Request, zoneIDs []string) []ZoneCount {
	counts := make(map[string]int, len(zoneIDs))
	for _, r := range history {
		counts[r.RequestedZone]++
	}
	out := make([]ZoneCount, len(zoneIDs))
	for i, id := range zoneIDs {
		out[i] = ZoneCount{ZoneID: id, Count: counts[id]}
	}
	return out
}

func usageOf(z parking.ZoneSnapshot) ZoneUsage {
	return ZoneUsage{
		ZoneID:      z.ID,
		ZoneName:    z.Name,
		Utilization: z.Utilization,
		Occupied:    z.Occupied,
		Total:       z.Total,
	}
}
