package analytics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zulandar/parkyard/internal/parking"
)

// PeakCount is how many peak zones the text report lists.
const PeakCount = 3

// Summary is the slot totals of the whole city.
type Summary struct {
	TotalZones     int `json:"total_zones"`
	TotalSlots     int `json:"total_slots"`
	AvailableSlots int `json:"available_slots"`
	OccupiedSlots  int `json:"occupied_slots"`
}

// Export is every statistic computed at one instant.
type Export struct {
	Timestamp            time.Time      `json:"timestamp"`
	System               Summary        `json:"system_summary"`
	AverageDurationHours *float64       `json:"average_duration_hours"`
	ZoneUtilization      []ZoneUsage    `json:"zone_utilization"`
	Requests             Outcomes       `json:"request_statistics"`
	PeakZones            []ZoneUsage    `json:"peak_usage_zones"`
	CrossZone            CrossZoneStats `json:"cross_zone_statistics"`
	Distribution         []ZoneCount    `json:"request_distribution"`
}

// Build computes an Export from a history and a snapshot taken together.
func Build(history []parking.Request, snap parking.SystemSnapshot, now time.Time) Export {
	zoneIDs := make([]string, len(snap.Zones))
	for i, z := range snap.Zones {
		zoneIDs[i] = z.ID
	}

	e := Export{
		Timestamp: now,
		System: Summary{
			TotalZones:     snap.TotalZones,
			TotalSlots:     snap.TotalSlots,
			AvailableSlots: snap.AvailableSlots,
			OccupiedSlots:  snap.OccupiedSlots,
		},
		ZoneUtilization: ZoneUtilization(snap),
		Requests:        CountOutcomes(history),
		PeakZones:       PeakZones(snap, 0),
		CrossZone:       CrossZone(history),
		Distribution:    Distribution(history, zoneIDs),
	}
	if avg, ok := AverageDuration(history); ok {
		h := Hours(avg)
		e.AverageDurationHours = &h
	}
	return e
}

// WriteReport renders e as the plain-text analytics report.
func (e Export) WriteReport(w io.Writer) error {
	rule := strings.Repeat("=", 60)
	sub := strings.Repeat("-", 60)
	names := make(map[string]string, len(e.ZoneUtilization))
	for _, z := range e.ZoneUtilization {
		names[z.ZoneID] = z.ZoneName
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	section := func(title string) {
		line("")
		line("%s", title)
		line("%s", sub)
	}

	line("%s", rule)
	line("PARKING SYSTEM ANALYTICS REPORT")
	line("%s", rule)
	line("Generated: %s", e.Timestamp.Format("2006-01-02 15:04:05"))

	section("SYSTEM SUMMARY")
	line("Total Zones: %d", e.System.TotalZones)
	line("Total Slots: %d", e.System.TotalSlots)
	line("Available Slots: %d", e.System.AvailableSlots)
	line("Occupied Slots: %d", e.System.OccupiedSlots)

	section("REQUEST STATISTICS")
	line("Total Requests: %d", e.Requests.Total)
	line("Completed: %d", e.Requests.Completed)
	line("Cancelled: %d", e.Requests.Cancelled)
	line("Active: %d", e.Requests.Active)

	section("PARKING DURATION")
	if e.AverageDurationHours != nil {
		line("Average Duration: %.2f hours", *e.AverageDurationHours)
	} else {
		line("Average Duration: N/A (no completed trips)")
	}

	section("ZONE UTILIZATION")
	for _, z := range e.ZoneUtilization {
		line("%s (%s): %.2f%%", z.ZoneName, z.ZoneID, z.Utilization)
	}

	section(fmt.Sprintf("PEAK USAGE ZONES (Top %d)", PeakCount))
	for i, z := range e.PeakZones {
		if i == PeakCount {
			break
		}
		line("%d. %s (%s): %.2f%% (%d/%d slots)", i+1, z.ZoneName, z.ZoneID, z.Utilization, z.Occupied, z.Total)
	}

	section("CROSS-ZONE ALLOCATIONS")
	line("Total Allocations: %d", e.CrossZone.TotalAllocations)
	line("Cross-Zone: %d (%.2f%%)", e.CrossZone.CrossZone, e.CrossZone.Percentage)

	section("REQUEST DISTRIBUTION BY ZONE")
	for _, d := range e.Distribution {
		line("%s (%s): %d requests", names[d.ZoneID], d.ZoneID, d.Count)
	}
	line("")
	line("%s", rule)

	_, err := io.WriteString(w, b.String())
	return err
}
