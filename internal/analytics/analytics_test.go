package analytics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/parkyard/internal/city"
	"github.com/zulandar/parkyard/internal/clock"
	"github.com/zulandar/parkyard/internal/parking"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// sampleActivity drives the sample city through a small, known workload:
//
//	V1 ZA  parked 2h, departed   (released)
//	V2 ZA  parked 1h, departed   (released)
//	V3 ZA  allocated             (active)
//	V4 ZD  cancelled             (cancelled)
//	V5-V9  fill ZA               (active)
//	V10 ZA cross-zone into ZB    (active)
func sampleActivity(t *testing.T) *parking.System {
	t.Helper()
	clk := clock.NewManual(t0)
	s := parking.New(city.Sample(), parking.Options{Clock: clk})

	park := func(vehicle, zone string) parking.Request {
		t.Helper()
		r, _, err := s.Park(parking.Vehicle{ID: vehicle}, zone)
		if err != nil {
			t.Fatalf("park %s: %v", vehicle, err)
		}
		return r
	}

	r1 := park("V1", "ZA")
	r2 := park("V2", "ZA")
	s.MarkArrived(r1.ID)
	s.MarkArrived(r2.ID)
	clk.Advance(time.Hour)
	s.MarkDeparted(r2.ID)
	clk.Advance(time.Hour)
	s.MarkDeparted(r1.ID)

	park("V3", "ZA")
	r4 := park("V4", "ZD")
	if _, err := s.Cancel(r4.ID); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"V5", "V6", "V7", "V8", "V9"} {
		park(v, "ZA")
	}
	r10 := park("V10", "ZA")
	if !r10.CrossZone {
		t.Fatalf("V10 should be cross-zone, got %+v", r10)
	}
	return s
}

func TestAverageDuration(t *testing.T) {
	s := sampleActivity(t)
	avg, ok := AverageDuration(s.History())
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if avg != 90*time.Minute {
		t.Errorf("avg = %v, want 1h30m", avg)
	}
	if got := Hours(avg); got != 1.5 {
		t.Errorf("Hours = %v, want 1.5", got)
	}
}

func TestAverageDuration_None(t *testing.T) {
	if _, ok := AverageDuration(nil); ok {
		t.Error("ok = true for empty history")
	}
}

func TestCountOutcomes(t *testing.T) {
	got := CountOutcomes(sampleActivity(t).History())
	want := Outcomes{Completed: 2, Cancelled: 1, Active: 7, Total: 10}
	if got != want {
		t.Errorf("CountOutcomes = %+v, want %+v", got, want)
	}
}

func TestZoneUtilization(t *testing.T) {
	s := sampleActivity(t)
	got := ZoneUtilization(s.SystemSnapshot())
	want := map[string]float64{"ZA": 100, "ZB": 25, "ZC": 0, "ZD": 0}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for _, z := range got {
		if z.Utilization != want[z.ZoneID] {
			t.Errorf("%s utilization = %v, want %v", z.ZoneID, z.Utilization, want[z.ZoneID])
		}
	}
	if got[0].ZoneID != "ZA" || got[3].ZoneID != "ZD" {
		t.Error("zones should be in directory order")
	}
}

func TestPeakZones(t *testing.T) {
	snap := sampleActivity(t).SystemSnapshot()

	got := PeakZones(snap, 0)
	var ids []string
	for _, z := range got {
		ids = append(ids, z.ZoneID)
	}
	if strings.Join(ids, ",") != "ZA,ZB,ZC,ZD" {
		t.Errorf("order = %v, want ZA,ZB,ZC,ZD (ties keep directory order)", ids)
	}
	if top := PeakZones(snap, 1); len(top) != 1 || top[0].ZoneID != "ZA" || top[0].Occupied != 6 || top[0].Total != 6 {
		t.Errorf("PeakZones(1) = %+v", top)
	}
}

func TestPeakZones_SkipsEmptyZones(t *testing.T) {
	snap := parking.SystemSnapshot{Zones: []parking.ZoneSnapshot{
		{ID: "E", Total: 0},
		{ID: "F", Total: 2, Occupied: 1, Utilization: 50},
	}}
	got := PeakZones(snap, 0)
	if len(got) != 1 || got[0].ZoneID != "F" {
		t.Errorf("PeakZones = %+v", got)
	}
}

func TestCrossZone(t *testing.T) {
	got := CrossZone(sampleActivity(t).History())
	want := CrossZoneStats{TotalAllocations: 9, CrossZone: 1, Percentage: 11.11}
	if got != want {
		t.Errorf("CrossZone = %+v, want %+v", got, want)
	}
	if empty := CrossZone(nil); empty != (CrossZoneStats{}) {
		t.Errorf("CrossZone(nil) = %+v", empty)
	}
}

func TestDistribution(t *testing.T) {
	s := sampleActivity(t)
	got := Distribution(s.History(), s.ZoneIDs())
	want := []ZoneCount{{"ZA", 9}, {"ZB", 0}, {"ZC", 0}, {"ZD", 1}}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildAndReport(t *testing.T) {
	s := sampleActivity(t)
	e := Build(s.History(), s.SystemSnapshot(), t0)

	if e.AverageDurationHours == nil || *e.AverageDurationHours != 1.5 {
		t.Errorf("AverageDurationHours = %v", e.AverageDurationHours)
	}
	if e.System.TotalSlots != 18 || e.System.OccupiedSlots != 7 {
		t.Errorf("System = %+v", e.System)
	}

	var buf bytes.Buffer
	if err := e.WriteReport(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"PARKING SYSTEM ANALYTICS REPORT",
		"Generated: 2026-03-02 09:00:00",
		"Total Slots: 18",
		"Completed: 2",
		"Average Duration: 1.50 hours",
		"Downtown (ZA): 100.00%",
		"PEAK USAGE ZONES (Top 3)",
		"1. Downtown (ZA): 100.00% (6/6 slots)",
		"2. Uptown (ZB): 25.00% (1/4 slots)",
		"Cross-Zone: 1 (11.11%)",
		"Eastside (ZD): 1 requests",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "4. ") {
		t.Error("report should list at most three peak zones")
	}
}

func TestReport_NoCompletedTrips(t *testing.T) {
	s := parking.New(city.Sample(), parking.Options{})
	var buf bytes.Buffer
	Build(s.History(), s.SystemSnapshot(), t0).WriteReport(&buf)
	if !strings.Contains(buf.String(), "Average Duration: N/A (no completed trips)") {
		t.Errorf("report = %s", buf.String())
	}
}

func TestExport_JSON(t *testing.T) {
	s := sampleActivity(t)
	data, err := json.Marshal(Build(s.History(), s.SystemSnapshot(), t0))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	for _, key := range []string{"system_summary", "average_duration_hours", "zone_utilization", "request_statistics", "peak_usage_zones", "cross_zone_statistics", "request_distribution"} {
		if _, ok := m[key]; !ok {
			t.Errorf("export JSON missing %q", key)
		}
	}
}
