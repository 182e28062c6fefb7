package journal

import (
	"testing"
	"time"

	"github.com/zulandar/parkyard/internal/city"
	"github.com/zulandar/parkyard/internal/clock"
	"github.com/zulandar/parkyard/internal/db"
	"github.com/zulandar/parkyard/internal/logging"
	"github.com/zulandar/parkyard/internal/models"
	"github.com/zulandar/parkyard/internal/parking"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}

var t0 = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func TestFromEvent(t *testing.T) {
	slot := city.SlotRef{ZoneID: "ZB", SlotID: "SB1"}
	row := FromEvent(parking.Event{
		Kind:      parking.EventAllocated,
		RequestID: "R0004",
		VehicleID: "V4",
		ZoneID:    "ZA",
		Slot:      &slot,
		CrossZone: true,
		From:      parking.StateRequested,
		To:        parking.StateAllocated,
		At:        t0,
	})
	if row.Kind != "allocated" || row.SlotZone != "ZB" || row.SlotID != "SB1" || !row.CrossZone {
		t.Errorf("row = %+v", row)
	}
	if row.FromState != "requested" || row.ToState != "allocated" || !row.At.Equal(t0) {
		t.Errorf("row states/time = %+v", row)
	}

	noSlot := FromEvent(parking.Event{Kind: parking.EventCreated, RequestID: "R0001"})
	if noSlot.SlotZone != "" || noSlot.SlotID != "" {
		t.Errorf("slot columns should be empty, got %+v", noSlot)
	}
}

func TestJournal_RecordsSystemLifecycle(t *testing.T) {
	j := New(testDB(t), logging.Discard())
	s := parking.New(city.Sample(), parking.Options{Clock: clock.NewFixed(t0), Observers: []parking.Observer{j}})

	req, _, err := s.Park(parking.Vehicle{ID: "V1"}, "ZA")
	if err != nil {
		t.Fatal(err)
	}
	s.MarkArrived(req.ID)
	s.MarkDeparted(req.ID)
	s.Park(parking.Vehicle{ID: "V2"}, "NOPE")

	events, err := j.ForRequest(req.ID)
	if err != nil {
		t.Fatal(err)
	}
	var kinds []string
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	want := []string{"created", "allocated", "arrived", "departed"}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %q, want %q", i, kinds[i], want[i])
		}
	}
	if events[1].SlotID != "SA1" {
		t.Errorf("allocated slot = %q, want SA1", events[1].SlotID)
	}

	counts, err := j.CountByKind()
	if err != nil {
		t.Fatal(err)
	}
	if counts["created"] != 2 || counts["allocation_failed"] != 1 || counts["departed"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestJournal_RecentAndSince(t *testing.T) {
	j := New(testDB(t), logging.Discard())
	for i := 0; i < 5; i++ {
		if _, err := j.Append(parking.Event{Kind: parking.EventCreated, RequestID: "R000" + string(rune('1'+i)), At: t0}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := j.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].RequestID != "R0005" || recent[1].RequestID != "R0004" {
		t.Errorf("Recent(2) = %+v", recent)
	}

	since, err := j.Since(recent[1].ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(since) != 1 || since[0].RequestID != "R0005" {
		t.Errorf("Since = %+v", since)
	}

	last, err := j.LastID()
	if err != nil {
		t.Fatal(err)
	}
	if last != recent[0].ID {
		t.Errorf("LastID = %d, want %d", last, recent[0].ID)
	}
}

func TestJournal_LastIDEmpty(t *testing.T) {
	j := New(testDB(t), nil)
	id, err := j.LastID()
	if err != nil || id != 0 {
		t.Errorf("LastID = %d, %v; want 0, nil", id, err)
	}
}

func TestJournal_Reports(t *testing.T) {
	j := New(testDB(t), logging.Discard())

	latest, err := j.LatestReport()
	if err != nil || latest != nil {
		t.Fatalf("LatestReport on empty = %v, %v", latest, err)
	}

	if err := j.SaveReport(&models.ReportSnapshot{TotalRequests: 1, TakenAt: t0}); err != nil {
		t.Fatal(err)
	}
	second := &models.ReportSnapshot{TotalRequests: 2}
	if err := j.SaveReport(second); err != nil {
		t.Fatal(err)
	}
	if second.TakenAt.IsZero() {
		t.Error("SaveReport should stamp TakenAt")
	}

	latest, err = j.LatestReport()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.TotalRequests != 2 {
		t.Errorf("LatestReport = %+v", latest)
	}
}

func TestJournal_ObserveLogsOnFailure(t *testing.T) {
	gdb := testDB(t)
	j := New(gdb, logging.Discard())
	sqlDB, _ := gdb.DB()
	sqlDB.Close()

	// Must not panic when the database is gone.
	j.Observe(parking.Event{Kind: parking.EventCreated, RequestID: "R0001"})
	if _, err := j.Append(parking.Event{Kind: parking.EventCreated}); err == nil {
		t.Error("Append on closed db should fail")
	}
}
