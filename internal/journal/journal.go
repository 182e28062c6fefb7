// Package journal appends lifecycle events to the database and answers
// queries over them. The journal is write-only history: nothing is replayed
// into a System from it.
package journal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/zulandar/parkyard/internal/models"
	"github.com/zulandar/parkyard/internal/parking"
	"gorm.io/gorm"
)

// Journal is a parking.Observer that persists every event it sees.
type Journal struct {
	db  *gorm.DB
	log *slog.Logger
}

// New creates a Journal over an already migrated database.
func New(db *gorm.DB, log *slog.Logger) *Journal {
	if log == nil {
		log = slog.Default()
	}
	return &Journal{db: db, log: log}
}

// Observe appends e. Write failures are logged, never returned to the System.
func (j *Journal) Observe(e parking.Event) {
	if _, err := j.Append(e); err != nil {
		j.log.Error("journal write failed", "kind", e.Kind, "request", e.RequestID, "err", err)
	}
}

// Append writes one event row and returns it with its id set.
func (j *Journal) Append(e parking.Event) (*models.RequestEvent, error) {
	row := FromEvent(e)
	if err := j.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("journal: append %s %s: %w", e.Kind, e.RequestID, err)
	}
	return &row, nil
}

// FromEvent converts a domain event to its row form.
func FromEvent(e parking.Event) models.RequestEvent {
	row := models.RequestEvent{
		Kind:      string(e.Kind),
		RequestID: e.RequestID,
		VehicleID: e.VehicleID,
		ZoneID:    e.ZoneID,
		CrossZone: e.CrossZone,
		FromState: string(e.From),
		ToState:   string(e.To),
		Detail:    e.Detail,
		At:        e.At,
	}
	if e.Slot != nil {
		row.SlotZone = e.Slot.ZoneID
		row.SlotID = e.Slot.SlotID
	}
	return row
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(limit int) ([]models.RequestEvent, error) {
	var rows []models.RequestEvent
	if err := j.db.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	return rows, nil
}

// Since returns up to limit events with id greater than afterID, oldest first.
func (j *Journal) Since(afterID uint, limit int) ([]models.RequestEvent, error) {
	var rows []models.RequestEvent
	if err := j.db.Where("id > ?", afterID).Order("id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("journal: since %d: %w", afterID, err)
	}
	return rows, nil
}

// LastID returns the id of the newest event, 0 when the journal is empty.
func (j *Journal) LastID() (uint, error) {
	var row models.RequestEvent
	err := j.db.Order("id DESC").Limit(1).Find(&row).Error
	if err != nil {
		return 0, fmt.Errorf("journal: last id: %w", err)
	}
	return row.ID, nil
}

// ForRequest returns every event of one request in commit order.
func (j *Journal) ForRequest(requestID string) ([]models.RequestEvent, error) {
	var rows []models.RequestEvent
	if err := j.db.Where("request_id = ?", requestID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("journal: events for %s: %w", requestID, err)
	}
	return rows, nil
}

// CountByKind returns the number of events per kind.
func (j *Journal) CountByKind() (map[string]int64, error) {
	var rows []struct {
		Kind  string
		Count int64
	}
	if err := j.db.Model(&models.RequestEvent{}).
		Select("kind, COUNT(*) as count").
		Group("kind").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("journal: count by kind: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Kind] = r.Count
	}
	return out, nil
}

// SaveReport stores an analytics snapshot, stamping TakenAt when unset.
func (j *Journal) SaveReport(r *models.ReportSnapshot) error {
	if r.TakenAt.IsZero() {
		r.TakenAt = time.Now().UTC()
	}
	if err := j.db.Create(r).Error; err != nil {
		return fmt.Errorf("journal: save report: %w", err)
	}
	return nil
}

// LatestReport returns the most recent analytics snapshot, or nil when none
// has been taken.
func (j *Journal) LatestReport() (*models.ReportSnapshot, error) {
	var rows []models.ReportSnapshot
	if err := j.db.Order("id DESC").Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("journal: latest report: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
