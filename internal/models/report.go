package models

import "time"

// ReportSnapshot stores a periodic analytics export.
type ReportSnapshot struct {
	ID              uint `gorm:"primaryKey;autoIncrement"`
	TotalRequests   int
	Completed       int
	Cancelled       int
	Active          int
	OccupiedSlots   int
	TotalSlots      int
	CrossZoneCount  int
	AverageDuration float64   // seconds; 0 when nothing has completed
	Payload         string    `gorm:"type:text"` // full export as JSON
	TakenAt         time.Time `gorm:"index"`
	CreatedAt       time.Time
}
