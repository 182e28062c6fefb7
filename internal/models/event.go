package models

import "time"

// RequestEvent is one committed lifecycle change, appended by the journal.
type RequestEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Kind      string    `gorm:"size:32;not null;index"`
	RequestID string    `gorm:"size:16;index"`
	VehicleID string    `gorm:"size:64;index"`
	ZoneID    string    `gorm:"size:32"`
	SlotZone  string    `gorm:"size:32"`
	SlotID    string    `gorm:"size:32"`
	CrossZone bool      `gorm:"default:false"`
	FromState string    `gorm:"size:16"`
	ToState   string    `gorm:"size:16"`
	Detail    string    `gorm:"type:text"`
	At        time.Time `gorm:"index"`
	CreatedAt time.Time
}
