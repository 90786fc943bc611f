package model

import "time"

// Session lifecycle states.
const (
	SessionStatusRequested = "requested"
	SessionStatusActive    = "active"
	SessionStatusClosed    = "closed"
	SessionStatusFailed    = "failed"
)

// Session is one technician connection attempt against one device. A device
// has at most one open (requested or active) session at a time; the partial
// unique index backstops that invariant under concurrent requests.
type Session struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	DeviceID     string    `gorm:"size:64;not null;index:idx_open_session,unique,where:status = 'requested' OR status = 'active'" json:"device_id"`
	TechnicianID string    `gorm:"size:128;not null" json:"technician_id"`
	Password     string    `gorm:"size:64;not null" json:"-"`
	Status       string    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
}
