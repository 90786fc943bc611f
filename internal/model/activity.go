package model

import "time"

// Activity event types written by the lifecycle components.
const (
	ActivityCodeGenerated    = "code_generated"
	ActivityCodeExpired      = "code_expired"
	ActivityDeviceRegistered = "device_registered"
	ActivityDeviceOnline     = "device_online"
	ActivityDeviceOffline    = "device_offline"
	ActivityDeviceRemoved    = "device_removed"
	ActivitySessionRequested = "session_requested"
	ActivitySessionStarted   = "session_started"
	ActivitySessionEnded     = "session_ended"
	ActivitySessionFailed    = "session_failed"
	ActivityError            = "error"
)

// ActivityEvent is one append-only audit record. Rows are immutable once
// written; the dashboard reads them most-recent-first.
type ActivityEvent struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string    `gorm:"size:32;not null;index" json:"type"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"size:1024" json:"description,omitempty"`
	DeviceID    string    `gorm:"size:64;index" json:"device_id,omitempty"`
	Code        string    `gorm:"size:6" json:"code,omitempty"`
	CreatedAt   time.Time `gorm:"not null;index" json:"timestamp"`
}
