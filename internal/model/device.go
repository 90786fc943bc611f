package model

import "time"

// Device lifecycle states.
const (
	DeviceStatusRegistered = "registered"
	DeviceStatusOnline     = "online"
	DeviceStatusOffline    = "offline"
)

// Device is an installed remote-support client. It is created exactly once,
// when its support code is redeemed; BoundCode is immutable from then on.
type Device struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	CustomerName string    `gorm:"size:256;not null" json:"customer_name"`
	BoundCode    string    `gorm:"size:6;not null" json:"bound_code"`
	OS           string    `gorm:"size:128" json:"os"`
	Status       string    `gorm:"size:16;not null;index" json:"status"`
	LastSeen     time.Time `gorm:"not null;index" json:"last_seen"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
