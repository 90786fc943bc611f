package model

import "time"

// Support code lifecycle states.
const (
	CodeStatusIssued   = "issued"
	CodeStatusRedeemed = "redeemed"
	CodeStatusExpired  = "expired"
)

// SupportCode is a 6-digit, time-limited, single-use token a technician
// hands a customer to bootstrap a supported device.
//
// The partial unique index keeps a code value unique among currently
// issued codes only: a redeemed or expired row keeps its digits (it is
// still referenced by the device bound to it) without blocking the same
// digits from being issued again later.
type SupportCode struct {
	ID            int64     `gorm:"primaryKey" json:"-"`
	Code          string    `gorm:"size:6;not null;index:idx_active_code,unique,where:status = 'issued'" json:"code"`
	CustomerName  string    `gorm:"size:256;not null" json:"customer_name"`
	CustomerEmail string    `gorm:"size:256" json:"customer_email,omitempty"`
	CustomerPhone string    `gorm:"size:64" json:"customer_phone,omitempty"`
	Notes         string    `gorm:"size:1024" json:"notes,omitempty"`
	Status        string    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expires_at"`
}
