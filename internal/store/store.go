// Package store holds every persistent state transition of the support-code
// lifecycle. All transitions that have a single-winner requirement (code
// redemption, session creation) run as compare-and-set updates inside
// transactions, backstopped by partial unique indexes, so the guarantees
// hold across processes and restarts.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"remote-support-backend/internal/model"
)

// Stats is the read-only dashboard aggregate.
type Stats struct {
	OnlineDevices  int64 `json:"online_devices"`
	TotalCustomers int64 `json:"total_customers"`
	ActiveCodes    int64 `json:"active_codes"`
	ActiveSessions int64 `json:"active_sessions"`
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Support codes.
	CreateCode(ctx context.Context, sc *model.SupportCode) error
	RedeemCode(ctx context.Context, codeValue string, now time.Time, dev *model.Device) (*model.SupportCode, error)
	SweepCodes(ctx context.Context, now time.Time) ([]model.SupportCode, error)

	// Devices.
	Heartbeat(ctx context.Context, deviceID, osInfo string, now time.Time) (wasOffline bool, err error)
	GetDevice(ctx context.Context, deviceID string) (*model.Device, error)
	ListDevices(ctx context.Context) ([]model.Device, error)
	RemoveDevice(ctx context.Context, deviceID string) error
	SweepDevices(ctx context.Context, cutoff time.Time) ([]model.Device, error)

	// Sessions.
	CreateSession(ctx context.Context, s *model.Session, now time.Time) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	ConfirmSession(ctx context.Context, sessionID string, now time.Time) (*model.Session, error)
	CloseSession(ctx context.Context, sessionID string, now time.Time) (closed bool, err error)
	SweepSessions(ctx context.Context, now time.Time) ([]model.Session, error)

	// Activity log.
	RecordActivity(ctx context.Context, ev *model.ActivityEvent) error
	RecentActivity(ctx context.Context, limit int) ([]model.ActivityEvent, error)

	// Dashboard.
	Stats(ctx context.Context, now time.Time) (*Stats, error)

	// Push subscriptions.
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for migrations and wiring.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
