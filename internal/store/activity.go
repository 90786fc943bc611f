package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"remote-support-backend/internal/model"
)

// RecordActivity appends one immutable event to the activity log.
func (s *gormStore) RecordActivity(ctx context.Context, ev *model.ActivityEvent) error {
	if err := s.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to record activity event: %w", err)
	}
	return nil
}

// RecentActivity returns the newest events first.
func (s *gormStore) RecentActivity(ctx context.Context, limit int) ([]model.ActivityEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	var events []model.ActivityEvent
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to read recent activity: %w", err)
	}
	return events, nil
}

// Stats aggregates the dashboard counters in one round trip per entity.
func (s *gormStore) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	var out Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Device{}).
		Where("status = ?", model.DeviceStatusOnline).
		Count(&out.OnlineDevices).Error; err != nil {
		return nil, fmt.Errorf("failed to count online devices: %w", err)
	}
	if err := db.Model(&model.Device{}).
		Distinct("customer_name").
		Count(&out.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := db.Model(&model.SupportCode{}).
		Where("status = ? AND expires_at > ?", model.CodeStatusIssued, now).
		Count(&out.ActiveCodes).Error; err != nil {
		return nil, fmt.Errorf("failed to count active codes: %w", err)
	}
	if err := db.Model(&model.Session{}).
		Where("status = ?", model.SessionStatusActive).
		Count(&out.ActiveSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return &out, nil
}

// UpsertSubscription creates or refreshes a push subscription keyed by its
// endpoint.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes a push subscription.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).
		Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// ListSubscriptions returns every registered push subscription.
func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}
