package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"remote-support-backend/internal/model"
)

// CreateSession inserts a new session in requested state. The device must
// be online and must not already have an open session. Stale requested
// rows past their TTL are failed inline first, so an abandoned handshake
// never wedges a device until the next sweep. The open-session index makes
// the conflict check race-safe: concurrent requests for one device produce
// exactly one session.
func (s *gormStore) CreateSession(ctx context.Context, session *model.Session, now time.Time) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Session{}).
			Where("device_id = ? AND status = ? AND expires_at <= ?",
				session.DeviceID, model.SessionStatusRequested, now).
			Update("status", model.SessionStatusFailed).Error; err != nil {
			return fmt.Errorf("failed to fail stale session requests: %w", err)
		}

		var dev model.Device
		if err := tx.First(&dev, "id = ?", session.DeviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeviceNotFound
			}
			return fmt.Errorf("failed to look up device %s: %w", session.DeviceID, err)
		}
		if dev.Status != model.DeviceStatusOnline {
			return ErrDeviceOffline
		}

		var open int64
		if err := tx.Model(&model.Session{}).
			Where("device_id = ? AND (status = ? OR status = ?)",
				session.DeviceID, model.SessionStatusRequested, model.SessionStatusActive).
			Count(&open).Error; err != nil {
			return fmt.Errorf("failed to count open sessions: %w", err)
		}
		if open > 0 {
			return ErrSessionConflict
		}

		if err := tx.Create(session).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSessionConflict
			}
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
	return err
}

// GetSession returns a single session by id.
func (s *gormStore) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	var session model.Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up session %s: %w", sessionID, err)
	}
	return &session, nil
}

// ConfirmSession transitions a session from requested to active once the
// downstream handshake reports success. A request past its TTL is failed
// and reported as ErrSessionExpired; any other non-requested state is
// ErrSessionClosed.
func (s *gormStore) ConfirmSession(ctx context.Context, sessionID string, now time.Time) (*model.Session, error) {
	// Fail a lapsed request before the confirmation transaction. The mark
	// must not share a transaction with the error return, or the rollback
	// would undo it.
	res := s.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND status = ? AND expires_at <= ?",
			sessionID, model.SessionStatusRequested, now).
		Update("status", model.SessionStatusFailed)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fail expired session %s: %w", sessionID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil, ErrSessionExpired
	}

	var confirmed model.Session

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.Session
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to look up session %s: %w", sessionID, err)
		}

		if session.Status != model.SessionStatusRequested {
			return ErrSessionClosed
		}

		res := tx.Model(&model.Session{}).
			Where("id = ? AND status = ?", sessionID, model.SessionStatusRequested).
			Update("status", model.SessionStatusActive)
		if res.Error != nil {
			return fmt.Errorf("failed to activate session %s: %w", sessionID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrSessionClosed
		}

		session.Status = model.SessionStatusActive
		confirmed = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// CloseSession transitions an open session to closed. Closing a session
// that already reached a terminal state is a no-op, reported by the
// returned flag; closing an unknown session is ErrSessionNotFound. This
// doubles as the courtesy cancel for unconfirmed requests.
func (s *gormStore) CloseSession(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND (status = ? OR status = ?)",
			sessionID, model.SessionStatusRequested, model.SessionStatusActive).
		Update("status", model.SessionStatusClosed)
	if res.Error != nil {
		return false, fmt.Errorf("failed to close session %s: %w", sessionID, res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", sessionID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up session %s: %w", sessionID, err)
	}
	if count == 0 {
		return false, ErrSessionNotFound
	}
	return false, nil
}

// SweepSessions fails every requested session whose handshake TTL lapsed,
// releasing the device for new requests, and returns the affected rows.
func (s *gormStore) SweepSessions(ctx context.Context, now time.Time) ([]model.Session, error) {
	var lapsed []model.Session

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ? AND expires_at <= ?", model.SessionStatusRequested, now).
			Find(&lapsed).Error; err != nil {
			return fmt.Errorf("failed to find lapsed session requests: %w", err)
		}
		if len(lapsed) == 0 {
			return nil
		}

		ids := make([]string, len(lapsed))
		for i, session := range lapsed {
			ids[i] = session.ID
		}
		if err := tx.Model(&model.Session{}).
			Where("id IN ? AND status = ?", ids, model.SessionStatusRequested).
			Update("status", model.SessionStatusFailed).Error; err != nil {
			return fmt.Errorf("failed to fail lapsed session requests: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range lapsed {
		lapsed[i].Status = model.SessionStatusFailed
	}
	return lapsed, nil
}
