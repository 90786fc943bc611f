package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"remote-support-backend/internal/model"
)

// Heartbeat marks a device online and refreshes its last-seen timestamp.
// The returned flag reports whether the device was not online before the
// beat, so the registry can log and notify on the offline-to-online edge
// only.
func (s *gormStore) Heartbeat(ctx context.Context, deviceID, osInfo string, now time.Time) (bool, error) {
	var wasOffline bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dev model.Device
		if err := tx.First(&dev, "id = ?", deviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeviceNotFound
			}
			return fmt.Errorf("failed to look up device %s: %w", deviceID, err)
		}

		wasOffline = dev.Status != model.DeviceStatusOnline

		updates := map[string]any{
			"status":    model.DeviceStatusOnline,
			"last_seen": now,
		}
		if osInfo != "" {
			updates["os"] = osInfo
		}
		if err := tx.Model(&model.Device{}).Where("id = ?", deviceID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update device %s: %w", deviceID, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return wasOffline, nil
}

// GetDevice returns a single device by id.
func (s *gormStore) GetDevice(ctx context.Context, deviceID string) (*model.Device, error) {
	var dev model.Device
	if err := s.db.WithContext(ctx).First(&dev, "id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to look up device %s: %w", deviceID, err)
	}
	return &dev, nil
}

// ListDevices returns all devices, most recently seen first.
func (s *gormStore) ListDevices(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := s.db.WithContext(ctx).Order("last_seen DESC").Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

// RemoveDevice deletes a device and invalidates its open sessions. Removal
// is terminal: the device row is gone, not flagged.
func (s *gormStore) RemoveDevice(ctx context.Context, deviceID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Device{}, "id = ?", deviceID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete device %s: %w", deviceID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDeviceNotFound
		}

		if err := tx.Model(&model.Session{}).
			Where("device_id = ? AND (status = ? OR status = ?)",
				deviceID, model.SessionStatusRequested, model.SessionStatusActive).
			Update("status", model.SessionStatusClosed).Error; err != nil {
			return fmt.Errorf("failed to close sessions for device %s: %w", deviceID, err)
		}
		return nil
	})
}

// SweepDevices marks every online or registered device not seen since the
// cutoff as offline and returns the affected rows.
func (s *gormStore) SweepDevices(ctx context.Context, cutoff time.Time) ([]model.Device, error) {
	var stale []model.Device

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("(status = ? OR status = ?) AND last_seen <= ?",
			model.DeviceStatusOnline, model.DeviceStatusRegistered, cutoff).
			Find(&stale).Error; err != nil {
			return fmt.Errorf("failed to find stale devices: %w", err)
		}
		if len(stale) == 0 {
			return nil
		}

		ids := make([]string, len(stale))
		for i, dev := range stale {
			ids[i] = dev.ID
		}
		if err := tx.Model(&model.Device{}).
			Where("id IN ?", ids).
			Update("status", model.DeviceStatusOffline).Error; err != nil {
			return fmt.Errorf("failed to mark devices offline: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range stale {
		stale[i].Status = model.DeviceStatusOffline
	}
	return stale, nil
}
