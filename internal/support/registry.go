package support

import (
	"context"
	"fmt"
	"strings"
	"time"

	"remote-support-backend/internal/model"
	"remote-support-backend/internal/notification"
	"remote-support-backend/internal/store"
)

// Registry tracks known devices and their liveness.
type Registry struct {
	store    store.Store
	activity *ActivityLog
	pool     *notification.WorkerPool
}

// NewRegistry creates a device registry. pool may be nil when push
// notifications are not configured.
func NewRegistry(s store.Store, activity *ActivityLog, pool *notification.WorkerPool) *Registry {
	return &Registry{store: s, activity: activity, pool: pool}
}

// Heartbeat marks a device online. On the offline-to-online edge it logs
// an activity event and dispatches a push notification to subscribed
// dashboards; steady-state beats update last-seen silently.
func (r *Registry) Heartbeat(ctx context.Context, deviceID, osInfo string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return validationErr("device_id", "device id is required")
	}

	wasOffline, err := r.store.Heartbeat(ctx, deviceID, osInfo, time.Now().UTC())
	if err != nil {
		return err
	}
	if !wasOffline {
		return nil
	}

	dev, err := r.store.GetDevice(ctx, deviceID)
	if err != nil {
		// The beat itself succeeded; the edge handling is best effort.
		return nil
	}

	r.activity.Record(ctx, model.ActivityEvent{
		Type:        model.ActivityDeviceOnline,
		Title:       fmt.Sprintf("Device online: %s", dev.CustomerName),
		Description: fmt.Sprintf("Device %s reported in and is ready for sessions", dev.ID),
		DeviceID:    dev.ID,
		Code:        dev.BoundCode,
	})
	if r.pool != nil {
		r.pool.Dispatch(notification.Job{DeviceID: dev.ID, CustomerName: dev.CustomerName})
	}
	return nil
}

// List returns all devices, most recently seen first.
func (r *Registry) List(ctx context.Context) ([]model.Device, error) {
	return r.store.ListDevices(ctx)
}

// Remove deletes a device and invalidates its open sessions.
func (r *Registry) Remove(ctx context.Context, deviceID string) error {
	dev, err := r.store.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	}
	if err := r.store.RemoveDevice(ctx, deviceID); err != nil {
		return err
	}

	r.activity.Record(ctx, model.ActivityEvent{
		Type:        model.ActivityDeviceRemoved,
		Title:       fmt.Sprintf("Device removed: %s", dev.CustomerName),
		Description: fmt.Sprintf("Device %s was removed from the registry", dev.ID),
		DeviceID:    dev.ID,
	})
	return nil
}
