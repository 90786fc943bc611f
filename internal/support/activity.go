package support

import (
	"context"
	"log"
	"time"

	"remote-support-backend/internal/events"
	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
)

// ActivityLog is the append-only audit trail shared by every lifecycle
// component. Recording must never fail the operation that triggered it:
// storage errors are logged and swallowed, and live publishing never
// blocks.
type ActivityLog struct {
	store store.Store
	hub   *events.Hub
}

// NewActivityLog creates an activity log. hub may be nil when no live
// stream is wired.
func NewActivityLog(s store.Store, hub *events.Hub) *ActivityLog {
	return &ActivityLog{store: s, hub: hub}
}

// Record appends one event, stamping it if the caller did not.
func (l *ActivityLog) Record(ctx context.Context, ev model.ActivityEvent) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if err := l.store.RecordActivity(ctx, &ev); err != nil {
		log.Printf("Warning: dropping activity event %q: %v", ev.Type, err)
		return
	}
	if l.hub != nil {
		l.hub.Publish(ev)
	}
}

// Recent returns the newest events first.
func (l *ActivityLog) Recent(ctx context.Context, limit int) ([]model.ActivityEvent, error) {
	return l.store.RecentActivity(ctx, limit)
}
