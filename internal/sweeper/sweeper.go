// Package sweeper runs the periodic expiry and liveness pass: issued codes
// past their TTL, online devices past the liveness threshold, and
// requested sessions whose handshake window lapsed. These transitions are
// normal lifecycle events and are logged as such, never as failures.
package sweeper

import (
	"context"
	"fmt"
	"log"
	"time"

	"remote-support-backend/config"
	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
	"remote-support-backend/internal/support"
)

// Service runs the background sweep loop.
type Service struct {
	cfg      *config.SweeperConfig
	store    store.Store
	activity *support.ActivityLog
}

// NewService creates a sweeper service.
func NewService(cfg *config.SweeperConfig, s store.Store, activity *support.ActivityLog) *Service {
	return &Service{cfg: cfg, store: s, activity: activity}
}

// Run starts the sweep loop and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Printf("Starting sweeper (interval %s, liveness threshold %s)",
		s.cfg.Interval, s.cfg.LivenessThreshold)

	s.SweepOnce(ctx, time.Now().UTC())

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx, time.Now().UTC())
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce performs a single pass at the given instant. The instant is a
// parameter so tests can advance the clock.
func (s *Service) SweepOnce(ctx context.Context, now time.Time) {
	s.sweepCodes(ctx, now)
	s.sweepDevices(ctx, now)
	s.sweepSessions(ctx, now)
}

func (s *Service) sweepCodes(ctx context.Context, now time.Time) {
	lapsed, err := s.store.SweepCodes(ctx, now)
	if err != nil {
		log.Printf("Error sweeping support codes: %v", err)
		return
	}
	for _, sc := range lapsed {
		s.activity.Record(ctx, model.ActivityEvent{
			Type:        model.ActivityCodeExpired,
			Title:       fmt.Sprintf("Support code expired for %s", sc.CustomerName),
			Description: "Support code lapsed before it was redeemed",
			Code:        sc.Code,
		})
	}
}

func (s *Service) sweepDevices(ctx context.Context, now time.Time) {
	stale, err := s.store.SweepDevices(ctx, now.Add(-s.cfg.LivenessThreshold))
	if err != nil {
		log.Printf("Error sweeping devices: %v", err)
		return
	}
	for _, dev := range stale {
		s.activity.Record(ctx, model.ActivityEvent{
			Type:        model.ActivityDeviceOffline,
			Title:       fmt.Sprintf("Device offline: %s", dev.CustomerName),
			Description: fmt.Sprintf("Device %s missed its heartbeat window", dev.ID),
			DeviceID:    dev.ID,
		})
	}
}

func (s *Service) sweepSessions(ctx context.Context, now time.Time) {
	lapsed, err := s.store.SweepSessions(ctx, now)
	if err != nil {
		log.Printf("Error sweeping sessions: %v", err)
		return
	}
	for _, session := range lapsed {
		s.activity.Record(ctx, model.ActivityEvent{
			Type:        model.ActivitySessionFailed,
			Title:       fmt.Sprintf("Session request timed out for %s", session.TechnicianID),
			Description: fmt.Sprintf("Handshake was not confirmed before the deadline on device %s", session.DeviceID),
			DeviceID:    session.DeviceID,
		})
	}
}
