package support

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"remote-support-backend/internal/code"
	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
)

// SessionCredentials is the ephemeral payload a technician hands to the
// downstream remote-desktop client. The password is single use and only
// ever returned here.
type SessionCredentials struct {
	SessionID     string `json:"session_id"`
	DeviceID      string `json:"device_id"`
	Password      string `json:"password"`
	ServerAddress string `json:"server_address"`
	ExpiresAt     string `json:"expires_at"`
}

// Broker issues short-lived connection credentials for online devices.
type Broker struct {
	store         store.Store
	activity      *ActivityLog
	ttl           time.Duration
	serverAddress string
}

// NewBroker creates a session broker with the given handshake TTL.
func NewBroker(s store.Store, activity *ActivityLog, ttl time.Duration, serverAddress string) *Broker {
	return &Broker{store: s, activity: activity, ttl: ttl, serverAddress: serverAddress}
}

// RequestSession creates a session in requested state for an online device
// and returns one-time credentials. The device must have no other open
// session.
func (b *Broker) RequestSession(ctx context.Context, deviceID, technicianID string) (*SessionCredentials, error) {
	deviceID = strings.TrimSpace(deviceID)
	technicianID = strings.TrimSpace(technicianID)
	if deviceID == "" {
		return nil, validationErr("device_id", "device id is required")
	}
	if technicianID == "" {
		return nil, validationErr("technician_id", "technician id is required")
	}

	password, err := code.GeneratePassword()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:           uuid.NewString(),
		DeviceID:     deviceID,
		TechnicianID: technicianID,
		Password:     password,
		Status:       model.SessionStatusRequested,
		CreatedAt:    now,
		ExpiresAt:    now.Add(b.ttl),
	}
	if err := b.store.CreateSession(ctx, session, now); err != nil {
		return nil, err
	}

	b.activity.Record(ctx, model.ActivityEvent{
		Type:        model.ActivitySessionRequested,
		Title:       fmt.Sprintf("Session requested by %s", technicianID),
		Description: fmt.Sprintf("Connection credentials issued for device %s", deviceID),
		DeviceID:    deviceID,
	})

	return &SessionCredentials{
		SessionID:     session.ID,
		DeviceID:      deviceID,
		Password:      password,
		ServerAddress: b.serverAddress,
		ExpiresAt:     session.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// ConfirmSession marks a requested session active once the downstream
// handshake reports success.
func (b *Broker) ConfirmSession(ctx context.Context, sessionID string) error {
	session, err := b.store.ConfirmSession(ctx, sessionID, time.Now().UTC())
	if err != nil {
		return err
	}

	b.activity.Record(ctx, model.ActivityEvent{
		Type:        model.ActivitySessionStarted,
		Title:       fmt.Sprintf("Session started by %s", session.TechnicianID),
		Description: fmt.Sprintf("Remote session active on device %s", session.DeviceID),
		DeviceID:    session.DeviceID,
	})
	return nil
}

// CloseSession ends an open session. It doubles as the courtesy cancel for
// a requested session and is a no-op on sessions that already reached a
// terminal state.
func (b *Broker) CloseSession(ctx context.Context, sessionID string) error {
	closed, err := b.store.CloseSession(ctx, sessionID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !closed {
		return nil
	}

	session, err := b.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil
	}
	b.activity.Record(ctx, model.ActivityEvent{
		Type:        model.ActivitySessionEnded,
		Title:       fmt.Sprintf("Session ended by %s", session.TechnicianID),
		Description: fmt.Sprintf("Remote session closed on device %s", session.DeviceID),
		DeviceID:    session.DeviceID,
	})
	return nil
}
