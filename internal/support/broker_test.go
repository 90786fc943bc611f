package support

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
)

func TestRequestSession_OfflineDevice(t *testing.T) {
	s := newTestStore(t)
	activity := NewActivityLog(s, nil)
	broker := NewBroker(s, activity, 2*time.Minute, "support.example.com:21117")
	ctx := context.Background()

	// Registered but never heartbeated: not online.
	deviceID := registerDevice(t, s, activity, "Jane Doe")

	_, err := broker.RequestSession(ctx, deviceID, "tech1")
	assert.ErrorIs(t, err, store.ErrDeviceOffline)

	_, err = broker.RequestSession(ctx, "ghost", "tech1")
	assert.ErrorIs(t, err, store.ErrDeviceNotFound)
}

func TestRequestSession_Validation(t *testing.T) {
	s := newTestStore(t)
	broker := NewBroker(s, NewActivityLog(s, nil), 2*time.Minute, "support.example.com:21117")

	var vErr *ValidationError
	_, err := broker.RequestSession(context.Background(), "", "tech1")
	assert.ErrorAs(t, err, &vErr)
	_, err = broker.RequestSession(context.Background(), "dev", "")
	assert.ErrorAs(t, err, &vErr)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	activity := NewActivityLog(s, nil)
	registry := NewRegistry(s, activity, nil)
	broker := NewBroker(s, activity, 2*time.Minute, "support.example.com:21117")
	ctx := context.Background()

	deviceID := registerDevice(t, s, activity, "Jane Doe")
	require.NoError(t, registry.Heartbeat(ctx, deviceID, "Windows 11"))

	creds, err := broker.RequestSession(ctx, deviceID, "tech1")
	require.NoError(t, err)
	assert.Equal(t, deviceID, creds.DeviceID)
	assert.Len(t, creds.Password, 22)
	assert.Equal(t, "support.example.com:21117", creds.ServerAddress)

	// A second technician cannot grab the device mid-handshake.
	_, err = broker.RequestSession(ctx, deviceID, "tech2")
	assert.ErrorIs(t, err, store.ErrSessionConflict)

	require.NoError(t, broker.ConfirmSession(ctx, creds.SessionID))
	ev := lastEventOfType(t, s, model.ActivitySessionStarted)
	require.NotNil(t, ev)
	assert.Equal(t, deviceID, ev.DeviceID)

	// Still held while active.
	_, err = broker.RequestSession(ctx, deviceID, "tech2")
	assert.ErrorIs(t, err, store.ErrSessionConflict)

	require.NoError(t, broker.CloseSession(ctx, creds.SessionID))
	ev = lastEventOfType(t, s, model.ActivitySessionEnded)
	require.NotNil(t, ev)

	// Closing again is the courtesy no-op.
	require.NoError(t, broker.CloseSession(ctx, creds.SessionID))
	assert.ErrorIs(t, broker.CloseSession(ctx, "unknown"), store.ErrSessionNotFound)

	// Device is free for the next technician.
	_, err = broker.RequestSession(ctx, deviceID, "tech2")
	require.NoError(t, err)
}

func TestConfirmSession_AfterTTL(t *testing.T) {
	s := newTestStore(t)
	activity := NewActivityLog(s, nil)
	registry := NewRegistry(s, activity, nil)
	// Negative TTL: the request is expired the moment it is created.
	broker := NewBroker(s, activity, -time.Second, "support.example.com:21117")
	ctx := context.Background()

	deviceID := registerDevice(t, s, activity, "Jane Doe")
	require.NoError(t, registry.Heartbeat(ctx, deviceID, "Windows 11"))

	creds, err := broker.RequestSession(ctx, deviceID, "tech1")
	require.NoError(t, err)

	assert.ErrorIs(t, broker.ConfirmSession(ctx, creds.SessionID), store.ErrSessionExpired)

	// The failed request released the device.
	fresh := NewBroker(s, activity, 2*time.Minute, "support.example.com:21117")
	_, err = fresh.RequestSession(ctx, deviceID, "tech2")
	require.NoError(t, err)
}

func TestSessionPasswordsAreSingleUse(t *testing.T) {
	s := newTestStore(t)
	activity := NewActivityLog(s, nil)
	registry := NewRegistry(s, activity, nil)
	broker := NewBroker(s, activity, 2*time.Minute, "support.example.com:21117")
	ctx := context.Background()

	deviceID := registerDevice(t, s, activity, "Jane Doe")
	require.NoError(t, registry.Heartbeat(ctx, deviceID, "Windows 11"))

	first, err := broker.RequestSession(ctx, deviceID, "tech1")
	require.NoError(t, err)
	require.NoError(t, broker.CloseSession(ctx, first.SessionID))

	second, err := broker.RequestSession(ctx, deviceID, "tech1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Password, second.Password)
}
