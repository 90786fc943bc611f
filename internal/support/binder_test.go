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

func TestRedeemCode_FormatValidation(t *testing.T) {
	s := newTestStore(t)
	binder := NewBinder(s, NewActivityLog(s, nil), "support.example.com:21117")
	ctx := context.Background()

	for _, bad := range []string{"", "12345", "1234567", "12ab56"} {
		_, err := binder.RedeemCode(ctx, bad)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr, "code %q must fail format validation", bad)
	}
}

func TestRedeemCode_UnknownCode(t *testing.T) {
	s := newTestStore(t)
	binder := NewBinder(s, NewActivityLog(s, nil), "support.example.com:21117")

	_, err := binder.RedeemCode(context.Background(), "000000")
	assert.ErrorIs(t, err, store.ErrCodeNotFound)
}

func TestRedeemCode_IssuesDeviceBoundInstaller(t *testing.T) {
	s := newTestStore(t)
	activity := NewActivityLog(s, nil)
	issuer := NewIssuer(s, activity, 30*time.Minute)
	binder := NewBinder(s, activity, "support.example.com:21117")
	ctx := context.Background()

	sc, err := issuer.IssueCode(ctx, CustomerInfo{Name: "Jane Doe"})
	require.NoError(t, err)

	descriptor, err := binder.RedeemCode(ctx, sc.Code)
	require.NoError(t, err)

	assert.Equal(t, "SupportClient-"+sc.Code+"-JaneDoe.zip", descriptor.PackageName)
	assert.Equal(t, "/downloads/"+descriptor.PackageName, descriptor.DownloadURL)
	assert.Equal(t, "Jane Doe", descriptor.CustomerName)
	assert.Equal(t, "support.example.com:21117", descriptor.ServerAddress)
	require.NotEmpty(t, descriptor.DeviceID)

	dev, err := s.GetDevice(ctx, descriptor.DeviceID)
	require.NoError(t, err)
	assert.Equal(t, sc.Code, dev.BoundCode)
	assert.Equal(t, model.DeviceStatusRegistered, dev.Status)

	ev := lastEventOfType(t, s, model.ActivityDeviceRegistered)
	require.NotNil(t, ev)
	assert.Equal(t, descriptor.DeviceID, ev.DeviceID)

	// One-time redemption: the same code never grants a second installer.
	_, err = binder.RedeemCode(ctx, sc.Code)
	assert.ErrorIs(t, err, store.ErrCodeRedeemed)
}

func TestRedeemCode_ExpiredCode(t *testing.T) {
	s := newTestStore(t)
	activity := NewActivityLog(s, nil)
	// A negative TTL stands in for a lapsed clock.
	issuer := NewIssuer(s, activity, -time.Minute)
	binder := NewBinder(s, activity, "support.example.com:21117")
	ctx := context.Background()

	sc, err := issuer.IssueCode(ctx, CustomerInfo{Name: "Jane Doe"})
	require.NoError(t, err)

	_, err = binder.RedeemCode(ctx, sc.Code)
	assert.ErrorIs(t, err, store.ErrCodeExpired)
}
