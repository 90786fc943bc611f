package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestStore(t *testing.T) store.Store {
	dsn := fmt.Sprintf("file:notification_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gormDB.AutoMigrate(&model.PushSubscription{}))
	return store.NewGormStore(gormDB)
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, newTestStore(t), &webpush.Options{})

	wp.Dispatch(Job{DeviceID: "dev-1", CustomerName: "Jane Doe"})

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "dev-1", job.DeviceID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	s := newTestStore(t)
	wp := NewWorkerPool(1, s, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends notification for one subscription", func(t *testing.T) {
		require.NoError(t, s.UpsertSubscription(ctx, &model.PushSubscription{
			Endpoint: "https://example.com/push",
			P256DH:   "test_p256dh",
			Auth:     "test_auth",
		}))

		var wg sync.WaitGroup
		wg.Add(1)
		wp.SetSender(&mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "test_p256dh", sub.Keys.P256dh)
				assert.Equal(t, "Device of Jane Doe is now online and ready for a support session.", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		})

		wp.Dispatch(Job{DeviceID: "dev-1", CustomerName: "Jane Doe"})
		wg.Wait()

		require.NoError(t, s.DeleteSubscription(ctx, "https://example.com/push"))
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		require.NoError(t, s.UpsertSubscription(ctx, &model.PushSubscription{
			Endpoint: "https://example.com/expired",
			P256DH:   "test_p256dh_expired",
			Auth:     "test_auth_expired",
		}))

		var wg sync.WaitGroup
		wg.Add(1)
		wp.SetSender(&mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		})

		wp.Dispatch(Job{DeviceID: "dev-2", CustomerName: "John Roe"})
		wg.Wait()

		// Deletion happens after the Send returns; poll briefly.
		require.Eventually(t, func() bool {
			subs, err := s.ListSubscriptions(ctx)
			return err == nil && len(subs) == 0
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("falls back to the device id when the name is empty", func(t *testing.T) {
		require.NoError(t, s.UpsertSubscription(ctx, &model.PushSubscription{
			Endpoint: "https://example.com/anon",
			P256DH:   "k",
			Auth:     "a",
		}))

		var wg sync.WaitGroup
		wg.Add(1)
		wp.SetSender(&mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Contains(t, string(payload), "dev-3")
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		})

		wp.Dispatch(Job{DeviceID: "dev-3"})
		wg.Wait()
	})
}
