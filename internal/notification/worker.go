package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of Sender using the webpush
// library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job describes one device-online notification to fan out to every
// subscribed technician dashboard.
type Job struct {
	DeviceID     string
	CustomerName string
}

// WorkerPool fans device-online notifications out to push subscriptions
// without blocking the heartbeat path.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// SetSender replaces the sender, used by tests.
func (wp *WorkerPool) SetSender(sender Sender) {
	wp.sender = sender
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.notifySubscribers(ctx, job)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// Dispatch queues a job for the pool. It blocks only when the buffer is
// full, which the heartbeat handler tolerates.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// notifySubscribers sends the device-online payload to every registered
// subscription.
func (wp *WorkerPool) notifySubscribers(ctx context.Context, job Job) {
	subscriptions, err := wp.store.ListSubscriptions(ctx)
	if err != nil {
		log.Printf("Error fetching subscriptions for device %s: %v", job.DeviceID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := job.CustomerName
	if label == "" {
		label = job.DeviceID
	}
	message := fmt.Sprintf("Device of %s is now online and ready for a support session.", label)

	log.Printf("Sending %d notifications for device %s", len(subscriptions), job.DeviceID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
