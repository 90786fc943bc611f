package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"remote-support-backend/config"
	"remote-support-backend/internal/api"
	"remote-support-backend/internal/db"
	"remote-support-backend/internal/events"
	"remote-support-backend/internal/notification"
	"remote-support-backend/internal/store"
	"remote-support-backend/internal/support"
	"remote-support-backend/internal/sweeper"
)

func main() {
	logger := log.New(os.Stdout, "supportd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	hub := events.NewHub()
	activity := support.NewActivityLog(appStore, hub)

	// Push notifications are the dashboard's convenience, not the lifecycle
	// core: without VAPID keys the server runs with them disabled.
	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		logger.Printf("push notifications enabled with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys are not configured; push notifications disabled")
	}

	services := api.Services{
		Issuer:   support.NewIssuer(appStore, activity, cfg.Codes.TTL),
		Binder:   support.NewBinder(appStore, activity, cfg.Sessions.ServerAddress),
		Registry: support.NewRegistry(appStore, activity, pool),
		Broker:   support.NewBroker(appStore, activity, cfg.Sessions.TTL, cfg.Sessions.ServerAddress),
		Activity: activity,
	}

	sweepSvc := sweeper.NewService(&cfg.Sweeper, appStore, activity)
	go sweepSvc.Run(ctx)

	handler := api.NewHandler(services, appStore, hub, webpushOptions)
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
