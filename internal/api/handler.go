package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"remote-support-backend/internal/events"
	"remote-support-backend/internal/store"
	"remote-support-backend/internal/support"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	issuer   *support.Issuer
	binder   *support.Binder
	registry *support.Registry
	broker   *support.Broker
	activity *support.ActivityLog
	store    store.Store
	hub      *events.Hub
	webpush  *webpush.Options
}

// Services bundles the lifecycle components the API fronts.
type Services struct {
	Issuer   *support.Issuer
	Binder   *support.Binder
	Registry *support.Registry
	Broker   *support.Broker
	Activity *support.ActivityLog
}

// NewHandler creates a new API handler.
func NewHandler(svc Services, s store.Store, hub *events.Hub, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		issuer:   svc.Issuer,
		binder:   svc.Binder,
		registry: svc.Registry,
		broker:   svc.Broker,
		activity: svc.Activity,
		store:    s,
		hub:      hub,
		webpush:  webpushOptions,
	}
}

// abortWithError maps a lifecycle error to its HTTP status. Every typed
// failure keeps its own status so callers never have to pattern-match
// message text.
func abortWithError(c *gin.Context, err error) {
	var vErr *support.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
	case errors.Is(err, store.ErrCodeNotFound),
		errors.Is(err, store.ErrDeviceNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrCodeExpired),
		errors.Is(err, store.ErrSessionExpired):
		c.AbortWithStatusJSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrCodeRedeemed),
		errors.Is(err, store.ErrSessionConflict),
		errors.Is(err, store.ErrSessionClosed):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDeviceOffline):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
