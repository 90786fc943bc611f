package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"remote-support-backend/internal/mw"
)

// RouterOptions tunes the middleware applied to the API surface.
type RouterOptions struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router around the handler.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.Default()

	// Issuance and redemption accept attacker-typeable input; throttle them
	// per source IP.
	rateLimiter := mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst)

	// The dashboard polls stats/activity from every open tab; serve those
	// from a short-lived cache.
	cacheStore := cache.New(opts.CacheTTL, 10*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	api := r.Group("/api")
	{
		api.POST("/support-codes", rateLimiter, h.IssueCode)
		api.POST("/customer/installer", rateLimiter, h.RedeemCode)

		api.POST("/devices/:device_id/heartbeat", h.Heartbeat)
		api.GET("/devices", h.ListDevices)
		api.DELETE("/devices/:device_id", h.RemoveDevice)

		api.POST("/sessions", h.RequestSession)
		api.POST("/sessions/:session_id/confirm", h.ConfirmSession)
		api.DELETE("/sessions/:session_id", h.CloseSession)

		api.GET("/stats", caching, h.GetStats)
		api.GET("/activity", caching, h.GetActivity)
		api.GET("/events", h.StreamEvents)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
