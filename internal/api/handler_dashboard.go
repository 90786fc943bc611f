package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetStats handles GET /api/stats.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), time.Now().UTC())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetActivity handles GET /api/activity?limit=N.
func (h *Handler) GetActivity(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a number between 1 and 200"})
			return
		}
		limit = parsed
	}

	activity, err := h.activity.Recent(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}
