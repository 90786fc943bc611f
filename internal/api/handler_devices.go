package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type heartbeatRequest struct {
	OS string `json:"os"`
}

// Heartbeat handles POST /api/devices/:device_id/heartbeat.
func (h *Handler) Heartbeat(c *gin.Context) {
	var req heartbeatRequest
	// The body is optional; older clients beat without reporting an OS.
	_ = c.ShouldBindJSON(&req)

	if err := h.registry.Heartbeat(c.Request.Context(), c.Param("device_id"), req.OS); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListDevices handles GET /api/devices.
func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.registry.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

// RemoveDevice handles DELETE /api/devices/:device_id.
func (h *Handler) RemoveDevice(c *gin.Context) {
	if err := h.registry.Remove(c.Request.Context(), c.Param("device_id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
