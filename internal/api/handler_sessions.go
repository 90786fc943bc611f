package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type requestSessionRequest struct {
	DeviceID     string `json:"device_id" binding:"required"`
	TechnicianID string `json:"technician_id" binding:"required"`
}

// RequestSession handles POST /api/sessions.
func (h *Handler) RequestSession(c *gin.Context) {
	var req requestSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.broker.RequestSession(c.Request.Context(), req.DeviceID, req.TechnicianID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, creds)
}

// ConfirmSession handles POST /api/sessions/:session_id/confirm.
func (h *Handler) ConfirmSession(c *gin.Context) {
	if err := h.broker.ConfirmSession(c.Request.Context(), c.Param("session_id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

// CloseSession handles DELETE /api/sessions/:session_id. It closes active
// sessions and cancels unconfirmed requests; both are idempotent.
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.broker.CloseSession(c.Request.Context(), c.Param("session_id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
