package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"remote-support-backend/internal/support"
)

type issueCodeRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Notes         string `json:"notes"`
}

// IssueCode handles POST /api/support-codes.
func (h *Handler) IssueCode(c *gin.Context) {
	var req issueCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc, err := h.issuer.IssueCode(c.Request.Context(), support.CustomerInfo{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
		Notes: req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":          sc.Code,
		"expires_at":    sc.ExpiresAt.Format(time.RFC3339),
		"customer_name": sc.CustomerName,
	})
}

type redeemCodeRequest struct {
	SupportCode string `json:"support_code" binding:"required"`
}

// RedeemCode handles POST /api/customer/installer.
func (h *Handler) RedeemCode(c *gin.Context) {
	var req redeemCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	descriptor, err := h.binder.RedeemCode(c.Request.Context(), req.SupportCode)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, descriptor)
}
