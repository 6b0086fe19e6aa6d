package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/offload-agent/api/v1"
)

// GetPool returns the slots of the pool and the queue depth
// (GET /pool)
func (h *Handler) GetPool(c *gin.Context) {
	status, err := h.offloadSrv.Status(c.Request.Context())
	if err != nil {
		zap.S().Named("pool_handler").Errorw("failed to get pool status", "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	var resp v1.PoolStatus
	resp.FromModel(status)
	c.JSON(http.StatusOK, resp)
}

// UpdatePool replaces the pool with one of the requested size
// (PUT /pool)
func (h *Handler) UpdatePool(c *gin.Context) {
	var req v1.PoolUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.offloadSrv.Start(c.Request.Context(), req.Size); err != nil {
		zap.S().Named("pool_handler").Errorw("failed to start pool", "size", req.Size, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.GetPool(c)
}

// DeletePool terminates every worker; queued calls wait for the next PUT
// (DELETE /pool)
func (h *Handler) DeletePool(c *gin.Context) {
	if err := h.offloadSrv.Stop(c.Request.Context()); err != nil {
		zap.S().Named("pool_handler").Errorw("failed to stop pool", "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.GetPool(c)
}
