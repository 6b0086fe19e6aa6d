package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/offload-agent/api/v1"
	"github.com/kubev2v/offload-agent/internal/models"
	"github.com/kubev2v/offload-agent/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateCall queues a call. With ?wait=true the response carries its outcome
// (POST /calls)
func (h *Handler) CreateCall(c *gin.Context) {
	var req v1.CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wait, _ := strconv.ParseBool(c.Query("wait"))
	ctx := c.Request.Context()

	id, future, err := h.offloadSrv.Run(ctx, req.FunctionName, req.Arguments)
	if err != nil {
		zap.S().Named("call_handler").Errorw("failed to submit call", "function", req.FunctionName, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if !wait {
		c.JSON(http.StatusAccepted, v1.CallAccepted{Id: id})
		return
	}

	select {
	case r := <-future.C():
		c.JSON(http.StatusOK, v1.NewCallOutcome(id, r))
	case <-ctx.Done():
		// the call keeps running; its outcome lands in the journal
		c.JSON(http.StatusAccepted, v1.CallAccepted{Id: id})
	}
}

// GetCalls lists journaled calls with filtering and pagination
// (GET /calls)
func (h *Handler) GetCalls(c *gin.Context) {
	var params v1.GetCallsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page := 1
	if params.Page > 0 {
		page = params.Page
	}
	pageSize := defaultPageSize
	if params.PageSize > 0 {
		pageSize = min(params.PageSize, maxPageSize)
	}
	if page-1 > math.MaxInt/pageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("page %d is out of range", page)})
		return
	}

	svcParams := services.CallListParams{
		Functions: params.FunctionName,
		Limit:     uint64(pageSize),
		Offset:    uint64((page - 1) * pageSize),
	}
	for _, s := range params.Status {
		status, err := models.ParseCallStatus(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		svcParams.Statuses = append(svcParams.Statuses, status)
	}

	result, err := h.offloadSrv.List(c.Request.Context(), svcParams)
	if err != nil {
		zap.S().Named("call_handler").Errorw("failed to list calls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list calls"})
		return
	}

	pageCount := (result.Total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	apiCalls := make([]v1.Call, 0, len(result.Calls))
	for _, rec := range result.Calls {
		apiCalls = append(apiCalls, v1.NewCallFromModel(rec))
	}

	c.JSON(http.StatusOK, v1.CallListResponse{
		Page:      page,
		PageCount: pageCount,
		Total:     result.Total,
		Calls:     apiCalls,
	})
}

// GetCall returns one journaled call
// (GET /calls/{id})
func (h *Handler) GetCall(c *gin.Context) {
	rec, err := h.offloadSrv.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, v1.NewCallFromModel(*rec))
}
