package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kubev2v/offload-agent/internal/services"
	srvErrors "github.com/kubev2v/offload-agent/pkg/errors"
)

type Handler struct {
	offloadSrv *services.OffloadService
}

func New(offloadSrv *services.OffloadService) *Handler {
	return &Handler{offloadSrv: offloadSrv}
}

// RegisterHandlers wires every endpoint under router.
func RegisterHandlers(router gin.IRouter, h *Handler) {
	router.GET("/pool", h.GetPool)
	router.PUT("/pool", h.UpdatePool)
	router.DELETE("/pool", h.DeletePool)

	router.GET("/calls", h.GetCalls)
	router.POST("/calls", h.CreateCall)
	router.GET("/calls/:id", h.GetCall)
}

// statusFor maps a service error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case srvErrors.IsResourceNotFoundError(err):
		return http.StatusNotFound
	case srvErrors.IsInvalidPoolSizeError(err):
		return http.StatusBadRequest
	case srvErrors.IsQueueFullError(err):
		return http.StatusTooManyRequests
	case srvErrors.IsSchedulerClosedError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
