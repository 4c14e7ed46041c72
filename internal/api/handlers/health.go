package handlers

import (
	"net/http"

	"github.com/Ayash-Bera/miniplex/internal/health"
	"github.com/Ayash-Bera/miniplex/pkg/utils"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth serves the latest periodic report, 200 unless a critical
// dependency is down.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	report := h.checker.CheckCached(c.Request.Context())

	if report.Status == health.StatusUnhealthy {
		utils.FailureResponse(c, http.StatusServiceUnavailable, report.Status, report)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, report.Status, report)
}
