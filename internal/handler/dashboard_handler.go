package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// DashboardHandler exposes role-scoped summary endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
	metrics   *service.MetricsService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, metrics *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, metrics: metrics}
}

// Summary godoc
// @Summary Role-scoped dashboard summary
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.dashboard.Summary(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if summary.Cached {
		meta = map[string]interface{}{"cache": "hit"}
	}
	response.JSON(c, http.StatusOK, summary, nil, meta)
}

// System godoc
// @Summary Runtime metrics snapshot
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/system [get]
func (h *DashboardHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
