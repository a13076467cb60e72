package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/middleware"
	"hospitalhub/internal/models"
	"hospitalhub/internal/services"
)

// StatsHandlers serves dashboard counts.
type StatsHandlers struct {
	stats services.StatsService
	rbac  *middleware.RBACMiddleware
}

func NewStatsHandlers(stats services.StatsService, rbac *middleware.RBACMiddleware) *StatsHandlers {
	return &StatsHandlers{
		stats: stats,
		rbac:  rbac,
	}
}

// GetStats handles GET /api/stats. Callers allowed the aggregate view get
// totals across every active hospital; everyone else gets their own
// hospital's counts, which need a live tenant binding.
func (h *StatsHandlers) GetStats(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}

	if identity.Role.Can(models.CapStatsAggregate) {
		stats, err := h.stats.Aggregate(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, stats)
	}

	return h.rbac.Require(models.CapTenantRead)(h.tenantStats)(c)
}

func (h *StatsHandlers) tenantStats(c echo.Context) error {
	db, err := middleware.Tenant(c)
	if err != nil {
		return err
	}
	stats, err := h.stats.TenantStats(c.Request().Context(), db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
