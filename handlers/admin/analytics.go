package admin

import (
	"github.com/edusphere/internship-api/services"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// AnalyticsHandler serves the admin dashboard aggregates
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard returns enrollment and funnel aggregates
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.analytics.GetDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute dashboard")
	}

	return response.Success(c, dashboard)
}
