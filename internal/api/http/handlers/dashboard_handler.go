package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/josoro11/FOXITE-V2/internal/service"
)

// DashboardHandler serves cached operational stats for staff.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats handles GET /staff/dashboard.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	stats, err := h.dashboard.Stats(c.Context(), staff.OrganizationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
