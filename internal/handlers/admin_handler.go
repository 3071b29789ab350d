package handlers

import (
	"marmomart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the back office dashboard.
type AdminHandler struct {
	service *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers the dashboard routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/stats", h.HandleStats)
}

// HandleStats returns headline counts for the dashboard.
func (h *AdminHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, "Could not load dashboard stats", err)
	}
	return c.JSON(stats)
}
