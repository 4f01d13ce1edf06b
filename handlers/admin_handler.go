package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cosalpha/ipo-tracker/services"
)

type AdminHandler struct {
	Service   *services.CachedDashboardService
	Dashboard *services.DashboardService
}

func NewAdminHandler(service *services.CachedDashboardService, dashboard *services.DashboardService) *AdminHandler {
	return &AdminHandler{Service: service, Dashboard: dashboard}
}

// RefreshCache drops the memoized snapshot and rebuilds it
func (h *AdminHandler) RefreshCache(c *fiber.Ctx) error {
	h.Service.InvalidateSnapshot()
	h.Service.WarmupCache()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "snapshot cache refreshed",
	})
}

// GetCacheStats reports cache size and per-source fetch counters
func (h *AdminHandler) GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"cache":   h.Service.GetCacheStats(),
			"sources": h.Dashboard.SourceMetrics(),
		},
	})
}
