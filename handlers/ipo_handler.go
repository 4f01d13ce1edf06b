package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cosalpha/ipo-tracker/models"
	"github.com/cosalpha/ipo-tracker/services"
)

type IPOHandler struct {
	Service *services.CachedDashboardService
}

func NewIPOHandler(service *services.CachedDashboardService) *IPOHandler {
	return &IPOHandler{Service: service}
}

func (h *IPOHandler) GetOngoingIPOs(c *fiber.Ctx) error {
	return h.bucketResponse(c, models.ClassificationOngoing)
}

func (h *IPOHandler) GetUpcomingIPOs(c *fiber.Ctx) error {
	return h.bucketResponse(c, models.ClassificationUpcoming)
}

func (h *IPOHandler) GetPastIPOs(c *fiber.Ctx) error {
	return h.bucketResponse(c, models.ClassificationPast)
}

func (h *IPOHandler) bucketResponse(c *fiber.Ctx, bucket models.Classification) error {
	search := c.Query("search", "")
	view := h.Service.GetBucketView(bucket, search)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    view,
	})
}
