package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cosalpha/ipo-tracker/services"
)

type AnalysisHandler struct {
	Service *services.CachedDashboardService
}

func NewAnalysisHandler(service *services.CachedDashboardService) *AnalysisHandler {
	return &AnalysisHandler{Service: service}
}

func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	name, err := companyNameParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "company name is required",
		})
	}
	template := h.Service.GetAnalysis(name)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    template,
	})
}

func (h *AnalysisHandler) GetDocument(c *fiber.Ctx) error {
	name, err := companyNameParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "company name is required",
		})
	}
	documentURL, resolved := h.Service.GetDocumentURL(name)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"company_name": name,
			"url":          documentURL,
			"resolved":     resolved,
		},
	})
}

func companyNameParam(c *fiber.Ctx) (string, error) {
	raw := c.Params("name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", fiber.ErrBadRequest
	}
	return decoded, nil
}
