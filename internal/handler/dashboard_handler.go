package handler

import (
	"time"

	"go-wms/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetStockMovement defaults to the trailing 30 days when no range is given.
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date"})
		}
		startDate = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date"})
		}
		endDate = parsed
	}

	movement, err := h.service.GetStockMovement(startDate, endDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movement)
}
