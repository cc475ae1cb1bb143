package handler

import (
	"go-wms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DeliveryHandler struct {
	service service.DeliveryService
}

func NewDeliveryHandler(s service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{service: s}
}

func (h *DeliveryHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid delivery ID"})
	}

	delivery, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(delivery)
}

func (h *DeliveryHandler) GetByOutbound(c *fiber.Ctx) error {
	outboundID, err := uuid.Parse(c.Params("outboundId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid outbound ID"})
	}

	delivery, err := h.service.GetByOutbound(outboundID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(delivery)
}

func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	page, limit := paging(c)
	deliveries, total, err := h.service.List(page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": deliveries, "total": total, "page": page, "limit": limit})
}

func (h *DeliveryHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid delivery ID"})
	}

	var req service.DeliveryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	delivery, err := h.service.UpdateStatus(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Delivery updated", "data": delivery})
}

func (h *DeliveryHandler) AddEvent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid delivery ID"})
	}

	var req service.DeliveryEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	delivery, err := h.service.AddEvent(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Event recorded", "data": delivery})
}

// Webhook receives carrier callbacks, deduplicated on the carrier event id.
func (h *DeliveryHandler) Webhook(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid delivery ID"})
	}

	var req service.DeliveryWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	delivery, err := h.service.HandleWebhook(id, &req, "carrier")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Webhook processed", "data": delivery})
}
