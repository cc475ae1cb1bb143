package handler

import (
	"go-wms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InboundHandler struct {
	service service.InboundService
}

func NewInboundHandler(s service.InboundService) *InboundHandler {
	return &InboundHandler{service: s}
}

func (h *InboundHandler) Create(c *fiber.Ctx) error {
	var req service.CreateInboundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	inbound, err := h.service.Create(&req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Inbound created", "data": inbound})
}

func (h *InboundHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid inbound ID"})
	}

	inbound, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inbound)
}

func (h *InboundHandler) List(c *fiber.Ctx) error {
	page, limit := paging(c)
	inbounds, total, err := h.service.List(page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": inbounds, "total": total, "page": page, "limit": limit})
}

func (h *InboundHandler) Receive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid inbound ID"})
	}

	var req service.ReceiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	inbound, err := h.service.Receive(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Inbound received", "data": inbound})
}

func (h *InboundHandler) PutAway(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid inbound ID"})
	}

	var req service.PutAwayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	inbound, err := h.service.PutAway(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Inbound put away", "data": inbound})
}

func (h *InboundHandler) Complete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid inbound ID"})
	}

	inbound, err := h.service.Complete(id, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Inbound completed", "data": inbound})
}

func (h *InboundHandler) Cancel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid inbound ID"})
	}

	inbound, err := h.service.Cancel(id, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Inbound cancelled", "data": inbound})
}
