package handler

import (
	"go-wms/internal/model"
	"go-wms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OutboundHandler struct {
	service service.OutboundService
}

func NewOutboundHandler(s service.OutboundService) *OutboundHandler {
	return &OutboundHandler{service: s}
}

func (h *OutboundHandler) Create(c *fiber.Ctx) error {
	var req service.CreateOutboundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	outbound, err := h.service.Create(&req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Outbound created", "data": outbound})
}

func (h *OutboundHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid outbound ID"})
	}

	outbound, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(outbound)
}

func (h *OutboundHandler) List(c *fiber.Ctx) error {
	page, limit := paging(c)
	outbounds, total, err := h.service.List(page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": outbounds, "total": total, "page": page, "limit": limit})
}

func (h *OutboundHandler) Pick(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid outbound ID"})
	}

	var req service.PickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	outbound, err := h.service.Pick(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Outbound picked", "data": outbound})
}

func (h *OutboundHandler) Transition(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid outbound ID"})
		}

		var (
			outbound *model.Outbound
			msg      string
		)
		actor := getActor(c)
		switch action {
		case "allocate":
			outbound, err = h.service.Allocate(id, actor)
			msg = "Outbound allocated"
		case "pack":
			outbound, err = h.service.Pack(id, actor)
			msg = "Outbound packed"
		case "ship":
			outbound, err = h.service.Ship(id, actor)
			msg = "Outbound shipped"
		case "cancel":
			outbound, err = h.service.Cancel(id, actor)
			msg = "Outbound cancelled"
		default:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown action"})
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": msg, "data": outbound})
	}
}
