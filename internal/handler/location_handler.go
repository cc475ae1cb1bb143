package handler

import (
	"go-wms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LocationHandler struct {
	service service.LocationService
}

func NewLocationHandler(s service.LocationService) *LocationHandler {
	return &LocationHandler{service: s}
}

func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var req service.CreateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	location, err := h.service.Create(&req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Location created", "data": location})
}

func (h *LocationHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location ID"})
	}

	var req service.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	location, err := h.service.Update(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Location updated", "data": location})
}

func (h *LocationHandler) SetActive(active bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location ID"})
		}

		location, err := h.service.SetActive(id, active, getActor(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Location updated", "data": location})
	}
}

func (h *LocationHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location ID"})
	}

	location, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(location)
}

func (h *LocationHandler) List(c *fiber.Ctx) error {
	locations, err := h.service.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(locations)
}

// CheckCapacity answers the putaway pre-flight: ?required=<units>
func (h *LocationHandler) CheckCapacity(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid location ID"})
	}

	required := c.QueryInt("required", 0)
	check, err := h.service.CheckCapacity(id, required)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(check)
}
