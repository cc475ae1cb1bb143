package handler

import (
	"go-wms/internal/model"
	"go-wms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var req service.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	payment, err := h.service.Create(&req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Payment created", "data": payment})
}

func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}

	payment, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	page, limit := paging(c)
	payments, total, err := h.service.List(page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": payments, "total": total, "page": page, "limit": limit})
}

func (h *PaymentHandler) Transition(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
		}

		var (
			payment *model.Payment
			msg     string
		)
		actor := getActor(c)
		switch action {
		case "confirm":
			payment, err = h.service.Confirm(id, actor)
			msg = "Payment confirmed"
		case "fail":
			payment, err = h.service.Fail(id, actor)
			msg = "Payment failed"
		case "cancel":
			payment, err = h.service.Cancel(id, actor)
			msg = "Payment cancelled"
		default:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown action"})
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": msg, "data": payment})
	}
}

// Webhook receives gateway callbacks. Replayed event ids answer 200 without
// changing anything, so the gateway stops retrying.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}

	var req service.PaymentWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	payment, err := h.service.HandleWebhook(id, &req, "payment-gateway")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Webhook processed", "data": payment})
}
