package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-wms/internal/apperr"
)

// getActor returns the caller identity set by the auth middleware. Services
// re-check it; the fallback only exists for the unauthenticated webhook
// routes, which carry the partner identity instead.
func getActor(c *fiber.Ctx) string {
	if actor, ok := c.Locals("actor").(string); ok {
		return actor
	}
	return ""
}

// respondError maps the error taxonomy onto HTTP statuses. DuplicateEvent is
// an idempotent no-op and answers 200.
func respondError(c *fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)
	switch code {
	case apperr.CodeNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error(), "code": code})
	case apperr.CodeValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "code": code})
	case apperr.CodeInvalidTransition,
		apperr.CodeInsufficientQuantity,
		apperr.CodeInsufficientCapacity:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error(), "code": code})
	case apperr.CodeConcurrencyConflict:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "code": code})
	case apperr.CodeDuplicateEvent:
		return c.JSON(fiber.Map{"message": "event already processed"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func paging(c *fiber.Ctx) (page, limit int) {
	return c.QueryInt("page", 1), c.QueryInt("limit", 20)
}
