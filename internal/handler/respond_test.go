package handler

import (
	"errors"
	"net/http/httptest"
	"testing"

	"go-wms/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperr.NotFound("missing"), fiber.StatusNotFound},
		{"validation", apperr.Validation("bad input"), fiber.StatusBadRequest},
		{"invalid transition", apperr.InvalidTransition("no"), fiber.StatusUnprocessableEntity},
		{"insufficient quantity", apperr.InsufficientQuantity("short"), fiber.StatusUnprocessableEntity},
		{"insufficient capacity", apperr.InsufficientCapacity("full"), fiber.StatusUnprocessableEntity},
		{"concurrency conflict", apperr.ConcurrencyConflict("retry"), fiber.StatusConflict},
		{"duplicate event", apperr.DuplicateEvent("seen"), fiber.StatusOK},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestGetActor_DefaultsEmpty(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(getActor(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
