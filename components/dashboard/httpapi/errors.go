package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/commands"
	"github.com/goliatone/go-bizdash/components/projection"
)

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, projection.ErrInvalidParameter),
		errors.Is(err, projection.ErrDegenerateRange),
		errors.Is(err, dashboard.ErrInvalidWidgetConfig),
		errors.Is(err, commands.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownWidget),
		errors.Is(err, dashboard.ErrWidgetNotFound),
		errors.Is(err, dashboard.ErrScenarioNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": err.Error()}
	var cfgErr *dashboard.ConfigError
	if errors.As(err, &cfgErr) {
		body["issues"] = cfgErr.Issues
	}
	return c.Status(StatusFor(err)).JSON(body)
}
