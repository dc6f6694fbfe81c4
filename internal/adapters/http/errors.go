package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/logger"
	"github.com/petfood-ae/storefront/internal/service"
	"github.com/petfood-ae/storefront/internal/stats"
)

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrEmptyCart),
		errors.Is(err, stats.ErrInvalidDate):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, core.ErrOrderNotFound),
		errors.Is(err, core.ErrProductNotFound),
		errors.Is(err, core.ErrVariantNotFound),
		errors.Is(err, core.ErrAdminUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, core.ErrInsufficientStock),
		errors.Is(err, core.ErrDuplicateOrderNumber):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as a JSON error body. Internal failures are logged
// and reported with the fallback message only.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.Log.Error().Err(err).Str("path", c.Path()).Msg(fallback)
		return c.Status(status).JSON(fiber.Map{
			"error": fallback,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}
