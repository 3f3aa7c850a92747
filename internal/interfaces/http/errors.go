package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/facturasur/dte-engine/internal/application/dto"
	"github.com/facturasur/dte-engine/internal/domain"
)

// errorJSON traduce los errores de dominio a la taxonomía HTTP de la API.
// Los errores de negocio llevan código estable; cualquier otro error es una
// falla de infraestructura y se reporta como INTERNAL (reintenable: la
// transacción de emisión garantiza que no quedó folio consumido).
func errorJSON(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCAF):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CAF", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicateCAF):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_CAF", Message: err.Error()})
	case errors.Is(err, domain.ErrNoFolios):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_FOLIOS", Message: err.Error()})
	case errors.Is(err, domain.ErrCAFExpired):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CAF_EXPIRED", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
