package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-traslados/internal/application/dto"
	"github.com/jhoicas/inventario-traslados/internal/domain"
)

type errorMapping struct {
	kind   error
	status int
	code   string
}

// El orden importa: los refinamientos van antes que su clase.
var errorMappings = []errorMapping{
	{domain.ErrAlreadyProcessed, fiber.StatusConflict, "ALREADY_PROCESSED"},
	{domain.ErrAlreadyPresent, fiber.StatusConflict, "ALREADY_PRESENT"},
	{domain.ErrNotFoundAtSource, fiber.StatusNotFound, "NOT_FOUND_AT_SOURCE"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrInsufficientQuantity, fiber.StatusConflict, "INSUFFICIENT_QUANTITY"},
	{domain.ErrInsufficientAvailable, fiber.StatusConflict, "INSUFFICIENT_AVAILABLE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrOperationFailed, fiber.StatusServiceUnavailable, "OPERATION_FAILED"},
}

// writeError traduce un error de dominio a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return c.Status(m.status).JSON(dto.ErrorResponse{
				Code:      m.code,
				Message:   err.Error(),
				Retryable: domain.IsRetryable(err),
			})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
