package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
)

// errorMapping código HTTP y código de error por cada error de dominio.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnresolvableProduct, fiber.StatusBadRequest, "UNRESOLVABLE_PRODUCT"},
	{domain.ErrNegativeUnitCost, fiber.StatusBadRequest, "NEGATIVE_UNIT_COST"},
	{domain.ErrZeroOrNegativeQuantityOnCreate, fiber.StatusBadRequest, "INVALID_CREATE_QUANTITY"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrProductInactive, fiber.StatusConflict, "PRODUCT_INACTIVE"},
	{domain.ErrAlreadyReversed, fiber.StatusConflict, "ALREADY_REVERSED"},
	{domain.ErrConcurrentModification, fiber.StatusConflict, "CONCURRENT_MODIFICATION"},
	{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// writeError responde con el código que corresponde al error de dominio; el resto es 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
