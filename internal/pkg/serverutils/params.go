package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParseUUIDParam reads a path param and requires it to be a canonical
// 8-4-4-4-12 UUID, returning a validation_error APIError otherwise.
func ParseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := ctx.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, NewValidationError(name + " must be a valid uuid")
	}
	return id, nil
}
