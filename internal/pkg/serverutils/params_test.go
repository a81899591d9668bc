package serverutils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParamTestApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			if apiErr, ok := err.(*APIError); ok {
				return ctx.Status(apiErr.Status).JSON(ErrorEnvelope{Error: apiErr.Code, Message: apiErr.Message})
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorEnvelope{Error: "internal_error", Message: err.Error()})
		},
	})
	app.Get("/research/:id", func(ctx *fiber.Ctx) error {
		id, err := ParseUUIDParam(ctx, "id")
		if err != nil {
			return err
		}
		return ctx.JSON(fiber.Map{"id": id.String()})
	})
	return app
}

func TestParseUUIDParam_AcceptsCanonicalUUID(t *testing.T) {
	app := newParamTestApp()
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/research/"+id.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestParseUUIDParam_RejectsMalformedID(t *testing.T) {
	app := newParamTestApp()

	req := httptest.NewRequest(http.MethodGet, "/research/not-a-uuid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
