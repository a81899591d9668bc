package controller

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"deepresearch-be/internal/dto"
	"deepresearch-be/internal/pkg/serverutils"
	"deepresearch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IResearchController interface {
	RegisterRoutes(r fiber.Router, postLimiter, getLimiter fiber.Handler)
	Start(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type researchController struct {
	researchService service.IResearchService
}

func NewResearchController(researchService service.IResearchService) IResearchController {
	return &researchController{researchService: researchService}
}

func (c *researchController) RegisterRoutes(r fiber.Router, postLimiter, getLimiter fiber.Handler) {
	r.Post("/research", postLimiter, c.Start)
	r.Get("/research/:id", getLimiter, c.Show)
	r.Get("/research/:id/stream", getLimiter, c.Stream)
	r.Get("/history", getLimiter, c.History)
	r.Delete("/history/:id", getLimiter, c.Delete)
	r.Get("/health", c.Health)
}

// Start is POST /research. Admission order here is exactly the one the
// surface documents: rate limiting already ran as route middleware,
// then input validation, then (implicitly, via the service) the
// cache/session path.
func (c *researchController) Start(ctx *fiber.Ctx) error {
	var req dto.StartResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("request body must be valid JSON")
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Mode == "" {
		req.Mode = "standard"
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if err := serverutils.CheckQuerySafety(req.Query); err != nil {
		return err
	}

	res, err := c.researchService.Start(ctx.Context(), req.Query, req.Mode)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("research started", res))
}

func (c *researchController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.researchService.GetSession(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("session fetched", res))
}

// Stream is GET /research/:id/stream. If the session is already
// terminal the service hands back a snapshot and a nil channel and this
// handler answers with a single JSON payload, per §4.2's "respond with
// a single JSON payload instead of opening a stream". Otherwise it
// frames every event on the bus as a `event: <name>\ndata: <json>\n\n`
// SSE record until a terminal complete/error event, or the client
// disconnects.
func (c *researchController) Stream(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	snapshot, ch, err := c.researchService.AttachStream(ctx.Context(), id)
	if err != nil {
		return err
	}
	if ch == nil {
		return ctx.JSON(serverutils.SuccessResponse("session already terminal", snapshot))
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for event := range ch {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, event.JSON)
			if err := w.Flush(); err != nil {
				return
			}
			if event.Name != "phase" {
				return
			}
		}
	})
	return nil
}

func (c *researchController) History(ctx *fiber.Ctx) error {
	limit := clampInt(ctx.QueryInt("limit", 50), 1, 100)
	offset := ctx.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	res, err := c.researchService.ListHistory(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("history fetched", res))
}

func (c *researchController) Delete(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.researchService.DeleteSession(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("session deleted", res))
}

func (c *researchController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{Status: "ok", Timestamp: time.Now().UnixMilli()})
}

// clampInt implements the boundary rule: limit=0 -> 1, limit=500 -> 100.
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
