package server

import (
	"log"
	"time"

	"deepresearch-be/internal/bootstrap"
	"deepresearch-be/internal/config"
	"deepresearch-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1 MiB, per the HTTP surface's request body size limit
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: false,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
	}))

	app.Use(otelfiber.Middleware())

	isDev := cfg.App.Environment != "production"
	app.Use(serverutils.ErrorHandlerMiddleware(container.Log, container.Persist, isDev))
	app.Use(recover.New())

	registerRoutes(app, container)

	return &Server{app: app, cfg: cfg, container: container}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("research orchestration service listening on :%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown drains in-flight requests, including open SSE streams,
// before returning — the graceful-shutdown half of the process-wide
// teardown the resource model documents alongside the pool and cache.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(30 * time.Second)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	postLimiter := serverutils.NewRateLimiter("/research", 20, time.Minute, c.Log)
	getLimiter := serverutils.NewRateLimiter("/history", 60, time.Minute, c.Log)

	c.ResearchController.RegisterRoutes(app, postLimiter, getLimiter)
}
