package restapi

import (
	"net/http"

	"github.com/andreyxaxa/Image-Tagger/config"
	v1 "github.com/andreyxaxa/Image-Tagger/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Image-Tagger/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Tagger/internal/usecase"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// @title Image tagger
// @version 1.0.0
// @host localhost:5000
// @BasePath /
func NewRouter(app *fiber.App, cfg *config.Config, img usecase.ImageUseCase, l logger.Interface) {
	// Middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.FrontendURL,
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		// fiber rejects credentials with a wildcard origin
		AllowCredentials: cfg.CORS.FrontendURL != "*",
	}))
	app.Use(accessLog(l))

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Liveness
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(response.Health{Status: "ok"})
	})

	// Routers
	apiGroup := app.Group("/api")
	{
		v1.NewImageRoutes(apiGroup, img, l)
	}

	v1.NewUIRoutes(app, l)

	app.Use(func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusNotFound).JSON(response.Error{Error: "Not found", Status: http.StatusNotFound})
	})
}

func accessLog(l logger.Interface) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()

		l.Debug("restapi - %s %s - %d", ctx.Method(), ctx.Path(), ctx.Response().StatusCode())

		return err
	}
}
