// Package server assembles the Fiber application: global middleware, the
// product routes, the documentation endpoint and the central error handler.
package server

import (
	"context"
	"errors"
	"log/slog"

	"productsapi/internal/handlers"
	"productsapi/internal/middleware"
	"productsapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"

	_ "productsapi/docs" // registers the OpenAPI document served under /docs
)

// MsgInternalError is the body of every unexpected failure.
const MsgInternalError = "Error en el servidor"

// Deps are the collaborators the application is built from.
type Deps struct {
	Products       *services.ProductService
	Ping           func(ctx context.Context) error // optional
	AllowedOrigins []string
	Logger         *slog.Logger
	AccessLog      bool
}

// New builds the Fiber app.
func New(deps Deps) *fiber.App {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:      "products-api",
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(middleware.CORS(deps.AllowedOrigins))

	healthHandler := handlers.NewHealthHandler(deps.Ping)
	productHandler := handlers.NewProductHandler(deps.Products)

	app.Get("/health", healthHandler.HandleHealth)
	app.Get("/docs/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/", healthHandler.HandleAPIStatus)
	productHandler.RegisterRoutes(api)

	return app
}

// errorHandler turns handler errors into responses: *fiber.Error keeps its
// status, everything else is logged and becomes a 500.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(handlers.ErrorResponse{Error: fe.Message})
		}

		log.Error("request failed",
			"request_id", c.Locals(requestid.ConfigDefault.ContextKey),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(handlers.ErrorResponse{Error: MsgInternalError})
	}
}
