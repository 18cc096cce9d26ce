package middleware

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// OriginAllowed reports whether a request with the given Origin header may be served.
// Requests without an Origin (same-origin, curl, server to server) are always allowed.
func OriginAllowed(allowList []string, origin string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(allowList, origin)
}

// CORS rejects foreign origins with 403 and answers allowed ones with CORS headers.
func CORS(allowList []string) fiber.Handler {
	allowed := func(origin string) bool {
		return OriginAllowed(allowList, origin)
	}
	headers := cors.New(cors.Config{
		AllowOriginsFunc: allowed,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
	})

	return func(c *fiber.Ctx) error {
		if !allowed(c.Get(fiber.HeaderOrigin)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Error de CORS",
			})
		}
		return headers(c)
	}
}
