package middleware

import (
	"productsapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// HandleInputErrors ends the request with 400 when any validation chain before it
// recorded a violation; otherwise it passes the request on untouched.
func HandleInputErrors(c *fiber.Ctx) error {
	violations := validation.Violations(c)
	if len(violations) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": violations,
		})
	}
	return c.Next()
}
