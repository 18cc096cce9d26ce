package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler serves the liveness endpoints.
type HealthHandler struct {
	ping func(ctx context.Context) error // nil when there is no database to reach
}

// NewHealthHandler creates a HealthHandler. ping may be nil.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// HandleAPIStatus answers the API liveness probe.
//
//	@Summary	API liveness probe
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	MessageResponse
//	@Router		/api [get]
func (h *HealthHandler) HandleAPIStatus(c *fiber.Ctx) error {
	return c.JSON(MessageResponse{Msg: "Desde API"})
}

// HandleHealth reports process and database health.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status, database, code := "healthy", "connected", fiber.StatusOK
	if h.ping == nil {
		database = "in-memory"
	} else {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			status, database, code = "unhealthy", "unavailable", fiber.StatusServiceUnavailable
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	})
}
