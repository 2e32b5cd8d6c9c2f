package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID tags every request with a stable id for log correlation,
// honoring an id supplied by the caller.
func RequestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("requestId", id)
	c.Set("X-Request-ID", id)
	return c.Next()
}
