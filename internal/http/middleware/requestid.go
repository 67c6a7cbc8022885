package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID reuses an incoming X-Request-ID or generates a UUID, stores it in locals
// and echoes it on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

// RequestIDFromCtx returns the id stored by RequestID, or "".
func RequestIDFromCtx(c *fiber.Ctx) string {
	s, _ := c.Locals(RequestIDLocalKey).(string)
	return s
}

// statusOf returns the status the error handler will write for err.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
