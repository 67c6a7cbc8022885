package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const errorLocalKey = "handler_error"

// SetError attaches an internal error to the request so Logger can report it.
func SetError(c *fiber.Ctx, err error) {
	c.Locals(errorLocalKey, err)
}

// Logger logs one structured entry per request with request_id, method, path, status
// and latency in milliseconds.
func Logger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := statusOf(c, err)
		fields := []zap.Field{
			zap.String("request_id", RequestIDFromCtx(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		} else if herr, ok := c.Locals(errorLocalKey).(error); ok {
			fields = append(fields, zap.Error(herr))
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
		return err
	}
}
