package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"dms/internal/auth"
	"dms/internal/http/middleware"
	"dms/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// messageResponse is the body of operations that return no resource.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
// code is machine-readable (e.g. "INVALID_ID"), message is safe for clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Success:   false,
		Message:   message,
		RequestID: middleware.RequestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// writeServiceError maps service errors onto HTTP statuses. Unknown errors become 500 and
// are attached to the request for the logger.
func writeServiceError(c *fiber.Ctx, err error, notFoundMsg string) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", ve.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", notFoundMsg)
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	case errors.Is(err, service.ErrUnauthorized):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "you are not allowed to access this resource")
	case errors.Is(err, service.ErrDuplicateIdentity):
		return writeError(c, fiber.StatusConflict, "DUPLICATE_IDENTITY", "username or email already taken")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "invalid token")
	default:
		middleware.SetError(c, err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHENTICATED", fe.Message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "dependency unavailable")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
