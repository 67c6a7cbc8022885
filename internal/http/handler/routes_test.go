package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dms/internal/http/middleware"
	serviceMocks "dms/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	app.Use(middleware.RequestID())

	reg := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	require.NoError(t, err)
	app.Use(promMiddleware.Handler())

	RegisterRoutes(app, Dependencies{
		Accounts:  new(serviceMocks.MockAccountService),
		Users:     new(serviceMocks.MockUserService),
		Documents: new(serviceMocks.MockDocumentService),
		Tokens:    newTokens(t),
		Gatherer:  reg,
	})

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("protected routes require a token", func(t *testing.T) {
		for _, r := range []struct{ method, path string }{
			{http.MethodGet, "/users"},
			{http.MethodGet, "/users/1"},
			{http.MethodPut, "/users/1"},
			{http.MethodDelete, "/users/1"},
			{http.MethodGet, "/users/1/documents"},
			{http.MethodPost, "/users/logout"},
			{http.MethodPost, "/documents"},
			{http.MethodGet, "/documents/1"},
			{http.MethodDelete, "/documents/1"},
		} {
			resp, err := app.Test(httptest.NewRequest(r.method, r.path, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, r.method+" "+r.path)
		}
	})

	t.Run("roles are public", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/roles", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics exposes request counters", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `http_requests_total{method="GET",path="/roles",status="200"} 1`)
	})
}
