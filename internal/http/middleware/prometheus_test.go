package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	// Fresh registry per test avoids duplicate registration.
	reg := prometheus.NewRegistry()
	promMiddleware, err := NewPrometheusMiddleware(reg)
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}
	app := fiber.New()
	app.Use(promMiddleware.Handler())
	return app, promMiddleware, reg
}

func TestPrometheusMiddleware(t *testing.T) {
	app, promMiddleware, _ := newPromApp(t)

	app.Get("/users", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/users", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/users", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/users", "200")); count != 1 {
		t.Errorf("expected count 1, got %f", count)
	}

	respDelete, _ := app.Test(httptest.NewRequest("DELETE", "/users", nil))
	if respDelete.StatusCode != fiber.StatusOK {
		t.Errorf("expected status 200 for DELETE, got %d", respDelete.StatusCode)
	}
	if count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("DELETE", "/users", "200")); count != 1 {
		t.Errorf("expected count 1 for DELETE, got %f", count)
	}

	app.Test(httptest.NewRequest("GET", "/error", nil))
	if count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/error", "401")); count != 1 {
		t.Errorf("expected count 1 for error, got %f", count)
	}
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, _, reg := newPromApp(t)

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Test(httptest.NewRequest("GET", "/metrics", nil))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if len(mf.GetMetric()) > 0 {
			t.Errorf("expected no samples for %s, got %d", mf.GetName(), len(mf.GetMetric()))
		}
	}
}

func TestPrometheusMiddleware_PathPattern(t *testing.T) {
	app, promMiddleware, _ := newPromApp(t)

	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Test(httptest.NewRequest("GET", "/documents/123", nil))

	if count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/documents/:id", "200")); count != 1 {
		t.Errorf("expected count 1 for pattern /documents/:id, got %f", count)
	}
	if n := testutil.CollectAndCount(promMiddleware.requestDuration); n == 0 {
		t.Error("expected histogram metrics to be collected, got 0")
	}
}
