package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dms/docs"
	"dms/internal/auth"
	"dms/internal/http/middleware"
	"dms/internal/service"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	DB        *sql.DB
	Accounts  service.AccountService
	Users     service.UserService
	Documents service.DocumentService
	Tokens    *auth.TokenManager
	Revoker   auth.Revoker
	Logger    *zap.Logger
	// Gatherer serves /metrics. Nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, call the service, map the result.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	requireAuth := middleware.Authenticate(d.Tokens, d.Revoker, d.Logger)

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	app.Get("/roles", ListRoles())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Post("/users/login", Login(d.Accounts))
	app.Post("/users/logout", requireAuth, Logout(d.Accounts))
	app.Post("/users", Register(d.Accounts))
	app.Get("/users", requireAuth, ListUsers(d.Users))
	app.Get("/users/:id", requireAuth, GetUser(d.Users))
	app.Put("/users/:id", requireAuth, UpdateUser(d.Users))
	app.Delete("/users/:id", requireAuth, DeleteUser(d.Users))
	app.Get("/users/:id/documents", requireAuth, ListUserDocuments(d.Documents))

	app.Post("/documents", requireAuth, CreateDocument(d.Documents))
	app.Get("/documents/:id", requireAuth, GetDocument(d.Documents))
	app.Delete("/documents/:id", requireAuth, DeleteDocument(d.Documents))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})
}
