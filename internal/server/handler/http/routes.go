package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/TaskKeeper/internal/metrics"
	"github.com/atinyakov/TaskKeeper/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the TaskKeeper API.
//
// Parameters:
//
//	authHandler    - handler for registration, login and logout
//	taskHandler    - handler for task endpoints
//	gate           - bearer-token middleware guarding mutating routes
//	collector      - request metrics; nil disables collection
//	metricsHandler - Prometheus scrape handler; nil disables /metrics
//	logger         - structured logger for request logging middleware
//
// Routes:
//
//	GET    /api/tasks       → taskHandler.List
//	POST   /api/tasks       → taskHandler.Create   (gated)
//	PUT    /api/tasks/{id}  → taskHandler.Update   (gated)
//	DELETE /api/tasks/{id}  → taskHandler.Delete   (gated)
//	POST   /api/register    → authHandler.Register
//	POST   /api/login       → authHandler.Login
//	POST   /api/logout      → authHandler.Logout   (gated)
//	GET    /metrics         → metricsHandler
func NewRouter(
	authHandler *AuthHandler,
	taskHandler *TaskHandler,
	gate func(http.Handler) http.Handler,
	collector *metrics.Collector,
	metricsHandler http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	if collector != nil {
		r.Use(collector.Middleware)
	}
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Only allow request bodies with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/tasks", taskHandler.List)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Post("/logout", authHandler.Logout)
			r.Post("/tasks", taskHandler.Create)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
		})
	})

	return r
}
