package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/cloudlab-api/internal/config"
	"github.com/noah-isme/cloudlab-api/internal/handler"
	"github.com/noah-isme/cloudlab-api/internal/middleware"
	"github.com/noah-isme/cloudlab-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AnalysisHandler    *handler.AnalysisHandler
	ObservationHandler *handler.ObservationHandler
	StatsHandler       *handler.StatsHandler
	ProfileHandler     *handler.ProfileHandler
	WeatherHandler     *handler.WeatherHandler
	AdminUserHandler   *handler.AdminUserHandler
	HealthProbes       []handler.HealthProbe
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	// Without a JWT middleware every protected route answers 401.
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AnalysisHandler != nil {
		analyze := api.Group("/analyze", jwtMiddleware, middleware.RateLimit("analyze", cfg.AnalyzeRateLimit, time.Minute))
		deps.AnalysisHandler.Register(analyze)
	}

	if deps.ObservationHandler != nil {
		deps.ObservationHandler.Register(api.Group("/observations", jwtMiddleware))
	}

	if deps.StatsHandler != nil {
		deps.StatsHandler.Register(api.Group("/stats", jwtMiddleware))
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api.Group("/user/profile", jwtMiddleware))
	}

	if deps.WeatherHandler != nil {
		deps.WeatherHandler.Register(api.Group("/weather", jwtMiddleware))
	}

	if deps.AdminUserHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireAdmin())
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}
}
