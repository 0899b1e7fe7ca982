package server

import (
	"context"
	"time"

	"kelas/internal/handlers"
	"kelas/internal/middleware"
	"kelas/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth        *services.AuthService
	Courses     *services.CourseService
	Cart        *services.CartService
	Checkout    *services.CheckoutService
	Orders      *services.OrderService
	Enrollments *services.EnrollmentService
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Options tunes the HTTP app.
type Options struct {
	// Checks are run by /health, keyed by dependency name.
	Checks map[string]HealthCheck
	// DisableRequestLog turns off the request logger, for tests.
	DisableRequestLog bool
}

// New builds the Fiber app with every route registered.
func New(svc Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "kelas",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	if !opts.DisableRequestLog {
		app.Use(logger.New()) // Request logger
	}

	app.Get("/health", healthHandler(opts.Checks))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	auth := middleware.AuthRequired(svc.Auth)
	apiV1 := app.Group("/api/v1")

	handlers.NewAuthHandler(svc.Auth).RegisterRoutes(apiV1)
	handlers.NewCourseHandler(svc.Courses).RegisterRoutes(apiV1, auth)
	handlers.NewCartHandler(svc.Cart).RegisterRoutes(apiV1, auth)
	handlers.NewCheckoutHandler(svc.Checkout).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(svc.Orders).RegisterRoutes(apiV1, auth)
	handlers.NewEnrollmentHandler(svc.Enrollments).RegisterRoutes(apiV1, auth)

	return app
}

func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.StatusOK
		deps := fiber.Map{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = "unavailable"
				status = fiber.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "healthy"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":       state,
			"time":         time.Now().Format(time.RFC3339),
			"dependencies": deps,
		})
	}
}
