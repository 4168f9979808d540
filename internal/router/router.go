package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gleeworld/course-api/internal/config"
	"github.com/gleeworld/course-api/internal/handler"
	"github.com/gleeworld/course-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	JournalHandler    *handler.JournalHandler
	GradingHandler    *handler.GradingHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AssignmentHandler != nil {
		assignments := app.Group("/api/v1/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.JournalHandler != nil {
		journals := app.Group("/api/v1/journals", jwtMiddleware)
		deps.JournalHandler.Register(journals)

		// Grade views share the journal group; grading mutations are
		// restricted to course staff.
		if deps.GradingHandler != nil {
			deps.GradingHandler.RegisterReads(journals)

			staff := app.Group("/api/v1/journals", jwtMiddleware,
				middleware.RequireRole(middleware.RoleInstructor, middleware.RoleAdmin))
			deps.GradingHandler.RegisterActions(staff)
		}
	}
}
