package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-ai/internal/api/http/handlers"
	"github.com/spec-kit/nexus-ai/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.Middleware
	AuthRequired   bool
}

// RegisterRoutes wires HTTP routes. The stats route must precede the :id
// route so "stats" is not read as a ticket id.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	// auth, when enabled, guards the mutating route only; reads stay open
	if cfg.AuthRequired && cfg.AuthMiddleware != nil {
		tickets.Post("", cfg.AuthMiddleware.Handle, cfg.Tickets.CreateTicket)
	} else {
		tickets.Post("", cfg.Tickets.CreateTicket)
	}
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
}
