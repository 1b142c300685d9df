// Package modules assembles the API surface. Each service exposes
// http.Handlers and the router decides which route groups sit behind
// authentication; the webhook and health endpoints must stay reachable
// without a bearer token.
package modules

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mountable is a service that exposes its routes as a handler.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures the API router. Nil entries are simply not
// mounted, which keeps partial wiring (tests, stripped-down deployments)
// working.
type RouterOptions struct {
	// Auth guards the user-facing route groups.
	Auth func(http.Handler) http.Handler

	Profile  Mountable        // /api/user
	Habits   Mountable        // /api/habits
	Payments Mountable        // /api/payments
	Login    http.HandlerFunc // POST /api/login
	Webhook  http.HandlerFunc // POST /api/stripe/webhook, unauthenticated
	Health   http.HandlerFunc // GET /health, unauthenticated
}

// Router builds the full route tree.
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Health != nil {
		r.Get("/health", opts.Health)
	}

	r.Route("/api", func(api chi.Router) {
		if opts.Webhook != nil {
			api.Post("/stripe/webhook", opts.Webhook)
		}

		api.Group(func(authed chi.Router) {
			if opts.Auth != nil {
				authed.Use(opts.Auth)
			}
			if opts.Profile != nil {
				authed.Mount("/user", opts.Profile.Handle())
			}
			if opts.Habits != nil {
				authed.Mount("/habits", opts.Habits.Handle())
			}
			if opts.Payments != nil {
				authed.Mount("/payments", opts.Payments.Handle())
			}
			if opts.Login != nil {
				authed.Post("/login", opts.Login)
			}
		})
	})

	return r
}
