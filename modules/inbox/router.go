package inbox

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mountable is a module that serves its own subtree.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures the public API router.
type RouterOptions struct {
	// Inbox is mounted at /notifications behind Auth.
	Inbox Mountable

	// Auth authenticates inbox routes, usually jwt.MiddlewareWithConfig.
	Auth func(http.Handler) http.Handler

	// Health and Ready are mounted at /healthz and /readyz without auth.
	Health http.Handler
	Ready  http.Handler

	// Middlewares run for every route, e.g. requestid.Middleware.
	Middlewares []func(http.Handler) http.Handler
}

// Router builds the service's HTTP surface.
//
//	r := inbox.Router(inbox.RouterOptions{
//		Inbox:       svc,
//		Auth:        jwt.Middleware(tokens),
//		Health:      httpserver.HealthCheckHandler(log, time.Second, nil),
//		Middlewares: []func(http.Handler) http.Handler{requestid.Middleware},
//	})
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(opts.Middlewares...)

	if opts.Health != nil {
		r.Method(http.MethodGet, "/healthz", opts.Health)
	}
	if opts.Ready != nil {
		r.Method(http.MethodGet, "/readyz", opts.Ready)
	}

	if opts.Inbox != nil {
		r.Group(func(r chi.Router) {
			if opts.Auth != nil {
				r.Use(opts.Auth)
			}
			r.Mount("/notifications", opts.Inbox.Handle())
		})
	}

	return r
}
