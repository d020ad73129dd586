package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultRequestTimeout = 30 * time.Second

func (h *Handler) Init() *chi.Mux {
	timeout := h.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5, "application/json", "text/plain"))
	router.Use(withGzipRequest)
	router.Use(middleware.Timeout(timeout))

	router.Get("/api/version", h.getServerVersion)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// credential routes without authorization
			r.Group(func(r chi.Router) {
				r.Use(h.withRateLimit)
				r.Post("/register", h.register)
				r.Post("/login", h.login)
				r.Post("/refresh", h.refresh)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.auth)
				r.Post("/logout", h.logout)
				r.Get("/me", h.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.auth)

			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", h.getUser)
				r.Patch("/", h.updateUser)
				r.Delete("/", h.deleteUser)
				r.Post("/roles", h.assignUserRoles)
				r.Delete("/roles", h.removeUserRoles)
			})

			r.Post("/roles", h.createRole)
			r.Get("/roles/{id}", h.getRole)
			r.Post("/roles/{id}/permissions", h.assignRolePermissions)

			r.Post("/permissions", h.createPermission)
			r.Get("/permissions/{id}", h.getPermission)
		})
	})

	router.NotFound(CheckHTTPMethod(router))
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
