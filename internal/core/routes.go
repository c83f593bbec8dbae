package core

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes defines the top-level routing hierarchy: the global middleware
// chain, the /v1 API group, and the health check.
func (s *Server) MountRoutes() {
	s.registerGlobalMiddleware()

	s.router.Route("/v1", s.mountV1)
	s.router.Get("/health", s.HandleHealth)
}

// registerGlobalMiddleware applies middleware in strict order:
//
//  1. Recoverer        - catches panics; outermost to catch all failures.
//  2. ContextTimeout   - soft deadline so stuck handlers don't pile up.
//  3. RequestID        - correlation ID for tracing.
//  4. SecurityHeaders  - present on every response regardless of outcome.
//  5. RequestLogger    - structured logging (redacted headers).
//  6. CORS             - browser security headers.
//  7. Auth             - resolves the session token, injects the user.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.Config.Server.RequestTimeout))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(NewCORSMiddleware(s.Config.Security.CorsAllowedOrigins))
	s.router.Use(s.AuthMiddleware)
}

// mountV1 registers all v1 endpoints. Domain handler routes are registered
// via V1RouteRegistrars, populated by the application entry point.
func (s *Server) mountV1(r chi.Router) {
	for _, registrar := range s.V1RouteRegistrars {
		registrar(r)
	}
}

// HandleHealth responds to load balancer health probes.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.Config.Service,
	})
}
