// Package core provides the API chassis for the AssetTrack service.
// It creates a chi router and enforces cross-cutting concerns -- security,
// logging, request correlation, and error handling -- before requests reach
// domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"assettrack/internal/config"
	"assettrack/internal/types"
)

// Authenticator resolves a bearer token to the user it belongs to.
// Injected as an interface for testability.
type Authenticator interface {
	ResolveToken(ctx context.Context, token string) (*types.User, error)
}

// Server encapsulates the HTTP chassis dependencies, allowing injection
// during testing and distinct configuration for different environments.
type Server struct {
	Config        *config.Config
	Logger        *slog.Logger
	Validator     *Validator
	Authenticator Authenticator

	// V1RouteRegistrars are populated by the application entry point; this
	// indirection avoids import cycles between core and handler packages.
	V1RouteRegistrars []func(chi.Router)

	router *chi.Mux
}

// NewServer initializes the chassis and prepares the router for route
// mounting. The caller mounts routes via MountRoutes after construction;
// the separation lets tests customize route registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}
