package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"assettrack/internal/core"
	"assettrack/internal/types"
)

// AuthService is the login/logout contract the auth handler drives.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*types.User, string, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler maps HTTP requests to the auth service.
type AuthHandler struct {
	service   AuthService
	validator *core.Validator
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, val *core.Validator, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{service: svc, validator: val, logger: logger}
}

// RegisterRoutes mounts the auth endpoints. /auth/login is on the public
// path list; /auth/me and /auth/logout run behind the auth middleware.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
		r.Get("/me", h.HandleMe)
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

// HandleLogin handles POST /v1/auth/login. On success the response carries
// the raw session token; the client presents it as a Bearer credential.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: loginResponse{Token: token, User: user}})
}

// HandleLogout handles POST /v1/auth/logout. Logout is idempotent; a token
// that is already gone still gets a 204.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "Bearer token is required", nil))
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /v1/auth/me, returning the authenticated user.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := types.GetUser(r.Context())
	if user == nil {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "Authentication required", nil))
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: user})
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
