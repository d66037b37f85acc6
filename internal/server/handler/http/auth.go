// Package http provides HTTP handlers for registration, login, logout and
// task management, and the router that ties them together.
package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/TaskKeeper/internal/middleware"
	"github.com/atinyakov/TaskKeeper/internal/models"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates a user with the given credentials.
	Register(ctx context.Context, username, password string) (models.User, error)
	// Login returns a signed session token for valid credentials.
	Login(ctx context.Context, username, password string) (string, error)
	// Logout revokes the token the claims were read from.
	Logout(ctx context.Context, claims models.Claims) error
}

// AuthHandler handles HTTP requests for user registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Logger records unexpected failures.
	Logger *zap.Logger
}

// CredentialsRequest represents the JSON payload for registration and login.
type CredentialsRequest struct {
	// Username is the login name.
	Username string `json:"username"`
	// Password is the plaintext password; it is never stored or logged.
	Password string `json:"password"`
}

// Register handles user registration requests.
// It expects a JSON body with non-empty "username" and "password" fields and
// answers 201 with the new user's id and username, 400 on invalid input and
// 409 when the username is taken.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	h.Logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	writeJSON(w, http.StatusCreated, user)
}

// Login handles credential login requests.
// On success it returns {"token": "<jwt>"}; an unknown username is 404 and a
// wrong password 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout revokes the bearer token of the current request.
// It must be mounted behind middleware.BearerAuth.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.AuthService.Logout(r.Context(), claims); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
