package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/models"
	pkghttp "github.com/yhlin/memberdir/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, handle, password, ipAddress string) (*models.SessionUser, error)
	Register(ctx context.Context, handle, displayName, password, ipAddress string) (*models.SessionUser, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service      AuthServiceInterface
	sessions     *auth.SessionManager
	cookieConfig auth.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, sessions *auth.SessionManager, cookieConfig auth.CookieConfig) *AuthHandler {
	return &AuthHandler{
		service:      service,
		sessions:     sessions,
		cookieConfig: cookieConfig,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Account  string `json:"account" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Account         string `json:"account" validate:"required,min=3"`
	Name            string `json:"name" validate:"required,min=1"`
	Password        string `json:"password" validate:"required,min=4"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SessionResponse reports whether the request carries a live session.
type SessionResponse struct {
	IsLoggedIn bool                `json:"is_logged_in"`
	User       *models.SessionUser `json:"user,omitempty"`
}

// Login handles user login and issues the session cookie on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Login(r.Context(), req.Account, req.Password, r.RemoteAddr)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid account or password")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	if err := h.issueSession(w, user); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{IsLoggedIn: true, User: user})
}

// Register creates an account and logs the new user straight in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Account = strings.TrimSpace(req.Account)
	req.Name = strings.TrimSpace(req.Name)

	user, err := h.service.Register(r.Context(), req.Account, req.Name, req.Password, r.RemoteAddr)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			pkghttp.WriteBadRequest(w, err.Error())
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Account already in use")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	if err := h.issueSession(w, user); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{IsLoggedIn: true, User: user})
}

// Logout clears the session cookie. It succeeds whether or not a live
// session was attached.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookieConfig)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Session echoes the current session state for page bootstrap. An expired
// cookie is cleared on the way out.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessions.CheckAuth(r, h.cookieConfig.Name)
	if !ok {
		if _, err := auth.GetSessionCookie(r, h.cookieConfig.Name); err == nil {
			auth.ClearSessionCookie(w, h.cookieConfig)
		}
		writeJSON(w, http.StatusOK, SessionResponse{IsLoggedIn: false})
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{IsLoggedIn: true, User: user})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, user *models.SessionUser) error {
	token, err := h.sessions.Issue(*user)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, token, h.cookieConfig)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
