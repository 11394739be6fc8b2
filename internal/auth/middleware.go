package auth

import (
	"context"
	"net/http"

	"github.com/yhlin/memberdir/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the session user in context
	UserContextKey contextKey = "session_user"
)

// CheckAuth reads and validates the session cookie. An absent, malformed or
// expired session yields (nil, false); the caller decides whether to clear
// the stale cookie.
func (sm *SessionManager) CheckAuth(r *http.Request, cookieName string) (*models.SessionUser, bool) {
	token, err := GetSessionCookie(r, cookieName)
	if err != nil || token == "" {
		return nil, false
	}

	user, err := sm.Validate(token)
	if err != nil {
		return nil, false
	}

	return user, true
}

// RequireSession validates the session cookie and injects the user snapshot
// into the request context. An invalid or expired session gets its cookie
// cleared here (the lazy delete) and the request is rejected.
func RequireSession(sm *SessionManager, cookieConfig CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := sm.CheckAuth(r, cookieConfig.Name)
			if !ok {
				ClearSessionCookie(w, cookieConfig)
				http.Error(w, "not logged in", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates a middleware that enforces role-based access control.
// Must be used after RequireSession. The role comes from the session
// snapshot, matching what the directory issued at login.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r)
			if user == nil {
				http.Error(w, "not logged in", http.StatusUnauthorized)
				return
			}

			if user.Role != role {
				http.Error(w, "forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts the session user from request context
func GetUserFromContext(r *http.Request) *models.SessionUser {
	user, ok := r.Context().Value(UserContextKey).(*models.SessionUser)
	if !ok {
		return nil
	}
	return user
}
