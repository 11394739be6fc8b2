package auth

import (
	"net/http"
)

// CookieConfig holds session cookie settings
type CookieConfig struct {
	Name     string
	Secure   bool // HTTPS only
	MaxAge   int  // seconds
	SameSite http.SameSite
}

// SetSessionCookie stores a session token in an httpOnly cookie
func SetSessionCookie(w http.ResponseWriter, token string, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     config.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   config.MaxAge,
		HttpOnly: true, // prevents JavaScript access
		Secure:   config.Secure,
		SameSite: config.SameSite,
	}
	http.SetCookie(w, cookie)
}

// ClearSessionCookie deletes the session cookie. Clearing is idempotent:
// clearing an absent cookie is not an error.
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     config.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // Negative MaxAge deletes the cookie
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: config.SameSite,
	}
	http.SetCookie(w, cookie)
}

// GetSessionCookie retrieves the session token from cookies
func GetSessionCookie(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
