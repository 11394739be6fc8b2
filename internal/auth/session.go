package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yhlin/memberdir/internal/models"
)

// SessionManager issues and validates signed session tokens. The token is the
// whole session record: a user snapshot plus the issuance timestamp. Nothing
// is stored server-side, so an expired session simply fails validation on its
// next use; there is no sweep.
type SessionManager struct {
	secret string
	ttl    time.Duration
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret: secret,
		ttl:    ttl,
	}
}

// TTL returns the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// Issue signs a session token for the given user snapshot.
func (sm *SessionManager) Issue(user models.SessionUser) (string, error) {
	now := time.Now()

	claims := &models.SessionClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(sm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies a session token and returns the user snapshot it carries.
// A session is live iff now - issuedAt < ttl; malformed, tampered or expired
// tokens all come back as ErrUnauthorized.
func (sm *SessionManager) Validate(tokenString string) (*models.SessionUser, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(sm.secret), nil
	})
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	// Session validity is measured from issuance.
	if claims.IssuedAt == nil {
		return nil, models.ErrUnauthorized
	}
	if time.Since(claims.IssuedAt.Time) >= sm.ttl {
		return nil, models.ErrUnauthorized
	}

	if claims.User.Account == "" {
		return nil, models.ErrUnauthorized
	}

	return &claims.User, nil
}
