package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionUser is the snapshot carried inside a session token. The password
// hash is never part of it.
type SessionUser struct {
	Account     string `json:"account"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (u *SessionUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SessionClaims is the signed payload of a session token. Validity is
// determined from IssuedAt: a session is live iff now - issuedAt < TTL.
type SessionClaims struct {
	User SessionUser `json:"user"`
	jwt.RegisteredClaims
}
