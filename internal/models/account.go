package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is a row in the member directory. The account handle is the
// external lookup key; ID is the opaque row identity used for edit/delete.
type Account struct {
	ID           string
	Account      string // unique handle, case-sensitive
	DisplayName  string
	PasswordHash string
	Phone        *string
	Address      *string
	Role         string // "user" or "admin"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
