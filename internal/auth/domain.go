package auth

import (
	"time"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// User represents an account allowed to sign in.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal converts the user into the request-scoped identity.
func (u *User) Principal() *shared.Principal {
	return &shared.Principal{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"max=120"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"required,oneof=admin readonly"`
}
