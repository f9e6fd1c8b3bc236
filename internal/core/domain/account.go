package domain

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound    = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid authentication credentials")
	ErrForbidden          = errors.New("access forbidden")
)

// Account models a registered storefront user.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}
