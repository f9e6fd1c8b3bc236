package domain

import (
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Flash levels shown by the dashboard.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Session is the dashboard's per-browser state: the bearer token obtained at
// login, the signed-in user and the cart.
type Session struct {
	ID       string `json:"id"`
	Token    string `json:"token,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Cart     Cart   `json:"cart"`
	// CheckoutKey is sent as the Idempotency-Key of the pending checkout. It
	// is kept across failed attempts and dropped when the cart changes.
	CheckoutKey string    `json:"checkout_key,omitempty"`
	Flash       string    `json:"flash,omitempty"`
	FlashLevel  string    `json:"flash_level,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SetFlash stores a one-shot message for the next rendered page.
func (s *Session) SetFlash(level, msg string) {
	s.FlashLevel = level
	s.Flash = msg
}

// PopFlash returns and clears the pending message.
func (s *Session) PopFlash() (level, msg string) {
	level, msg = s.FlashLevel, s.Flash
	s.FlashLevel, s.Flash = "", ""
	return level, msg
}

// Logout forgets the login and the cart but keeps the session id.
func (s *Session) Logout() {
	s.Token = ""
	s.UserID = 0
	s.Username = ""
	s.Cart.Clear()
	s.CheckoutKey = ""
}

// Authenticated reports whether the session carries a login.
func (s *Session) Authenticated() bool {
	return s.Token != "" && s.UserID != 0
}
