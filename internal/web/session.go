package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
)

const (
	sessionCookie = "storefront_session"
	sessionKey    = "session"
)

// loadSession attaches the browser's session to the context, starting a new
// one when the cookie is missing, unknown or expired.
func (h *Handler) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var sess *domain.Session
		if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
			stored, err := h.sessions.Get(c.Request().Context(), ck.Value)
			switch {
			case err == nil:
				sess = stored
			case !errors.Is(err, domain.ErrSessionNotFound):
				return err
			}
		}
		if sess == nil {
			sess = &domain.Session{ID: h.newID(), CreatedAt: h.now().UTC()}
			h.setCookie(c, sess.ID)
		}

		c.Set(sessionKey, sess)
		return next(c)
	}
}

// requireLogin sends anonymous visitors to the login page and drops logins
// whose token the user service no longer accepts.
func (h *Handler) requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := currentSession(c)
		if !sess.Authenticated() {
			return c.Redirect(http.StatusSeeOther, "/login")
		}

		if _, err := h.accounts.Me(c.Request().Context(), sess.Token); err != nil {
			if !errors.Is(err, domain.ErrInvalidToken) && !errors.Is(err, domain.ErrAccountNotFound) {
				return err
			}
			sess.Logout()
			sess.SetFlash(domain.FlashError, "Your session has expired, please log in again")
			if err := h.save(c, sess); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

func currentSession(c echo.Context) *domain.Session {
	if sess, ok := c.Get(sessionKey).(*domain.Session); ok {
		return sess
	}
	return &domain.Session{}
}

func (h *Handler) save(c echo.Context, sess *domain.Session) error {
	return h.sessions.Save(c.Request().Context(), sess)
}

func (h *Handler) setCookie(c echo.Context, id string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
