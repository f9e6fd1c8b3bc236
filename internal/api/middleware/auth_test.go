package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
)

type stubResolver struct {
	accounts map[string]*domain.Account
	calls    int
}

func (s *stubResolver) Resolve(_ context.Context, token string) (*domain.Account, error) {
	s.calls++
	if a, ok := s.accounts[token]; ok {
		return a, nil
	}
	return nil, domain.ErrInvalidToken
}

func newResolver() *stubResolver {
	return &stubResolver{accounts: map[string]*domain.Account{
		"alice-token": {ID: 1, Username: "alice"},
		"admin-token": {ID: 2, Username: "admin", IsAdmin: true},
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer alice-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newResolver())(func(c echo.Context) error {
		called = true
		account := CurrentAccount(c)
		if account == nil || account.Username != "alice" {
			t.Fatalf("account not set: %+v", account)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token alice-token",
		"empty token":    "Bearer ",
		"unknown token":  "Bearer not-a-token",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			handler := Auth(newResolver())(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != domain.ErrInvalidToken {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer alice-token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newResolver())(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name    string
		account *domain.Account
		wantErr error
	}{
		{"admin", &domain.Account{Username: "admin", IsAdmin: true}, nil},
		{"regular user", &domain.Account{Username: "alice"}, domain.ErrForbidden},
		{"no account", nil, domain.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tc.account != nil {
				c.Set(AccountKey, tc.account)
			}

			err := RequireAdmin()(func(c echo.Context) error { return nil })(c)
			if err != tc.wantErr {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
