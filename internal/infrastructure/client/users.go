package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// UsersClient calls the account service.
type UsersClient struct {
	base
}

func NewUsersClient(baseURL string, timeout time.Duration) *UsersClient {
	return &UsersClient{base: newBase(baseURL, timeout, ErrUnavailable)}
}

func (c *UsersClient) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	body, err := jsonBody(map[string]string{
		"username": in.Username,
		"password": in.Password,
		"email":    in.Email,
	})
	if err != nil {
		return nil, err
	}

	var dto accountDTO
	err = c.do(ctx, request{method: http.MethodPost, path: "/register", body: body, contentType: "application/json"}, &dto)
	if err != nil {
		if status, apiErr := statusOf(err); status == http.StatusBadRequest {
			if apiErr.Detail == "Username already registered" {
				apiErr.kind = domain.ErrDuplicateUsername
			} else {
				apiErr.kind = domain.ErrInvalidInput
			}
		}
		return nil, err
	}
	return dto.toDomain(), nil
}

// Token exchanges credentials for a bearer token using the form-encoded
// password grant the service expects.
func (c *UsersClient) Token(ctx context.Context, username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/token",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &resp)
	if err != nil {
		if status, apiErr := statusOf(err); status == http.StatusUnauthorized {
			apiErr.kind = domain.ErrInvalidCredentials
		}
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("token response without access_token")
	}
	return resp.AccessToken, nil
}

func (c *UsersClient) Me(ctx context.Context, token string) (*domain.Account, error) {
	var dto accountDTO
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/users/me",
		header: http.Header{"Authorization": {"Bearer " + token}},
	}, &dto)
	if err != nil {
		switch status, apiErr := statusOf(err); status {
		case http.StatusUnauthorized:
			apiErr.kind = domain.ErrInvalidToken
		case http.StatusNotFound:
			apiErr.kind = domain.ErrAccountNotFound
		}
		return nil, err
	}
	return dto.toDomain(), nil
}
