// Package client talks to the storefront services over their HTTP JSON APIs.
// The order service uses CatalogClient as its catalog gateway; the dashboard
// uses all three clients.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// ErrUnavailable is wrapped by transport failures and 5xx answers.
var ErrUnavailable = errors.New("service unavailable")

// Error is a non-2xx answer carrying the service's {"detail": ...} message.
type Error struct {
	Status int
	Detail string
	kind   error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.kind }

type errorBody struct {
	Detail string `json:"detail"`
}

// base holds what every client shares: the service root and an http.Client
// with a bounded timeout.
type base struct {
	baseURL     string
	http        *http.Client
	unavailable error
}

func newBase(baseURL string, timeout time.Duration, unavailable error) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return base{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: timeout},
		unavailable: unavailable,
	}
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	header      http.Header
}

// do sends the request and decodes a 2xx JSON answer into out (when non-nil).
// Non-2xx answers come back as *Error; 4xx errors wrap kindFor(status).
func (b base) do(ctx context.Context, r request, out any) error {
	target := b.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", b.unavailable, r.method, r.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s %s: %v", b.unavailable, r.method, r.path, err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
	apiErr := &Error{Status: resp.StatusCode, Detail: eb.Detail}
	if resp.StatusCode >= 500 {
		apiErr.kind = b.unavailable
	}
	return apiErr
}

func jsonBody(v any) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(raw), nil
}

// statusOf returns the HTTP status of an *Error, or 0.
func statusOf(err error) (int, *Error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr
	}
	return 0, nil
}

// Ping calls the service's liveness probe.
func (b base) Ping(ctx context.Context) error {
	return b.do(ctx, request{method: http.MethodGet, path: "/health"}, nil)
}
