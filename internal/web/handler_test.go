package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]domain.Session)}
}

func (m *memorySessions) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.Cart.Lines = append([]domain.CartLine(nil), s.Cart.Lines...)
	return &s, nil
}

func (m *memorySessions) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.Cart.Lines = append([]domain.CartLine(nil), s.Cart.Lines...)
	m.sessions[s.ID] = cp
	return nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type stubAccounts struct {
	tokens   map[string]*domain.Account // token -> account
	password map[string]string          // username -> password
	register error
}

func (s *stubAccounts) Register(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if s.register != nil {
		return nil, s.register
	}
	return &domain.Account{ID: 99, Username: in.Username}, nil
}

func (s *stubAccounts) Token(_ context.Context, username, password string) (string, error) {
	if s.password[username] != password {
		return "", domain.ErrInvalidCredentials
	}
	return "token-" + username, nil
}

func (s *stubAccounts) Me(_ context.Context, token string) (*domain.Account, error) {
	if a, ok := s.tokens[token]; ok {
		return a, nil
	}
	return nil, domain.ErrInvalidToken
}

type stubCatalog struct {
	products map[int64]domain.Product
	err      error
}

func (s *stubCatalog) ListProducts(_ context.Context, in ports.ListProductsInput) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Product
	for id := int64(1); id <= int64(len(s.products)); id++ {
		if p, ok := s.products[id]; ok && strings.Contains(strings.ToLower(p.Name), strings.ToLower(in.Search)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	return &p, nil
}

type stubOrders struct {
	calls  []ports.PlaceOrderInput
	err    error
	orders []domain.Order
}

func (s *stubOrders) PlaceOrder(_ context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
	s.calls = append(s.calls, in)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: 7, UserID: in.UserID, Status: domain.DefaultOrderStatus}, nil
}

func (s *stubOrders) ListOrders(_ context.Context, userID int64) ([]domain.Order, error) {
	return s.orders, nil
}

// ── Harness ───────────────────────────────────────────────────────────────────

type harness struct {
	e        *echo.Echo
	sessions *memorySessions
	accounts *stubAccounts
	catalog  *stubCatalog
	orders   *stubOrders
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	renderer, err := NewRenderer()
	require.NoError(t, err)

	h := &harness{
		sessions: newMemorySessions(),
		accounts: &stubAccounts{
			tokens:   map[string]*domain.Account{"token-alice": {ID: 1, Username: "alice"}},
			password: map[string]string{"alice": "secret"},
		},
		catalog: &stubCatalog{products: map[int64]domain.Product{
			1: {ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: 3},
			2: {ID: 2, Name: "Mouse", Price: decimal.RequireFromString("29.99"), Stock: 0},
		}},
		orders: &stubOrders{},
	}

	handler := NewHandler(h.accounts, h.catalog, h.orders, h.sessions, zerolog.Nop(), Options{SessionTTL: time.Hour})
	var n int
	handler.newID = func() string {
		n++
		return fmt.Sprintf("sid-%d", n)
	}

	h.e = echo.New()
	h.e.Renderer = renderer
	h.e.HTTPErrorHandler = NewErrorHandler(zerolog.Nop())
	handler.Register(h.e)
	return h
}

// loggedIn stores an authenticated session for alice and returns its id.
func (h *harness) loggedIn(t *testing.T, lines ...domain.CartLine) string {
	t.Helper()
	sess := &domain.Session{ID: "alice-session", Token: "token-alice", UserID: 1, Username: "alice"}
	sess.Cart.Lines = lines
	require.NoError(t, h.sessions.Save(context.Background(), sess))
	return sess.ID
}

func (h *harness) do(method, target, sessionID string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func (h *harness) session(t *testing.T, id string) *domain.Session {
	t.Helper()
	sess, err := h.sessions.Get(context.Background(), id)
	require.NoError(t, err)
	return sess
}

func sessionCookieValue(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	return ""
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestIndex_RedirectsByLoginState(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	sid := h.loggedIn(t)
	rec = h.do(http.MethodGet, "/", sid, nil)
	assert.Equal(t, "/products", rec.Header().Get(echo.HeaderLocation))
}

func TestProtectedPages_RedirectAnonymous(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/products", "/cart", "/orders"} {
		rec := h.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation), path)
	}
}

func TestLogin_RotatesSessionID(t *testing.T) {
	h := newHarness(t)

	anon := &domain.Session{ID: "anon"}
	require.NoError(t, h.sessions.Save(context.Background(), anon))

	rec := h.do(http.MethodPost, "/login", "anon", url.Values{"username": {"alice"}, "password": {"secret"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get(echo.HeaderLocation))

	newID := sessionCookieValue(rec)
	require.NotEmpty(t, newID)
	assert.NotEqual(t, "anon", newID)

	_, err := h.sessions.Get(context.Background(), "anon")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sess := h.session(t, newID)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, "Login successful!", sess.Flash)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/login", "", url.Values{"username": {"alice"}, "password": {"wrong"}})

	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	sess := h.session(t, sessionCookieValue(rec))
	assert.False(t, sess.Authenticated())
	assert.Equal(t, "Invalid credentials", sess.Flash)
	assert.Equal(t, domain.FlashError, sess.FlashLevel)
}

func TestSignUp_Duplicate(t *testing.T) {
	h := newHarness(t)
	h.accounts.register = domain.ErrDuplicateUsername

	rec := h.do(http.MethodPost, "/register", "", url.Values{"username": {"alice"}, "password": {"x"}})

	sess := h.session(t, sessionCookieValue(rec))
	assert.Equal(t, "Registration failed: Username already registered", sess.Flash)
}

func TestSignUp_Success(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/register", "", url.Values{"username": {"bob"}, "password": {"pw"}})

	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	sess := h.session(t, sessionCookieValue(rec))
	assert.Equal(t, "Registration successful! Please log in.", sess.Flash)
}

func TestLoginPage_ShowsFlashOnce(t *testing.T) {
	h := newHarness(t)
	sess := &domain.Session{ID: "anon"}
	sess.SetFlash(domain.FlashSuccess, "Registration successful! Please log in.")
	require.NoError(t, h.sessions.Save(context.Background(), sess))

	rec := h.do(http.MethodGet, "/login", "anon", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registration successful!")

	rec = h.do(http.MethodGet, "/login", "anon", nil)
	assert.NotContains(t, rec.Body.String(), "Registration successful!")
}

func TestExpiredToken_LogsOut(t *testing.T) {
	h := newHarness(t)
	sess := &domain.Session{ID: "stale", Token: "expired", UserID: 1, Username: "alice"}
	sess.Cart.Set(domain.CartLine{ProductID: 1, Quantity: 1})
	require.NoError(t, h.sessions.Save(context.Background(), sess))

	rec := h.do(http.MethodGet, "/products", "stale", nil)

	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	stored := h.session(t, "stale")
	assert.False(t, stored.Authenticated())
	assert.True(t, stored.Cart.Empty())
	assert.Contains(t, stored.Flash, "session has expired")
}

func TestProducts_Renders(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t)

	rec := h.do(http.MethodGet, "/products", sid, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Laptop")
	assert.Contains(t, body, "$999.99")
	assert.Contains(t, body, "Out of stock")
}

func TestProducts_CatalogDown(t *testing.T) {
	h := newHarness(t)
	h.catalog.err = domain.ErrCatalogUnavailable
	sid := h.loggedIn(t)

	rec := h.do(http.MethodGet, "/products", sid, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error connecting to product service")
}

func TestAddToCart_CapsAtStock(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t)

	rec := h.do(http.MethodPost, "/cart", sid, url.Values{"product_id": {"1"}, "quantity": {"50"}})

	assert.Equal(t, "/products", rec.Header().Get(echo.HeaderLocation))
	sess := h.session(t, sid)
	require.Len(t, sess.Cart.Lines, 1)
	assert.Equal(t, 3, sess.Cart.Lines[0].Quantity)
	assert.Equal(t, "Added 3 Laptop to cart!", sess.Flash)
}

func TestAddToCart_RotatesCheckoutKey(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t)

	h.do(http.MethodPost, "/cart", sid, url.Values{"product_id": {"1"}, "quantity": {"1"}})
	first := h.session(t, sid).CheckoutKey
	require.NotEmpty(t, first)

	h.do(http.MethodPost, "/cart", sid, url.Values{"product_id": {"1"}, "quantity": {"2"}})
	assert.NotEqual(t, first, h.session(t, sid).CheckoutKey)
}

func TestAddToCart_OutOfStock(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t)

	h.do(http.MethodPost, "/cart", sid, url.Values{"product_id": {"2"}, "quantity": {"1"}})

	sess := h.session(t, sid)
	assert.True(t, sess.Cart.Empty())
	assert.Equal(t, domain.FlashError, sess.FlashLevel)
}

func TestRemoveFromCart(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t, domain.CartLine{ProductID: 1, Name: "Laptop", Quantity: 1})

	rec := h.do(http.MethodPost, "/cart/remove", sid, url.Values{"product_id": {"1"}})

	assert.Equal(t, "/cart", rec.Header().Get(echo.HeaderLocation))
	sess := h.session(t, sid)
	assert.True(t, sess.Cart.Empty())
	assert.NotEmpty(t, sess.CheckoutKey)
}

func TestCheckout_Success(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t, domain.CartLine{ProductID: 1, Name: "Laptop", UnitPrice: decimal.NewFromInt(10), Quantity: 2})

	rec := h.do(http.MethodPost, "/checkout", sid, url.Values{})

	assert.Equal(t, "/orders", rec.Header().Get(echo.HeaderLocation))
	require.Len(t, h.orders.calls, 1)
	call := h.orders.calls[0]
	assert.Equal(t, int64(1), call.UserID)
	assert.Equal(t, []ports.OrderItemInput{{ProductID: 1, Quantity: 2}}, call.Items)
	assert.NotEmpty(t, call.IdempotencyKey)

	sess := h.session(t, sid)
	assert.True(t, sess.Cart.Empty())
	assert.Empty(t, sess.CheckoutKey)
	assert.Equal(t, "Order placed successfully! Order #7", sess.Flash)
}

func TestCheckout_FailureKeepsCartAndKey(t *testing.T) {
	h := newHarness(t)
	h.orders.err = &domain.InsufficientStockError{ProductID: 1}
	sid := h.loggedIn(t, domain.CartLine{ProductID: 1, Name: "Laptop", Quantity: 2})

	rec := h.do(http.MethodPost, "/checkout", sid, url.Values{})
	assert.Equal(t, "/cart", rec.Header().Get(echo.HeaderLocation))

	sess := h.session(t, sid)
	assert.Len(t, sess.Cart.Lines, 1)
	assert.Equal(t, "Failed to place order: Insufficient stock", sess.Flash)

	h.do(http.MethodPost, "/checkout", sid, url.Values{})
	require.Len(t, h.orders.calls, 2)
	assert.Equal(t, h.orders.calls[0].IdempotencyKey, h.orders.calls[1].IdempotencyKey)
}

func TestCheckout_DoubleSubmitReusesKey(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t)
	h.do(http.MethodPost, "/cart", sid, url.Values{"product_id": {"1"}, "quantity": {"1"}})

	// Both submissions load the session before either one stores its result.
	snapshot := h.session(t, sid)
	h.do(http.MethodPost, "/checkout", sid, url.Values{})
	require.NoError(t, h.sessions.Save(context.Background(), snapshot))
	h.do(http.MethodPost, "/checkout", sid, url.Values{})

	require.Len(t, h.orders.calls, 2)
	assert.Equal(t, snapshot.CheckoutKey, h.orders.calls[0].IdempotencyKey)
	assert.Equal(t, h.orders.calls[0].IdempotencyKey, h.orders.calls[1].IdempotencyKey)
}

func TestCheckout_EmptyCart(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t)

	h.do(http.MethodPost, "/checkout", sid, url.Values{})

	assert.Empty(t, h.orders.calls)
	assert.Equal(t, "Your cart is empty", h.session(t, sid).Flash)
}

func TestOrders_Renders(t *testing.T) {
	h := newHarness(t)
	h.orders.orders = []domain.Order{{
		ID:          3,
		UserID:      1,
		Status:      "pending",
		TotalAmount: decimal.RequireFromString("59.98"),
		CreatedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Items:       []domain.OrderLine{{ProductID: 2, Quantity: 2, UnitPrice: decimal.RequireFromString("29.99")}},
	}}
	sid := h.loggedIn(t)

	rec := h.do(http.MethodGet, "/orders", sid, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "$59.98")
	assert.Contains(t, rec.Body.String(), "pending")
}

func TestLogout_DropsSession(t *testing.T) {
	h := newHarness(t)
	sid := h.loggedIn(t)

	rec := h.do(http.MethodPost, "/logout", sid, nil)

	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	_, err := h.sessions.Get(context.Background(), sid)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestNewRouter_ServesHealthAndLogin(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)
	handler := NewHandler(&stubAccounts{}, &stubCatalog{}, &stubOrders{}, newMemorySessions(), zerolog.Nop(), Options{})

	e := NewRouter(handler, renderer, RouterOptions{Logger: zerolog.Nop()})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"dashboard"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<form")
}
