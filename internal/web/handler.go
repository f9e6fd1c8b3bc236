// Package web serves the server-rendered storefront dashboard. It only talks
// to the three services over HTTP and keeps each browser's login and cart in
// a session store.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// Options tunes session handling.
type Options struct {
	SessionTTL    time.Duration
	SecureCookies bool
}

type Handler struct {
	accounts ports.AccountsAPI
	catalog  ports.CatalogAPI
	orders   ports.OrdersAPI
	sessions ports.SessionStore
	logger   zerolog.Logger

	sessionTTL    time.Duration
	secureCookies bool
	newID         func() string
	now           func() time.Time
}

func NewHandler(
	accounts ports.AccountsAPI,
	catalog ports.CatalogAPI,
	orders ports.OrdersAPI,
	sessions ports.SessionStore,
	logger zerolog.Logger,
	opts Options,
) *Handler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	return &Handler{
		accounts:      accounts,
		catalog:       catalog,
		orders:        orders,
		sessions:      sessions,
		logger:        logger,
		sessionTTL:    opts.SessionTTL,
		secureCookies: opts.SecureCookies,
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// Register mounts the dashboard routes on e.
func (h *Handler) Register(e *echo.Echo) {
	g := e.Group("", h.loadSession)

	g.GET("/", h.Index)
	g.GET("/login", h.LoginPage)
	g.POST("/login", h.Login)
	g.POST("/register", h.SignUp)
	g.POST("/logout", h.Logout)

	auth := g.Group("", h.requireLogin)
	auth.GET("/products", h.Products)
	auth.GET("/cart", h.CartPage)
	auth.POST("/cart", h.AddToCart)
	auth.POST("/cart/remove", h.RemoveFromCart)
	auth.POST("/checkout", h.Checkout)
	auth.GET("/orders", h.Orders)
}

// page is the data every template receives.
type page struct {
	Title      string
	Session    *domain.Session
	Flash      string
	FlashLevel string
	Error      string
	Search     string
	Products   []domain.Product
	Orders     []domain.Order
}

// render pops the session's flash message into the page and persists the
// session when a message was consumed.
func (h *Handler) render(c echo.Context, status int, name string, p page) error {
	sess := currentSession(c)
	p.Session = sess
	p.FlashLevel, p.Flash = sess.PopFlash()
	if p.Flash != "" && sess.ID != "" {
		if err := h.save(c, sess); err != nil {
			return err
		}
	}
	return c.Render(status, name, p)
}

// redirect stores the session and sends the browser to target.
func (h *Handler) redirect(c echo.Context, sess *domain.Session, target string) error {
	if err := h.save(c, sess); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (h *Handler) Index(c echo.Context) error {
	if currentSession(c).Authenticated() {
		return c.Redirect(http.StatusSeeOther, "/products")
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) LoginPage(c echo.Context) error {
	if currentSession(c).Authenticated() {
		return c.Redirect(http.StatusSeeOther, "/products")
	}
	return h.render(c, http.StatusOK, "login", page{Title: "Welcome to E-Commerce Platform"})
}

// Login exchanges the form credentials for a token and starts a fresh
// session id for the signed-in user.
func (h *Handler) Login(c echo.Context) error {
	sess := currentSession(c)
	ctx := c.Request().Context()
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	if username == "" || password == "" {
		sess.SetFlash(domain.FlashError, "Username and password are required")
		return h.redirect(c, sess, "/login")
	}

	token, err := h.accounts.Token(ctx, username, password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			h.logger.Error().Err(err).Str("username", username).Msg("login failed")
			sess.SetFlash(domain.FlashError, "Could not reach the user service")
		} else {
			sess.SetFlash(domain.FlashError, "Invalid credentials")
		}
		return h.redirect(c, sess, "/login")
	}

	account, err := h.accounts.Me(ctx, token)
	if err != nil {
		h.logger.Error().Err(err).Str("username", username).Msg("resolve account after login")
		sess.SetFlash(domain.FlashError, "Could not load your account")
		return h.redirect(c, sess, "/login")
	}

	if err := h.sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	sess.ID = h.newID()
	sess.Token = token
	sess.UserID = account.ID
	sess.Username = account.Username
	sess.SetFlash(domain.FlashSuccess, "Login successful!")
	h.setCookie(c, sess.ID)

	h.logger.Info().Int64("user_id", account.ID).Str("username", account.Username).Msg("dashboard login")
	return h.redirect(c, sess, "/products")
}

func (h *Handler) SignUp(c echo.Context) error {
	sess := currentSession(c)
	in := ports.RegisterInput{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
		Email:    strings.TrimSpace(c.FormValue("email")),
	}
	if in.Username == "" || in.Password == "" {
		sess.SetFlash(domain.FlashError, "Username and password are required")
		return h.redirect(c, sess, "/login")
	}

	_, err := h.accounts.Register(c.Request().Context(), in)
	switch {
	case err == nil:
		sess.SetFlash(domain.FlashSuccess, "Registration successful! Please log in.")
	case errors.Is(err, domain.ErrDuplicateUsername):
		sess.SetFlash(domain.FlashError, "Registration failed: Username already registered")
	case errors.Is(err, domain.ErrInvalidInput):
		sess.SetFlash(domain.FlashError, "Registration failed: "+err.Error())
	default:
		h.logger.Error().Err(err).Str("username", in.Username).Msg("registration failed")
		sess.SetFlash(domain.FlashError, "Registration failed")
	}
	return h.redirect(c, sess, "/login")
}

func (h *Handler) Logout(c echo.Context) error {
	sess := currentSession(c)
	if err := h.sessions.Delete(c.Request().Context(), sess.ID); err != nil {
		return err
	}
	h.clearCookie(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) Products(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("search"))
	p := page{Title: "Products", Search: search}

	products, err := h.catalog.ListProducts(c.Request().Context(), ports.ListProductsInput{Search: search})
	if err != nil {
		h.logger.Error().Err(err).Msg("list products")
		p.Error = "Error connecting to product service"
	}
	p.Products = products
	return h.render(c, http.StatusOK, "products", p)
}

func (h *Handler) CartPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "cart", page{Title: "Shopping Cart"})
}

// AddToCart sets the product's line to the requested quantity, capped at the
// stock the catalog reports right now.
func (h *Handler) AddToCart(c echo.Context) error {
	sess := currentSession(c)
	productID, err := strconv.ParseInt(c.FormValue("product_id"), 10, 64)
	if err != nil {
		sess.SetFlash(domain.FlashError, "Unknown product")
		return h.redirect(c, sess, "/products")
	}
	quantity, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil || quantity <= 0 {
		sess.SetFlash(domain.FlashError, "Choose a quantity greater than 0")
		return h.redirect(c, sess, "/products")
	}

	product, err := h.catalog.GetProduct(c.Request().Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			sess.SetFlash(domain.FlashError, "Product not found")
		} else {
			h.logger.Error().Err(err).Int64("product_id", productID).Msg("get product")
			sess.SetFlash(domain.FlashError, "Error connecting to product service")
		}
		return h.redirect(c, sess, "/products")
	}
	if product.Stock <= 0 {
		sess.SetFlash(domain.FlashError, product.Name+" is out of stock")
		return h.redirect(c, sess, "/products")
	}
	if quantity > product.Stock {
		quantity = product.Stock
	}

	sess.Cart.Set(domain.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
	})
	sess.CheckoutKey = h.newID()
	sess.SetFlash(domain.FlashSuccess, fmt.Sprintf("Added %d %s to cart!", quantity, product.Name))
	return h.redirect(c, sess, "/products")
}

func (h *Handler) RemoveFromCart(c echo.Context) error {
	sess := currentSession(c)
	if productID, err := strconv.ParseInt(c.FormValue("product_id"), 10, 64); err == nil {
		sess.Cart.Remove(productID)
		sess.CheckoutKey = h.newID()
	}
	return h.redirect(c, sess, "/cart")
}

// Checkout places the cart as one order. Every cart change mints a new
// idempotency key, so repeated submissions of the same cart (a double click,
// a retry after a failure) all carry the key stored before the first one ran.
// The cart is only cleared when the order service accepted it.
func (h *Handler) Checkout(c echo.Context) error {
	sess := currentSession(c)
	if sess.Cart.Empty() {
		sess.SetFlash(domain.FlashError, "Your cart is empty")
		return h.redirect(c, sess, "/cart")
	}

	if sess.CheckoutKey == "" {
		sess.CheckoutKey = h.newID()
		if err := h.save(c, sess); err != nil {
			return err
		}
	}

	items := make([]ports.OrderItemInput, 0, len(sess.Cart.Lines))
	for _, l := range sess.Cart.Lines {
		items = append(items, ports.OrderItemInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	order, err := h.orders.PlaceOrder(c.Request().Context(), ports.PlaceOrderInput{
		UserID:         sess.UserID,
		Items:          items,
		IdempotencyKey: sess.CheckoutKey,
	})
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", sess.UserID).Msg("checkout failed")
		sess.SetFlash(domain.FlashError, "Failed to place order: "+err.Error())
		return h.redirect(c, sess, "/cart")
	}

	sess.Cart.Clear()
	sess.CheckoutKey = ""
	sess.SetFlash(domain.FlashSuccess, fmt.Sprintf("Order placed successfully! Order #%d", order.ID))
	h.logger.Info().Int64("user_id", sess.UserID).Int64("order_id", order.ID).Msg("checkout completed")
	return h.redirect(c, sess, "/orders")
}

func (h *Handler) Orders(c echo.Context) error {
	p := page{Title: "Order History"}

	orders, err := h.orders.ListOrders(c.Request().Context(), currentSession(c).UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("list orders")
		p.Error = "Failed to fetch orders"
	}
	p.Orders = orders
	return h.render(c, http.StatusOK, "orders", p)
}

// NewErrorHandler renders failures as an HTML page instead of JSON.
func NewErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "Something went wrong. Please try again."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprintf("%v", he.Message)
		} else {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("dashboard error")
		}

		if rerr := c.Render(code, "error", page{Title: "Error", Session: currentSession(c), Error: msg}); rerr != nil {
			_ = c.String(code, msg)
		}
	}
}
