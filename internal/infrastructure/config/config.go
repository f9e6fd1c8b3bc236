package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Server holds the settings shared by every binary.
type Server struct {
	Port     string `env:"PORT"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
}

// Addr returns the listen address, falling back to the binary's own port.
func (s Server) Addr(defaultPort string) string {
	if s.Port == "" {
		return ":" + defaultPort
	}
	return ":" + s.Port
}

// Production disables the pretty console log writer.
func (s Server) Production() bool {
	return strings.EqualFold(s.Env, "production")
}

type UserService struct {
	Server

	JWTSecret string        `env:"JWT_SECRET, required"`
	Algorithm string        `env:"ALGORITHM,  default=HS256"`
	DBPath    string        `env:"USERS_DB_PATH, default=data/databases/users.db"`
	TokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL, default=30m"`
	// ExpireMinutes is the key written by `storectl genkey`; when set it
	// takes precedence over TokenTTL.
	ExpireMinutes int `env:"ACCESS_TOKEN_EXPIRE_MINUTES"`
}

// AccessTokenTTL resolves the token lifetime from either setting.
func (c *UserService) AccessTokenTTL() time.Duration {
	if c.ExpireMinutes > 0 {
		return time.Duration(c.ExpireMinutes) * time.Minute
	}
	return c.TokenTTL
}

func (c *UserService) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be blank")
	}
	if c.Algorithm != "HS256" {
		return fmt.Errorf("ALGORITHM %q is not supported, only HS256", c.Algorithm)
	}
	return nil
}

type ProductService struct {
	Server

	DBPath   string `env:"PRODUCTS_DB_PATH, default=data/databases/products.db"`
	SeedDemo bool   `env:"SEED_DEMO_DATA,   default=true"`
}

type OrderService struct {
	Server

	DBPath            string        `env:"ORDERS_DB_PATH,      default=data/databases/orders.db"`
	ProductServiceURL string        `env:"PRODUCT_SERVICE_URL, default=http://localhost:8002"`
	CatalogTimeout    time.Duration `env:"CATALOG_TIMEOUT,     default=5s"`
	AuditWorkers      int           `env:"AUDIT_WORKERS,       default=4"`

	Mongo MongoConfig
}

// MongoConfig is optional: an empty URI disables the audit trail.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=storefront"`
}

type Dashboard struct {
	Server

	UserServiceURL    string        `env:"USER_SERVICE_URL,    default=http://localhost:8001"`
	ProductServiceURL string        `env:"PRODUCT_SERVICE_URL, default=http://localhost:8002"`
	OrderServiceURL   string        `env:"ORDER_SERVICE_URL,   default=http://localhost:8003"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT,     default=10s"`
	SessionTTL        time.Duration `env:"SESSION_TTL,         default=24h"`
	SecureCookies     bool          `env:"SECURE_COOKIES,      default=false"`

	Redis RedisConfig
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	PoolSize int           `env:"REDIS_POOL_SIZE, default=10"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,   default=3s"`
}

type validator interface {
	validate() error
}

// Load reads a .env file when present and then the process environment
// into T.
func Load[T any](ctx context.Context) (*T, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom[T](ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from the given lookuper using go-envconfig.
func LoadFrom[T any](ctx context.Context, lookuper envconfig.Lookuper) (*T, error) {
	var cfg T
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if v, ok := any(&cfg).(validator); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return &cfg, nil
}
