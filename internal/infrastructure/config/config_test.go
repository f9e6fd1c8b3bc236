package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RequiresSecret(t *testing.T) {
	_, err := LoadFrom[UserService](context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)

	_, err = LoadFrom[UserService](context.Background(), envconfig.MapLookuper(map[string]string{"JWT_SECRET": "   "}))
	require.Error(t, err)
}

func TestUserService_Defaults(t *testing.T) {
	cfg, err := LoadFrom[UserService](context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "data/databases/users.db", cfg.DBPath)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, ":8001", cfg.Addr("8001"))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Production())
}

func TestUserService_ExpireMinutesOverridesTTL(t *testing.T) {
	cfg, err := LoadFrom[UserService](context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                  "s3cret",
		"ACCESS_TOKEN_TTL":            "1h",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "15",
		"PORT":                        "9000",
		"ENV":                         "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, ":9000", cfg.Addr("8001"))
	assert.True(t, cfg.Production())
}

func TestUserService_RejectsOtherAlgorithms(t *testing.T) {
	_, err := LoadFrom[UserService](context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"ALGORITHM":  "RS256",
	}))
	require.Error(t, err)
}

func TestOrderService_Defaults(t *testing.T) {
	cfg, err := LoadFrom[OrderService](context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, "http://localhost:8002", cfg.ProductServiceURL)
	assert.Empty(t, cfg.Mongo.URI)
	assert.Equal(t, "storefront", cfg.Mongo.Database)
}

func TestProductAndDashboardDefaults(t *testing.T) {
	product, err := LoadFrom[ProductService](context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)
	assert.True(t, product.SeedDemo)

	dash, err := LoadFrom[Dashboard](context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_TTL": "2h",
	}))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, dash.SessionTTL)
	assert.Equal(t, "localhost:6379", dash.Redis.Addr)
	assert.Equal(t, 10, dash.Redis.PoolSize)
	assert.Equal(t, 3*time.Second, dash.Redis.Timeout)
}
