package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/storefront/internal/infrastructure/db/sqlite"
)

func TestSetup_CreatesAndSeedsStores(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "databases")

	report, err := Setup(ctx, dir, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, report.Healthy())

	rows := map[sqlite.Store]int{}
	for _, s := range report.Stores {
		assert.True(t, s.Exists, s.Store)
		assert.Positive(t, s.Size, s.Store)
		rows[s.Store] = s.Rows
	}
	assert.Equal(t, 3, rows[sqlite.StoreUsers])
	assert.Equal(t, 5, rows[sqlite.StoreProducts])
	assert.Equal(t, 0, rows[sqlite.StoreOrders])
}

func TestSetup_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Setup(ctx, dir, zerolog.Nop())
	require.NoError(t, err)
	report, err := Setup(ctx, dir, zerolog.Nop())
	require.NoError(t, err)

	for _, s := range report.Stores {
		switch s.Store {
		case sqlite.StoreUsers:
			assert.Equal(t, 3, s.Rows)
		case sqlite.StoreProducts:
			assert.Equal(t, 5, s.Rows)
		}
	}
}

func TestVerify_MissingStores(t *testing.T) {
	report, err := Verify(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.False(t, report.Healthy())
	require.Len(t, report.Stores, 3)
	for _, s := range report.Stores {
		assert.False(t, s.Exists)
	}
}

func TestReset_WipesExtraFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	stray := filepath.Join(dir, "stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0o644))

	report, err := Reset(ctx, dir, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, report.Healthy())
	_, err = os.Stat(stray)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	_, err := Setup(ctx, dir, zerolog.Nop())
	require.NoError(t, err)

	users, err := ListUsers(ctx, dir)
	require.NoError(t, err)

	require.Len(t, users, 3)
	assert.Equal(t, "admin", users[0].Username)
	assert.True(t, users[0].IsAdmin)
	assert.NotEqual(t, "admin123", users[0].PasswordHash)
}

func TestListUsers_NoStore(t *testing.T) {
	_, err := ListUsers(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9000\n"), 0o600))

	secret, err := GenerateKey(path, false)
	require.NoError(t, err)
	assert.Len(t, secret, 43)

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, secret, env["JWT_SECRET"])
	assert.Equal(t, "HS256", env["ALGORITHM"])
	assert.Equal(t, "30", env["ACCESS_TOKEN_EXPIRE_MINUTES"])
	assert.Equal(t, "9000", env["PORT"])

	_, err = GenerateKey(path, false)
	assert.ErrorIs(t, err, ErrSecretExists)

	rotated, err := GenerateKey(path, true)
	require.NoError(t, err)
	assert.NotEqual(t, secret, rotated)
}
