package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/storefront/internal/core/domain"
)

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewAccountRepository(openTestStore(t, StoreUsers))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Account{
		Username:     "alice",
		PasswordHash: "hash",
		Email:        "alice@example.com",
		IsAdmin:      true,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)
	assert.Equal(t, "alice@example.com", found.Email)
	assert.True(t, found.IsAdmin)
}

func TestAccountRepository_DuplicateUsername(t *testing.T) {
	repo := NewAccountRepository(openTestStore(t, StoreUsers))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Account{Username: "bob", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Account{Username: "bob", PasswordHash: "h2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := NewAccountRepository(openTestStore(t, StoreUsers))

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_ListAndCount(t *testing.T) {
	repo := NewAccountRepository(openTestStore(t, StoreUsers))
	ctx := context.Background()

	for _, name := range []string{"user1", "test_user"} {
		_, err := repo.Create(ctx, &domain.Account{Username: name, PasswordHash: "h"})
		require.NoError(t, err)
	}

	accounts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "user1", accounts[0].Username)
	assert.Empty(t, accounts[1].Email)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
