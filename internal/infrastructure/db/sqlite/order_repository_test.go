package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/storefront/internal/core/domain"
)

func newTestOrder(userID int64, at time.Time, lines ...domain.OrderLine) *domain.Order {
	return &domain.Order{
		UserID:      userID,
		TotalAmount: domain.OrderTotal(lines),
		Status:      domain.DefaultOrderStatus,
		CreatedAt:   at,
		Items:       lines,
	}
}

func TestOrderRepository_CreateAssignsIDs(t *testing.T) {
	repo := NewOrderRepository(openTestStore(t, StoreOrders))

	o := newTestOrder(7, time.Now(), domain.OrderLine{ProductID: 1, Quantity: 2, UnitPrice: price("29.99")})
	require.NoError(t, repo.Create(context.Background(), o))

	assert.NotZero(t, o.ID)
	require.Len(t, o.Items, 1)
	assert.NotZero(t, o.Items[0].ID)
	assert.Equal(t, o.ID, o.Items[0].OrderID)
	assert.True(t, o.TotalAmount.Equal(price("59.98")))
}

func TestOrderRepository_ListByUser_NewestFirstWithItems(t *testing.T) {
	repo := NewOrderRepository(openTestStore(t, StoreOrders))
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	older := newTestOrder(7, base,
		domain.OrderLine{ProductID: 1, Quantity: 2, UnitPrice: price("29.99")},
		domain.OrderLine{ProductID: 3, Quantity: 1, UnitPrice: price("89.99")},
	)
	newer := newTestOrder(7, base.Add(time.Second), domain.OrderLine{ProductID: 5, Quantity: 1, UnitPrice: price("49.99")})
	sameInstant := newTestOrder(7, base.Add(time.Second), domain.OrderLine{ProductID: 2, Quantity: 1, UnitPrice: price("999.99")})
	otherUser := newTestOrder(8, base, domain.OrderLine{ProductID: 1, Quantity: 1, UnitPrice: price("29.99")})
	for _, o := range []*domain.Order{older, newer, sameInstant, otherUser} {
		require.NoError(t, repo.Create(ctx, o))
	}

	orders, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, sameInstant.ID, orders[0].ID)
	assert.Equal(t, newer.ID, orders[1].ID)
	assert.Equal(t, older.ID, orders[2].ID)

	require.Len(t, orders[2].Items, 2)
	assert.Equal(t, int64(1), orders[2].Items[0].ProductID)
	assert.Equal(t, 2, orders[2].Items[0].Quantity)
	assert.True(t, orders[2].Items[0].UnitPrice.Equal(price("29.99")))
	assert.True(t, orders[2].TotalAmount.Equal(price("149.97")))
	assert.Equal(t, base, orders[2].CreatedAt)

	none, err := repo.ListByUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderRepository_IdempotencyKey(t *testing.T) {
	repo := NewOrderRepository(openTestStore(t, StoreOrders))
	ctx := context.Background()

	o := newTestOrder(7, time.Now(), domain.OrderLine{ProductID: 1, Quantity: 1, UnitPrice: price("10")})
	o.IdempotencyKey = "key-1"
	require.NoError(t, repo.Create(ctx, o))

	found, err := repo.FindByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)
	assert.Len(t, found.Items, 1)

	_, err = repo.FindByIdempotencyKey(ctx, "key-2")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	dup := newTestOrder(7, time.Now(), domain.OrderLine{ProductID: 1, Quantity: 1, UnitPrice: price("10")})
	dup.IdempotencyKey = "key-1"
	assert.Error(t, repo.Create(ctx, dup))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed insert must roll back")
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	repo := NewOrderRepository(openTestStore(t, StoreOrders))
	ctx := context.Background()

	o := newTestOrder(7, time.Now(), domain.OrderLine{ProductID: 1, Quantity: 1, UnitPrice: price("10")})
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, "shipped"))
	orders, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "shipped", orders[0].Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 12345, "shipped"), domain.ErrOrderNotFound)
}

func TestOrderRepository_FailedLineRollsBackHeader(t *testing.T) {
	repo := NewOrderRepository(openTestStore(t, StoreOrders))
	ctx := context.Background()

	// quantity must be > 0; the CHECK constraint fails the second insert.
	bad := newTestOrder(7, time.Now(), domain.OrderLine{ProductID: 1, Quantity: 0, UnitPrice: price("10")})
	require.Error(t, repo.Create(ctx, bad))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderRepository_DuplicateIdempotencyKey(t *testing.T) {
	repo := NewOrderRepository(openTestStore(t, StoreOrders))
	ctx := context.Background()

	first := newTestOrder(7, time.Now(), domain.OrderLine{ProductID: 1, Quantity: 1, UnitPrice: price("10")})
	first.IdempotencyKey = "same"
	require.NoError(t, repo.Create(ctx, first))

	second := newTestOrder(7, time.Now(), domain.OrderLine{ProductID: 1, Quantity: 1, UnitPrice: price("10")})
	second.IdempotencyKey = "same"
	assert.ErrorIs(t, repo.Create(ctx, second), domain.ErrDuplicateIdempotencyKey)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
