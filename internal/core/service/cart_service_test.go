package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

func newCartFixture() (*CartService, *mockCartRepo) {
	three := 3
	catalog := &mockCatalog{products: map[string]domain.Product{
		"tee-orbit": {
			ID:          "tee-orbit",
			Name:        "Orbit Tee",
			Price:       decimal.NewFromInt(90000),
			StockBySize: map[string]int{"M": 3},
		},
		"cap-static": {ID: "cap-static", Name: "Static Cap", Price: decimal.NewFromInt(60000), Stock: &three},
	}}
	repo := newMockCartRepo()
	return NewCartService(repo, catalog), repo
}

func TestCartService_GetEmptySession(t *testing.T) {
	svc, _ := newCartFixture()

	cart, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.False(t, cart.Visible)
}

func TestCartService_AddItemPersistsSnapshot(t *testing.T) {
	svc, repo := newCartFixture()

	cart, ok, err := svc.AddItem(context.Background(), "sess-1", "tee-orbit", "M", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, repo.saves)

	// A fresh load sees the snapshot.
	reloaded, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 1)
	assert.Equal(t, 2, reloaded.Lines[0].Quantity)
}

func TestCartService_RejectedAddDoesNotPersist(t *testing.T) {
	svc, repo := newCartFixture()

	_, ok, err := svc.AddItem(context.Background(), "sess-1", "tee-orbit", "M", 2)
	require.NoError(t, err)
	require.True(t, ok)

	// 2 + 2 > 3: rejected, snapshot untouched.
	cart, ok, err := svc.AddItem(context.Background(), "sess-1", "tee-orbit", "M", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 1, repo.saves)
}

func TestCartService_AddUnknownProduct(t *testing.T) {
	svc, _ := newCartFixture()

	_, _, err := svc.AddItem(context.Background(), "sess-1", "ghost", "", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_UpdateQuantityAndRemove(t *testing.T) {
	svc, _ := newCartFixture()
	ctx := context.Background()

	_, ok, err := svc.AddItem(ctx, "sess-1", "tee-orbit", "M", 1)
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = svc.AddItem(ctx, "sess-1", "cap-static", "", 1)
	require.NoError(t, err)
	require.True(t, ok)

	cart, err := svc.UpdateQuantity(ctx, "sess-1", "tee-orbit", 3, "M")
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Lines[0].Quantity)

	cart, err = svc.RemoveItem(ctx, "sess-1", "tee-orbit", "")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "cap-static", cart.Lines[0].ProductID)
}

func TestCartService_ClearKeepsSessionSnapshot(t *testing.T) {
	svc, _ := newCartFixture()
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, "sess-1", "cap-static", "", 1)
	require.NoError(t, err)

	cart, err := svc.Clear(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	reloaded, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, reloaded.Lines)
	assert.True(t, reloaded.Visible)
}
