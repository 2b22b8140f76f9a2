package repository

import (
	"context"
	"testing"

	"heriken-shop/internal/model"
	"heriken-shop/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx))
	require.NoError(t, repo.Seed(ctx))

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestProductList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Seed(ctx))

	products, total, err := repo.List(ctx, ProductFilter{Search: "Saree", Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, products, 2)

	products, total, err = repo.List(ctx, ProductFilter{Featured: true, Limit: 8})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, p := range products {
		assert.True(t, p.IsFeatured)
	}

	_, total, err = repo.List(ctx, ProductFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
}

func TestProductDeactivateHidesProduct(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := &model.Product{Name: "Lungi", Price: decimal.NewFromInt(300), Stock: 3, IsActive: true}
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.Deactivate(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Deactivate(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindByID(ctx, p.ID)
	assert.Error(t, err)

	found, err := repo.FindActiveByIDs(ctx, nil, []uint{p.ID})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCategoryCounts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	require.NoError(t, NewProductRepository(db).Seed(ctx))
	repo := NewCategoryRepository(db)

	top, err := repo.Top(ctx, 8)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.EqualValues(t, 2, top[0].ProductCount)

	ok, err := repo.Deactivate(ctx, top[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
