package service

import (
	"context"
	"testing"

	"heriken-shop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartServiceFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCartService(env.sessions, env.products)
	p := env.addProduct(t, "Kettle", 950)
	ctx := context.Background()

	session, err := svc.AddToCart(ctx, "sid", p.ID, 2)
	require.NoError(t, err)
	require.Len(t, session.Cart.Items, 1)
	assert.Equal(t, "Kettle", session.Cart.Items[0].Name)

	session, err = svc.AddToCart(ctx, "sid", p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, session.Cart.Items[0].Quantity)

	_, err = svc.AddToCart(ctx, "sid", p.ID, 0)
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.AddToCart(ctx, "sid", 9999, 1)
	assert.ErrorIs(t, err, model.ErrNotFound)

	session, err = svc.UpdateCart(ctx, "sid", p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, session.Cart.Items[0].Quantity)

	_, err = svc.UpdateCart(ctx, "sid", 9999, 1)
	assert.ErrorIs(t, err, model.ErrNotFound)

	session, err = svc.RemoveFromCart(ctx, "sid", p.ID)
	require.NoError(t, err)
	assert.True(t, session.Cart.IsEmpty())

	_, err = svc.RemoveFromCart(ctx, "sid", p.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	stored, err := svc.Get(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, stored.Cart.IsEmpty())
}

func TestWishlistServiceFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCartService(env.sessions, env.products)
	p := env.addProduct(t, "Saree", 4500)
	ctx := context.Background()

	session, err := svc.AddToWishlist(ctx, "sid", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Wishlist.Count())

	_, err = svc.AddToWishlist(ctx, "sid", p.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyInWishlist)

	_, err = svc.AddToCart(ctx, "sid", p.ID, 1)
	require.NoError(t, err)

	session, err = svc.MoveToCart(ctx, "sid", p.ID)
	require.NoError(t, err)
	assert.Zero(t, session.Wishlist.Count())
	require.Len(t, session.Cart.Items, 1)
	assert.Equal(t, 2, session.Cart.Items[0].Quantity)

	_, err = svc.RemoveFromWishlist(ctx, "sid", p.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.AddToWishlist(ctx, "sid", p.ID)
	require.NoError(t, err)
	session, err = svc.ClearWishlist(ctx, "sid")
	require.NoError(t, err)
	assert.Zero(t, session.Wishlist.Count())

	session, err = svc.ClearCart(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, session.Cart.IsEmpty())
}
