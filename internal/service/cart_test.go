package service

import (
	"context"
	"math"
	"testing"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_GetOrCreateActive(t *testing.T) {
	ctx := context.Background()

	t.Run("user cart is reused while active", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCartService(f.deps)

		first, err := svc.GetOrCreateActive(ctx, domain.UserOwner(1))
		require.NoError(t, err)
		second, err := svc.GetOrCreateActive(ctx, domain.UserOwner(1))
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, domain.CartStatusActive, first.Status)
		require.NotNil(t, first.UserID)
		assert.Equal(t, int64(1), *first.UserID)
		assert.Nil(t, first.SessionID)
		assert.Empty(t, first.Items)
	})

	t.Run("guest without token gets a generated session", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCartService(f.deps)

		cart, err := svc.GetOrCreateActive(ctx, domain.GuestOwner(""))
		require.NoError(t, err)
		require.NotNil(t, cart.SessionID)
		assert.NotEmpty(t, *cart.SessionID)
		assert.Nil(t, cart.UserID)

		again, err := svc.GetOrCreateActive(ctx, domain.GuestOwner(*cart.SessionID))
		require.NoError(t, err)
		assert.Equal(t, cart.ID, again.ID)
	})

	t.Run("distinct owners get distinct carts", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCartService(f.deps)

		a, err := svc.GetOrCreateActive(ctx, domain.GuestOwner("a"))
		require.NoError(t, err)
		b, err := svc.GetOrCreateActive(ctx, domain.GuestOwner("b"))
		require.NoError(t, err)
		u, err := svc.GetOrCreateActive(ctx, domain.UserOwner(9))
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
		assert.NotEqual(t, a.ID, u.ID)
	})
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("increments and rejects beyond stock", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCartService(f.deps)
		p := f.product(t, "250", 2)
		cart := f.userCart(t, 1)

		cart, err := svc.AddItem(ctx, cart.ID, p.ID, 2)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, int32(2), cart.Items[0].Quantity)
		assert.True(t, cart.Items[0].Subtotal.Equal(dec("500")))

		_, err = svc.AddItem(ctx, cart.ID, p.ID, 1)
		requireInsufficientStock(t, err, p.ID, 2, 3)

		got, err := svc.GetCart(ctx, cart.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(2), got.Items[0].Quantity)
		assert.Equal(t, int32(2), f.stock(t, p.ID), "adding to a cart never reserves stock")
	})

	t.Run("huge quantity on an existing line is a shortfall", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCartService(f.deps)
		p := f.product(t, "10", 5)
		cart := f.userCart(t, 1, OrderLine{ProductID: p.ID, Quantity: 2})

		_, err := svc.AddItem(ctx, cart.ID, p.ID, math.MaxInt32)
		requireInsufficientStock(t, err, p.ID, 5, math.MaxInt32)

		got, err := svc.GetCart(ctx, cart.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, int32(2), got.Items[0].Quantity)
		assert.True(t, got.Items[0].Subtotal.Equal(dec("20")))
	})

	t.Run("captures the promotional price", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCartService(f.deps)
		p := f.product(t, "100", 10)
		_, err := f.store.UpdateProductPrice(ctx, repository.UpdateProductPriceParams{
			ID:         p.ID,
			Price:      dec("100"),
			PromoPrice: decimal.NewNullDecimal(dec("80")),
		})
		require.NoError(t, err)
		cart := f.userCart(t, 1)

		cart, err = svc.AddItem(ctx, cart.ID, p.ID, 3)
		require.NoError(t, err)
		assert.True(t, cart.Items[0].UnitPrice.Equal(dec("80")))
		assert.True(t, cart.Total().Equal(dec("240")))
	})

	t.Run("validation and lookup errors", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCartService(f.deps)
		p := f.product(t, "10", 10)
		cart := f.userCart(t, 1)

		_, err := svc.AddItem(ctx, cart.ID, p.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = svc.AddItem(ctx, 999, p.ID, 1)
		assert.ErrorIs(t, err, ErrCartNotFound)

		_, err = svc.AddItem(ctx, cart.ID, 999, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("converted cart rejects changes", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCartService(f.deps)
		p := f.product(t, "10", 10)
		cart := f.userCart(t, 1, OrderLine{ProductID: p.ID, Quantity: 1})
		require.NoError(t, f.store.UpdateCartStatus(ctx, repository.UpdateCartStatusParams{
			ID:     cart.ID,
			Status: string(domain.CartStatusConverted),
		}))

		_, err := svc.AddItem(ctx, cart.ID, p.ID, 1)
		assert.ErrorIs(t, err, ErrCartAlreadyConverted)
		assert.True(t, domain.IsCode(err, domain.ECONFLICT))
	})
}

func TestCartService_SetQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCartService(f.deps)
	p := f.product(t, "10", 5)
	other := f.product(t, "10", 5)
	cart := f.userCart(t, 1, OrderLine{ProductID: p.ID, Quantity: 4})

	cart, err := svc.SetQuantity(ctx, cart.ID, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Subtotal.Equal(dec("10")))

	_, err = svc.SetQuantity(ctx, cart.ID, p.ID, 6)
	requireInsufficientStock(t, err, p.ID, 5, 6)

	_, err = svc.SetQuantity(ctx, cart.ID, other.ID, 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	_, err = svc.SetQuantity(ctx, cart.ID, p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCartService(f.deps)
	a := f.product(t, "10", 5)
	b := f.product(t, "20", 5)
	cart := f.userCart(t, 1,
		OrderLine{ProductID: a.ID, Quantity: 1},
		OrderLine{ProductID: b.ID, Quantity: 1},
	)

	got, err := svc.RemoveItem(ctx, cart.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 1)

	_, err = svc.RemoveItem(ctx, cart.ID, a.ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	got, err = svc.RemoveItem(ctx, cart.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "removing the last item deletes the cart")

	_, err = svc.GetCart(ctx, cart.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)

	fresh, err := svc.GetOrCreateActive(ctx, domain.UserOwner(1))
	require.NoError(t, err)
	assert.NotEqual(t, cart.ID, fresh.ID)
	assert.Empty(t, fresh.Items)
}

func TestCartService_DeleteCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCartService(f.deps)
	p := f.product(t, "10", 5)
	cart := f.userCart(t, 1, OrderLine{ProductID: p.ID, Quantity: 2})

	require.NoError(t, svc.DeleteCart(ctx, cart.ID))
	assert.ErrorIs(t, svc.DeleteCart(ctx, cart.ID), ErrCartNotFound)

	_, err := svc.GetActiveCart(ctx, domain.UserOwner(1))
	assert.ErrorIs(t, err, ErrCartNotFound)
}
