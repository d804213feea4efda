package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/events"
	"github.com/loja1/projectohibrido/internal/memstore"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/loja1/projectohibrido/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *memstore.Store
	events *events.Recorder
	deps   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	rec := events.NewRecorder()
	return &fixture{
		store:  store,
		events: rec,
		deps: Deps{
			Store:     store,
			Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
			Metrics:   telemetry.NewBusinessMetrics("test", prometheus.NewRegistry()),
			Publisher: rec,
		},
	}
}

func (f *fixture) product(t *testing.T, price string, stock int32) repository.Product {
	t.Helper()
	p, err := f.store.CreateProduct(context.Background(), repository.CreateProductParams{
		Name:          "Produto",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        true,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, productID int64) int32 {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

// userCart returns an active cart for userID holding the given lines.
func (f *fixture) userCart(t *testing.T, userID int64, lines ...OrderLine) *domain.Cart {
	t.Helper()
	ctx := context.Background()
	carts := NewCartService(f.deps)

	cart, err := carts.GetOrCreateActive(ctx, domain.UserOwner(userID))
	require.NoError(t, err)
	for _, line := range lines {
		cart, err = carts.AddItem(ctx, cart.ID, line.ProductID, line.Quantity)
		require.NoError(t, err)
	}
	return cart
}

func requireInsufficientStock(t *testing.T, err error, productID int64, available, requested int32) {
	t.Helper()
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, productID, stockErr.ProductID)
	require.Equal(t, available, stockErr.Available)
	require.Equal(t, requested, stockErr.Requested)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
