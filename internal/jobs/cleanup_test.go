package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/loja1/projectohibrido/internal/memstore"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/loja1/projectohibrido/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbandonedCartCleaner(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	createAt := func(at time.Time, params repository.CreateCartParams) repository.Cart {
		t.Helper()
		store.SetClock(func() time.Time { return at })
		c, err := store.CreateCart(ctx, params)
		require.NoError(t, err)
		return c
	}

	oldGuest := createAt(now.Add(-31*24*time.Hour), repository.CreateCartParams{
		SessionID: pgtype.Text{String: "old", Valid: true},
	})
	freshGuest := createAt(now.Add(-2*time.Hour), repository.CreateCartParams{
		SessionID: pgtype.Text{String: "fresh", Valid: true},
	})
	oldUser := createAt(now.Add(-90*24*time.Hour), repository.CreateCartParams{
		UserID: pgtype.Int8{Int64: 9, Valid: true},
	})

	metrics := telemetry.NewBusinessMetrics("test", prometheus.NewRegistry())
	cleaner := NewAbandonedCartCleaner(store, 30*24*time.Hour, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cleaner.now = func() time.Time { return now }

	result, err := cleaner.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.CartsDeleted)

	_, err = store.GetCart(ctx, oldGuest.ID)
	assert.True(t, repository.IsNotFound(err), "abandoned guest cart should be gone")

	_, err = store.GetCart(ctx, freshGuest.ID)
	assert.NoError(t, err)
	_, err = store.GetCart(ctx, oldUser.ID)
	assert.NoError(t, err, "user carts are never cleaned up")

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CartsDeleted.WithLabelValues("abandoned")))

	result, err = cleaner.Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.CartsDeleted)
}

func TestAbandonedCartCleaner_Name(t *testing.T) {
	cleaner := NewAbandonedCartCleaner(memstore.New(), time.Hour, nil, nil)
	assert.Equal(t, JobTypeCleanupAbandonedCarts, cleaner.Name())
	assert.NoError(t, cleaner.Run(context.Background()))
}
