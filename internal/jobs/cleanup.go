// Package jobs holds the periodic maintenance jobs run by the worker.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/loja1/projectohibrido/internal/telemetry"
)

// JobTypeCleanupAbandonedCarts names the abandoned guest cart cleanup.
const JobTypeCleanupAbandonedCarts = "cleanup:abandoned_carts"

// CleanupResult holds the result of a cleanup run
type CleanupResult struct {
	CartsDeleted int64 `json:"carts_deleted"`
}

// AbandonedCartCleaner deletes active guest carts that have not been
// touched for longer than the abandon window. Guest carts never reserve
// stock, so nothing is returned to the ledger.
type AbandonedCartCleaner struct {
	store        repository.Querier
	abandonAfter time.Duration
	metrics      *telemetry.BusinessMetrics
	logger       *slog.Logger
	now          func() time.Time
}

// NewAbandonedCartCleaner creates the cleanup job
func NewAbandonedCartCleaner(store repository.Querier, abandonAfter time.Duration, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *AbandonedCartCleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &AbandonedCartCleaner{
		store:        store,
		abandonAfter: abandonAfter,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Name implements worker.Job
func (c *AbandonedCartCleaner) Name() string {
	return JobTypeCleanupAbandonedCarts
}

// Run implements worker.Job
func (c *AbandonedCartCleaner) Run(ctx context.Context) error {
	_, err := c.Cleanup(ctx)
	return err
}

// Cleanup deletes every guest cart last updated before now minus the
// abandon window.
func (c *AbandonedCartCleaner) Cleanup(ctx context.Context) (*CleanupResult, error) {
	cutoff := c.now().UTC().Add(-c.abandonAfter)

	n, err := c.store.DeleteAbandonedGuestCarts(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("failed to delete abandoned guest carts: %w", err)
	}

	c.metrics.CartDeleted("abandoned", n)
	if n > 0 {
		c.logger.InfoContext(ctx, "Abandoned guest carts deleted",
			"count", n,
			"cutoff", cutoff,
		)
	}
	return &CleanupResult{CartsDeleted: n}, nil
}
