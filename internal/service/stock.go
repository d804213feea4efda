package service

import (
	"context"
	"fmt"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/loja1/projectohibrido/internal/telemetry"
)

// StockService is the stock ledger: the only writer of products.stock_quantity.
type StockService interface {
	// GetProduct returns the catalog view of a product, including its
	// current stock.
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)

	// AdjustStock applies delta in a single conditional update and returns
	// the new quantity. A decrement that would go below zero fails with
	// *domain.InsufficientStockError and changes nothing.
	AdjustStock(ctx context.Context, productID int64, delta int32) (int32, error)
}

type stockService struct {
	Deps
}

// NewStockService creates a new StockService instance
func NewStockService(deps Deps) StockService {
	return &stockService{Deps: deps.withDefaults()}
}

func (s *stockService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := lookupProduct(ctx, s.Store, productID)
	if err != nil {
		return nil, err
	}
	product := productFromRow(p)
	return &product, nil
}

func (s *stockService) AdjustStock(ctx context.Context, productID int64, delta int32) (int32, error) {
	var newQty int32
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		if delta < 0 {
			p, err := lookupProduct(ctx, q, productID)
			if err != nil {
				return err
			}
			if p.StockQuantity < -delta {
				return domain.InsufficientStock("stock.adjust", productID, p.StockQuantity, -delta)
			}
		}

		var err error
		newQty, err = adjustStock(ctx, q, s.Metrics, "stock.adjust", productID, delta)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.Logger.InfoContext(ctx, "Stock adjusted",
		"product_id", productID,
		"delta", delta,
		"new_quantity", newQty,
	)
	return newQty, nil
}

// lookupProduct reads a product, mapping a missing row to ErrProductNotFound.
func lookupProduct(ctx context.Context, q repository.Querier, productID int64) (repository.Product, error) {
	p, err := q.GetProduct(ctx, productID)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.Product{}, ErrProductNotFound
		}
		return repository.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// adjustStock is the ledger primitive. It issues the atomic
// "stock_quantity + delta >= 0" update; when no row matches it re-reads the
// product to tell a missing product from a lost race. The caller's
// transaction must abort on any error.
func adjustStock(ctx context.Context, q repository.Querier, metrics *telemetry.BusinessMetrics, op string, productID int64, delta int32) (int32, error) {
	newQty, err := q.AdjustProductStock(ctx, repository.AdjustProductStockParams{
		ID:    productID,
		Delta: delta,
	})
	if err == nil {
		metrics.StockAdjusted(delta)
		return newQty, nil
	}
	if !repository.IsNotFound(err) {
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	p, err := lookupProduct(ctx, q, productID)
	if err != nil {
		return 0, err
	}
	metrics.StockShortfall(op)
	return 0, domain.InsufficientStock(op, productID, p.StockQuantity, -delta)
}

// reserveStock checks availability on p, then decrements through the ledger.
// The check is a fast path; the atomic update is what guarantees the floor.
func reserveStock(ctx context.Context, q repository.Querier, metrics *telemetry.BusinessMetrics, op string, p repository.Product, quantity int32) error {
	if p.StockQuantity < quantity {
		metrics.StockShortfall(op)
		return domain.InsufficientStock(op, p.ID, p.StockQuantity, quantity)
	}
	_, err := adjustStock(ctx, q, metrics, op, p.ID, -quantity)
	return err
}

// releaseStock returns quantity units to stock.
func releaseStock(ctx context.Context, q repository.Querier, metrics *telemetry.BusinessMetrics, op string, productID int64, quantity int32) error {
	_, err := adjustStock(ctx, q, metrics, op, productID, quantity)
	return err
}
