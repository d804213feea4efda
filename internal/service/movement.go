package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/repository"
)

// StockMovementService records manual stock changes. Each movement goes
// through the stock ledger and appends a journal row in the same
// transaction. Order and checkout stock changes are not journaled.
type StockMovementService interface {
	RecordMovement(ctx context.Context, params RecordMovementParams) (*domain.StockMovement, error)
	ListMovements(ctx context.Context, productID int64) ([]domain.StockMovement, error)

	// ListMovementsBetween lists movements of every product recorded in
	// [from, to). A zero bound is open, so two zero times list the whole
	// journal.
	ListMovementsBetween(ctx context.Context, from, to time.Time) ([]domain.StockMovement, error)
}

// RecordMovementParams describe one manual movement. For MovementIn and
// MovementOut Quantity is the amount moved; for MovementAdjustment it is the
// new absolute stock level.
type RecordMovementParams struct {
	ProductID int64
	Type      domain.MovementType
	Quantity  int32
	Reason    string
	UserID    *int64
}

type stockMovementService struct {
	Deps
}

// NewStockMovementService creates a new StockMovementService instance
func NewStockMovementService(deps Deps) StockMovementService {
	return &stockMovementService{Deps: deps.withDefaults()}
}

func (s *stockMovementService) RecordMovement(ctx context.Context, params RecordMovementParams) (*domain.StockMovement, error) {
	const op = "stock.movement"

	if !params.Type.Valid() {
		return nil, ErrInvalidMovementType
	}
	switch {
	case params.Type == domain.MovementAdjustment && params.Quantity < 0:
		return nil, domain.NewValidationError(op, "quantity", "must not be negative")
	case params.Type != domain.MovementAdjustment && params.Quantity < 1:
		return nil, ErrInvalidQuantity
	}

	var movement domain.StockMovement
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		p, err := q.GetProductForUpdate(ctx, params.ProductID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}

		var delta int32
		switch params.Type {
		case domain.MovementIn:
			if int64(p.StockQuantity)+int64(params.Quantity) > math.MaxInt32 {
				return domain.NewValidationError(op, "quantity", "would exceed the maximum stock level")
			}
			delta = params.Quantity
		case domain.MovementOut:
			if p.StockQuantity < params.Quantity {
				s.Metrics.StockShortfall(op)
				return domain.InsufficientStock(op, p.ID, p.StockQuantity, params.Quantity)
			}
			delta = -params.Quantity
		case domain.MovementAdjustment:
			delta = params.Quantity - p.StockQuantity
		}

		newQty := p.StockQuantity
		if delta != 0 {
			newQty, err = adjustStock(ctx, q, s.Metrics, op, p.ID, delta)
			if err != nil {
				return err
			}
		}

		row, err := q.CreateStockMovement(ctx, repository.CreateStockMovementParams{
			ProductID:        p.ID,
			MovementType:     string(params.Type),
			Quantity:         params.Quantity,
			PreviousQuantity: p.StockQuantity,
			NewQuantity:      newQty,
			Reason:           params.Reason,
			UserID:           toInt8(params.UserID),
		})
		if err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
		movement = movementFromRow(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Stock movement recorded",
		"product_id", movement.ProductID,
		"type", movement.Type,
		"previous_quantity", movement.PreviousQuantity,
		"new_quantity", movement.NewQuantity,
	)
	return &movement, nil
}

func (s *stockMovementService) ListMovements(ctx context.Context, productID int64) ([]domain.StockMovement, error) {
	if _, err := lookupProduct(ctx, s.Store, productID); err != nil {
		return nil, err
	}

	rows, err := s.Store.ListStockMovementsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	movements := make([]domain.StockMovement, 0, len(rows))
	for _, m := range rows {
		movements = append(movements, movementFromRow(m))
	}
	return movements, nil
}

func (s *stockMovementService) ListMovementsBetween(ctx context.Context, from, to time.Time) ([]domain.StockMovement, error) {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return nil, domain.NewValidationError("stock.movements", "to", "must be after from")
	}

	var params repository.ListStockMovementsParams
	if !from.IsZero() {
		params.From = timestamptz(from)
	}
	if !to.IsZero() {
		params.To = timestamptz(to)
	}

	rows, err := s.Store.ListStockMovements(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	movements := make([]domain.StockMovement, 0, len(rows))
	for _, m := range rows {
		movements = append(movements, movementFromRow(m))
	}
	return movements, nil
}
