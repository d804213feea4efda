package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/loja1/projectohibrido/internal/repository"
)

func (q *queries) CreateStockMovement(ctx context.Context, arg repository.CreateStockMovementParams) (repository.StockMovement, error) {
	defer q.enter()()
	if _, ok := q.st.products[arg.ProductID]; !ok {
		return repository.StockMovement{}, foreignKeyViolation("stock_movements_product_id_fkey")
	}
	m := repository.StockMovement{
		ID:               q.st.nextID(),
		ProductID:        arg.ProductID,
		MovementType:     arg.MovementType,
		Quantity:         arg.Quantity,
		PreviousQuantity: arg.PreviousQuantity,
		NewQuantity:      arg.NewQuantity,
		Reason:           arg.Reason,
		UserID:           arg.UserID,
		CreatedAt:        q.timestamp(),
	}
	q.st.movements[m.ID] = m
	return m, nil
}

func (q *queries) ListStockMovementsByProduct(ctx context.Context, productID int64) ([]repository.StockMovement, error) {
	defer q.enter()()
	movements := []repository.StockMovement{}
	for _, m := range q.st.movements {
		if m.ProductID == productID {
			movements = append(movements, m)
		}
	}
	slices.SortFunc(movements, func(a, b repository.StockMovement) int { return cmp.Compare(b.ID, a.ID) })
	return movements, nil
}

func (q *queries) ListStockMovements(ctx context.Context, arg repository.ListStockMovementsParams) ([]repository.StockMovement, error) {
	defer q.enter()()
	movements := []repository.StockMovement{}
	for _, m := range q.st.movements {
		if arg.From.Valid && m.CreatedAt.Time.Before(arg.From.Time) {
			continue
		}
		if arg.To.Valid && !m.CreatedAt.Time.Before(arg.To.Time) {
			continue
		}
		movements = append(movements, m)
	}
	slices.SortFunc(movements, func(a, b repository.StockMovement) int { return cmp.Compare(b.ID, a.ID) })
	return movements, nil
}
