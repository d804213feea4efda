package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createStockMovement = `-- name: CreateStockMovement :one
INSERT INTO stock_movements (
    product_id, movement_type, quantity, previous_quantity, new_quantity, reason, user_id
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, product_id, movement_type, quantity, previous_quantity, new_quantity, reason, user_id, created_at
`

type CreateStockMovementParams struct {
	ProductID        int64       `json:"product_id"`
	MovementType     string      `json:"movement_type"`
	Quantity         int32       `json:"quantity"`
	PreviousQuantity int32       `json:"previous_quantity"`
	NewQuantity      int32       `json:"new_quantity"`
	Reason           string      `json:"reason"`
	UserID           pgtype.Int8 `json:"user_id"`
}

func (q *Queries) CreateStockMovement(ctx context.Context, arg CreateStockMovementParams) (StockMovement, error) {
	row := q.db.QueryRow(ctx, createStockMovement,
		arg.ProductID,
		arg.MovementType,
		arg.Quantity,
		arg.PreviousQuantity,
		arg.NewQuantity,
		arg.Reason,
		arg.UserID,
	)
	var i StockMovement
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.MovementType,
		&i.Quantity,
		&i.PreviousQuantity,
		&i.NewQuantity,
		&i.Reason,
		&i.UserID,
		&i.CreatedAt,
	)
	return i, err
}

const listStockMovementsByProduct = `-- name: ListStockMovementsByProduct :many
SELECT id, product_id, movement_type, quantity, previous_quantity, new_quantity, reason, user_id, created_at
FROM stock_movements
WHERE product_id = $1
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListStockMovementsByProduct(ctx context.Context, productID int64) ([]StockMovement, error) {
	rows, err := q.db.Query(ctx, listStockMovementsByProduct, productID)
	return collectStockMovements(rows, err)
}

const listStockMovements = `-- name: ListStockMovements :many
SELECT id, product_id, movement_type, quantity, previous_quantity, new_quantity, reason, user_id, created_at
FROM stock_movements
WHERE ($1::timestamptz IS NULL OR created_at >= $1::timestamptz)
  AND ($2::timestamptz IS NULL OR created_at < $2::timestamptz)
ORDER BY created_at DESC, id DESC
`

// ListStockMovementsParams bounds created_at to [From, To); an invalid
// bound is open.
type ListStockMovementsParams struct {
	From pgtype.Timestamptz `json:"from"`
	To   pgtype.Timestamptz `json:"to"`
}

func (q *Queries) ListStockMovements(ctx context.Context, arg ListStockMovementsParams) ([]StockMovement, error) {
	rows, err := q.db.Query(ctx, listStockMovements, arg.From, arg.To)
	return collectStockMovements(rows, err)
}

func collectStockMovements(rows pgx.Rows, err error) ([]StockMovement, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockMovement{}
	for rows.Next() {
		var i StockMovement
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.MovementType,
			&i.Quantity,
			&i.PreviousQuantity,
			&i.NewQuantity,
			&i.Reason,
			&i.UserID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
