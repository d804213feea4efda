package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const countCartItems = `-- name: CountCartItems :one
SELECT COUNT(*) FROM cart_items WHERE cart_id = $1
`

func (q *Queries) CountCartItems(ctx context.Context, cartID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countCartItems, cartID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createCart = `-- name: CreateCart :one
INSERT INTO carts (user_id, session_id, status)
VALUES ($1, $2, 'active')
RETURNING id, user_id, session_id, status, created_at, updated_at
`

type CreateCartParams struct {
	UserID    pgtype.Int8 `json:"user_id"`
	SessionID pgtype.Text `json:"session_id"`
}

func (q *Queries) CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error) {
	row := q.db.QueryRow(ctx, createCart, arg.UserID, arg.SessionID)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteAbandonedGuestCarts = `-- name: DeleteAbandonedGuestCarts :execrows
DELETE FROM carts
WHERE status = 'active'
  AND user_id IS NULL
  AND updated_at < $1
`

func (q *Queries) DeleteAbandonedGuestCarts(ctx context.Context, updatedBefore pgtype.Timestamptz) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAbandonedGuestCarts, updatedBefore)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCart = `-- name: DeleteCart :execrows
DELETE FROM carts WHERE id = $1
`

func (q *Queries) DeleteCart(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCart, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItem = `-- name: DeleteCartItem :execrows
DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2
`

type DeleteCartItemParams struct {
	CartID    int64 `json:"cart_id"`
	ProductID int64 `json:"product_id"`
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, arg.CartID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getActiveCartBySession = `-- name: GetActiveCartBySession :one
SELECT id, user_id, session_id, status, created_at, updated_at
FROM carts
WHERE session_id = $1 AND status = 'active'
`

func (q *Queries) GetActiveCartBySession(ctx context.Context, sessionID string) (Cart, error) {
	row := q.db.QueryRow(ctx, getActiveCartBySession, sessionID)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getActiveCartByUser = `-- name: GetActiveCartByUser :one
SELECT id, user_id, session_id, status, created_at, updated_at
FROM carts
WHERE user_id = $1 AND status = 'active'
`

func (q *Queries) GetActiveCartByUser(ctx context.Context, userID int64) (Cart, error) {
	row := q.db.QueryRow(ctx, getActiveCartByUser, userID)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getCart = `-- name: GetCart :one
SELECT id, user_id, session_id, status, created_at, updated_at
FROM carts
WHERE id = $1
`

func (q *Queries) GetCart(ctx context.Context, id int64) (Cart, error) {
	row := q.db.QueryRow(ctx, getCart, id)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getCartForUpdate = `-- name: GetCartForUpdate :one
SELECT id, user_id, session_id, status, created_at, updated_at
FROM carts
WHERE id = $1
FOR UPDATE
`

// Exclusive row lock held until the surrounding transaction ends.
func (q *Queries) GetCartForUpdate(ctx context.Context, id int64) (Cart, error) {
	row := q.db.QueryRow(ctx, getCartForUpdate, id)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getCartItem = `-- name: GetCartItem :one
SELECT id, cart_id, product_id, quantity, unit_price, subtotal, created_at, updated_at
FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

type GetCartItemParams struct {
	CartID    int64 `json:"cart_id"`
	ProductID int64 `json:"product_id"`
}

func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItem, arg.CartID, arg.ProductID)
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Subtotal,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listCartItems = `-- name: ListCartItems :many
SELECT id, cart_id, product_id, quantity, unit_price, subtotal, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY id
`

func (q *Queries) ListCartItems(ctx context.Context, cartID int64) ([]CartItem, error) {
	rows, err := q.db.Query(ctx, listCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CartItem{}
	for rows.Next() {
		var i CartItem
		if err := rows.Scan(
			&i.ID,
			&i.CartID,
			&i.ProductID,
			&i.Quantity,
			&i.UnitPrice,
			&i.Subtotal,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const reassignCartToUser = `-- name: ReassignCartToUser :one
UPDATE carts
SET user_id = $2,
    session_id = NULL,
    updated_at = NOW()
WHERE id = $1
RETURNING id, user_id, session_id, status, created_at, updated_at
`

type ReassignCartToUserParams struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
}

func (q *Queries) ReassignCartToUser(ctx context.Context, arg ReassignCartToUserParams) (Cart, error) {
	row := q.db.QueryRow(ctx, reassignCartToUser, arg.ID, arg.UserID)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const touchCart = `-- name: TouchCart :exec
UPDATE carts SET updated_at = NOW() WHERE id = $1
`

func (q *Queries) TouchCart(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, touchCart, id)
	return err
}

const updateCartStatus = `-- name: UpdateCartStatus :exec
UPDATE carts
SET status = $2,
    updated_at = NOW()
WHERE id = $1
`

type UpdateCartStatusParams struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func (q *Queries) UpdateCartStatus(ctx context.Context, arg UpdateCartStatusParams) error {
	_, err := q.db.Exec(ctx, updateCartStatus, arg.ID, arg.Status)
	return err
}

const upsertCartItem = `-- name: UpsertCartItem :one
INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = EXCLUDED.quantity,
    unit_price = EXCLUDED.unit_price,
    subtotal = EXCLUDED.subtotal,
    updated_at = NOW()
RETURNING id, cart_id, product_id, quantity, unit_price, subtotal, created_at, updated_at
`

type UpsertCartItemParams struct {
	CartID    int64           `json:"cart_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Writes the final line quantity; callers compute increments.
func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, upsertCartItem,
		arg.CartID,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
	)
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Subtotal,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
