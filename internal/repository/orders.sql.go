package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, reference, user_id, status, active, origin, total,
    payment_type_id, delivery_type_id, first_name, last_name, phone, email,
    address_json, neighbourhood, landmark, paid_amount, change_amount,
    placed_at, finalized_at, closed_at`

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.UserID,
		&i.Status,
		&i.Active,
		&i.Origin,
		&i.Total,
		&i.PaymentTypeID,
		&i.DeliveryTypeID,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.Email,
		&i.AddressJson,
		&i.Neighbourhood,
		&i.Landmark,
		&i.PaidAmount,
		&i.ChangeAmount,
		&i.PlacedAt,
		&i.FinalizedAt,
		&i.ClosedAt,
	)
	return i, err
}

func collectOrders(rows pgx.Rows, err error) ([]Order, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const cancelOrder = `-- name: CancelOrder :one
UPDATE orders
SET status = 'cancelado',
    active = FALSE,
    closed_at = $2
WHERE id = $1
RETURNING ` + orderColumns

type CancelOrderParams struct {
	ID       int64              `json:"id"`
	ClosedAt pgtype.Timestamptz `json:"closed_at"`
}

func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.ClosedAt))
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    reference, user_id, status, active, origin, total,
    payment_type_id, delivery_type_id, first_name, last_name, phone, email,
    address_json, neighbourhood, landmark
) VALUES (
    $1, $2, $3, $4, $5, 0,
    $6, $7, $8, $9, $10, $11,
    $12, $13, $14
)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	Reference      string      `json:"reference"`
	UserID         int64       `json:"user_id"`
	Status         string      `json:"status"`
	Active         bool        `json:"active"`
	Origin         int32       `json:"origin"`
	PaymentTypeID  pgtype.Int8 `json:"payment_type_id"`
	DeliveryTypeID pgtype.Int8 `json:"delivery_type_id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Phone          string      `json:"phone"`
	Email          string      `json:"email"`
	AddressJson    string      `json:"address_json"`
	Neighbourhood  string      `json:"neighbourhood"`
	Landmark       string      `json:"landmark"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.Reference,
		arg.UserID,
		arg.Status,
		arg.Active,
		arg.Origin,
		arg.PaymentTypeID,
		arg.DeliveryTypeID,
		arg.FirstName,
		arg.LastName,
		arg.Phone,
		arg.Email,
		arg.AddressJson,
		arg.Neighbourhood,
		arg.Landmark,
	))
}

const deactivateUserOrders = `-- name: DeactivateUserOrders :exec
UPDATE orders SET active = FALSE WHERE user_id = $1 AND active
`

func (q *Queries) DeactivateUserOrders(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx, deactivateUserOrders, userID)
	return err
}

const finalizeOrder = `-- name: FinalizeOrder :one
UPDATE orders
SET status = 'finalizado',
    active = FALSE,
    total = $2,
    payment_type_id = $3,
    delivery_type_id = $4,
    paid_amount = $5,
    change_amount = $6,
    first_name = $7,
    last_name = $8,
    phone = $9,
    address_json = $10,
    neighbourhood = $11,
    landmark = $12,
    finalized_at = $13,
    closed_at = $13
WHERE id = $1
RETURNING ` + orderColumns

type FinalizeOrderParams struct {
	ID             int64              `json:"id"`
	Total          decimal.Decimal    `json:"total"`
	PaymentTypeID  pgtype.Int8        `json:"payment_type_id"`
	DeliveryTypeID pgtype.Int8        `json:"delivery_type_id"`
	PaidAmount     decimal.Decimal    `json:"paid_amount"`
	ChangeAmount   decimal.Decimal    `json:"change_amount"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	Phone          string             `json:"phone"`
	AddressJson    string             `json:"address_json"`
	Neighbourhood  string             `json:"neighbourhood"`
	Landmark       string             `json:"landmark"`
	FinalizedAt    pgtype.Timestamptz `json:"finalized_at"`
}

func (q *Queries) FinalizeOrder(ctx context.Context, arg FinalizeOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, finalizeOrder,
		arg.ID,
		arg.Total,
		arg.PaymentTypeID,
		arg.DeliveryTypeID,
		arg.PaidAmount,
		arg.ChangeAmount,
		arg.FirstName,
		arg.LastName,
		arg.Phone,
		arg.AddressJson,
		arg.Neighbourhood,
		arg.Landmark,
		arg.FinalizedAt,
	))
}

const getActiveOrderByUser = `-- name: GetActiveOrderByUser :one
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1 AND active
`

func (q *Queries) GetActiveOrderByUser(ctx context.Context, userID int64) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getActiveOrderByUser, userID))
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id int64) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderByReference = `-- name: GetOrderByReference :one
SELECT ` + orderColumns + `
FROM orders
WHERE reference = $1
`

func (q *Queries) GetOrderByReference(ctx context.Context, reference string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByReference, reference))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id int64) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listOrdersByStatus = `-- name: ListOrdersByStatus :many
SELECT ` + orderColumns + `
FROM orders
WHERE status = $1
ORDER BY placed_at DESC, id DESC
`

func (q *Queries) ListOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByStatus, status)
	return collectOrders(rows, err)
}

const listOrdersByUser = `-- name: ListOrdersByUser :many
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY placed_at DESC, id DESC
`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, userID)
	return collectOrders(rows, err)
}

const listUserOrdersByStatus = `-- name: ListUserOrdersByStatus :many
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
  AND status = $2
  AND ($3::int IS NULL OR origin = $3::int)
ORDER BY placed_at DESC, id DESC
`

type ListUserOrdersByStatusParams struct {
	UserID int64       `json:"user_id"`
	Status string      `json:"status"`
	Origin pgtype.Int4 `json:"origin"`
}

func (q *Queries) ListUserOrdersByStatus(ctx context.Context, arg ListUserOrdersByStatusParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listUserOrdersByStatus, arg.UserID, arg.Status, arg.Origin)
	return collectOrders(rows, err)
}

const setOrderActive = `-- name: SetOrderActive :exec
UPDATE orders SET active = $2 WHERE id = $1
`

type SetOrderActiveParams struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}

func (q *Queries) SetOrderActive(ctx context.Context, arg SetOrderActiveParams) error {
	_, err := q.db.Exec(ctx, setOrderActive, arg.ID, arg.Active)
	return err
}

const updateOrderStatus = `-- name: UpdateOrderStatus :exec
UPDATE orders SET status = $2 WHERE id = $1
`

type UpdateOrderStatusParams struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) error {
	_, err := q.db.Exec(ctx, updateOrderStatus, arg.ID, arg.Status)
	return err
}

const updateOrderTotal = `-- name: UpdateOrderTotal :exec
UPDATE orders SET total = $2 WHERE id = $1
`

type UpdateOrderTotalParams struct {
	ID    int64           `json:"id"`
	Total decimal.Decimal `json:"total"`
}

func (q *Queries) UpdateOrderTotal(ctx context.Context, arg UpdateOrderTotalParams) error {
	_, err := q.db.Exec(ctx, updateOrderTotal, arg.ID, arg.Total)
	return err
}

// Order items

const orderItemColumns = `id, order_id, product_id, quantity, unit_price, subtotal`

func scanOrderItem(row pgx.Row) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Subtotal,
	)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
	))
}

const deleteOrderItem = `-- name: DeleteOrderItem :exec
DELETE FROM order_items WHERE id = $1
`

func (q *Queries) DeleteOrderItem(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteOrderItem, id)
	return err
}

const getOrderItem = `-- name: GetOrderItem :one
SELECT ` + orderItemColumns + `
FROM order_items
WHERE id = $1
`

func (q *Queries) GetOrderItem(ctx context.Context, id int64) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, getOrderItem, id))
}

const listOrderItems = `-- name: ListOrderItems :many
SELECT ` + orderItemColumns + `
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderItemQuantity = `-- name: UpdateOrderItemQuantity :one
UPDATE order_items
SET quantity = $2,
    subtotal = $3
WHERE id = $1
RETURNING ` + orderItemColumns

type UpdateOrderItemQuantityParams struct {
	ID       int64           `json:"id"`
	Quantity int32           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (q *Queries) UpdateOrderItemQuantity(ctx context.Context, arg UpdateOrderItemQuantityParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, updateOrderItemQuantity, arg.ID, arg.Quantity, arg.Subtotal))
}

// Cancellations

const createOrderCancellation = `-- name: CreateOrderCancellation :one
INSERT INTO order_cancellations (order_id, reason, cancelled_by, cancelled_at)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, reason, cancelled_by, cancelled_at
`

type CreateOrderCancellationParams struct {
	OrderID     int64              `json:"order_id"`
	Reason      string             `json:"reason"`
	CancelledBy int64              `json:"cancelled_by"`
	CancelledAt pgtype.Timestamptz `json:"cancelled_at"`
}

func (q *Queries) CreateOrderCancellation(ctx context.Context, arg CreateOrderCancellationParams) (OrderCancellation, error) {
	row := q.db.QueryRow(ctx, createOrderCancellation,
		arg.OrderID,
		arg.Reason,
		arg.CancelledBy,
		arg.CancelledAt,
	)
	var i OrderCancellation
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Reason,
		&i.CancelledBy,
		&i.CancelledAt,
	)
	return i, err
}

const getOrderCancellation = `-- name: GetOrderCancellation :one
SELECT id, order_id, reason, cancelled_by, cancelled_at
FROM order_cancellations
WHERE order_id = $1
`

func (q *Queries) GetOrderCancellation(ctx context.Context, orderID int64) (OrderCancellation, error) {
	row := q.db.QueryRow(ctx, getOrderCancellation, orderID)
	var i OrderCancellation
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Reason,
		&i.CancelledBy,
		&i.CancelledAt,
	)
	return i, err
}
