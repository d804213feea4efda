package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

const adjustProductStock = `-- name: AdjustProductStock :one
UPDATE products
SET stock_quantity = stock_quantity + $2,
    updated_at = NOW()
WHERE id = $1
  AND stock_quantity + $2 >= 0
RETURNING stock_quantity
`

type AdjustProductStockParams struct {
	ID    int64 `json:"id"`
	Delta int32 `json:"delta"`
}

// Single-statement delta; no row is returned when the product is missing or
// the result would go below zero.
func (q *Queries) AdjustProductStock(ctx context.Context, arg AdjustProductStockParams) (int32, error) {
	row := q.db.QueryRow(ctx, adjustProductStock, arg.ID, arg.Delta)
	var stock_quantity int32
	err := row.Scan(&stock_quantity)
	return stock_quantity, err
}

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (name, price, promo_price, stock_quantity, active)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, price, promo_price, stock_quantity, active, created_at, updated_at
`

type CreateProductParams struct {
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	PromoPrice    decimal.NullDecimal `json:"promo_price"`
	StockQuantity int32               `json:"stock_quantity"`
	Active        bool                `json:"active"`
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Name,
		arg.Price,
		arg.PromoPrice,
		arg.StockQuantity,
		arg.Active,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.PromoPrice,
		&i.StockQuantity,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProduct = `-- name: GetProduct :one
SELECT id, name, price, promo_price, stock_quantity, active, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.PromoPrice,
		&i.StockQuantity,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProductForUpdate = `-- name: GetProductForUpdate :one
SELECT id, name, price, promo_price, stock_quantity, active, created_at, updated_at
FROM products
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetProductForUpdate(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRow(ctx, getProductForUpdate, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.PromoPrice,
		&i.StockQuantity,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateProductPrice = `-- name: UpdateProductPrice :one
UPDATE products
SET price = $2,
    promo_price = $3,
    updated_at = NOW()
WHERE id = $1
RETURNING id, name, price, promo_price, stock_quantity, active, created_at, updated_at
`

type UpdateProductPriceParams struct {
	ID         int64               `json:"id"`
	Price      decimal.Decimal     `json:"price"`
	PromoPrice decimal.NullDecimal `json:"promo_price"`
}

func (q *Queries) UpdateProductPrice(ctx context.Context, arg UpdateProductPriceParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProductPrice, arg.ID, arg.Price, arg.PromoPrice)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.PromoPrice,
		&i.StockQuantity,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
