package memstore

import (
	"context"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/loja1/projectohibrido/internal/repository"
)

func (q *queries) AdjustProductStock(ctx context.Context, arg repository.AdjustProductStockParams) (int32, error) {
	defer q.enter()()
	p, ok := q.st.products[arg.ID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	next := int64(p.StockQuantity) + int64(arg.Delta)
	if next > math.MaxInt32 {
		return 0, integerOutOfRange()
	}
	if next < 0 {
		return 0, pgx.ErrNoRows
	}
	p.StockQuantity = int32(next)
	p.UpdatedAt = q.timestamp()
	q.st.products[p.ID] = p
	return p.StockQuantity, nil
}

func (q *queries) CreateProduct(ctx context.Context, arg repository.CreateProductParams) (repository.Product, error) {
	defer q.enter()()
	if arg.StockQuantity < 0 {
		return repository.Product{}, checkViolation("products_stock_non_negative")
	}
	now := q.timestamp()
	p := repository.Product{
		ID:            q.st.nextID(),
		Name:          arg.Name,
		Price:         arg.Price,
		PromoPrice:    arg.PromoPrice,
		StockQuantity: arg.StockQuantity,
		Active:        arg.Active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	q.st.products[p.ID] = p
	return p, nil
}

func (q *queries) GetProduct(ctx context.Context, id int64) (repository.Product, error) {
	defer q.enter()()
	p, ok := q.st.products[id]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (q *queries) GetProductForUpdate(ctx context.Context, id int64) (repository.Product, error) {
	return q.GetProduct(ctx, id)
}

func (q *queries) UpdateProductPrice(ctx context.Context, arg repository.UpdateProductPriceParams) (repository.Product, error) {
	defer q.enter()()
	p, ok := q.st.products[arg.ID]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	p.Price = arg.Price
	p.PromoPrice = arg.PromoPrice
	p.UpdatedAt = q.timestamp()
	q.st.products[p.ID] = p
	return p, nil
}
