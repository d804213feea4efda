package memstore

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreateProduct(ctx, repository.CreateProductParams{Name: "Agua", Price: decimal.NewFromInt(100), StockQuantity: 5, Active: true})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.ExecTx(ctx, func(q repository.Querier) error {
		if _, err := q.AdjustProductStock(ctx, repository.AdjustProductStockParams{ID: p.ID, Delta: -3}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(5), got.StockQuantity)
}

func TestExecTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreateProduct(ctx, repository.CreateProductParams{Name: "Pao", Price: decimal.NewFromInt(50), StockQuantity: 5, Active: true})
	require.NoError(t, err)

	err = s.ExecTx(ctx, func(q repository.Querier) error {
		_, err := q.AdjustProductStock(ctx, repository.AdjustProductStockParams{ID: p.ID, Delta: -2})
		return err
	})
	require.NoError(t, err)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(3), got.StockQuantity)
}

func TestAdjustProductStock_NeverNegative(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreateProduct(ctx, repository.CreateProductParams{Name: "Leite", Price: decimal.NewFromInt(10), StockQuantity: 2, Active: true})
	require.NoError(t, err)

	_, err = s.AdjustProductStock(ctx, repository.AdjustProductStockParams{ID: p.ID, Delta: -3})
	assert.True(t, repository.IsNotFound(err))

	_, err = s.AdjustProductStock(ctx, repository.AdjustProductStockParams{ID: 999, Delta: 1})
	assert.True(t, repository.IsNotFound(err))
}

func TestCreateCart_OneActivePerOwner(t *testing.T) {
	ctx := context.Background()
	s := New()

	user := pgtype.Int8{Int64: 7, Valid: true}
	_, err := s.CreateCart(ctx, repository.CreateCartParams{UserID: user})
	require.NoError(t, err)

	_, err = s.CreateCart(ctx, repository.CreateCartParams{UserID: user})
	assert.True(t, repository.IsUniqueViolation(err))

	session := pgtype.Text{String: "abc", Valid: true}
	_, err = s.CreateCart(ctx, repository.CreateCartParams{SessionID: session})
	require.NoError(t, err)

	_, err = s.CreateCart(ctx, repository.CreateCartParams{SessionID: session})
	assert.True(t, repository.IsUniqueViolation(err))
}

func TestDeleteCart_CascadesItems(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreateProduct(ctx, repository.CreateProductParams{Name: "Arroz", Price: decimal.NewFromInt(10), StockQuantity: 10, Active: true})
	require.NoError(t, err)
	c, err := s.CreateCart(ctx, repository.CreateCartParams{SessionID: pgtype.Text{String: "s1", Valid: true}})
	require.NoError(t, err)
	_, err = s.UpsertCartItem(ctx, repository.UpsertCartItemParams{CartID: c.ID, ProductID: p.ID, Quantity: 2, UnitPrice: p.Price, Subtotal: decimal.NewFromInt(20)})
	require.NoError(t, err)

	n, err := s.DeleteCart(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := s.CountCartItems(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOrders_OneActivePerUser(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.CreateOrder(ctx, repository.CreateOrderParams{Reference: "PED-1", UserID: 3, Status: "por finalizar", Active: true, Origin: 2})
	require.NoError(t, err)

	_, err = s.CreateOrder(ctx, repository.CreateOrderParams{Reference: "PED-2", UserID: 3, Status: "por finalizar", Active: true, Origin: 2})
	assert.True(t, repository.IsUniqueViolation(err))

	_, err = s.CreateOrder(ctx, repository.CreateOrderParams{Reference: "PED-1", UserID: 4, Status: "pendente", Origin: 1})
	assert.True(t, repository.IsUniqueViolation(err))

	second, err := s.CreateOrder(ctx, repository.CreateOrderParams{Reference: "PED-3", UserID: 3, Status: "pendente", Origin: 1})
	require.NoError(t, err)

	err = s.SetOrderActive(ctx, repository.SetOrderActiveParams{ID: second.ID, Active: true})
	assert.True(t, repository.IsUniqueViolation(err))

	require.NoError(t, s.DeactivateUserOrders(ctx, 3))
	require.NoError(t, s.SetOrderActive(ctx, repository.SetOrderActiveParams{ID: second.ID, Active: true}))

	active, err := s.GetActiveOrderByUser(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.NotEqual(t, first.ID, active.ID)
}

func TestCreateOrderCancellation_Unique(t *testing.T) {
	ctx := context.Background()
	s := New()

	o, err := s.CreateOrder(ctx, repository.CreateOrderParams{Reference: "PED-9", UserID: 1, Status: "pendente", Origin: 1})
	require.NoError(t, err)

	_, err = s.CreateOrderCancellation(ctx, repository.CreateOrderCancellationParams{OrderID: o.ID, CancelledBy: 1})
	require.NoError(t, err)

	_, err = s.CreateOrderCancellation(ctx, repository.CreateOrderCancellationParams{OrderID: o.ID, CancelledBy: 1})
	assert.True(t, repository.IsUniqueViolation(err))
}

func TestAdjustProductStock_IntegerOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreateProduct(ctx, repository.CreateProductParams{Name: "Sal", Price: decimal.NewFromInt(5), StockQuantity: math.MaxInt32 - 1, Active: true})
	require.NoError(t, err)

	_, err = s.AdjustProductStock(ctx, repository.AdjustProductStockParams{ID: p.ID, Delta: 2})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "22003", pgErr.Code)
	assert.False(t, repository.IsNotFound(err))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32-1), got.StockQuantity)
}

func TestLineQuantity_MustBePositive(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreateProduct(ctx, repository.CreateProductParams{Name: "Oleo", Price: decimal.NewFromInt(10), StockQuantity: 10, Active: true})
	require.NoError(t, err)
	c, err := s.CreateCart(ctx, repository.CreateCartParams{SessionID: pgtype.Text{String: "s1", Valid: true}})
	require.NoError(t, err)
	o, err := s.CreateOrder(ctx, repository.CreateOrderParams{Reference: "PED-9", UserID: 1, Status: "pendente", Origin: 1})
	require.NoError(t, err)

	tests := []struct {
		name       string
		constraint string
		run        func() error
	}{
		{"negative cart line", "cart_items_quantity_check", func() error {
			_, err := s.UpsertCartItem(ctx, repository.UpsertCartItemParams{CartID: c.ID, ProductID: p.ID, Quantity: -2, UnitPrice: p.Price})
			return err
		}},
		{"zero order line", "order_items_quantity_check", func() error {
			_, err := s.CreateOrderItem(ctx, repository.CreateOrderItemParams{OrderID: o.ID, ProductID: p.ID, Quantity: 0, UnitPrice: p.Price})
			return err
		}},
		{"negative stock", "products_stock_non_negative", func() error {
			_, err := s.CreateProduct(ctx, repository.CreateProductParams{Name: "Gas", Price: decimal.NewFromInt(1), StockQuantity: -1})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pgErr *pgconn.PgError
			require.ErrorAs(t, tt.run(), &pgErr)
			assert.Equal(t, "23514", pgErr.Code)
			assert.Equal(t, tt.constraint, pgErr.ConstraintName)
		})
	}

	n, err := s.CountCartItems(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
