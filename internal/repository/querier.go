package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	// Products
	AdjustProductStock(ctx context.Context, arg AdjustProductStockParams) (int32, error)
	CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetProductForUpdate(ctx context.Context, id int64) (Product, error)
	UpdateProductPrice(ctx context.Context, arg UpdateProductPriceParams) (Product, error)

	// Carts
	CountCartItems(ctx context.Context, cartID int64) (int64, error)
	CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error)
	DeleteAbandonedGuestCarts(ctx context.Context, updatedBefore pgtype.Timestamptz) (int64, error)
	DeleteCart(ctx context.Context, id int64) (int64, error)
	DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error)
	GetActiveCartBySession(ctx context.Context, sessionID string) (Cart, error)
	GetActiveCartByUser(ctx context.Context, userID int64) (Cart, error)
	GetCart(ctx context.Context, id int64) (Cart, error)
	GetCartForUpdate(ctx context.Context, id int64) (Cart, error)
	GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error)
	ListCartItems(ctx context.Context, cartID int64) ([]CartItem, error)
	ReassignCartToUser(ctx context.Context, arg ReassignCartToUserParams) (Cart, error)
	TouchCart(ctx context.Context, id int64) error
	UpdateCartStatus(ctx context.Context, arg UpdateCartStatusParams) error
	UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error)

	// Orders
	CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error)
	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	CreateOrderCancellation(ctx context.Context, arg CreateOrderCancellationParams) (OrderCancellation, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error)
	DeactivateUserOrders(ctx context.Context, userID int64) error
	DeleteOrderItem(ctx context.Context, id int64) error
	FinalizeOrder(ctx context.Context, arg FinalizeOrderParams) (Order, error)
	GetActiveOrderByUser(ctx context.Context, userID int64) (Order, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
	GetOrderByReference(ctx context.Context, reference string) (Order, error)
	GetOrderCancellation(ctx context.Context, orderID int64) (OrderCancellation, error)
	GetOrderForUpdate(ctx context.Context, id int64) (Order, error)
	GetOrderItem(ctx context.Context, id int64) (OrderItem, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]Order, error)
	ListUserOrdersByStatus(ctx context.Context, arg ListUserOrdersByStatusParams) ([]Order, error)
	SetOrderActive(ctx context.Context, arg SetOrderActiveParams) error
	UpdateOrderItemQuantity(ctx context.Context, arg UpdateOrderItemQuantityParams) (OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) error
	UpdateOrderTotal(ctx context.Context, arg UpdateOrderTotalParams) error

	// Reference data
	GetDeliveryType(ctx context.Context, id int64) (DeliveryType, error)
	GetPaymentType(ctx context.Context, id int64) (PaymentType, error)
	ListPaymentTypes(ctx context.Context) ([]PaymentType, error)

	// Stock movements
	CreateStockMovement(ctx context.Context, arg CreateStockMovementParams) (StockMovement, error)
	ListStockMovements(ctx context.Context, arg ListStockMovementsParams) ([]StockMovement, error)
	ListStockMovementsByProduct(ctx context.Context, productID int64) ([]StockMovement, error)
}

var _ Querier = (*Queries)(nil)
