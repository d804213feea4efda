package service

import (
	"context"
	"fmt"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/events"
	"github.com/loja1/projectohibrido/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

// CheckoutService converts carts into orders.
type CheckoutService interface {
	// ConvertCartToOrder turns a user's active cart into a "pendente" order
	// in one transaction: the cart row is locked, stock is reserved for
	// every line, the order is built at the prices captured on the cart and
	// the cart is marked converted. Converting the same cart twice yields
	// exactly one order; the loser gets ErrCartAlreadyConverted.
	ConvertCartToOrder(ctx context.Context, cartID int64, details CheckoutParams) (*domain.Order, error)
}

// CheckoutParams are the optional order details supplied at checkout.
type CheckoutParams struct {
	PaymentTypeID  *int64
	DeliveryTypeID *int64
	Customer       domain.Customer
}

type checkoutService struct {
	Deps
}

// NewCheckoutService creates a new CheckoutService instance
func NewCheckoutService(deps Deps) CheckoutService {
	return &checkoutService{Deps: deps.withDefaults()}
}

func (s *checkoutService) ConvertCartToOrder(ctx context.Context, cartID int64, details CheckoutParams) (order *domain.Order, err error) {
	ctx, span := startSpan(ctx, "Checkout.ConvertCartToOrder", attribute.Int64("cart_id", cartID))
	defer func() { endSpan(span, err) }()

	const op = "checkout.convert"

	var userID int64
	err = s.Store.ExecTx(ctx, func(q repository.Querier) error {
		// The lock serializes conversions of this cart. The status must be
		// read again under it; any earlier read is stale.
		c, err := lockActiveCart(ctx, q, cartID)
		if err != nil {
			return err
		}
		if !c.UserID.Valid {
			return ErrGuestCheckout
		}
		userID = c.UserID.Int64

		items, err := q.ListCartItems(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("failed to list cart items: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		if err := validateReferenceData(ctx, q, details); err != nil {
			return err
		}

		for _, item := range items {
			p, err := lookupProduct(ctx, q, item.ProductID)
			if err != nil {
				return err
			}
			if err := reserveStock(ctx, q, s.Metrics, op, p, item.Quantity); err != nil {
				return err
			}
		}

		o, err := createOrderShell(ctx, q, orderShell{
			UserID:         userID,
			Status:         domain.OrderStatusPending,
			Active:         false,
			Origin:         domain.OrderOriginOnline,
			PaymentTypeID:  details.PaymentTypeID,
			DeliveryTypeID: details.DeliveryTypeID,
			Customer:       details.Customer,
		})
		if err != nil {
			return err
		}

		// Stock was reserved above; lines keep the cart's captured prices.
		for _, item := range items {
			if _, err := insertOrderLine(ctx, q, o.ID, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}

		order, err = recomputeTotal(ctx, q, o.ID)
		if err != nil {
			return err
		}

		if err := q.UpdateCartStatus(ctx, repository.UpdateCartStatusParams{
			ID:     c.ID,
			Status: string(domain.CartStatusConverted),
		}); err != nil {
			return fmt.Errorf("failed to mark cart converted: %w", err)
		}
		return nil
	})
	if err != nil {
		s.Metrics.ConversionFailed(domain.ErrorCode(err))
		s.Logger.WarnContext(ctx, "Cart conversion failed",
			"cart_id", cartID,
			"code", domain.ErrorCode(err),
			"error", err,
		)
		return nil, err
	}

	s.Metrics.CartConverted()
	s.Metrics.OrderCreated(originLabel(order.Origin), len(order.Items))
	s.Logger.InfoContext(ctx, "Cart converted to order",
		"cart_id", cartID,
		"order_id", order.ID,
		"reference", order.Reference,
		"user_id", userID,
		"total", order.Total.String(),
	)
	s.publish(ctx, events.OrderCreated, order.ID, orderEvent(order, ""))
	s.publish(ctx, events.CartConverted, cartID, events.CartConvertedEvent{
		CartID:  cartID,
		OrderID: order.ID,
		UserID:  userID,
	})
	return order, nil
}

func validateReferenceData(ctx context.Context, q repository.Querier, details CheckoutParams) error {
	if details.PaymentTypeID != nil {
		if _, err := q.GetPaymentType(ctx, *details.PaymentTypeID); err != nil {
			if repository.IsNotFound(err) {
				return ErrPaymentTypeNotFound
			}
			return fmt.Errorf("failed to get payment type: %w", err)
		}
	}
	if details.DeliveryTypeID != nil {
		if _, err := lookupDeliveryType(ctx, q, *details.DeliveryTypeID); err != nil {
			return err
		}
	}
	return nil
}
