package service

import (
	"context"
	"fmt"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/events"
	"github.com/loja1/projectohibrido/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

// lockEditableOrder locks the order row and checks that lines may change.
func lockEditableOrder(ctx context.Context, q repository.Querier, op, operation string, orderID int64) (repository.Order, error) {
	o, err := lockOrder(ctx, q, orderID)
	if err != nil {
		return repository.Order{}, err
	}
	if !domain.OrderStatus(o.Status).IsEditable() {
		return repository.Order{}, domain.InvalidTransition(op, o.Status, operation)
	}
	return o, nil
}

func (s *orderService) AddOrderItem(ctx context.Context, orderID, productID int64, quantity int32) (*domain.Order, error) {
	const op = "order.add_item"
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var order *domain.Order
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := lockEditableOrder(ctx, q, op, "add items to", orderID)
		if err != nil {
			return err
		}
		if !o.Active {
			return domain.InvalidTransition(op, o.Status, "add items to an inactive")
		}

		if _, err := addOrderLine(ctx, q, s.Metrics, op, o.ID, productID, quantity); err != nil {
			return err
		}
		order, err = recomputeTotal(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Order item added",
		"order_id", orderID,
		"product_id", productID,
		"quantity", quantity,
	)
	return order, nil
}

func (s *orderService) EditOrderItemQuantity(ctx context.Context, orderID, itemID int64, quantity int32) (*domain.Order, error) {
	const op = "order.edit_item"
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var (
		order *domain.Order
		delta int32
	)
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := lockEditableOrder(ctx, q, op, "edit items of", orderID)
		if err != nil {
			return err
		}

		item, err := findOrderItem(ctx, q, o.ID, itemID)
		if err != nil {
			return err
		}

		delta = quantity - item.Quantity
		switch {
		case delta > 0:
			p, err := lookupProduct(ctx, q, item.ProductID)
			if err != nil {
				return err
			}
			if err := reserveStock(ctx, q, s.Metrics, op, p, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := releaseStock(ctx, q, s.Metrics, op, item.ProductID, -delta); err != nil {
				return err
			}
		}

		if _, err := q.UpdateOrderItemQuantity(ctx, repository.UpdateOrderItemQuantityParams{
			ID:       item.ID,
			Quantity: quantity,
			Subtotal: domain.LineSubtotal(item.UnitPrice, quantity),
		}); err != nil {
			return fmt.Errorf("failed to update order item: %w", err)
		}

		order, err = recomputeTotal(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Order item quantity changed",
		"order_id", orderID,
		"item_id", itemID,
		"quantity", quantity,
		"stock_delta", -delta,
	)
	return order, nil
}

func (s *orderService) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*domain.Order, error) {
	const op = "order.remove_item"

	var order *domain.Order
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := lockEditableOrder(ctx, q, op, "remove items from", orderID)
		if err != nil {
			return err
		}

		item, err := findOrderItem(ctx, q, o.ID, itemID)
		if err != nil {
			return err
		}

		if err := releaseStock(ctx, q, s.Metrics, op, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if err := q.DeleteOrderItem(ctx, item.ID); err != nil {
			return fmt.Errorf("failed to delete order item: %w", err)
		}

		order, err = recomputeTotal(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Order item removed", "order_id", orderID, "item_id", itemID)
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, orderID, userID int64, reason string) (order *domain.Order, err error) {
	ctx, span := startSpan(ctx, "OrderService.CancelOrder",
		attribute.Int64("order_id", orderID),
		attribute.Int64("user_id", userID),
	)
	defer func() { endSpan(span, err) }()

	const op = "order.cancel"

	err = s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := lockOrder(ctx, q, orderID)
		if err != nil {
			return err
		}
		switch domain.OrderStatus(o.Status) {
		case domain.OrderStatusCancelled:
			return ErrOrderAlreadyCancelled
		case domain.OrderStatusFinalized:
			return domain.InvalidTransition(op, o.Status, "cancel")
		}

		items, err := q.ListOrderItems(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("failed to list order items: %w", err)
		}
		for _, item := range items {
			if err := releaseStock(ctx, q, s.Metrics, op, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		now := timestamptz(s.now())
		if _, err := q.CancelOrder(ctx, repository.CancelOrderParams{ID: o.ID, ClosedAt: now}); err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		if _, err := q.CreateOrderCancellation(ctx, repository.CreateOrderCancellationParams{
			OrderID:     o.ID,
			Reason:      reason,
			CancelledBy: userID,
			CancelledAt: now,
		}); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrOrderAlreadyCancelled
			}
			return fmt.Errorf("failed to record cancellation: %w", err)
		}

		order, err = reloadOrder(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.OrderCancelled()
	s.Logger.InfoContext(ctx, "Order cancelled",
		"order_id", order.ID,
		"reference", order.Reference,
		"cancelled_by", userID,
		"lines_restored", len(order.Items),
	)
	s.publish(ctx, events.OrderCancelled, order.ID, orderEvent(order, reason))
	return order, nil
}
