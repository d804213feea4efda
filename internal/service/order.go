package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/events"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/loja1/projectohibrido/internal/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// OrderService provides business logic for orders: direct creation, reads,
// activation, the status machine and line edits.
//
// Every stock change an order makes goes through the stock ledger inside the
// same transaction as the order write.
type OrderService interface {
	// CreateOrder creates an active "por finalizar" order for a user,
	// deactivating any previous active order, and reserves stock for every
	// line. Any failing line rolls the whole order back.
	CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, error)

	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)

	// ListUserOrdersByStatus lists userID's orders in status. A zero origin
	// matches both channels.
	ListUserOrdersByStatus(ctx context.Context, userID int64, status domain.OrderStatus, origin domain.OrderOrigin) ([]*domain.Order, error)
	GetActiveOrder(ctx context.Context, userID int64) (*domain.Order, error)

	// ActivateOrder makes orderID the user's only active order.
	ActivateOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	DeactivateOrder(ctx context.Context, orderID int64) (*domain.Order, error)

	// StartPreparation moves a "por finalizar" or "pendente" order to
	// "em preparacao".
	StartPreparation(ctx context.Context, orderID int64) (*domain.Order, error)

	// FinalizeOrder records payment and delivery and closes the order. A
	// cash payment must exceed the final total, home delivery surcharge
	// included.
	FinalizeOrder(ctx context.Context, orderID int64, params FinalizeParams) (*domain.Order, error)

	AddOrderItem(ctx context.Context, orderID, productID int64, quantity int32) (*domain.Order, error)
	EditOrderItemQuantity(ctx context.Context, orderID, itemID int64, quantity int32) (*domain.Order, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*domain.Order, error)

	// CancelOrder returns every line to stock, closes the order and records
	// who cancelled it and why, all in one transaction.
	CancelOrder(ctx context.Context, orderID, userID int64, reason string) (*domain.Order, error)

	GetDeliveryType(ctx context.Context, id int64) (*domain.DeliveryType, error)
	ListPaymentTypes(ctx context.Context) ([]domain.PaymentType, error)
}

// OrderLine is a requested product and quantity.
type OrderLine struct {
	ProductID int64
	Quantity  int32
}

// CreateOrderParams are the inputs of a direct order creation.
type CreateOrderParams struct {
	UserID int64

	// Origin defaults to the physical store.
	Origin         domain.OrderOrigin
	Items          []OrderLine
	PaymentTypeID  *int64
	DeliveryTypeID *int64
	Customer       domain.Customer
}

// FinalizeParams are the payment and delivery details recorded when an
// order is closed.
type FinalizeParams struct {
	PaymentTypeID int64

	// PaidAmount is the cash handed over; only used for cash payments.
	PaidAmount decimal.Decimal

	// DeliveryTypeID defaults to counter pickup for store orders.
	DeliveryTypeID *int64
	Customer       domain.Customer
}

type orderService struct {
	Deps
	now func() time.Time
}

// NewOrderService creates a new OrderService instance
func NewOrderService(deps Deps) OrderService {
	return &orderService{
		Deps: deps.withDefaults(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *orderService) CreateOrder(ctx context.Context, params CreateOrderParams) (order *domain.Order, err error) {
	ctx, span := startSpan(ctx, "OrderService.CreateOrder",
		attribute.Int64("user_id", params.UserID),
		attribute.Int("lines", len(params.Items)),
	)
	defer func() { endSpan(span, err) }()

	origin := params.Origin
	if origin == 0 {
		origin = domain.OrderOriginStore
	}
	if origin != domain.OrderOriginOnline && origin != domain.OrderOriginStore {
		return nil, ErrInvalidOrigin
	}
	for _, line := range params.Items {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	err = s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := createOrderShell(ctx, q, orderShell{
			UserID:         params.UserID,
			Status:         domain.OrderStatusAwaitingFinalization,
			Active:         true,
			Origin:         origin,
			PaymentTypeID:  params.PaymentTypeID,
			DeliveryTypeID: params.DeliveryTypeID,
			Customer:       params.Customer,
		})
		if err != nil {
			return err
		}

		for _, line := range params.Items {
			if _, err := addOrderLine(ctx, q, s.Metrics, "order.create", o.ID, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		order, err = recomputeTotal(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.OrderCreated(originLabel(order.Origin), len(order.Items))
	s.Logger.InfoContext(ctx, "Order created",
		"order_id", order.ID,
		"reference", order.Reference,
		"user_id", order.UserID,
		"total", order.Total.String(),
	)
	s.publish(ctx, events.OrderCreated, order.ID, orderEvent(order, ""))
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	o, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return loadOrder(ctx, s.Store, o)
}

func (s *orderService) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	o, err := s.Store.GetOrderByReference(ctx, reference)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by reference: %w", err)
	}
	return loadOrder(ctx, s.Store, o)
}

func (s *orderService) ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	rows, err := s.Store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return loadOrders(ctx, s.Store, rows)
}

func (s *orderService) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("order.list", "status", "unknown order status")
	}
	rows, err := s.Store.ListOrdersByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return loadOrders(ctx, s.Store, rows)
}

func (s *orderService) ListUserOrdersByStatus(ctx context.Context, userID int64, status domain.OrderStatus, origin domain.OrderOrigin) ([]*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("order.list", "status", "unknown order status")
	}
	params := repository.ListUserOrdersByStatusParams{UserID: userID, Status: string(status)}
	switch origin {
	case 0:
	case domain.OrderOriginOnline, domain.OrderOriginStore:
		params.Origin = pgtype.Int4{Int32: int32(origin), Valid: true}
	default:
		return nil, ErrInvalidOrigin
	}

	rows, err := s.Store.ListUserOrdersByStatus(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return loadOrders(ctx, s.Store, rows)
}

func (s *orderService) GetActiveOrder(ctx context.Context, userID int64) (*domain.Order, error) {
	o, err := s.Store.GetActiveOrderByUser(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoActiveOrder
		}
		return nil, fmt.Errorf("failed to get active order: %w", err)
	}
	return loadOrder(ctx, s.Store, o)
}

func (s *orderService) ActivateOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := lockOrder(ctx, q, orderID)
		if err != nil {
			return err
		}
		if domain.OrderStatus(o.Status).IsTerminal() {
			return domain.InvalidTransition("order.activate", o.Status, "activate")
		}

		if err := q.DeactivateUserOrders(ctx, o.UserID); err != nil {
			return fmt.Errorf("failed to deactivate user orders: %w", err)
		}
		if err := q.SetOrderActive(ctx, repository.SetOrderActiveParams{ID: o.ID, Active: true}); err != nil {
			return fmt.Errorf("failed to activate order: %w", err)
		}

		order, err = reloadOrder(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Order activated", "order_id", order.ID, "user_id", order.UserID)
	return order, nil
}

func (s *orderService) DeactivateOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := lockOrder(ctx, q, orderID)
		if err != nil {
			return err
		}
		if err := q.SetOrderActive(ctx, repository.SetOrderActiveParams{ID: o.ID, Active: false}); err != nil {
			return fmt.Errorf("failed to deactivate order: %w", err)
		}
		order, err = reloadOrder(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) StartPreparation(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := lockOrder(ctx, q, orderID)
		if err != nil {
			return err
		}

		switch domain.OrderStatus(o.Status) {
		case domain.OrderStatusAwaitingFinalization, domain.OrderStatusPending:
		default:
			return domain.InvalidTransition("order.start_preparation", o.Status, "start preparing")
		}

		if err := q.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
			ID:     o.ID,
			Status: string(domain.OrderStatusInPreparation),
		}); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		order, err = reloadOrder(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "Order in preparation", "order_id", order.ID)
	return order, nil
}

func (s *orderService) FinalizeOrder(ctx context.Context, orderID int64, params FinalizeParams) (order *domain.Order, err error) {
	ctx, span := startSpan(ctx, "OrderService.FinalizeOrder", attribute.Int64("order_id", orderID))
	defer func() { endSpan(span, err) }()

	const op = "order.finalize"
	if params.PaymentTypeID == 0 {
		return nil, domain.NewValidationError(op, "payment_type_id", "is required")
	}

	err = s.Store.ExecTx(ctx, func(q repository.Querier) error {
		o, err := lockOrder(ctx, q, orderID)
		if err != nil {
			return err
		}
		if !domain.OrderStatus(o.Status).IsEditable() {
			return domain.InvalidTransition(op, o.Status, "finalize")
		}

		if _, err := q.GetPaymentType(ctx, params.PaymentTypeID); err != nil {
			if repository.IsNotFound(err) {
				return ErrPaymentTypeNotFound
			}
			return fmt.Errorf("failed to get payment type: %w", err)
		}

		current, err := loadOrder(ctx, q, o)
		if err != nil {
			return err
		}
		total := current.ItemsTotal()

		update := repository.FinalizeOrderParams{
			ID:             o.ID,
			PaymentTypeID:  toInt8(&params.PaymentTypeID),
			DeliveryTypeID: o.DeliveryTypeID,
			FirstName:      o.FirstName,
			LastName:       o.LastName,
			Phone:          o.Phone,
			AddressJson:    o.AddressJson,
			Neighbourhood:  o.Neighbourhood,
			Landmark:       o.Landmark,
			FinalizedAt:    timestamptz(s.now()),
		}

		storeOrder := o.Origin == 0 || domain.OrderOrigin(o.Origin) == domain.OrderOriginStore
		if storeOrder {
			deliveryTypeID := domain.DeliveryTypeCounter
			if params.DeliveryTypeID != nil {
				deliveryTypeID = *params.DeliveryTypeID
			}
			dt, err := lookupDeliveryType(ctx, q, deliveryTypeID)
			if err != nil {
				return err
			}
			update.DeliveryTypeID = toInt8(&dt.ID)

			update.FirstName = params.Customer.FirstName
			update.LastName = params.Customer.LastName
			if params.Customer.Phone != "" {
				update.Phone = params.Customer.Phone
			}

			if dt.ID == domain.DeliveryTypeHome {
				if params.Customer.Address == "" {
					return domain.NewValidationError(op, "address", "is required for home delivery")
				}
				total = total.Add(dt.Surcharge)
				update.AddressJson = params.Customer.Address
				update.Neighbourhood = params.Customer.Neighbourhood
				update.Landmark = params.Customer.Landmark
			}
		} else if params.DeliveryTypeID != nil {
			dt, err := lookupDeliveryType(ctx, q, *params.DeliveryTypeID)
			if err != nil {
				return err
			}
			update.DeliveryTypeID = toInt8(&dt.ID)
		}

		// Cash must exceed the final total, delivery surcharge included.
		update.Total = total
		update.PaidAmount = decimal.Zero
		update.ChangeAmount = decimal.Zero
		if params.PaymentTypeID == domain.PaymentTypeCash {
			if !params.PaidAmount.GreaterThan(total) {
				return ErrPaidAmountTooLow
			}
			update.PaidAmount = params.PaidAmount
			update.ChangeAmount = params.PaidAmount.Sub(total)
		}

		if _, err := q.FinalizeOrder(ctx, update); err != nil {
			return fmt.Errorf("failed to finalize order: %w", err)
		}
		order, err = reloadOrder(ctx, q, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	total, _ := order.Total.Float64()
	s.Metrics.OrderFinalized(strconv.FormatInt(params.PaymentTypeID, 10), originLabel(order.Origin), total)
	s.Logger.InfoContext(ctx, "Order finalized",
		"order_id", order.ID,
		"reference", order.Reference,
		"total", order.Total.String(),
		"change", order.Change.String(),
	)
	s.publish(ctx, events.OrderFinalized, order.ID, orderEvent(order, ""))
	return order, nil
}

func (s *orderService) GetDeliveryType(ctx context.Context, id int64) (*domain.DeliveryType, error) {
	dt, err := lookupDeliveryType(ctx, s.Store, id)
	if err != nil {
		return nil, err
	}
	return &domain.DeliveryType{ID: dt.ID, Name: dt.Name, Surcharge: dt.Surcharge}, nil
}

func (s *orderService) ListPaymentTypes(ctx context.Context) ([]domain.PaymentType, error) {
	rows, err := s.Store.ListPaymentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment types: %w", err)
	}
	types := make([]domain.PaymentType, 0, len(rows))
	for _, pt := range rows {
		types = append(types, domain.PaymentType{ID: pt.ID, Name: pt.Name})
	}
	return types, nil
}

// orderShell describes a new order row before any line is attached.
type orderShell struct {
	UserID         int64
	Status         domain.OrderStatus
	Active         bool
	Origin         domain.OrderOrigin
	PaymentTypeID  *int64
	DeliveryTypeID *int64
	Customer       domain.Customer
}

// createOrderShell deactivates the user's orders and inserts a new empty
// order with a fresh reference. Deactivation comes first so the new row
// never coexists with another active one.
func createOrderShell(ctx context.Context, q repository.Querier, shell orderShell) (repository.Order, error) {
	if err := q.DeactivateUserOrders(ctx, shell.UserID); err != nil {
		return repository.Order{}, fmt.Errorf("failed to deactivate user orders: %w", err)
	}

	o, err := q.CreateOrder(ctx, repository.CreateOrderParams{
		Reference:      NewOrderReference(),
		UserID:         shell.UserID,
		Status:         string(shell.Status),
		Active:         shell.Active,
		Origin:         int32(shell.Origin),
		PaymentTypeID:  toInt8(shell.PaymentTypeID),
		DeliveryTypeID: toInt8(shell.DeliveryTypeID),
		FirstName:      shell.Customer.FirstName,
		LastName:       shell.Customer.LastName,
		Phone:          shell.Customer.Phone,
		Email:          shell.Customer.Email,
		AddressJson:    shell.Customer.Address,
		Neighbourhood:  shell.Customer.Neighbourhood,
		Landmark:       shell.Customer.Landmark,
	})
	if err != nil {
		return repository.Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	return o, nil
}

// addOrderLine reserves stock for a new line and inserts it at the
// product's current effective price.
func addOrderLine(ctx context.Context, q repository.Querier, metrics *telemetry.BusinessMetrics, op string, orderID, productID int64, quantity int32) (repository.OrderItem, error) {
	if quantity < 1 {
		return repository.OrderItem{}, ErrInvalidQuantity
	}

	p, err := lookupProduct(ctx, q, productID)
	if err != nil {
		return repository.OrderItem{}, err
	}
	if err := reserveStock(ctx, q, metrics, op, p, quantity); err != nil {
		return repository.OrderItem{}, err
	}
	return insertOrderLine(ctx, q, orderID, productID, quantity, productFromRow(p).EffectivePrice())
}

// insertOrderLine writes a line with a frozen unit price. It never touches
// stock.
func insertOrderLine(ctx context.Context, q repository.Querier, orderID, productID int64, quantity int32, unitPrice decimal.Decimal) (repository.OrderItem, error) {
	item, err := q.CreateOrderItem(ctx, repository.CreateOrderItemParams{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  domain.LineSubtotal(unitPrice, quantity),
	})
	if err != nil {
		return repository.OrderItem{}, fmt.Errorf("failed to create order item: %w", err)
	}
	return item, nil
}

// recomputeTotal stores the sum of the line subtotals as the order total
// and returns the reloaded order.
func recomputeTotal(ctx context.Context, q repository.Querier, orderID int64) (*domain.Order, error) {
	order, err := reloadOrder(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	order.Total = order.ItemsTotal()
	if err := q.UpdateOrderTotal(ctx, repository.UpdateOrderTotalParams{ID: orderID, Total: order.Total}); err != nil {
		return nil, fmt.Errorf("failed to update order total: %w", err)
	}
	return order, nil
}

func lockOrder(ctx context.Context, q repository.Querier, orderID int64) (repository.Order, error) {
	o, err := q.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.Order{}, ErrOrderNotFound
		}
		return repository.Order{}, fmt.Errorf("failed to lock order: %w", err)
	}
	return o, nil
}

func reloadOrder(ctx context.Context, q repository.Querier, orderID int64) (*domain.Order, error) {
	o, err := q.GetOrder(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return loadOrder(ctx, q, o)
}

func loadOrder(ctx context.Context, q repository.Querier, o repository.Order) (*domain.Order, error) {
	items, err := q.ListOrderItems(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	return orderFromRows(o, items), nil
}

func loadOrders(ctx context.Context, q repository.Querier, rows []repository.Order) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(rows))
	for _, o := range rows {
		order, err := loadOrder(ctx, q, o)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func lookupDeliveryType(ctx context.Context, q repository.Querier, id int64) (repository.DeliveryType, error) {
	dt, err := q.GetDeliveryType(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.DeliveryType{}, ErrDeliveryTypeNotFound
		}
		return repository.DeliveryType{}, fmt.Errorf("failed to get delivery type: %w", err)
	}
	return dt, nil
}

// findOrderItem returns itemID only if it belongs to orderID.
func findOrderItem(ctx context.Context, q repository.Querier, orderID, itemID int64) (repository.OrderItem, error) {
	item, err := q.GetOrderItem(ctx, itemID)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.OrderItem{}, ErrOrderItemNotFound
		}
		return repository.OrderItem{}, fmt.Errorf("failed to get order item: %w", err)
	}
	if item.OrderID != orderID {
		return repository.OrderItem{}, ErrOrderItemNotFound
	}
	return item, nil
}

func orderEvent(o *domain.Order, reason string) events.OrderEvent {
	e := events.OrderEvent{
		OrderID:   o.ID,
		Reference: o.Reference,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Total:     o.Total.StringFixed(2),
		Reason:    reason,
	}
	for _, item := range o.Items {
		e.Items = append(e.Items, events.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		})
	}
	return e
}

func originLabel(origin domain.OrderOrigin) string {
	if origin == domain.OrderOriginOnline {
		return "online"
	}
	return "store"
}
