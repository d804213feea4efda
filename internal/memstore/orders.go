package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/shopspring/decimal"
)

// checkActiveOrder enforces orders_one_active_per_user for order id.
func (q *queries) checkActiveOrder(id, userID int64) error {
	for _, o := range q.st.orders {
		if o.ID != id && o.UserID == userID && o.Active {
			return uniqueViolation("orders_one_active_per_user")
		}
	}
	return nil
}

func newestFirst(a, b repository.Order) int {
	if c := b.PlacedAt.Time.Compare(a.PlacedAt.Time); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (q *queries) CancelOrder(ctx context.Context, arg repository.CancelOrderParams) (repository.Order, error) {
	defer q.enter()()
	o, ok := q.st.orders[arg.ID]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	o.Status = "cancelado"
	o.Active = false
	o.ClosedAt = arg.ClosedAt
	q.st.orders[o.ID] = o
	return o, nil
}

func (q *queries) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	defer q.enter()()
	for _, o := range q.st.orders {
		if o.Reference == arg.Reference {
			return repository.Order{}, uniqueViolation("orders_reference_key")
		}
	}
	if arg.Active {
		if err := q.checkActiveOrder(0, arg.UserID); err != nil {
			return repository.Order{}, err
		}
	}

	o := repository.Order{
		ID:             q.st.nextID(),
		Reference:      arg.Reference,
		UserID:         arg.UserID,
		Status:         arg.Status,
		Active:         arg.Active,
		Origin:         arg.Origin,
		Total:          decimal.Zero,
		PaymentTypeID:  arg.PaymentTypeID,
		DeliveryTypeID: arg.DeliveryTypeID,
		FirstName:      arg.FirstName,
		LastName:       arg.LastName,
		Phone:          arg.Phone,
		Email:          arg.Email,
		AddressJson:    arg.AddressJson,
		Neighbourhood:  arg.Neighbourhood,
		Landmark:       arg.Landmark,
		PaidAmount:     decimal.Zero,
		ChangeAmount:   decimal.Zero,
		PlacedAt:       q.timestamp(),
	}
	q.st.orders[o.ID] = o
	return o, nil
}

func (q *queries) CreateOrderCancellation(ctx context.Context, arg repository.CreateOrderCancellationParams) (repository.OrderCancellation, error) {
	defer q.enter()()
	if _, ok := q.st.orders[arg.OrderID]; !ok {
		return repository.OrderCancellation{}, foreignKeyViolation("order_cancellations_order_id_fkey")
	}
	for _, c := range q.st.cancellations {
		if c.OrderID == arg.OrderID {
			return repository.OrderCancellation{}, uniqueViolation("order_cancellations_order_id_key")
		}
	}
	c := repository.OrderCancellation{
		ID:          q.st.nextID(),
		OrderID:     arg.OrderID,
		Reason:      arg.Reason,
		CancelledBy: arg.CancelledBy,
		CancelledAt: arg.CancelledAt,
	}
	q.st.cancellations[c.ID] = c
	return c, nil
}

func (q *queries) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	defer q.enter()()
	if _, ok := q.st.orders[arg.OrderID]; !ok {
		return repository.OrderItem{}, foreignKeyViolation("order_items_order_id_fkey")
	}
	if _, ok := q.st.products[arg.ProductID]; !ok {
		return repository.OrderItem{}, foreignKeyViolation("order_items_product_id_fkey")
	}
	if arg.Quantity <= 0 {
		return repository.OrderItem{}, checkViolation("order_items_quantity_check")
	}
	item := repository.OrderItem{
		ID:        q.st.nextID(),
		OrderID:   arg.OrderID,
		ProductID: arg.ProductID,
		Quantity:  arg.Quantity,
		UnitPrice: arg.UnitPrice,
		Subtotal:  arg.Subtotal,
	}
	q.st.orderItems[item.ID] = item
	return item, nil
}

func (q *queries) DeactivateUserOrders(ctx context.Context, userID int64) error {
	defer q.enter()()
	for id, o := range q.st.orders {
		if o.UserID == userID && o.Active {
			o.Active = false
			q.st.orders[id] = o
		}
	}
	return nil
}

func (q *queries) DeleteOrderItem(ctx context.Context, id int64) error {
	defer q.enter()()
	delete(q.st.orderItems, id)
	return nil
}

func (q *queries) FinalizeOrder(ctx context.Context, arg repository.FinalizeOrderParams) (repository.Order, error) {
	defer q.enter()()
	o, ok := q.st.orders[arg.ID]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	o.Status = "finalizado"
	o.Active = false
	o.Total = arg.Total
	o.PaymentTypeID = arg.PaymentTypeID
	o.DeliveryTypeID = arg.DeliveryTypeID
	o.PaidAmount = arg.PaidAmount
	o.ChangeAmount = arg.ChangeAmount
	o.FirstName = arg.FirstName
	o.LastName = arg.LastName
	o.Phone = arg.Phone
	o.AddressJson = arg.AddressJson
	o.Neighbourhood = arg.Neighbourhood
	o.Landmark = arg.Landmark
	o.FinalizedAt = arg.FinalizedAt
	o.ClosedAt = arg.FinalizedAt
	q.st.orders[o.ID] = o
	return o, nil
}

func (q *queries) GetActiveOrderByUser(ctx context.Context, userID int64) (repository.Order, error) {
	defer q.enter()()
	for _, o := range q.st.orders {
		if o.UserID == userID && o.Active {
			return o, nil
		}
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (q *queries) GetOrder(ctx context.Context, id int64) (repository.Order, error) {
	defer q.enter()()
	o, ok := q.st.orders[id]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (q *queries) GetOrderByReference(ctx context.Context, reference string) (repository.Order, error) {
	defer q.enter()()
	for _, o := range q.st.orders {
		if o.Reference == reference {
			return o, nil
		}
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (q *queries) GetOrderCancellation(ctx context.Context, orderID int64) (repository.OrderCancellation, error) {
	defer q.enter()()
	for _, c := range q.st.cancellations {
		if c.OrderID == orderID {
			return c, nil
		}
	}
	return repository.OrderCancellation{}, pgx.ErrNoRows
}

func (q *queries) GetOrderForUpdate(ctx context.Context, id int64) (repository.Order, error) {
	return q.GetOrder(ctx, id)
}

func (q *queries) GetOrderItem(ctx context.Context, id int64) (repository.OrderItem, error) {
	defer q.enter()()
	item, ok := q.st.orderItems[id]
	if !ok {
		return repository.OrderItem{}, pgx.ErrNoRows
	}
	return item, nil
}

func (q *queries) ListOrderItems(ctx context.Context, orderID int64) ([]repository.OrderItem, error) {
	defer q.enter()()
	items := []repository.OrderItem{}
	for _, item := range q.st.orderItems {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b repository.OrderItem) int { return cmp.Compare(a.ID, b.ID) })
	return items, nil
}

func (q *queries) ListOrdersByStatus(ctx context.Context, status string) ([]repository.Order, error) {
	defer q.enter()()
	orders := []repository.Order{}
	for _, o := range q.st.orders {
		if o.Status == status {
			orders = append(orders, o)
		}
	}
	slices.SortFunc(orders, newestFirst)
	return orders, nil
}

func (q *queries) ListOrdersByUser(ctx context.Context, userID int64) ([]repository.Order, error) {
	defer q.enter()()
	orders := []repository.Order{}
	for _, o := range q.st.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	slices.SortFunc(orders, newestFirst)
	return orders, nil
}

func (q *queries) ListUserOrdersByStatus(ctx context.Context, arg repository.ListUserOrdersByStatusParams) ([]repository.Order, error) {
	defer q.enter()()
	orders := []repository.Order{}
	for _, o := range q.st.orders {
		if o.UserID != arg.UserID || o.Status != arg.Status {
			continue
		}
		if arg.Origin.Valid && o.Origin != arg.Origin.Int32 {
			continue
		}
		orders = append(orders, o)
	}
	slices.SortFunc(orders, newestFirst)
	return orders, nil
}

func (q *queries) SetOrderActive(ctx context.Context, arg repository.SetOrderActiveParams) error {
	defer q.enter()()
	o, ok := q.st.orders[arg.ID]
	if !ok {
		return nil
	}
	if arg.Active {
		if err := q.checkActiveOrder(o.ID, o.UserID); err != nil {
			return err
		}
	}
	o.Active = arg.Active
	q.st.orders[o.ID] = o
	return nil
}

func (q *queries) UpdateOrderItemQuantity(ctx context.Context, arg repository.UpdateOrderItemQuantityParams) (repository.OrderItem, error) {
	defer q.enter()()
	item, ok := q.st.orderItems[arg.ID]
	if !ok {
		return repository.OrderItem{}, pgx.ErrNoRows
	}
	if arg.Quantity <= 0 {
		return repository.OrderItem{}, checkViolation("order_items_quantity_check")
	}
	item.Quantity = arg.Quantity
	item.Subtotal = arg.Subtotal
	q.st.orderItems[item.ID] = item
	return item, nil
}

func (q *queries) UpdateOrderStatus(ctx context.Context, arg repository.UpdateOrderStatusParams) error {
	defer q.enter()()
	if o, ok := q.st.orders[arg.ID]; ok {
		o.Status = arg.Status
		q.st.orders[o.ID] = o
	}
	return nil
}

func (q *queries) UpdateOrderTotal(ctx context.Context, arg repository.UpdateOrderTotalParams) error {
	defer q.enter()()
	if o, ok := q.st.orders[arg.ID]; ok {
		o.Total = arg.Total
		q.st.orders[o.ID] = o
	}
	return nil
}
