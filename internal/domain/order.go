package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the persisted state of an order. The stored values are the
// store's own vocabulary and must not be translated.
type OrderStatus string

const (
	OrderStatusAwaitingFinalization OrderStatus = "por finalizar"
	OrderStatusPending              OrderStatus = "pendente"
	OrderStatusInPreparation        OrderStatus = "em preparacao"
	OrderStatusFinalized            OrderStatus = "finalizado"
	OrderStatusCancelled            OrderStatus = "cancelado"
)

var editableStatuses = []OrderStatus{
	OrderStatusAwaitingFinalization,
	OrderStatusPending,
	OrderStatusInPreparation,
}

// IsEditable reports whether lines may be added, edited or removed.
func (s OrderStatus) IsEditable() bool {
	return slices.Contains(editableStatuses, s)
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFinalized || s == OrderStatusCancelled
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	return s.IsEditable() || s.IsTerminal()
}

// OrderOrigin records the channel an order was placed through.
type OrderOrigin int32

const (
	OrderOriginOnline OrderOrigin = 1
	OrderOriginStore  OrderOrigin = 2
)

// Reference data identifiers with behavior attached.
const (
	PaymentTypeCash      int64 = 1
	DeliveryTypeCounter  int64 = 1
	DeliveryTypeHome     int64 = 2
	OrderReferencePrefix       = "PED-"
)

// Customer holds the contact and delivery fields captured on an order.
// Address is an opaque JSON document supplied by the client.
type Customer struct {
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	Address       string
	Neighbourhood string
	Landmark      string
}

// Order is a placed order with its line items.
type Order struct {
	ID             int64
	Reference      string
	UserID         int64
	Status         OrderStatus
	Active         bool
	Origin         OrderOrigin
	Total          decimal.Decimal
	PaymentTypeID  *int64
	DeliveryTypeID *int64
	Customer       Customer
	PaidAmount     decimal.Decimal
	Change         decimal.Decimal
	PlacedAt       time.Time
	FinalizedAt    *time.Time
	ClosedAt       *time.Time
	Items          []OrderItem
}

// ItemsTotal sums the line subtotals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// OrderItem is one product line on an order. UnitPrice is frozen when the
// line is created.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// OrderCancellation is the audit record written once per cancelled order.
type OrderCancellation struct {
	ID          int64
	OrderID     int64
	Reason      string
	CancelledBy int64
	CancelledAt time.Time
}

// DeliveryType is reference data; Surcharge is added to the total on finalize.
type DeliveryType struct {
	ID        int64
	Name      string
	Surcharge decimal.Decimal
}

// PaymentType is reference data.
type PaymentType struct {
	ID   int64
	Name string
}
