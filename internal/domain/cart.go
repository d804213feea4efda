package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartStatus is the persisted lifecycle state of a cart.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusConverted CartStatus = "converted"
)

// Owner identifies who a cart belongs to: an authenticated user or a guest
// session token. Exactly one of the two is set.
type Owner struct {
	UserID    *int64
	SessionID string
}

// UserOwner returns the owner key for an authenticated user.
func UserOwner(userID int64) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner returns the owner key for a guest session. An empty token asks
// the cart service to generate one.
func GuestOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

// IsGuest reports whether the owner is a guest session.
func (o Owner) IsGuest() bool {
	return o.UserID == nil
}

// Cart is a shopping cart with its line items.
type Cart struct {
	ID        int64
	UserID    *int64
	SessionID *string
	Status    CartStatus
	CreatedAt time.Time
	Items     []CartItem
}

// Total is the sum of the line subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int32 {
	var n int32
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// CartItem is one product line in a cart. UnitPrice is the effective price
// captured when the line was last added or updated.
type CartItem struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int32
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// LineSubtotal computes price × quantity.
func LineSubtotal(price decimal.Decimal, quantity int32) decimal.Decimal {
	return price.Mul(decimal.NewFromInt32(quantity))
}
