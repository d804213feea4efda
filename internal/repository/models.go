package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        int64              `json:"id"`
	UserID    pgtype.Int8        `json:"user_id"`
	SessionID pgtype.Text        `json:"session_id"`
	Status    string             `json:"status"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type CartItem struct {
	ID        int64              `json:"id"`
	CartID    int64              `json:"cart_id"`
	ProductID int64              `json:"product_id"`
	Quantity  int32              `json:"quantity"`
	UnitPrice decimal.Decimal    `json:"unit_price"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type DeliveryType struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

type Order struct {
	ID             int64              `json:"id"`
	Reference      string             `json:"reference"`
	UserID         int64              `json:"user_id"`
	Status         string             `json:"status"`
	Active         bool               `json:"active"`
	Origin         int32              `json:"origin"`
	Total          decimal.Decimal    `json:"total"`
	PaymentTypeID  pgtype.Int8        `json:"payment_type_id"`
	DeliveryTypeID pgtype.Int8        `json:"delivery_type_id"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	Phone          string             `json:"phone"`
	Email          string             `json:"email"`
	AddressJson    string             `json:"address_json"`
	Neighbourhood  string             `json:"neighbourhood"`
	Landmark       string             `json:"landmark"`
	PaidAmount     decimal.Decimal    `json:"paid_amount"`
	ChangeAmount   decimal.Decimal    `json:"change_amount"`
	PlacedAt       pgtype.Timestamptz `json:"placed_at"`
	FinalizedAt    pgtype.Timestamptz `json:"finalized_at"`
	ClosedAt       pgtype.Timestamptz `json:"closed_at"`
}

type OrderCancellation struct {
	ID          int64              `json:"id"`
	OrderID     int64              `json:"order_id"`
	Reason      string             `json:"reason"`
	CancelledBy int64              `json:"cancelled_by"`
	CancelledAt pgtype.Timestamptz `json:"cancelled_at"`
}

type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type PaymentType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	PromoPrice    decimal.NullDecimal `json:"promo_price"`
	StockQuantity int32               `json:"stock_quantity"`
	Active        bool                `json:"active"`
	CreatedAt     pgtype.Timestamptz  `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz  `json:"updated_at"`
}

type StockMovement struct {
	ID               int64              `json:"id"`
	ProductID        int64              `json:"product_id"`
	MovementType     string             `json:"movement_type"`
	Quantity         int32              `json:"quantity"`
	PreviousQuantity int32              `json:"previous_quantity"`
	NewQuantity      int32              `json:"new_quantity"`
	Reason           string             `json:"reason"`
	UserID           pgtype.Int8        `json:"user_id"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
}
