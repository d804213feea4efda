package api

import (
	"encoding/json"
	"time"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/shopspring/decimal"
)

// Money values are encoded as JSON strings by decimal.Decimal.

type cartResponse struct {
	ID        int64              `json:"id"`
	UserID    *int64             `json:"user_id,omitempty"`
	SessionID *string            `json:"session_id,omitempty"`
	Status    domain.CartStatus  `json:"status"`
	Items     []cartItemResponse `json:"items"`
	ItemCount int32              `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
	CreatedAt time.Time          `json:"created_at"`
}

type cartItemResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func newCartResponse(c *domain.Cart) cartResponse {
	resp := cartResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		SessionID: c.SessionID,
		Status:    c.Status,
		Items:     make([]cartItemResponse, 0, len(c.Items)),
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
		CreatedAt: c.CreatedAt,
	}
	for _, item := range c.Items {
		resp.Items = append(resp.Items, cartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return resp
}

type orderResponse struct {
	ID             int64               `json:"id"`
	Reference      string              `json:"reference"`
	UserID         int64               `json:"user_id"`
	Status         domain.OrderStatus  `json:"status"`
	Active         bool                `json:"active"`
	Origin         domain.OrderOrigin  `json:"origin"`
	Total          decimal.Decimal     `json:"total"`
	PaymentTypeID  *int64              `json:"payment_type_id,omitempty"`
	DeliveryTypeID *int64              `json:"delivery_type_id,omitempty"`
	Customer       customerPayload     `json:"customer"`
	PaidAmount     decimal.Decimal     `json:"paid_amount"`
	Change         decimal.Decimal     `json:"change"`
	PlacedAt       time.Time           `json:"placed_at"`
	FinalizedAt    *time.Time          `json:"finalized_at,omitempty"`
	ClosedAt       *time.Time          `json:"closed_at,omitempty"`
	Items          []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		Reference:      o.Reference,
		UserID:         o.UserID,
		Status:         o.Status,
		Active:         o.Active,
		Origin:         o.Origin,
		Total:          o.Total,
		PaymentTypeID:  o.PaymentTypeID,
		DeliveryTypeID: o.DeliveryTypeID,
		Customer:       newCustomerPayload(o.Customer),
		PaidAmount:     o.PaidAmount,
		Change:         o.Change,
		PlacedAt:       o.PlacedAt,
		FinalizedAt:    o.FinalizedAt,
		ClosedAt:       o.ClosedAt,
		Items:          make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return resp
}

func newOrderList(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderResponse(o))
	}
	return out
}

// customerPayload is used in both directions. Address is an opaque JSON
// document stored verbatim.
type customerPayload struct {
	FirstName     string          `json:"first_name,omitempty"`
	LastName      string          `json:"last_name,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Email         string          `json:"email,omitempty" validate:"omitempty,email"`
	Address       json.RawMessage `json:"address,omitempty"`
	Neighbourhood string          `json:"neighbourhood,omitempty"`
	Landmark      string          `json:"landmark,omitempty"`
}

func newCustomerPayload(c domain.Customer) customerPayload {
	p := customerPayload{
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Phone:         c.Phone,
		Email:         c.Email,
		Neighbourhood: c.Neighbourhood,
		Landmark:      c.Landmark,
	}
	if c.Address != "" && json.Valid([]byte(c.Address)) {
		p.Address = json.RawMessage(c.Address)
	}
	return p
}

func (p customerPayload) toDomain() domain.Customer {
	return domain.Customer{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Phone:         p.Phone,
		Email:         p.Email,
		Address:       string(p.Address),
		Neighbourhood: p.Neighbourhood,
		Landmark:      p.Landmark,
	}
}

type productResponse struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Price          decimal.Decimal  `json:"price"`
	PromoPrice     *decimal.Decimal `json:"promo_price,omitempty"`
	EffectivePrice decimal.Decimal  `json:"effective_price"`
	StockQuantity  int32            `json:"stock_quantity"`
	Active         bool             `json:"active"`
}

func newProductResponse(p *domain.Product) productResponse {
	resp := productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		EffectivePrice: p.EffectivePrice(),
		StockQuantity:  p.StockQuantity,
		Active:         p.Active,
	}
	if p.PromoPrice.Valid {
		promo := p.PromoPrice.Decimal
		resp.PromoPrice = &promo
	}
	return resp
}

type movementResponse struct {
	ID               int64               `json:"id"`
	ProductID        int64               `json:"product_id"`
	Type             domain.MovementType `json:"type"`
	Quantity         int32               `json:"quantity"`
	PreviousQuantity int32               `json:"previous_quantity"`
	NewQuantity      int32               `json:"new_quantity"`
	Reason           string              `json:"reason,omitempty"`
	UserID           *int64              `json:"user_id,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

func newMovementResponse(m domain.StockMovement) movementResponse {
	return movementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		Type:             m.Type,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		UserID:           m.UserID,
		CreatedAt:        m.CreatedAt,
	}
}

type paymentTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type deliveryTypeResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Surcharge decimal.Decimal `json:"surcharge"`
}
