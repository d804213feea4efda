package service

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/repository"
)

func productFromRow(p repository.Product) domain.Product {
	return domain.Product{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		PromoPrice:    p.PromoPrice,
		StockQuantity: p.StockQuantity,
		Active:        p.Active,
	}
}

func cartFromRows(c repository.Cart, items []repository.CartItem) *domain.Cart {
	cart := &domain.Cart{
		ID:        c.ID,
		UserID:    int8Ptr(c.UserID),
		Status:    domain.CartStatus(c.Status),
		CreatedAt: c.CreatedAt.Time,
		Items:     make([]domain.CartItem, 0, len(items)),
	}
	if c.SessionID.Valid {
		session := c.SessionID.String
		cart.SessionID = &session
	}
	for _, item := range items {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        item.ID,
			CartID:    item.CartID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return cart
}

func orderFromRows(o repository.Order, items []repository.OrderItem) *domain.Order {
	order := &domain.Order{
		ID:             o.ID,
		Reference:      o.Reference,
		UserID:         o.UserID,
		Status:         domain.OrderStatus(o.Status),
		Active:         o.Active,
		Origin:         domain.OrderOrigin(o.Origin),
		Total:          o.Total,
		PaymentTypeID:  int8Ptr(o.PaymentTypeID),
		DeliveryTypeID: int8Ptr(o.DeliveryTypeID),
		Customer: domain.Customer{
			FirstName:     o.FirstName,
			LastName:      o.LastName,
			Phone:         o.Phone,
			Email:         o.Email,
			Address:       o.AddressJson,
			Neighbourhood: o.Neighbourhood,
			Landmark:      o.Landmark,
		},
		PaidAmount:  o.PaidAmount,
		Change:      o.ChangeAmount,
		PlacedAt:    o.PlacedAt.Time,
		FinalizedAt: timePtr(o.FinalizedAt),
		ClosedAt:    timePtr(o.ClosedAt),
		Items:       make([]domain.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return order
}

func movementFromRow(m repository.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		ID:               m.ID,
		ProductID:        m.ProductID,
		Type:             domain.MovementType(m.MovementType),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		UserID:           int8Ptr(m.UserID),
		CreatedAt:        m.CreatedAt.Time,
	}
}

func int8Ptr(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func toInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func timePtr(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
