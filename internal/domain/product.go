package domain

import (
	"github.com/shopspring/decimal"
)

// Product is the catalog view the cart and order flows depend on.
// StockQuantity is never negative; it changes only through the stock ledger.
type Product struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	PromoPrice    decimal.NullDecimal
	StockQuantity int32
	Active        bool
}

// EffectivePrice is the promotional price when one is set, else the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.PromoPrice.Valid {
		return p.PromoPrice.Decimal
	}
	return p.Price
}

// HasStock reports whether quantity units are on hand.
func (p Product) HasStock(quantity int32) bool {
	return p.StockQuantity >= quantity
}
