package service

import (
	"github.com/loja1/projectohibrido/internal/domain"
)

// Catalog errors - use domain.ENOTFOUND
var (
	ErrProductNotFound      = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrDeliveryTypeNotFound = domain.Errorf(domain.ENOTFOUND, "", "Delivery type not found")
	ErrPaymentTypeNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Payment type not found")
)

// Cart errors
var (
	ErrCartNotFound         = domain.Errorf(domain.ENOTFOUND, "", "Cart not found")
	ErrCartItemNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Cart item not found")
	ErrCartAlreadyConverted = domain.Errorf(domain.ECONFLICT, "", "Cart already converted to order")
	ErrEmptyCart            = domain.Errorf(domain.EINVALID, "", "Cart is empty")
	ErrGuestCheckout        = domain.Errorf(domain.EINVALID, "", "Guest carts must be merged into a user cart before checkout")
	ErrMissingSession       = domain.Errorf(domain.EINVALID, "", "Session ID is required")
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidQuantity     = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrInvalidMovementType = domain.Errorf(domain.EINVALID, "", "Movement type must be entrada, saida or ajuste")
	ErrInvalidOrigin       = domain.Errorf(domain.EINVALID, "", "Order origin must be 1 (online) or 2 (store)")
)

// Order errors
var (
	ErrOrderNotFound         = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
	ErrOrderItemNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Order item not found")
	ErrNoActiveOrder         = domain.Errorf(domain.ENOTFOUND, "", "User has no active order")
	ErrOrderAlreadyCancelled = domain.Errorf(domain.ECONFLICT, "", "Order already cancelled")
	ErrPaidAmountTooLow      = domain.Errorf(domain.EINVALID, "", "Paid amount must be greater than the order total for cash payments")
)
