package api

import (
	"net/http"

	"github.com/loja1/projectohibrido/internal/cookie"
	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/handler"
	"github.com/loja1/projectohibrido/internal/service"
)

// CartHandler serves the cart, merge and checkout endpoints. Signed-in
// callers own their carts by user ID; guests own theirs by session token.
type CartHandler struct {
	carts    service.CartService
	merge    service.CartMergeService
	checkout service.CheckoutService
	cookies  *cookie.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts service.CartService, merge service.CartMergeService, checkout service.CheckoutService, cookies *cookie.Config) *CartHandler {
	return &CartHandler{
		carts:    carts,
		merge:    merge,
		checkout: checkout,
		cookies:  cookies,
	}
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity" validate:"required,gt=0"`
}

type setQuantityRequest struct {
	Quantity int32 `json:"quantity" validate:"required,gt=0"`
}

type checkoutRequest struct {
	PaymentTypeID  *int64          `json:"payment_type_id,omitempty" validate:"omitempty,gt=0"`
	DeliveryTypeID *int64          `json:"delivery_type_id,omitempty" validate:"omitempty,gt=0"`
	Customer       customerPayload `json:"customer"`
}

// Create handles POST /api/carts. It returns the caller's active cart,
// creating one when needed. A new guest token is set as a cookie.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := callerOwner(r)

	cart, err := h.carts.GetOrCreateActive(r.Context(), owner)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if owner.IsGuest() && cart.SessionID != nil && *cart.SessionID != owner.SessionID {
		h.cookies.SetCartSession(w, *cart.SessionID)
	}
	handler.JSON(w, http.StatusOK, newCartResponse(cart))
}

// Get handles GET /api/carts/{id}
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}
	handler.JSON(w, http.StatusOK, newCartResponse(cart))
}

// AddItem handles POST /api/carts/{id}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := handler.DecodeJSON(r, "api.cart.add_item", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	cart, err := h.carts.AddItem(r.Context(), cart.ID, req.ProductID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartResponse(cart))
}

// SetQuantity handles PUT /api/carts/{id}/items/{productID}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}
	productID, err := handler.PathInt64(r, "productID")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req setQuantityRequest
	if err := handler.DecodeJSON(r, "api.cart.set_quantity", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	cart, err = h.carts.SetQuantity(r.Context(), cart.ID, productID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartResponse(cart))
}

// RemoveItem handles DELETE /api/carts/{id}/items/{productID}. Removing the
// last line deletes the cart and answers 204.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}
	productID, err := handler.PathInt64(r, "productID")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart, err = h.carts.RemoveItem(r.Context(), cart.ID, productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if cart == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	handler.JSON(w, http.StatusOK, newCartResponse(cart))
}

// Delete handles DELETE /api/carts/{id}
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}
	if err := h.carts.DeleteCart(r.Context(), cart.ID); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/carts/{id}/checkout. An empty body is allowed.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := handler.DecodeJSON(r, "api.cart.checkout", &req); err != nil {
			handler.ValidationErrorResponse(w, r, err)
			return
		}
	}

	order, err := h.checkout.ConvertCartToOrder(r.Context(), cart.ID, service.CheckoutParams{
		PaymentTypeID:  req.PaymentTypeID,
		DeliveryTypeID: req.DeliveryTypeID,
		Customer:       req.Customer.toDomain(),
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, newOrderResponse(order))
}

// Merge handles POST /api/carts/merge. The guest token comes from the
// cookie or header and is cleared once merged.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	userID := domain.RequireUserID(r.Context())

	cart, err := h.merge.Merge(r.Context(), cookie.CartSession(r), userID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.cookies.ClearCartSession(w)
	handler.JSON(w, http.StatusOK, newCartResponse(cart))
}

// ownedCart loads the {id} cart and checks the caller owns it. Carts owned
// by someone else are reported as not found.
func (h *CartHandler) ownedCart(w http.ResponseWriter, r *http.Request) (*domain.Cart, bool) {
	cartID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return nil, false
	}

	cart, err := h.carts.GetCart(r.Context(), cartID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return nil, false
	}

	if !ownsCart(callerOwner(r), cart) {
		handler.ErrorResponse(w, r, service.ErrCartNotFound)
		return nil, false
	}
	return cart, true
}

func callerOwner(r *http.Request) domain.Owner {
	if userID, ok := domain.UserIDFromContext(r.Context()); ok {
		return domain.UserOwner(userID)
	}
	return domain.GuestOwner(cookie.CartSession(r))
}

func ownsCart(owner domain.Owner, cart *domain.Cart) bool {
	if !owner.IsGuest() {
		return cart.UserID != nil && *cart.UserID == *owner.UserID
	}
	return owner.SessionID != "" && cart.SessionID != nil && *cart.SessionID == owner.SessionID
}
