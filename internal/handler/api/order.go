package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/handler"
	"github.com/loja1/projectohibrido/internal/service"
	"github.com/shopspring/decimal"
)

// OrderHandler serves order reads, the status machine, line edits and the
// reference data lookups. Every route requires a signed-in caller.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	// UserID defaults to the caller; staff place store orders for customers.
	UserID         int64              `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	Origin         domain.OrderOrigin `json:"origin,omitempty" validate:"omitempty,oneof=1 2"`
	Items          []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentTypeID  *int64             `json:"payment_type_id,omitempty" validate:"omitempty,gt=0"`
	DeliveryTypeID *int64             `json:"delivery_type_id,omitempty" validate:"omitempty,gt=0"`
	Customer       customerPayload    `json:"customer"`
}

type editQuantityRequest struct {
	Quantity int32 `json:"quantity" validate:"required,gt=0"`
}

type finalizeRequest struct {
	PaymentTypeID  int64           `json:"payment_type_id" validate:"required,gt=0"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	DeliveryTypeID *int64          `json:"delivery_type_id,omitempty" validate:"omitempty,gt=0"`
	Customer       customerPayload `json:"customer"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := handler.DecodeJSON(r, "api.order.create", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	userID := req.UserID
	if userID == 0 {
		userID = domain.RequireUserID(r.Context())
	}

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orders.CreateOrder(r.Context(), service.CreateOrderParams{
		UserID:         userID,
		Origin:         req.Origin,
		Items:          lines,
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

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)(h.orders.GetOrder(r.Context(), orderID))
}

// GetByReference handles GET /api/orders/reference/{reference}
func (h *OrderHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK)(h.orders.GetOrderByReference(r.Context(), r.PathValue("reference")))
}

// List handles GET /api/orders?status=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		handler.ValidationErrorResponse(w, r, domain.NewValidationError("api.order.list", "status", "is required"))
		return
	}

	orders, err := h.orders.ListOrdersByStatus(r.Context(), domain.OrderStatus(status))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newOrderList(orders))
}

// ListByUser handles GET /api/users/{userID}/orders?status=&origin=
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := handler.PathInt64(r, "userID")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var orders []*domain.Order
	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		var origin domain.OrderOrigin
		if raw := query.Get("origin"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				handler.ValidationErrorResponse(w, r, domain.NewValidationError("api.order.list", "origin", "must be a number"))
				return
			}
			origin = domain.OrderOrigin(n)
		}
		orders, err = h.orders.ListUserOrdersByStatus(r.Context(), userID, domain.OrderStatus(status), origin)
	} else {
		orders, err = h.orders.ListOrdersByUser(r.Context(), userID)
	}
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newOrderList(orders))
}

// GetActive handles GET /api/users/{userID}/orders/active
func (h *OrderHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	userID, err := handler.PathInt64(r, "userID")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)(h.orders.GetActiveOrder(r.Context(), userID))
}

// AddItem handles POST /api/orders/{id}/items
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req orderLineRequest
	if err := handler.DecodeJSON(r, "api.order.add_item", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)(h.orders.AddOrderItem(r.Context(), orderID, req.ProductID, req.Quantity))
}

// EditItem handles PATCH /api/orders/{id}/items/{itemID}
func (h *OrderHandler) EditItem(w http.ResponseWriter, r *http.Request) {
	orderID, itemID, ok := orderItemPath(w, r)
	if !ok {
		return
	}

	var req editQuantityRequest
	if err := handler.DecodeJSON(r, "api.order.edit_item", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)(h.orders.EditOrderItemQuantity(r.Context(), orderID, itemID, req.Quantity))
}

// RemoveItem handles DELETE /api/orders/{id}/items/{itemID}
func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	orderID, itemID, ok := orderItemPath(w, r)
	if !ok {
		return
	}
	h.respond(w, r, http.StatusOK)(h.orders.RemoveOrderItem(r.Context(), orderID, itemID))
}

// Finalize handles POST /api/orders/{id}/finalize
func (h *OrderHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	orderID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req finalizeRequest
	if err := handler.DecodeJSON(r, "api.order.finalize", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK)(h.orders.FinalizeOrder(r.Context(), orderID, service.FinalizeParams{
		PaymentTypeID:  req.PaymentTypeID,
		PaidAmount:     req.PaidAmount,
		DeliveryTypeID: req.DeliveryTypeID,
		Customer:       req.Customer.toDomain(),
	}))
}

// Cancel handles POST /api/orders/{id}/cancel. The caller is recorded as
// the canceller.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req cancelRequest
	if err := handler.DecodeJSON(r, "api.order.cancel", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	userID := domain.RequireUserID(r.Context())
	h.respond(w, r, http.StatusOK)(h.orders.CancelOrder(r.Context(), orderID, userID, req.Reason))
}

// Activate handles POST /api/orders/{id}/activate
func (h *OrderHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.ActivateOrder)
}

// Deactivate handles POST /api/orders/{id}/deactivate
func (h *OrderHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.DeactivateOrder)
}

// Prepare handles POST /api/orders/{id}/prepare
func (h *OrderHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.StartPreparation)
}

// ListPaymentTypes handles GET /api/payment-types
func (h *OrderHandler) ListPaymentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.orders.ListPaymentTypes(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]paymentTypeResponse, 0, len(types))
	for _, pt := range types {
		resp = append(resp, paymentTypeResponse{ID: pt.ID, Name: pt.Name})
	}
	handler.JSON(w, http.StatusOK, resp)
}

// GetDeliveryType handles GET /api/delivery-types/{id}
func (h *OrderHandler) GetDeliveryType(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	dt, err := h.orders.GetDeliveryType(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, deliveryTypeResponse{ID: dt.ID, Name: dt.Name, Surcharge: dt.Surcharge})
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, orderID int64) (*domain.Order, error)) {
	orderID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)(fn(r.Context(), orderID))
}

// respond writes the order returned by a service call, or its error.
func (h *OrderHandler) respond(w http.ResponseWriter, r *http.Request, status int) func(*domain.Order, error) {
	return func(order *domain.Order, err error) {
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		handler.JSON(w, status, newOrderResponse(order))
	}
}

func orderItemPath(w http.ResponseWriter, r *http.Request) (orderID, itemID int64, ok bool) {
	orderID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return 0, 0, false
	}
	itemID, err = handler.PathInt64(r, "itemID")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return 0, 0, false
	}
	return orderID, itemID, true
}
