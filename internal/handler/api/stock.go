package api

import (
	"context"
	"net/http"
	"time"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/loja1/projectohibrido/internal/handler"
	"github.com/loja1/projectohibrido/internal/service"
)

// StockHandler serves product stock reads and the manual movement journal.
type StockHandler struct {
	stock     service.StockService
	movements service.StockMovementService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stock service.StockService, movements service.StockMovementService) *StockHandler {
	return &StockHandler{stock: stock, movements: movements}
}

type movementRequest struct {
	ProductID int64               `json:"product_id" validate:"required,gt=0"`
	Type      domain.MovementType `json:"type" validate:"required"`
	Quantity  int32               `json:"quantity"`
	Reason    string              `json:"reason,omitempty" validate:"max=500"`
}

// GetProduct handles GET /api/products/{id}
func (h *StockHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.stock.GetProduct(r.Context(), productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newProductResponse(product))
}

// RecordMovement handles POST /api/stock/movements
func (h *StockHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := handler.DecodeJSON(r, "api.stock.movement", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	movement, err := h.movements.RecordMovement(r.Context(), service.RecordMovementParams{
		ProductID: req.ProductID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		UserID:    callerID(r.Context()),
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, newMovementResponse(*movement))
}

// ListMovements handles GET /api/products/{id}/movements
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	productID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	movements, err := h.movements.ListMovements(r.Context(), productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		resp = append(resp, newMovementResponse(m))
	}
	handler.JSON(w, http.StatusOK, resp)
}

// ListAllMovements handles GET /api/stock/movements?from=&to=
func (h *StockHandler) ListAllMovements(w http.ResponseWriter, r *http.Request) {
	from, err := parseBound(r, "from")
	if err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}
	to, err := parseBound(r, "to")
	if err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	movements, err := h.movements.ListMovementsBetween(r.Context(), from, to)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		resp = append(resp, newMovementResponse(m))
	}
	handler.JSON(w, http.StatusOK, resp)
}

// parseBound reads an RFC 3339 timestamp or a plain date from the query.
// A missing parameter is the zero time.
func parseBound(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError("api.stock.movements", name, "must be a date or RFC 3339 timestamp")
}

func callerID(ctx context.Context) *int64 {
	if id, ok := domain.UserIDFromContext(ctx); ok {
		return &id
	}
	return nil
}
