package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/loja1/projectohibrido/internal/cookie"
	"github.com/loja1/projectohibrido/internal/handler/api"
	"github.com/loja1/projectohibrido/internal/memstore"
	"github.com/loja1/projectohibrido/internal/middleware"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/loja1/projectohibrido/internal/router"
	"github.com/loja1/projectohibrido/internal/routes"
	"github.com/loja1/projectohibrido/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	store   *memstore.Store
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	deps := service.Deps{Store: store, Logger: logger}

	carts := service.NewCartService(deps)
	orders := service.NewOrderService(deps)

	r := router.New(
		middleware.RequestID,
		middleware.WithUserID,
		middleware.WithRequestLogger(logger),
	)
	routes.RegisterAPIRoutes(r, routes.APIDeps{
		CartHandler: api.NewCartHandler(carts, service.NewCartMergeService(deps, false),
			service.NewCheckoutService(deps), cookie.NewConfig(false, time.Hour)),
		OrderHandler: api.NewOrderHandler(orders),
		StockHandler: api.NewStockHandler(service.NewStockService(deps), service.NewStockMovementService(deps)),
	})
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		HealthHandler:  api.NewHealthHandler(store, logger),
		MetricsHandler: middleware.NewMetrics("test", prometheus.NewRegistry()).Handler(),
	})

	return &testServer{store: store, handler: r}
}

func (s *testServer) product(t *testing.T, price string, stock int32) int64 {
	t.Helper()
	p, err := s.store.CreateProduct(context.Background(), repository.CreateProductParams{
		Name:          "Produto",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        true,
	})
	require.NoError(t, err)
	return p.ID
}

func (s *testServer) stock(t *testing.T, productID int64) int32 {
	t.Helper()
	p, err := s.store.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

// caller identifies who sends a request: a user ID, a guest session, or
// neither.
type caller struct {
	userID  int64
	session string
}

func (s *testServer) do(t *testing.T, who caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.userID != 0 {
		req.Header.Set(middleware.UserIDHeader, strconv.FormatInt(who.userID, 10))
	}
	if who.session != "" {
		req.Header.Set(cookie.CartSessionHeader, who.session)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type cartBody struct {
	ID        int64   `json:"id"`
	UserID    *int64  `json:"user_id"`
	SessionID *string `json:"session_id"`
	Status    string  `json:"status"`
	Items     []struct {
		ProductID int64           `json:"product_id"`
		Quantity  int32           `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unit_price"`
	} `json:"items"`
	ItemCount int32           `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

type orderBody struct {
	ID         int64           `json:"id"`
	Reference  string          `json:"reference"`
	UserID     int64           `json:"user_id"`
	Status     string          `json:"status"`
	Active     bool            `json:"active"`
	Origin     int32           `json:"origin"`
	Total      decimal.Decimal `json:"total"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Change     decimal.Decimal `json:"change"`
	Items      []struct {
		ID        int64 `json:"id"`
		ProductID int64 `json:"product_id"`
		Quantity  int32 `json:"quantity"`
	} `json:"items"`
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
		Stock   *struct {
			ProductID int64 `json:"product_id"`
			Available int32 `json:"available"`
			Requested int32 `json:"requested"`
		} `json:"stock"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}

func TestCartAPI_GuestFlow(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, "100", 2)

	rec := s.do(t, caller{}, http.MethodPost, "/api/carts", nil)
	requireStatus(t, rec, http.StatusOK)
	session := rec.Header().Get(cookie.CartSessionHeader)
	require.NotEmpty(t, session)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), cookie.CartSessionName+"="+session)
	cart := decode[cartBody](t, rec)
	guest := caller{session: session}

	// Same token resolves the same cart without a new cookie.
	rec = s.do(t, guest, http.MethodPost, "/api/carts", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, cart.ID, decode[cartBody](t, rec).ID)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))

	itemsPath := fmt.Sprintf("/api/carts/%d/items", cart.ID)
	rec = s.do(t, guest, http.MethodPost, itemsPath, map[string]any{"product_id": p, "quantity": 2})
	requireStatus(t, rec, http.StatusOK)
	cart = decode[cartBody](t, rec)
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int32(2), cart.ItemCount)

	rec = s.do(t, guest, http.MethodPost, itemsPath, map[string]any{"product_id": p, "quantity": 1})
	requireStatus(t, rec, http.StatusUnprocessableEntity)
	env := decode[errorEnvelope](t, rec)
	assert.Equal(t, "insufficient_stock", env.Error.Code)
	require.NotNil(t, env.Error.Stock)
	assert.Equal(t, p, env.Error.Stock.ProductID)
	assert.Equal(t, int32(2), env.Error.Stock.Available)
	assert.Equal(t, int32(3), env.Error.Stock.Requested)
	assert.Equal(t, int32(2), s.stock(t, p), "carts never reserve stock")

	rec = s.do(t, caller{session: "someone-else"}, http.MethodGet, fmt.Sprintf("/api/carts/%d", cart.ID), nil)
	requireStatus(t, rec, http.StatusNotFound)

	rec = s.do(t, guest, http.MethodPut, fmt.Sprintf("/api/carts/%d/items/%d", cart.ID, p), map[string]any{"quantity": 1})
	requireStatus(t, rec, http.StatusOK)
	assert.True(t, decode[cartBody](t, rec).Total.Equal(decimal.NewFromInt(100)))

	rec = s.do(t, guest, http.MethodDelete, fmt.Sprintf("/api/carts/%d/items/%d", cart.ID, p), nil)
	requireStatus(t, rec, http.StatusNoContent)

	rec = s.do(t, guest, http.MethodGet, fmt.Sprintf("/api/carts/%d", cart.ID), nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestCartAPI_Validation(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, "10", 5)

	rec := s.do(t, caller{userID: 1}, http.MethodPost, "/api/carts", nil)
	requireStatus(t, rec, http.StatusOK)
	cart := decode[cartBody](t, rec)
	itemsPath := fmt.Sprintf("/api/carts/%d/items", cart.ID)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"zero quantity", map[string]any{"product_id": p, "quantity": 0}, "quantity"},
		{"missing product", map[string]any{"quantity": 1}, "product_id"},
		{"unknown field", map[string]any{"product_id": p, "quantity": 1, "price": "1"}, ""},
		{"empty body", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, caller{userID: 1}, http.MethodPost, itemsPath, tt.body)
			requireStatus(t, rec, http.StatusBadRequest)
			env := decode[errorEnvelope](t, rec)
			assert.Equal(t, "invalid", env.Error.Code)
			if tt.field != "" {
				assert.Contains(t, env.Error.Fields, tt.field)
			}
		})
	}

	rec = s.do(t, caller{userID: 1}, http.MethodGet, "/api/carts/abc", nil)
	requireStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, caller{userID: 2}, http.MethodGet, fmt.Sprintf("/api/carts/%d", cart.ID), nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestCartAPI_MergeAndCheckout(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, "50", 10)

	rec := s.do(t, caller{}, http.MethodPost, "/api/carts", nil)
	requireStatus(t, rec, http.StatusOK)
	guest := caller{session: rec.Header().Get(cookie.CartSessionHeader)}
	cart := decode[cartBody](t, rec)

	rec = s.do(t, guest, http.MethodPost, fmt.Sprintf("/api/carts/%d/items", cart.ID), map[string]any{"product_id": p, "quantity": 3})
	requireStatus(t, rec, http.StatusOK)

	rec = s.do(t, guest, http.MethodPost, "/api/carts/merge", nil)
	requireStatus(t, rec, http.StatusUnauthorized)

	user := caller{userID: 7, session: guest.session}
	rec = s.do(t, user, http.MethodPost, "/api/carts/merge", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	merged := decode[cartBody](t, rec)
	require.NotNil(t, merged.UserID)
	assert.Equal(t, int64(7), *merged.UserID)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, int32(3), merged.Items[0].Quantity)
	assert.Equal(t, int32(10), s.stock(t, p))

	checkoutPath := fmt.Sprintf("/api/carts/%d/checkout", merged.ID)
	rec = s.do(t, caller{}, http.MethodPost, checkoutPath, nil)
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(t, caller{userID: 7}, http.MethodPost, checkoutPath, nil)
	requireStatus(t, rec, http.StatusCreated)
	order := decode[orderBody](t, rec)
	assert.Equal(t, "pendente", order.Status)
	assert.Equal(t, int32(1), order.Origin)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(150)))
	assert.Regexp(t, `^PED-[0-9A-F]{8}$`, order.Reference)
	assert.Equal(t, int32(7), s.stock(t, p))

	rec = s.do(t, caller{userID: 7}, http.MethodPost, checkoutPath, nil)
	requireStatus(t, rec, http.StatusConflict)
	assert.Equal(t, "conflict", decode[errorEnvelope](t, rec).Error.Code)
	assert.Equal(t, int32(7), s.stock(t, p))

	rec = s.do(t, caller{userID: 7}, http.MethodGet, "/api/orders/reference/"+order.Reference, nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, order.ID, decode[orderBody](t, rec).ID)
}

func TestOrderAPI_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, "100", 10)
	staff := caller{userID: 5}

	rec := s.do(t, caller{}, http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"product_id": p, "quantity": 2}},
	})
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(t, staff, http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"product_id": p, "quantity": 2}},
	})
	requireStatus(t, rec, http.StatusCreated)
	order := decode[orderBody](t, rec)
	assert.Equal(t, "por finalizar", order.Status)
	assert.Equal(t, int32(2), order.Origin)
	assert.Equal(t, int64(5), order.UserID)
	assert.True(t, order.Active)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int32(8), s.stock(t, p))
	require.Len(t, order.Items, 1)

	itemPath := fmt.Sprintf("/api/orders/%d/items/%d", order.ID, order.Items[0].ID)
	rec = s.do(t, staff, http.MethodPatch, itemPath, map[string]any{"quantity": 3})
	requireStatus(t, rec, http.StatusOK)
	assert.True(t, decode[orderBody](t, rec).Total.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, int32(7), s.stock(t, p))

	rec = s.do(t, staff, http.MethodPost, fmt.Sprintf("/api/orders/%d/prepare", order.ID), nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "em preparacao", decode[orderBody](t, rec).Status)

	finalizePath := fmt.Sprintf("/api/orders/%d/finalize", order.ID)
	rec = s.do(t, staff, http.MethodPost, finalizePath, map[string]any{"payment_type_id": 1, "paid_amount": "100"})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, staff, http.MethodPost, finalizePath, map[string]any{"payment_type_id": 1, "paid_amount": "500"})
	requireStatus(t, rec, http.StatusOK)
	finalized := decode[orderBody](t, rec)
	assert.Equal(t, "finalizado", finalized.Status)
	assert.True(t, finalized.Change.Equal(decimal.NewFromInt(200)))

	rec = s.do(t, staff, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", order.ID), map[string]any{"reason": "late"})
	requireStatus(t, rec, http.StatusConflict)
	assert.Equal(t, "invalid_transition", decode[errorEnvelope](t, rec).Error.Code)

	rec = s.do(t, staff, http.MethodGet, "/api/orders?status=finalizado", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]orderBody](t, rec), 1)

	rec = s.do(t, staff, http.MethodGet, "/api/orders?status=shipped", nil)
	requireStatus(t, rec, http.StatusBadRequest)
	rec = s.do(t, staff, http.MethodGet, "/api/orders", nil)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestOrderAPI_CancelRestoresStock(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, "10", 10)
	staff := caller{userID: 5}

	rec := s.do(t, staff, http.MethodPost, "/api/orders", map[string]any{
		"user_id": 12,
		"items":   []map[string]any{{"product_id": p, "quantity": 4}},
	})
	requireStatus(t, rec, http.StatusCreated)
	order := decode[orderBody](t, rec)
	assert.Equal(t, int64(12), order.UserID)
	assert.Equal(t, int32(6), s.stock(t, p))

	rec = s.do(t, staff, http.MethodGet, "/api/users/12/orders/active", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, order.ID, decode[orderBody](t, rec).ID)

	cancelPath := fmt.Sprintf("/api/orders/%d/cancel", order.ID)
	rec = s.do(t, staff, http.MethodPost, cancelPath, map[string]any{})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, decode[errorEnvelope](t, rec).Error.Fields, "reason")

	rec = s.do(t, staff, http.MethodPost, cancelPath, map[string]any{"reason": "customer left"})
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "cancelado", decode[orderBody](t, rec).Status)
	assert.Equal(t, int32(10), s.stock(t, p))

	rec = s.do(t, staff, http.MethodPost, cancelPath, map[string]any{"reason": "again"})
	requireStatus(t, rec, http.StatusConflict)
	assert.Equal(t, "conflict", decode[errorEnvelope](t, rec).Error.Code)
	assert.Equal(t, int32(10), s.stock(t, p))

	rec = s.do(t, staff, http.MethodGet, "/api/users/12/orders", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]orderBody](t, rec), 1)

	rec = s.do(t, staff, http.MethodGet, "/api/users/12/orders?status=cancelado&origin=2", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]orderBody](t, rec), 1)
	rec = s.do(t, staff, http.MethodGet, "/api/users/12/orders?status=cancelado&origin=1", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Empty(t, decode[[]orderBody](t, rec))
	rec = s.do(t, staff, http.MethodGet, "/api/users/12/orders?status=cancelado&origin=loja", nil)
	requireStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, staff, http.MethodGet, "/api/orders/9999", nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestOrderAPI_InsufficientStockRollsBack(t *testing.T) {
	s := newTestServer(t)
	a := s.product(t, "10", 5)
	b := s.product(t, "10", 1)

	rec := s.do(t, caller{userID: 3}, http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{
			{"product_id": a, "quantity": 2},
			{"product_id": b, "quantity": 2},
		},
	})
	requireStatus(t, rec, http.StatusUnprocessableEntity)
	env := decode[errorEnvelope](t, rec)
	require.NotNil(t, env.Error.Stock)
	assert.Equal(t, b, env.Error.Stock.ProductID)
	assert.Equal(t, int32(5), s.stock(t, a))
	assert.Equal(t, int32(1), s.stock(t, b))
}

func TestStockAPI(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, "25", 4)
	staff := caller{userID: 2}

	rec := s.do(t, caller{}, http.MethodGet, fmt.Sprintf("/api/products/%d", p), nil)
	requireStatus(t, rec, http.StatusOK)
	product := decode[struct {
		StockQuantity  int32           `json:"stock_quantity"`
		EffectivePrice decimal.Decimal `json:"effective_price"`
	}](t, rec)
	assert.Equal(t, int32(4), product.StockQuantity)
	assert.True(t, product.EffectivePrice.Equal(decimal.NewFromInt(25)))

	rec = s.do(t, staff, http.MethodPost, "/api/stock/movements", map[string]any{
		"product_id": p, "type": "entrada", "quantity": 6, "reason": "delivery",
	})
	requireStatus(t, rec, http.StatusCreated)
	movement := decode[struct {
		PreviousQuantity int32  `json:"previous_quantity"`
		NewQuantity      int32  `json:"new_quantity"`
		UserID           *int64 `json:"user_id"`
	}](t, rec)
	assert.Equal(t, int32(4), movement.PreviousQuantity)
	assert.Equal(t, int32(10), movement.NewQuantity)
	require.NotNil(t, movement.UserID)
	assert.Equal(t, int64(2), *movement.UserID)

	rec = s.do(t, staff, http.MethodPost, "/api/stock/movements", map[string]any{
		"product_id": p, "type": "saida", "quantity": 11,
	})
	requireStatus(t, rec, http.StatusUnprocessableEntity)

	rec = s.do(t, staff, http.MethodPost, "/api/stock/movements", map[string]any{
		"product_id": p, "type": "perda", "quantity": 1,
	})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, staff, http.MethodGet, fmt.Sprintf("/api/products/%d/movements", p), nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]json.RawMessage](t, rec), 1)

	rec = s.do(t, caller{}, http.MethodGet, fmt.Sprintf("/api/products/%d/movements", p), nil)
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(t, staff, http.MethodGet, "/api/stock/movements?from=2000-01-01", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]json.RawMessage](t, rec), 1)
	rec = s.do(t, staff, http.MethodGet, "/api/stock/movements?to=2000-01-01T00:00:00Z", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Empty(t, decode[[]json.RawMessage](t, rec))
	rec = s.do(t, staff, http.MethodGet, "/api/stock/movements?from=ontem", nil)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestReferenceDataAPI(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, caller{}, http.MethodGet, "/api/payment-types", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]json.RawMessage](t, rec), 3)

	rec = s.do(t, caller{}, http.MethodGet, "/api/delivery-types/2", nil)
	requireStatus(t, rec, http.StatusOK)
	dt := decode[struct {
		Surcharge decimal.Decimal `json:"surcharge"`
	}](t, rec)
	assert.True(t, dt.Surcharge.Equal(decimal.NewFromInt(1000)))

	rec = s.do(t, caller{}, http.MethodGet, "/api/delivery-types/99", nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, caller{}, http.MethodGet, "/health", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, rec.Body.String())

	rec = s.do(t, caller{}, http.MethodGet, "/metrics", nil)
	requireStatus(t, rec, http.StatusOK)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return io.ErrUnexpectedEOF }

func TestHealth_DatabaseDown(t *testing.T) {
	h := api.NewHealthHandler(downPinger{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	requireStatus(t, rec, http.StatusServiceUnavailable)
	assert.JSONEq(t, `{"status":"unavailable","database":"down"}`, rec.Body.String())
}
