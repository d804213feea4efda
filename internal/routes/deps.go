package routes

import (
	"net/http"

	"github.com/loja1/projectohibrido/internal/handler/api"
	"github.com/loja1/projectohibrido/internal/middleware"
)

// APIDeps contains dependencies for the JSON API routes
type APIDeps struct {
	// Carts (consolidated: cart lines, merge at login, checkout)
	CartHandler *api.CartHandler

	// Orders (consolidated: reads, status machine, line edits, reference data)
	OrderHandler *api.OrderHandler

	// Stock (product reads, movement journal)
	StockHandler *api.StockHandler

	// CheckoutLimiter throttles cart conversion per caller
	CheckoutLimiter *middleware.RateLimiter
}

// OpsDeps contains dependencies for the operational endpoints
type OpsDeps struct {
	HealthHandler  *api.HealthHandler
	MetricsHandler http.Handler
}
