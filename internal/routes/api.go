package routes

import (
	"github.com/loja1/projectohibrido/internal/middleware"
	"github.com/loja1/projectohibrido/internal/router"
)

// RegisterAPIRoutes registers the JSON API. Cart routes serve guests and
// signed-in users alike; order and stock routes require a user.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Carts
	r.Post("/api/carts", deps.CartHandler.Create)
	r.Get("/api/carts/{id}", deps.CartHandler.Get)
	r.Delete("/api/carts/{id}", deps.CartHandler.Delete)
	r.Post("/api/carts/{id}/items", deps.CartHandler.AddItem)
	r.Put("/api/carts/{id}/items/{productID}", deps.CartHandler.SetQuantity)
	r.Delete("/api/carts/{id}/items/{productID}", deps.CartHandler.RemoveItem)

	// Reference data and catalog reads
	r.Get("/api/products/{id}", deps.StockHandler.GetProduct)
	r.Get("/api/payment-types", deps.OrderHandler.ListPaymentTypes)
	r.Get("/api/delivery-types/{id}", deps.OrderHandler.GetDeliveryType)

	authed := r.Group(middleware.RequireUser)

	// Login merge and checkout
	authed.Post("/api/carts/merge", deps.CartHandler.Merge)
	if deps.CheckoutLimiter != nil {
		authed.Post("/api/carts/{id}/checkout", deps.CartHandler.Checkout, deps.CheckoutLimiter.Middleware)
	} else {
		authed.Post("/api/carts/{id}/checkout", deps.CartHandler.Checkout)
	}

	// Orders
	authed.Post("/api/orders", deps.OrderHandler.Create)
	authed.Get("/api/orders", deps.OrderHandler.List)
	authed.Get("/api/orders/{id}", deps.OrderHandler.Get)
	authed.Get("/api/orders/reference/{reference}", deps.OrderHandler.GetByReference)
	authed.Post("/api/orders/{id}/items", deps.OrderHandler.AddItem)
	authed.Patch("/api/orders/{id}/items/{itemID}", deps.OrderHandler.EditItem)
	authed.Delete("/api/orders/{id}/items/{itemID}", deps.OrderHandler.RemoveItem)
	authed.Post("/api/orders/{id}/finalize", deps.OrderHandler.Finalize)
	authed.Post("/api/orders/{id}/cancel", deps.OrderHandler.Cancel)
	authed.Post("/api/orders/{id}/activate", deps.OrderHandler.Activate)
	authed.Post("/api/orders/{id}/deactivate", deps.OrderHandler.Deactivate)
	authed.Post("/api/orders/{id}/prepare", deps.OrderHandler.Prepare)
	authed.Get("/api/users/{userID}/orders", deps.OrderHandler.ListByUser)
	authed.Get("/api/users/{userID}/orders/active", deps.OrderHandler.GetActive)

	// Stock movements
	authed.Post("/api/stock/movements", deps.StockHandler.RecordMovement)
	authed.Get("/api/stock/movements", deps.StockHandler.ListAllMovements)
	authed.Get("/api/products/{id}/movements", deps.StockHandler.ListMovements)
}

// RegisterOpsRoutes registers the health check and the Prometheus scrape
// endpoint.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/health", deps.HealthHandler.Check)
	r.Handle("GET", "/metrics", deps.MetricsHandler)
}
