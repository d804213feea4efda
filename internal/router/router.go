// Package router is the HTTP front of the cart and order API: Go 1.22
// ServeMux patterns plus a middleware chain that groups can extend.
package router

import (
	"net/http"
	"slices"
)

// Router registers method-scoped routes on a shared ServeMux. The chain is
// applied per route inside the mux, so middleware sees r.Pattern (the
// metrics and logging middleware label requests with it).
type Router struct {
	mux   *http.ServeMux
	chain []Middleware
}

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// New returns a Router whose routes all run behind middleware, outermost
// first.
func New(middleware ...Middleware) *Router {
	return &Router{
		mux:   http.NewServeMux(),
		chain: middleware,
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Get registers a read such as GET /api/orders/{id}.
func (r *Router) Get(pattern string, h http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, middleware...)
}

func (r *Router) Post(pattern string, h http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPost, pattern, h, middleware...)
}

func (r *Router) Put(pattern string, h http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPut, pattern, h, middleware...)
}

func (r *Router) Patch(pattern string, h http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPatch, pattern, h, middleware...)
}

func (r *Router) Delete(pattern string, h http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodDelete, pattern, h, middleware...)
}

// Handle registers h for method and pattern. Route middleware runs after
// the router's own chain, e.g. the checkout rate limiter after RequireUser.
func (r *Router) Handle(method, pattern string, h http.Handler, middleware ...Middleware) {
	r.mux.Handle(method+" "+pattern, r.wrap(h, middleware))
}

func (r *Router) wrap(h http.Handler, route []Middleware) http.Handler {
	chain := append(slices.Clone(r.chain), route...)
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// Group returns a Router on the same mux with middleware appended to the
// chain. The API uses one for every route that needs a signed-in user.
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:   r.mux,
		chain: append(slices.Clone(r.chain), middleware...),
	}
}
