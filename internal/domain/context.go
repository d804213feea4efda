// Package domain provides the core business types, error taxonomy and
// context helpers shared by the cart, order and stock services.
//
// Context helpers centralize request-scoped data access so handlers and
// services read the caller's identity the same way.
package domain

import (
	"context"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// userIDContextKey stores the authenticated user ID.
	userIDContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// --- User Context Helpers ---

// NewContextWithUserID returns a new context carrying the authenticated user ID.
// The ID is resolved by an external auth collaborator; guests carry none.
func NewContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext retrieves the user ID from context.
// The second result is false for guest requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDContextKey).(int64)
	return id, ok
}

// RequireUserID retrieves the user ID from context, panicking if not present.
// The panic will be caught by recovery middleware in HTTP handlers.
func RequireUserID(ctx context.Context) int64 {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		panic("user_id required in context but not found")
	}
	return id
}

// IsAuthenticated returns true if there is a user in context.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := UserIDFromContext(ctx)
	return ok
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
