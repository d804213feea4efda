package middleware

import (
	"net/http"
	"strconv"

	"github.com/loja1/projectohibrido/internal/domain"
)

// UserIDHeader carries the authenticated user's ID. Authentication happens
// upstream; the gateway sets this header only for signed-in callers and
// strips it from client requests.
const UserIDHeader = "X-User-ID"

// WithUserID stores the caller's user ID in the context when the identity
// header is present. Requests without it continue as guests.
func WithUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			respondBadRequest(w, r, "Invalid "+UserIDHeader+" header")
			return
		}

		ctx := domain.NewContextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects guest requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !domain.IsAuthenticated(r.Context()) {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
