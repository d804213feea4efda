// Package cookie carries the guest cart session token between requests.
// Browsers get it as an HttpOnly cookie; API clients may send it in the
// X-Cart-Session header instead.
package cookie

import (
	"net/http"
	"time"
)

const (
	// CartSessionName is the cookie holding the guest cart token.
	CartSessionName = "loja_cart"

	// CartSessionHeader is the header alternative to the cookie.
	CartSessionHeader = "X-Cart-Session"
)

// Config holds cookie configuration.
type Config struct {
	// Secure determines whether cookies require HTTPS.
	// Should be true in production, false in development.
	Secure bool

	// MaxAge is how long the browser keeps the token. It should match the
	// abandoned cart window so the cookie never outlives its cart by long.
	MaxAge time.Duration
}

// NewConfig creates a new cookie configuration.
func NewConfig(secure bool, maxAge time.Duration) *Config {
	return &Config{Secure: secure, MaxAge: maxAge}
}

// SetCartSession stores the guest cart token and echoes it in the header.
func (c *Config) SetCartSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CartSessionName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(CartSessionHeader, token)
}

// ClearCartSession removes the guest cart token, after a merge at login.
func (c *Config) ClearCartSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CartSessionName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CartSession returns the guest cart token from the header or the cookie.
// The header wins when both are present.
func CartSession(r *http.Request) string {
	if token := r.Header.Get(CartSessionHeader); token != "" {
		return token
	}
	if ck, err := r.Cookie(CartSessionName); err == nil {
		return ck.Value
	}
	return ""
}
