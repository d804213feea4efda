package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/loja1/projectohibrido/internal/domain"
)

// GenerateSessionID generates an unguessable guest cart token: 24 random
// bytes, URL-safe base64 without padding.
func GenerateSessionID() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewOrderReference returns a human-readable order reference such as
// "PED-1A2B3C4D". Uniqueness is enforced by the orders.reference index.
func NewOrderReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.OrderReferencePrefix + strings.ToUpper(id[:8])
}
