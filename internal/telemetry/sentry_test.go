package telemetry

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSentry_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cleanup, err := InitSentry(SentryConfig{Enabled: false}, logger)
	require.NoError(t, err)
	cleanup()
	assert.False(t, IsEnabled())

	cleanup, err = InitSentry(SentryConfig{Enabled: true}, logger)
	require.NoError(t, err)
	cleanup()
	assert.False(t, IsEnabled(), "missing DSN disables Sentry")

	assert.NotPanics(t, func() {
		CaptureError(errors.New("ignored"), nil)
	})
}

func TestDropClientErrors(t *testing.T) {
	event := &sentry.Event{}

	tests := []struct {
		name string
		err  error
		keep bool
	}{
		{"plain error", errors.New("db down"), true},
		{"internal domain error", domain.Internal(errors.New("x"), "op", "failed"), true},
		{"not found", domain.NotFound("op", "cart", "1"), false},
		{"insufficient stock", domain.InsufficientStock("op", 1, 0, 1), false},
		{"invalid transition", domain.InvalidTransition("op", "cancelado", "cancel"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dropClientErrors(event, &sentry.EventHint{OriginalException: tt.err})
			if tt.keep {
				assert.NotNil(t, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}

	assert.NotNil(t, dropClientErrors(event, nil))
}

func TestSentryMiddleware_Disabled(t *testing.T) {
	handler := SentryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
