package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loja1/projectohibrido/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int32  `json:"quantity" validate:"gte=1"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"valid", `{"product_id":1,"quantity":2}`, nil},
		{"missing product", `{"quantity":2}`, []string{"product_id"}},
		{"two failures", `{"quantity":0,"email":"nope"}`, []string{"product_id", "quantity", "email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst sampleRequest
			err := DecodeJSON(req, "test.decode", &dst)
			if tt.fields == nil {
				require.NoError(t, err)
				assert.Equal(t, int64(1), dst.ProductID)
				return
			}
			require.True(t, domain.IsValidationError(err), "got %v", err)
			fields := domain.GetValidationFields(err)
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ``},
		{"syntax", `{"product_id":`},
		{"unknown field", `{"product_id":1,"quantity":1,"price":"9"}`},
		{"wrong type", `{"product_id":"one","quantity":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst sampleRequest
			err := DecodeJSON(req, "test.decode", &dst)
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			assert.False(t, domain.IsValidationError(err))
		})
	}
}

func TestPathInt64(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.SetPathValue("id", tt.value)

			got, err := PathInt64(req, "id")
			if !tt.ok {
				assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())
}
