package middlewarex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"payconnect/internal/domain/merchant"
)

type resolverStub map[string]*merchant.Merchant

func (s resolverStub) MerchantByAPIKey(_ context.Context, key string) (*merchant.Merchant, error) {
	if m, ok := s[key]; ok {
		return m, nil
	}
	return nil, errors.New("not found")
}

func echoMerchant() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := MerchantID(r.Context())
		w.Write([]byte(id))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth(resolverStub{
		"pk_live":      {ID: "mer_1", Status: merchant.StatusActive},
		"pk_suspended": {ID: "mer_2", Status: merchant.StatusSuspended},
	})(echoMerchant())

	cases := []struct {
		header string
		code   int
		body   string
	}{
		{"", http.StatusUnauthorized, ""},
		{"Basic abc", http.StatusUnauthorized, ""},
		{"Bearer pk_unknown", http.StatusUnauthorized, ""},
		{"Bearer pk_suspended", http.StatusForbidden, ""},
		{"Bearer pk_live", http.StatusOK, "mer_1"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.code, rec.Code, tc.header)
		if tc.body != "" {
			assert.Equal(t, tc.body, rec.Body.String())
		}
	}
}

func TestAdminAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Token", "s3cret")
	rec := httptest.NewRecorder()
	AdminAuth("s3cret")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	AdminAuth("")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "an unset admin token locks the routes")

	req.Header.Set("X-Admin-Token", "wrong")
	rec = httptest.NewRecorder()
	AdminAuth("s3cret")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMerchantIDContext(t *testing.T) {
	_, ok := MerchantID(context.Background())
	assert.False(t, ok)
	_, ok = MerchantID(WithMerchantID(context.Background(), ""))
	assert.False(t, ok)
	id, ok := MerchantID(WithMerchantID(context.Background(), "mer_1"))
	assert.True(t, ok)
	assert.Equal(t, "mer_1", id)
}
