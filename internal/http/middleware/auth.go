package middlewarex

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"payconnect/internal/domain/merchant"
)

// MerchantResolver maps a plaintext API key to its merchant.
type MerchantResolver interface {
	MerchantByAPIKey(ctx context.Context, apiKey string) (*merchant.Merchant, error)
}

func APIKeyAuth(resolver MerchantResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			key := strings.TrimPrefix(auth, "Bearer ")

			m, err := resolver.MerchantByAPIKey(r.Context(), key)
			if err != nil {
				http.Error(w, "invalid key", http.StatusUnauthorized)
				return
			}
			if !m.IsActive() {
				http.Error(w, "merchant suspended", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithMerchantID(r.Context(), m.ID)))
		})
	}
}

// AdminAuth guards operator routes with a shared X-Admin-Token. An empty
// configured token rejects every request.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Admin-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
