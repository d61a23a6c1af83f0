package payconnect_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payconnect/internal/config"
	httpx "payconnect/internal/http"
	"payconnect/internal/provider/base"
	"payconnect/internal/provider/connectors"
	merchantsvc "payconnect/internal/services/merchant"
	paymentsvc "payconnect/internal/services/payment"
	"payconnect/internal/signing"
	"payconnect/internal/signing/signingtest"
	"payconnect/internal/store/memory"
)

// bankGateway verifies each signed request and walks a SEPA payment from
// initiation through confirmation to a settled status.
func bankGateway(t *testing.T, calls *atomic.Int32) http.HandlerFunc {
	pub, err := signing.ParsePublicKey(signingtest.PublicKeyPEM)
	require.NoError(t, err)

	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		parts, err := signing.ParseSignatureHeader(r.Header.Get("Signature"))
		require.NoError(t, err)
		canonical, err := signing.NordeaScheme.CanonicalString(signing.Params{
			Method:      r.Method,
			Host:        r.Header.Get("X-Nordea-Originating-Host"),
			Date:        r.Header.Get("X-Nordea-Originating-Date"),
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			Digest:      r.Header.Get("Digest"),
		})
		require.NoError(t, err)
		if err := signing.VerifyCanonical(pub, canonical.Text, parts["signature"]); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":{"failures":[{"code":"error.signature","description":"signature mismatch"}]}}`)
			return
		}
		if signing.MethodHasBody(r.Method) {
			assert.Equal(t, signing.Digest(body), r.Header.Get("Digest"))
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/sepa-credit-transfer"):
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"response":{"_id":"np1","payment_status":"PendingConfirmation"}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/personal/v5/payments":
			assert.Contains(t, string(body), `"redirect_url":"https://shop.example/return"`)
			io.WriteString(w, `{"response":{"payments":[{"_id":"np1","payment_status":"PendingSecondConfirmation"}]}}`)
		case r.Method == http.MethodGet:
			io.WriteString(w, `{"response":{"_id":"np1","payment_status":"Paid"}}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

type client struct {
	t       *testing.T
	handler http.Handler
	headers map[string]string
}

func (c client) call(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Status
}

func TestNordeaPaymentLifecycle(t *testing.T) {
	var calls atomic.Int32
	bank := httptest.NewServer(bankGateway(t, &calls))
	defer bank.Close()

	reg, err := connectors.NewRegistry(connectors.Options{NordeaBaseURL: bank.URL, MoneiBaseURL: bank.URL, KeyCacheTTL: time.Minute})
	require.NoError(t, err)

	aesKey := bytes.Repeat([]byte{1}, 32)
	accounts := memory.NewAccounts()
	var cfg config.Cfg
	cfg.Sec.AdminToken = "root"
	h := httpx.NewRouter(httpx.RouterDependencies{
		Config:          cfg,
		MerchantService: merchantsvc.NewService(memory.NewMerchants(), accounts, reg, aesKey),
		PaymentService:  paymentsvc.NewService(reg, base.NewHTTPClient(5*time.Second, base.WithRetries(0)), accounts, memory.NewTokens(), aesKey),
		Gatherer:        prometheus.NewRegistry(),
	})

	admin := client{t: t, handler: h, headers: map[string]string{"X-Admin-Token": "root"}}
	rec := admin.call(http.MethodPost, "/admin/onboard", map[string]string{"name": "Cafe Sol"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var onboarded merchantsvc.OnboardingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &onboarded))

	rec = admin.call(http.MethodPost, "/admin/merchants/"+onboarded.MerchantID+"/accounts", map[string]any{
		"connector": "nordea",
		"authKind":  "signature_key",
		"apiKey":    "client-secret",
		"key1":      "client-id",
		"apiSecret": signingtest.PKCS8PrivateKeyPEM,
		"metadata":  map[string]string{"destination_account_number": "FI7473834510057469", "merchant_name": "Cafe Sol"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	api := client{t: t, handler: h, headers: map[string]string{"Authorization": "Bearer " + onboarded.APIKey}}
	initiate := map[string]any{
		"payment_id": "pay_1",
		"amount":     1050,
		"currency":   "EUR",
		"payment_method": map[string]any{
			"type":            "sepa_bank_debit",
			"sepa_bank_debit": map[string]string{"iban": "FI2112345600000785", "account_holder": "Ana"},
		},
	}

	rec = api.call(http.MethodPost, "/api/v1/payments/nordea/preprocess", initiate)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code, "no access token stored yet")
	assert.Equal(t, int32(0), calls.Load())

	rec = api.call(http.MethodPut, "/api/v1/connectors/nordea/access-token", map[string]any{"token": "bank-token", "expires_at": time.Now().Add(time.Hour)})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.call(http.MethodPost, "/api/v1/payments/nordea/preprocess", initiate)
	assert.Equal(t, "confirmation_awaited", decodeStatus(t, rec))

	initiate["connector_transaction_id"] = "np1"
	initiate["browser_info"] = map[string]string{"ip_address": "203.0.113.7"}
	initiate["return_url"] = "https://shop.example/return"
	rec = api.call(http.MethodPost, "/api/v1/payments/nordea/authorize", initiate)
	assert.Equal(t, "confirmation_awaited", decodeStatus(t, rec))

	rec = api.call(http.MethodGet, "/api/v1/payments/nordea/np1?payment_id=pay_1", nil)
	assert.Equal(t, "charged", decodeStatus(t, rec))
	assert.Equal(t, int32(3), calls.Load())

	rec = api.call(http.MethodPost, "/api/v1/refunds/nordea", map[string]any{"refund_id": "ref_1", "connector_transaction_id": "np1", "amount": 1050, "currency": "EUR"})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
