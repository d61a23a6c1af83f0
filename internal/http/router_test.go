package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payconnect/internal/config"
	"payconnect/internal/provider/base"
	"payconnect/internal/provider/connectors"
	merchantsvc "payconnect/internal/services/merchant"
	paymentsvc "payconnect/internal/services/payment"
	"payconnect/internal/store/memory"
)

const adminToken = "admin-secret"

var aesKey = []byte(strings.Repeat("a", 32))

func newTestRouter(t *testing.T, gateway http.HandlerFunc) http.Handler {
	t.Helper()
	srv := httptest.NewServer(gateway)
	t.Cleanup(srv.Close)

	reg, err := connectors.NewRegistry(connectors.Options{NordeaBaseURL: srv.URL, MoneiBaseURL: srv.URL})
	require.NoError(t, err)

	accounts := memory.NewAccounts()
	promReg := prometheus.NewRegistry()
	transport := base.NewHTTPClient(5*time.Second, base.WithRetries(0), base.WithMetrics(base.NewMetrics(promReg)))

	var cfg config.Cfg
	cfg.App.Env = "sandbox"
	cfg.Sec.AdminToken = adminToken

	return NewRouter(RouterDependencies{
		Config:          cfg,
		MerchantService: merchantsvc.NewService(memory.NewMerchants(), accounts, reg, aesKey),
		PaymentService:  paymentsvc.NewService(reg, transport, accounts, memory.NewTokens(), aesKey),
		Gatherer:        promReg,
	})
}

func do(t *testing.T, h http.Handler, method, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// onboardMonei returns the API key of a fresh merchant with a Monei account.
func onboardMonei(t *testing.T, h http.Handler) (string, string) {
	t.Helper()
	admin := map[string]string{"X-Admin-Token": adminToken}

	rec := do(t, h, http.MethodPost, "/admin/onboard", admin, map[string]string{"name": "Cafe Sol"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var onboarded merchantsvc.OnboardingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &onboarded))

	rec = do(t, h, http.MethodPost, "/admin/merchants/"+onboarded.MerchantID+"/accounts", admin, map[string]string{
		"connector": "monei", "authKind": "header_key", "apiKey": "pk_test_monei",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return onboarded.MerchantID, onboarded.APIKey
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := do(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"monei"`)
	assert.Contains(t, rec.Body.String(), `"nordea"`)

	rec = do(t, h, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	h := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := do(t, h, http.MethodPost, "/admin/onboard", nil, map[string]string{"name": "Cafe Sol"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, h, http.MethodPost, "/admin/onboard", map[string]string{"X-Admin-Token": "nope"}, map[string]string{"name": "Cafe Sol"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/admin/merchants/mer_missing/accounts", map[string]string{"X-Admin-Token": adminToken}, map[string]string{
		"connector": "monei", "authKind": "header_key", "apiKey": "k",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIRequiresMerchantKey(t *testing.T) {
	h := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := do(t, h, http.MethodGet, "/api/v1/connectors", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/connectors", map[string]string{"Authorization": "Bearer pk_unknown"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizeEndToEnd(t *testing.T) {
	h := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pk_test_monei", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/payments", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1999", body["amount"])
		_, _ = io.WriteString(w, `{"id":"tx1","orderId":"pay_1","status":"SUCCEEDED"}`)
	})
	_, key := onboardMonei(t, h)
	auth := map[string]string{"Authorization": "Bearer " + key}

	rec := do(t, h, http.MethodPost, "/api/v1/payments/monei/authorize", auth, map[string]any{
		"payment_id": "pay_1",
		"amount":     1999,
		"currency":   "eur",
		"payment_method": map[string]any{
			"type": "card",
			"card": map[string]string{"number": "4444444444444406", "expiry_month": "12", "expiry_year": "34", "cvc": "123"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "charged", res["status"])
	assert.Equal(t, "tx1", res["connector_transaction_id"])
}

func TestFlowErrorStatuses(t *testing.T) {
	h := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})
	_, key := onboardMonei(t, h)
	auth := map[string]string{"Authorization": "Bearer " + key}
	sepa := map[string]any{
		"payment_id": "pay_1", "amount": 100, "currency": "EUR",
		"payment_method": map[string]any{"type": "sepa_bank_debit", "sepa_bank_debit": map[string]string{"iban": "FI2112345600000785"}},
	}

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown connector", http.MethodPost, "/api/v1/payments/stripe/authorize", sepa, http.StatusNotFound},
		{"account not configured", http.MethodPost, "/api/v1/payments/nordea/preprocess", sepa, http.StatusNotFound},
		{"flow not implemented", http.MethodPost, "/api/v1/refunds/nordea", map[string]any{"refund_id": "r1", "connector_transaction_id": "tx1", "amount": 1, "currency": "EUR"}, http.StatusNotImplemented},
		{"unsupported method", http.MethodPost, "/api/v1/payments/monei/authorize", sepa, http.StatusUnprocessableEntity},
		{"missing method", http.MethodPost, "/api/v1/payments/monei/authorize", map[string]any{"amount": 100, "currency": "EUR"}, http.StatusBadRequest},
		{"bad amount", http.MethodPost, "/api/v1/payments/monei/authorize", map[string]any{"amount": 0, "currency": "EUR"}, http.StatusBadRequest},
		{"bad currency", http.MethodPost, "/api/v1/payments/monei/authorize", map[string]any{"amount": 5, "currency": "XXX"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, auth, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestListConnectors(t *testing.T) {
	h := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})
	_, key := onboardMonei(t, h)

	rec := do(t, h, http.MethodGet, "/api/v1/connectors", map[string]string{"Authorization": "Bearer " + key}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Connectors []struct {
			Kind             string   `json:"kind"`
			Implemented      []string `json:"implemented_flows"`
			NeedsAccessToken bool     `json:"needs_access_token"`
		} `json:"connectors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Connectors, 2)
	assert.Equal(t, "monei", out.Connectors[0].Kind)
	assert.NotContains(t, out.Connectors[1].Implemented, "refund_execute")
	assert.True(t, out.Connectors[1].NeedsAccessToken)
}

func TestStoreAccessToken(t *testing.T) {
	h := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})
	_, key := onboardMonei(t, h)
	auth := map[string]string{"Authorization": "Bearer " + key}

	rec := do(t, h, http.MethodPut, "/api/v1/connectors/monei/access-token", auth, map[string]any{"token": "tok", "expires_at": time.Now().Add(time.Hour)})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodPut, "/api/v1/connectors/nordea/access-token", auth, map[string]any{"token": "tok"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodPut, "/api/v1/connectors/monei/access-token", auth, map[string]any{"token": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
