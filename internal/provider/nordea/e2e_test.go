package nordea

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
	"payconnect/internal/provider/base"
	"payconnect/internal/signing"
	"payconnect/internal/signing/signingtest"
)

// verifyingServer checks every request's signature the way the bank does
// before answering with reply.
func verifyingServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	pub, err := signing.ParsePublicKey(signingtest.PublicKeyPEM)
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		parts, err := signing.ParseSignatureHeader(r.Header.Get("Signature"))
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "client-id", parts["keyId"])
		assert.Equal(t, signing.Algorithm, parts["algorithm"])

		p := signing.Params{
			Method:      r.Method,
			Host:        r.Header.Get("X-Nordea-Originating-Host"),
			Date:        r.Header.Get("X-Nordea-Originating-Date"),
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			Digest:      r.Header.Get("Digest"),
		}
		if signing.MethodHasBody(r.Method) {
			assert.Equal(t, signing.Digest(body), p.Digest)
		}
		canonical, err := signing.NordeaScheme.CanonicalString(p)
		require.NoError(t, err)
		assert.Equal(t, canonical.HeaderList(), parts["headers"])
		assert.NoError(t, signing.VerifyCanonical(pub, canonical.Text, parts["signature"]))

		assert.Equal(t, "Bearer nordea-token", r.Header.Get("Authorization"))
		assert.Equal(t, "client-secret", r.Header.Get("X-IBM-Client-Secret"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
}

func TestExecuteInitiateAgainstSignatureCheckingServer(t *testing.T) {
	srv := verifyingServer(t, http.StatusCreated, `{
		"group_header": {"http_code": 201},
		"response": {"_id": "nordea-pay-9", "payment_status": "PendingConfirmation", "external_id": "pay_123"}
	}`)
	defer srv.Close()

	c := testConnector(t, srv.URL)
	client := base.NewHTTPClient(5*time.Second, base.WithRetries(0))

	res, env, err := provider.Execute(context.Background(), client, c, provider.FlowPreprocessing, c.Preprocessing, call(t, c, authorizeRequest()))
	require.NoError(t, err)
	require.Nil(t, env)
	assert.Equal(t, payment.AttemptConfirmationAwaited, res.Status)
	assert.Equal(t, "nordea-pay-9", res.ConnectorTransactionID)
}

func TestExecuteSyncAgainstSignatureCheckingServer(t *testing.T) {
	srv := verifyingServer(t, http.StatusOK, `{
		"response": {"_id": "nordea-pay-9", "payment_status": "PAID"}
	}`)
	defer srv.Close()

	c := testConnector(t, srv.URL)
	client := base.NewHTTPClient(5*time.Second, base.WithRetries(0))

	req := payment.SyncRequest{PaymentID: "pay_123", ConnectorTransactionID: "nordea-pay-9"}
	res, env, err := provider.Execute(context.Background(), client, c, provider.FlowPSync, c.PSync, call(t, c, req))
	require.NoError(t, err)
	require.Nil(t, env)
	assert.Equal(t, payment.AttemptCharged, res.Status)
}

func TestExecuteReturnsEnvelopeOnRejection(t *testing.T) {
	srv := verifyingServer(t, http.StatusBadRequest, `{
		"group_header": {"http_code": 400},
		"error": {"failures": [{"code": "error.amount", "description": "amount too large", "type": "Validation"}]}
	}`)
	defer srv.Close()

	c := testConnector(t, srv.URL)
	client := base.NewHTTPClient(5*time.Second, base.WithRetries(0))

	_, env, err := provider.Execute(context.Background(), client, c, provider.FlowPreprocessing, c.Preprocessing, call(t, c, authorizeRequest()))
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	assert.Equal(t, "error.amount", env.Code)
	assert.Equal(t, "amount too large", env.Message)
}

func TestExecuteUnimplementedFlow(t *testing.T) {
	c := testConnector(t, "https://api.nordeaopenbanking.com")
	_, _, err := provider.Execute(context.Background(), base.NewHTTPClient(time.Second), c, provider.FlowRefundExecute, c.RefundExecute,
		provider.Call[payment.RefundRequest]{})
	assert.ErrorIs(t, err, provider.ErrNotImplemented)
}
