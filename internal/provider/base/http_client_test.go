package base

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payconnect/internal/provider"
)

func newTestClient(reg prometheus.Registerer) (*HTTPClient, *Metrics) {
	m := NewMetrics(reg)
	return NewHTTPClient(5*time.Second, WithRetries(2), WithBackoffInterval(time.Millisecond), WithMetrics(m)), m
}

func TestSendRetriesIdempotentOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, m := newTestClient(prometheus.NewRegistry())
	resp, err := client.Send(context.Background(), &provider.Request{
		Connector: provider.Monei,
		Flow:      provider.FlowPSync,
		Method:    http.MethodGet,
		URL:       srv.URL + "/v1/payments/1",
		Headers:   provider.Headers{{Name: "Authorization", Value: "Bearer tok", Sensitive: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("monei", "psync", OutcomeSuccess)))
}

func TestSendDoesNotRetryPost(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"amount":"1000"}`, string(body))
		assert.Equal(t, provider.ContentTypeJSON, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"code":"E"}`))
	}))
	defer srv.Close()

	body, err := provider.JSONContent(map[string]string{"amount": "1000"})
	require.NoError(t, err)

	client, m := newTestClient(prometheus.NewRegistry())
	resp, err := client.Send(context.Background(), &provider.Request{
		Connector: provider.Monei,
		Flow:      provider.FlowAuthorize,
		Method:    http.MethodPost,
		URL:       srv.URL + "/v1/payments",
		Headers:   provider.Headers{{Name: "Content-Type", Value: body.ContentType()}},
		Body:      body,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("monei", "authorize", OutcomeConnectorError)))
}

func TestSendExhaustedRetriesReturnsLastResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := newTestClient(nil)
	resp, err := client.Send(context.Background(), &provider.Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, m := newTestClient(prometheus.NewRegistry())
	_, err := client.Send(context.Background(), &provider.Request{
		Connector: provider.Nordea,
		Flow:      provider.FlowPSync,
		Method:    http.MethodGet,
		URL:       url,
	})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("nordea", "psync", OutcomeTransportError)))
}

func TestNewMetricsWithoutRegisterer(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() { m = NewMetrics(nil) })
	m.observe("monei", "psync", OutcomeSuccess, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("monei", "psync", OutcomeSuccess)))
}
