package base

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"payconnect/internal/provider"
)

const userAgent = "PayConnect/1.0"

// HTTPClient is the outbound transport of every connector. Idempotent
// requests are retried with exponential backoff on network errors and 5xx
// answers; other requests are sent once.
type HTTPClient struct {
	client          *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	metrics         *Metrics
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithRetries sets how many times an idempotent request is retried.
func WithRetries(n int) Option {
	return func(c *HTTPClient) {
		if n < 0 {
			n = 0
		}
		c.maxRetries = uint64(n)
	}
}

// WithBackoffInterval sets the first retry delay.
func WithBackoffInterval(d time.Duration) Option {
	return func(c *HTTPClient) { c.initialInterval = d }
}

// WithMetrics records request outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// WithTransport replaces the round tripper under the tracing wrapper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.client.Transport = otelhttp.NewTransport(rt) }
}

// NewHTTPClient creates a new HTTP client with default settings
func NewHTTPClient(timeout time.Duration, opts ...Option) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &HTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxRetries:      2,
		initialInterval: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type retryableStatus struct{ code int }

func (e *retryableStatus) Error() string { return fmt.Sprintf("retryable status %d", e.code) }

// Send implements provider.Transport.
func (c *HTTPClient) Send(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	start := time.Now()
	connector, flow := string(req.Connector), string(req.Flow)

	var body []byte
	if req.Body != nil {
		body = req.Body.Bytes()
	}

	var (
		resp    *provider.Response
		attempt int
	)
	op := func() error {
		attempt++
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		httpReq.Header = req.Headers.HTTP()
		httpReq.Header.Set("User-Agent", userAgent)

		log.Debug().
			Str("connector", connector).
			Str("flow", flow).
			Str("method", req.Method).
			Str("url", req.URL).
			Int("attempt", attempt).
			Msg("making HTTP request")

		httpResp, err := c.client.Do(httpReq)
		if err != nil {
			log.Error().
				Str("connector", connector).
				Str("url", req.URL).
				Int("attempt", attempt).
				Err(err).
				Msg("HTTP request failed")
			if !req.Idempotent() || ctx.Err() != nil {
				return backoff.Permanent(fmt.Errorf("HTTP request failed: %w", err))
			}
			return fmt.Errorf("HTTP request failed: %w", err)
		}

		resp, err = readResponse(httpResp)
		if err != nil {
			return backoff.Permanent(err)
		}
		log.Debug().
			Str("connector", connector).
			Int("status_code", resp.StatusCode).
			Int("body_length", len(resp.Body)).
			Msg("received HTTP response")

		if resp.StatusCode >= 500 && req.Idempotent() {
			return &retryableStatus{code: resp.StatusCode}
		}
		return nil
	}

	retries := c.maxRetries
	if !req.Idempotent() {
		retries = 0
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialInterval
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(exp, retries), ctx))

	var rs *retryableStatus
	switch {
	case err == nil, errors.As(err, &rs) && resp != nil:
		outcome := OutcomeSuccess
		if !resp.IsSuccess() {
			outcome = OutcomeConnectorError
		}
		c.metrics.observe(connector, flow, outcome, time.Since(start))
		return resp, nil
	default:
		c.metrics.observe(connector, flow, OutcomeTransportError, time.Since(start))
		return nil, err
	}
}

func readResponse(resp *http.Response) (*provider.Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &provider.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
