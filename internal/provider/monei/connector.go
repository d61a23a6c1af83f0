// Package monei integrates the MONEI payment gateway: card and Bizum
// payments with optional manual capture and refunds.
package monei

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
)

const (
	pathPayments = "/v1/payments"
	pathRefunds  = "/v1/refunds"
)

// Config wires one MONEI connector.
type Config struct {
	BaseURL string
	Info    provider.ConnectorInfo
}

// New builds the MONEI variant.
func New(cfg Config) (*provider.Connector, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, provider.NewMalformedBaseURL("MONEI_BASE_URL", err)
	}
	if u.Hostname() == "" {
		return nil, provider.NewMalformedBaseURL("MONEI_BASE_URL", errors.New("no host"))
	}
	return &provider.Connector{
		Kind:      provider.Monei,
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		Converter: cfg.Info.Converter(),
		Authorize: &provider.Integration[payment.AuthorizeRequest, payment.PaymentsResult]{
			Build:  buildAuthorize,
			Handle: handleAuthorize,
		},
		Capture: &provider.Integration[payment.CaptureRequest, payment.PaymentsResult]{
			Build:  buildCapture,
			Handle: handleCapture,
		},
		Void: &provider.Integration[payment.VoidRequest, payment.PaymentsResult]{
			Build:  buildVoid,
			Handle: handleVoid,
		},
		PSync: &provider.Integration[payment.SyncRequest, payment.PaymentsResult]{
			Build:  buildSync,
			Handle: handleSync,
		},
		RefundExecute: &provider.Integration[payment.RefundRequest, payment.RefundsResult]{
			Build:  buildRefund,
			Handle: handleRefund,
		},
		RefundSync: &provider.Integration[payment.RefundSyncRequest, payment.RefundsResult]{
			Build:  buildRefundSync,
			Handle: handleRefundSync,
		},
		BuildError: errorEnvelope,
	}, nil
}

func request(acc provider.Account, method, target string, body any) (*provider.Request, error) {
	key, err := apiKeyFromBundle(acc.Auth)
	if err != nil {
		return nil, err
	}
	out := &provider.Request{
		Method: method,
		URL:    target,
		Headers: provider.Headers{
			{Name: "Content-Type", Value: provider.ContentTypeJSON},
			{Name: "Authorization", Value: key.Expose(), Sensitive: true},
		},
	}
	if body != nil {
		content, err := provider.JSONContent(body)
		if err != nil {
			return nil, err
		}
		out.Body = content
	}
	return out, nil
}

func paymentURL(baseURL, id string, action ...string) string {
	return strings.Join(append([]string{baseURL + pathPayments, url.PathEscape(id)}, action...), "/")
}

func buildAuthorize(call provider.Call[payment.AuthorizeRequest]) (*provider.Request, error) {
	dto, err := paymentRequest(call.Context)
	if err != nil {
		return nil, err
	}
	return request(call.Account, http.MethodPost, call.BaseURL+pathPayments, dto)
}

func buildCapture(call provider.Call[payment.CaptureRequest]) (*provider.Request, error) {
	req := call.Context.Payload()
	if req.ConnectorTransactionID == "" {
		return nil, provider.ErrMissingTransactionID
	}
	amt, ok := call.Context.Amount()
	if !ok {
		return nil, provider.NewMissingField("amount")
	}
	return request(call.Account, http.MethodPost, paymentURL(call.BaseURL, req.ConnectorTransactionID, "capture"), CaptureRequest{Amount: amt})
}

func buildVoid(call provider.Call[payment.VoidRequest]) (*provider.Request, error) {
	req := call.Context.Payload()
	if req.ConnectorTransactionID == "" {
		return nil, provider.ErrMissingTransactionID
	}
	return request(call.Account, http.MethodPost, paymentURL(call.BaseURL, req.ConnectorTransactionID, "cancel"), CancelRequest{CancellationReason: req.Reason})
}

func buildSync(call provider.Call[payment.SyncRequest]) (*provider.Request, error) {
	req := call.Context.Payload()
	if req.ConnectorTransactionID == "" {
		return nil, provider.ErrMissingTransactionID
	}
	return request(call.Account, http.MethodGet, paymentURL(call.BaseURL, req.ConnectorTransactionID), nil)
}

func buildRefund(call provider.Call[payment.RefundRequest]) (*provider.Request, error) {
	req := call.Context.Payload()
	if req.ConnectorTransactionID == "" {
		return nil, provider.ErrMissingTransactionID
	}
	amt, ok := call.Context.Amount()
	if !ok {
		return nil, provider.NewMissingField("amount")
	}
	return request(call.Account, http.MethodPost, paymentURL(call.BaseURL, req.ConnectorTransactionID, "refund"), RefundRequest{Amount: amt, RefundReason: req.Reason})
}

func buildRefundSync(call provider.Call[payment.RefundSyncRequest]) (*provider.Request, error) {
	req := call.Context.Payload()
	if req.ConnectorRefundID == "" {
		return nil, provider.NewMissingField("connector_refund_id")
	}
	return request(call.Account, http.MethodGet, call.BaseURL+pathRefunds+"/"+url.PathEscape(req.ConnectorRefundID), nil)
}

func handleAuthorize(req payment.AuthorizeRequest, resp *provider.Response) (payment.PaymentsResult, error) {
	return paymentResult(req.PaymentID, resp)
}

func handleCapture(req payment.CaptureRequest, resp *provider.Response) (payment.PaymentsResult, error) {
	return paymentResult(req.PaymentID, resp)
}

func handleVoid(req payment.VoidRequest, resp *provider.Response) (payment.PaymentsResult, error) {
	return paymentResult(req.PaymentID, resp)
}

func handleSync(req payment.SyncRequest, resp *provider.Response) (payment.PaymentsResult, error) {
	return paymentResult(req.PaymentID, resp)
}

func handleRefund(req payment.RefundRequest, resp *provider.Response) (payment.RefundsResult, error) {
	return refundResult(req.RefundID, resp)
}

func handleRefundSync(req payment.RefundSyncRequest, resp *provider.Response) (payment.RefundsResult, error) {
	return refundResult(req.RefundID, resp)
}
