// Package nordea integrates Nordea's personal payments API: SEPA credit
// transfers initiated by the merchant, confirmed by the payer and polled
// for settlement. Every request carries an RSA-SHA256 message signature.
package nordea

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
)

const (
	pathSepaCreditTransfer = "/personal/v5/payments/sepa-credit-transfer"
	pathPayments           = "/personal/v5/payments"

	headerUserIP = "X-Nordea-Originating-User-Ip"
)

// Config wires one Nordea connector.
type Config struct {
	BaseURL string
	Info    provider.ConnectorInfo
	Headers *provider.HeaderBuilder
}

type connector struct {
	headers *provider.HeaderBuilder
}

// New builds the Nordea variant. Capture, void and refunds are not offered
// on the personal API and stay unimplemented.
func New(cfg Config) (*provider.Connector, error) {
	if cfg.Headers == nil {
		return nil, errors.New("nordea: header builder is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, provider.NewMalformedBaseURL("NORDEA_BASE_URL", err)
	}
	if u.Hostname() == "" {
		return nil, provider.NewMalformedBaseURL("NORDEA_BASE_URL", errors.New("no host"))
	}
	c := &connector{headers: cfg.Headers}
	return &provider.Connector{
		Kind:             provider.Nordea,
		BaseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		Converter:        cfg.Info.Converter(),
		NeedsAccessToken: true,
		Preprocessing: &provider.Integration[payment.AuthorizeRequest, payment.PaymentsResult]{
			Build:  c.buildInitiate,
			Handle: handleInitiate,
		},
		Authorize: &provider.Integration[payment.AuthorizeRequest, payment.PaymentsResult]{
			Build:  c.buildConfirm,
			Handle: handleConfirm,
		},
		PSync: &provider.Integration[payment.SyncRequest, payment.PaymentsResult]{
			Build:  c.buildSync,
			Handle: handleSync,
		},
		BuildError: errorEnvelope,
	}, nil
}

func (c *connector) signed(acc provider.Account, token *provider.AccessToken, baseURL, method, target string, body provider.RequestContent) (*provider.Request, error) {
	auth, err := authFromBundle(acc.Auth)
	if err != nil {
		return nil, err
	}
	headers, err := c.headers.Build(provider.SignedHeaderInput{
		Method:      method,
		BaseURL:     baseURL,
		TargetURL:   target,
		ContentType: provider.ContentTypeJSON,
		Body:        body,
		Token:       token,
		Auth:        auth,
		Owner:       acc.ID,
	})
	if err != nil {
		return nil, err
	}
	return &provider.Request{Method: method, URL: target, Headers: headers, Body: body}, nil
}

func (c *connector) buildInitiate(call provider.Call[payment.AuthorizeRequest]) (*provider.Request, error) {
	meta, err := parseMetadata(call.Account.Metadata)
	if err != nil {
		return nil, err
	}
	dto, err := sepaCreditTransfer(call.Context, meta)
	if err != nil {
		return nil, err
	}
	body, err := provider.JSONContent(dto)
	if err != nil {
		return nil, err
	}
	return c.signed(call.Account, call.Token, call.BaseURL, http.MethodPost, call.BaseURL+pathSepaCreditTransfer, body)
}

func (c *connector) buildConfirm(call provider.Call[payment.AuthorizeRequest]) (*provider.Request, error) {
	req := call.Context.Payload()
	if req.Browser == nil || req.Browser.IPAddress == "" {
		return nil, provider.NewMissingField("browser_info.ip_address")
	}
	dto, err := confirmRequest(req)
	if err != nil {
		return nil, err
	}
	body, err := provider.JSONContent(dto)
	if err != nil {
		return nil, err
	}
	out, err := c.signed(call.Account, call.Token, call.BaseURL, http.MethodPost, call.BaseURL+pathPayments, body)
	if err != nil {
		return nil, err
	}
	out.Headers = append(out.Headers, provider.Header{Name: headerUserIP, Value: req.Browser.IPAddress, Sensitive: true})
	return out, nil
}

func (c *connector) buildSync(call provider.Call[payment.SyncRequest]) (*provider.Request, error) {
	id := call.Context.Payload().ConnectorTransactionID
	if id == "" {
		return nil, provider.ErrMissingTransactionID
	}
	return c.signed(call.Account, call.Token, call.BaseURL, http.MethodGet, call.BaseURL+pathPayments+"/"+url.PathEscape(id), nil)
}

func handleInitiate(req payment.AuthorizeRequest, resp *provider.Response) (payment.PaymentsResult, error) {
	return paymentResult(req.PaymentID, resp)
}

func handleConfirm(req payment.AuthorizeRequest, resp *provider.Response) (payment.PaymentsResult, error) {
	return confirmResult(req.PaymentID, resp)
}

func handleSync(req payment.SyncRequest, resp *provider.Response) (payment.PaymentsResult, error) {
	return paymentResult(req.PaymentID, resp)
}
