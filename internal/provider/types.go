package provider

import (
	"encoding/json"
	"time"

	"payconnect/internal/amount"
	"payconnect/internal/domain/credential"
	"payconnect/internal/domain/payment"
)

// ConnectorKind identifies a connector.
type ConnectorKind string

const (
	Nordea ConnectorKind = "nordea"
	Monei  ConnectorKind = "monei"
)

// Flow is one operation kind a connector may implement.
type Flow string

const (
	FlowPreprocessing Flow = "preprocessing"
	FlowAuthorize     Flow = "authorize"
	FlowCapture       Flow = "capture"
	FlowVoid          Flow = "void"
	FlowPSync         Flow = "psync"
	FlowRefundExecute Flow = "refund_execute"
	FlowRefundSync    Flow = "refund_sync"
)

// AllFlows lists flows in lifecycle order.
func AllFlows() []Flow {
	return []Flow{FlowPreprocessing, FlowAuthorize, FlowCapture, FlowVoid, FlowPSync, FlowRefundExecute, FlowRefundSync}
}

// Account is what a connector sees of a merchant connector account.
type Account struct {
	ID       string
	Auth     credential.AuthType
	Metadata json.RawMessage
}

// Call is the complete input of one request builder.
type Call[Req any] struct {
	Context RequestContext[Req]
	Account Account
	// Token is the caller-managed access token, nil when none is held.
	Token   *AccessToken
	BaseURL string
}

// Integration is one connector flow: a pure request builder and a pure
// response handler.
type Integration[Req, Res any] struct {
	Build  func(call Call[Req]) (*Request, error)
	Handle func(req Req, resp *Response) (Res, error)
}

// Connector is one variant of the closed connector set. A nil flow is not
// implemented by the connector.
type Connector struct {
	Kind      ConnectorKind
	BaseURL   string
	Converter *amount.Converter
	// NeedsAccessToken is set when requests carry a bearer token obtained
	// outside this layer.
	NeedsAccessToken bool

	Preprocessing *Integration[payment.AuthorizeRequest, payment.PaymentsResult]
	Authorize     *Integration[payment.AuthorizeRequest, payment.PaymentsResult]
	Capture       *Integration[payment.CaptureRequest, payment.PaymentsResult]
	Void          *Integration[payment.VoidRequest, payment.PaymentsResult]
	PSync         *Integration[payment.SyncRequest, payment.PaymentsResult]
	RefundExecute *Integration[payment.RefundRequest, payment.RefundsResult]
	RefundSync    *Integration[payment.RefundSyncRequest, payment.RefundsResult]

	// BuildError renders a non-2xx response body as an error envelope.
	BuildError func(resp *Response) (payment.ErrorEnvelope, error)
}

// Supports reports whether the connector implements flow.
func (c *Connector) Supports(flow Flow) bool {
	switch flow {
	case FlowPreprocessing:
		return c.Preprocessing != nil
	case FlowAuthorize:
		return c.Authorize != nil
	case FlowCapture:
		return c.Capture != nil
	case FlowVoid:
		return c.Void != nil
	case FlowPSync:
		return c.PSync != nil
	case FlowRefundExecute:
		return c.RefundExecute != nil
	case FlowRefundSync:
		return c.RefundSync != nil
	}
	return false
}

// Flows lists the implemented flows.
func (c *Connector) Flows() []Flow {
	var out []Flow
	for _, f := range AllFlows() {
		if c.Supports(f) {
			out = append(out, f)
		}
	}
	return out
}

// AccessToken is caller-supplied bearer token state.
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token is present and unexpired at now. A zero
// ExpiresAt never expires.
func (t *AccessToken) Valid(now time.Time) bool {
	if t == nil || t.Token == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt)
}
