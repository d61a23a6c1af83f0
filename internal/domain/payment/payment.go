package payment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CaptureMethod decides whether an authorization is captured immediately.
type CaptureMethod string

const (
	CaptureAutomatic CaptureMethod = "automatic"
	CaptureManual    CaptureMethod = "manual"
)

// IsAutomatic treats an empty capture method as automatic.
func (c CaptureMethod) IsAutomatic() bool {
	return c == "" || c == CaptureAutomatic
}

// Sentinels for error fields a connector did not populate.
const (
	NoErrorCode    = "No error code"
	NoErrorMessage = "No error message"
)

// ErrorEnvelope is the connector-agnostic rendering of a connector error body.
type ErrorEnvelope struct {
	StatusCode int     `json:"status_code"`
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	Reason     *string `json:"reason,omitempty"`
}

// NewErrorEnvelope fills absent code and message with the sentinels.
// An empty string counts as absent.
func NewErrorEnvelope(status int, code, message string, reason *string) ErrorEnvelope {
	if strings.TrimSpace(code) == "" {
		code = NoErrorCode
	}
	if strings.TrimSpace(message) == "" {
		message = NoErrorMessage
	}
	if reason != nil && strings.TrimSpace(*reason) == "" {
		reason = nil
	}
	return ErrorEnvelope{StatusCode: status, Code: code, Message: message, Reason: reason}
}

func (e ErrorEnvelope) String() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// BrowserInfo carries the payer's browser context when the flow needs it.
type BrowserInfo struct {
	IPAddress string `json:"ip_address,omitempty"`
	Language  string `json:"language,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// AuthorizeRequest starts or confirms a payment attempt.
type AuthorizeRequest struct {
	PaymentID     string
	Amount        MinorUnit
	Currency      Currency
	CaptureMethod CaptureMethod
	Method        MethodData
	Description   string
	ReturnURL     string
	Email         string
	CustomerName  string
	Browser       *BrowserInfo
	// ConnectorTransactionID is set when confirming an attempt that a
	// preprocessing call already created at the connector.
	ConnectorTransactionID string
}

func (r AuthorizeRequest) MinorAmount() (MinorUnit, Currency) { return r.Amount, r.Currency }

// CaptureRequest captures a previously authorized attempt.
type CaptureRequest struct {
	PaymentID              string
	ConnectorTransactionID string
	Amount                 MinorUnit
	Currency               Currency
}

func (r CaptureRequest) MinorAmount() (MinorUnit, Currency) { return r.Amount, r.Currency }

// VoidRequest cancels an authorized attempt.
type VoidRequest struct {
	PaymentID              string
	ConnectorTransactionID string
	Reason                 string
}

// SyncRequest polls the connector for an attempt's status.
type SyncRequest struct {
	PaymentID              string
	ConnectorTransactionID string
}

// RefundRequest refunds part or all of a charged attempt.
type RefundRequest struct {
	RefundID               string
	PaymentID              string
	ConnectorTransactionID string
	Amount                 MinorUnit
	Currency               Currency
	Reason                 string
}

func (r RefundRequest) MinorAmount() (MinorUnit, Currency) { return r.Amount, r.Currency }

// RefundSyncRequest polls the connector for a refund's status.
type RefundSyncRequest struct {
	RefundID          string
	ConnectorRefundID string
}

// RedirectForm tells the caller where to send the payer next.
type RedirectForm struct {
	URL    string            `json:"url"`
	Method string            `json:"method"`
	Fields map[string]string `json:"fields,omitempty"`
}

// PaymentsResult is the outcome of any payment flow.
type PaymentsResult struct {
	PaymentID              string          `json:"payment_id"`
	Status                 AttemptStatus   `json:"status"`
	ConnectorTransactionID string          `json:"connector_transaction_id,omitempty"`
	ConnectorReferenceID   string          `json:"connector_reference_id,omitempty"`
	Redirect               *RedirectForm   `json:"redirect,omitempty"`
	Metadata               json.RawMessage `json:"connector_metadata,omitempty"`
	Error                  *ErrorEnvelope  `json:"error,omitempty"`
}

// RefundsResult is the outcome of a refund flow.
type RefundsResult struct {
	RefundID          string         `json:"refund_id"`
	ConnectorRefundID string         `json:"connector_refund_id,omitempty"`
	Status            RefundStatus   `json:"status"`
	Error             *ErrorEnvelope `json:"error,omitempty"`
}

func (r PaymentsResult) StatusLabel() string { return string(r.Status) }

func (r RefundsResult) StatusLabel() string { return string(r.Status) }
