package nordea

import (
	"encoding/json"
	"strings"
)

// PaymentStatus is Nordea's payment status vocabulary. Values outside it
// decode as StatusUnknown.
type PaymentStatus string

const (
	StatusPendingConfirmation       PaymentStatus = "PendingConfirmation"
	StatusPendingSecondConfirmation PaymentStatus = "PendingSecondConfirmation"
	StatusPendingUserApproval       PaymentStatus = "PendingUserApproval"
	StatusOnHold                    PaymentStatus = "OnHold"
	StatusConfirmed                 PaymentStatus = "Confirmed"
	StatusRejected                  PaymentStatus = "Rejected"
	StatusPaid                      PaymentStatus = "Paid"
	StatusInsufficientFunds         PaymentStatus = "InsufficientFunds"
	StatusLimitExceeded             PaymentStatus = "LimitExceeded"
	StatusUserApprovalFailed        PaymentStatus = "UserApprovalFailed"
	StatusUserApprovalTimeout       PaymentStatus = "UserApprovalTimeout"
	StatusUserApprovalCancelled     PaymentStatus = "UserApprovalCancelled"
	StatusUnknown                   PaymentStatus = "Unknown"
)

// AllPaymentStatuses lists every variant, StatusUnknown included.
func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		StatusPendingConfirmation, StatusPendingSecondConfirmation, StatusPendingUserApproval,
		StatusOnHold, StatusConfirmed, StatusRejected, StatusPaid, StatusInsufficientFunds,
		StatusLimitExceeded, StatusUserApprovalFailed, StatusUserApprovalTimeout,
		StatusUserApprovalCancelled, StatusUnknown,
	}
}

func statusKey(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}

var statusByKey = func() map[string]PaymentStatus {
	m := make(map[string]PaymentStatus)
	for _, s := range AllPaymentStatuses() {
		m[statusKey(string(s))] = s
	}
	return m
}()

// ParsePaymentStatus accepts PascalCase and SCREAMING_SNAKE_CASE spellings.
func ParsePaymentStatus(s string) PaymentStatus {
	if st, ok := statusByKey[statusKey(s)]; ok {
		return st
	}
	return StatusUnknown
}

func (s *PaymentStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = ParsePaymentStatus(raw)
	return nil
}

type GroupHeader struct {
	MessageIdentification string `json:"message_identification,omitempty"`
	CreationDateTime      string `json:"creation_date_time,omitempty"`
	HTTPCode              int    `json:"http_code,omitempty"`
}

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// PaymentDetails is the payment object of Nordea's payment endpoints.
type PaymentDetails struct {
	ID                     string        `json:"_id"`
	PaymentStatus          PaymentStatus `json:"payment_status"`
	ExternalID             string        `json:"external_id,omitempty"`
	RequestedExecutionDate string        `json:"requested_execution_date,omitempty"`
	Links                  []Link        `json:"_links,omitempty"`
}

// PaymentResponse wraps initiation and retrieval answers. A missing
// Response is a decoding failure.
type PaymentResponse struct {
	GroupHeader *GroupHeader    `json:"group_header,omitempty"`
	Response    *PaymentDetails `json:"response"`
}

type ConfirmDetails struct {
	Payments []PaymentDetails `json:"payments"`
	Links    []Link           `json:"_links,omitempty"`
}

// ConfirmResponse answers a confirmation request.
type ConfirmResponse struct {
	GroupHeader *GroupHeader    `json:"group_header,omitempty"`
	Response    *ConfirmDetails `json:"response"`
}

type Failure struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Path        string `json:"path,omitempty"`
}

type ErrorBody struct {
	Failures []Failure `json:"failures"`
}

// ErrorResponse is Nordea's error body; every field may be absent.
type ErrorResponse struct {
	GroupHeader *GroupHeader `json:"group_header,omitempty"`
	Error       *ErrorBody   `json:"error,omitempty"`
}
