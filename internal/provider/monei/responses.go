package monei

import "encoding/json"

// PaymentStatus is MONEI's payment status vocabulary.
type PaymentStatus string

const (
	PaymentSucceeded         PaymentStatus = "SUCCEEDED"
	PaymentAuthorized        PaymentStatus = "AUTHORIZED"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentPending           PaymentStatus = "PENDING"
	PaymentCanceled          PaymentStatus = "CANCELED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentExpired           PaymentStatus = "EXPIRED"
)

func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentSucceeded, PaymentAuthorized, PaymentFailed, PaymentPending,
		PaymentCanceled, PaymentRefunded, PaymentPartiallyRefunded, PaymentExpired,
	}
}

// RefundStatus is MONEI's refund status vocabulary.
type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundSucceeded RefundStatus = "SUCCEEDED"
	RefundFailed    RefundStatus = "FAILED"
	RefundCanceled  RefundStatus = "CANCELED"
)

func AllRefundStatuses() []RefundStatus {
	return []RefundStatus{RefundPending, RefundSucceeded, RefundFailed, RefundCanceled}
}

// PaymentResponse is returned by every payment endpoint.
type PaymentResponse struct {
	ID                 string          `json:"id"`
	Amount             int64           `json:"amount"`
	Currency           string          `json:"currency"`
	OrderID            string          `json:"orderId"`
	AccountID          string          `json:"accountId"`
	AuthorizationCode  string          `json:"authorizationCode"`
	Livemode           bool            `json:"livemode"`
	Status             PaymentStatus   `json:"status"`
	StatusCode         string          `json:"statusCode"`
	StatusMessage      string          `json:"statusMessage"`
	RefundedAmount     int64           `json:"refundedAmount"`
	CancellationReason string          `json:"cancellationReason"`
	NextAction         *NextAction     `json:"nextAction"`
	Metadata           json.RawMessage `json:"metadata"`
}

// NextAction tells the payer where to complete the payment.
type NextAction struct {
	Type        string `json:"type"`
	RedirectURL string `json:"redirectUrl"`
}

type RefundResponse struct {
	ID            string       `json:"id"`
	PaymentID     string       `json:"paymentId"`
	Amount        int64        `json:"amount"`
	Currency      string       `json:"currency"`
	Status        RefundStatus `json:"status"`
	StatusCode    string       `json:"statusCode"`
	StatusMessage string       `json:"statusMessage"`
	Reason        string       `json:"reason"`
}

type ErrorDetail struct {
	Param    string `json:"param"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

type ErrorResponse struct {
	StatusCode int           `json:"status_code"`
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Reason     string        `json:"reason"`
	Details    []ErrorDetail `json:"details"`
	RequestID  string        `json:"requestId"`
}
