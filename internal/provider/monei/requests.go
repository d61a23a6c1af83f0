package monei

import "payconnect/internal/amount"

const (
	transactionSale = "SALE"
	transactionAuth = "AUTH"
)

type Card struct {
	Number          string `json:"number"`
	ExpMonth        string `json:"expMonth"`
	ExpYear         string `json:"expYear"`
	CVC             string `json:"cvc"`
	CardholderName  string `json:"cardholderName,omitempty"`
	CardholderEmail string `json:"cardholderEmail,omitempty"`
}

type Bizum struct {
	PhoneNumber string `json:"phoneNumber"`
}

type PaymentMethod struct {
	Method string `json:"method"`
	Card   *Card  `json:"card,omitempty"`
	Bizum  *Bizum `json:"bizum,omitempty"`
}

type Customer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PaymentRequest creates a payment.
type PaymentRequest struct {
	Amount          amount.Converted `json:"amount"`
	Currency        string           `json:"currency"`
	OrderID         string           `json:"orderId"`
	Description     string           `json:"description,omitempty"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	Customer        *Customer        `json:"customer,omitempty"`
	TransactionType string           `json:"transactionType"`
	CompleteURL     string           `json:"completeUrl,omitempty"`
}

type CaptureRequest struct {
	Amount amount.Converted `json:"amount"`
}

type CancelRequest struct {
	CancellationReason string `json:"cancellationReason,omitempty"`
}

type RefundRequest struct {
	Amount       amount.Converted `json:"amount"`
	RefundReason string           `json:"refundReason,omitempty"`
}
