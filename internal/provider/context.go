package provider

import (
	"payconnect/internal/amount"
	"payconnect/internal/domain/payment"
)

// Amounted is implemented by domain requests that move money.
type Amounted interface {
	MinorAmount() (payment.MinorUnit, payment.Currency)
}

// RequestContext pairs the converted amount with the domain payload. It is
// built once per outbound call and never modified.
type RequestContext[T any] struct {
	amount    amount.Converted
	hasAmount bool
	payload   T
}

// NewRequestContext converts the payload's amount, when it has one, with the
// connector's converter.
func NewRequestContext[T any](conv *amount.Converter, payload T) (RequestContext[T], error) {
	rc := RequestContext[T]{payload: payload}
	a, ok := any(payload).(Amounted)
	if !ok {
		return rc, nil
	}
	minor, cur := a.MinorAmount()
	if conv == nil {
		return rc, NewEncodingFailed("amount", nil)
	}
	converted, err := conv.Convert(minor, cur)
	if err != nil {
		return rc, NewUnsupportedCurrency(string(cur), err)
	}
	rc.amount = converted
	rc.hasAmount = true
	return rc, nil
}

// Amount returns the converted amount and whether the payload carried one.
func (c RequestContext[T]) Amount() (amount.Converted, bool) { return c.amount, c.hasAmount }

// Payload returns the domain request.
func (c RequestContext[T]) Payload() T { return c.payload }
