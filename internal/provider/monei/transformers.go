package monei

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
	"payconnect/internal/provider/base"
)

const (
	methodCard  = "card"
	methodBizum = "bizum"
)

var attemptStatuses = provider.MustStatusNormalizer(AllPaymentStatuses(), map[PaymentStatus]payment.AttemptStatus{
	PaymentAuthorized:        payment.AttemptAuthorized,
	PaymentSucceeded:         payment.AttemptCharged,
	PaymentRefunded:          payment.AttemptCharged,
	PaymentPartiallyRefunded: payment.AttemptCharged,
	PaymentFailed:            payment.AttemptFailure,
	PaymentPending:           payment.AttemptPending,
	PaymentCanceled:          payment.AttemptVoided,
	PaymentExpired:           payment.AttemptAuthorizationFailed,
})

var refundStatuses = provider.MustStatusNormalizer(AllRefundStatuses(), map[RefundStatus]payment.RefundStatus{
	RefundSucceeded: payment.RefundSuccess,
	RefundFailed:    payment.RefundFailure,
	RefundCanceled:  payment.RefundFailure,
	RefundPending:   payment.RefundPending,
})

var bizumPhones = base.NewPhoneValidator("ES")

func paymentRequest(ctx provider.RequestContext[payment.AuthorizeRequest]) (*PaymentRequest, error) {
	req := ctx.Payload()
	amt, ok := ctx.Amount()
	if !ok {
		return nil, provider.NewMissingField("amount")
	}

	var pm PaymentMethod
	switch m := req.Method.(type) {
	case payment.Card:
		if m.Number == "" {
			return nil, provider.NewMissingField("payment_method.card.number")
		}
		pm = PaymentMethod{Method: methodCard, Card: &Card{
			Number:          m.Number,
			ExpMonth:        m.ExpiryMonth,
			ExpYear:         m.ExpiryYear,
			CVC:             m.CVC,
			CardholderName:  provider.FirstPopulated(m.HolderName, req.CustomerName),
			CardholderEmail: req.Email,
		}}
	case payment.Bizum:
		if !req.CaptureMethod.IsAutomatic() {
			return nil, provider.NewInvalidField("capture_method", "bizum supports automatic capture only")
		}
		phone, err := bizumPhones.ValidatePhone(m.PhoneNumber)
		if err != nil {
			return nil, err
		}
		pm = PaymentMethod{Method: methodBizum, Bizum: &Bizum{PhoneNumber: phone}}
	case nil:
		return nil, provider.NewMissingField("payment_method")
	default:
		return nil, provider.NewUnsupportedPaymentMethod(string(m.Method()), provider.Monei)
	}

	var customer *Customer
	if req.Email != "" {
		customer = &Customer{Email: req.Email, Name: req.CustomerName}
	}
	txType := transactionSale
	if !req.CaptureMethod.IsAutomatic() {
		txType = transactionAuth
	}
	orderID := req.PaymentID
	if orderID == "" {
		orderID = uuid.NewString()
	}
	return &PaymentRequest{
		Amount:          amt,
		Currency:        string(req.Currency),
		OrderID:         orderID,
		Description:     req.Description,
		PaymentMethod:   pm,
		Customer:        customer,
		TransactionType: txType,
		CompleteURL:     req.ReturnURL,
	}, nil
}

func paymentResult(paymentID string, resp *provider.Response) (payment.PaymentsResult, error) {
	var body PaymentResponse
	if err := resp.DecodeJSON(&body, "PaymentResponse"); err != nil {
		return payment.PaymentsResult{}, err
	}
	if body.ID == "" {
		return payment.PaymentsResult{}, provider.NewDecodingFailed("id", nil)
	}
	status, err := attemptStatuses.Normalize(body.Status)
	if err != nil {
		return payment.PaymentsResult{}, err
	}
	res := payment.PaymentsResult{
		PaymentID:              paymentID,
		Status:                 status,
		ConnectorTransactionID: body.ID,
		ConnectorReferenceID:   body.OrderID,
		Metadata:               body.Metadata,
	}
	if body.NextAction != nil && body.NextAction.RedirectURL != "" {
		res.Redirect = &payment.RedirectForm{URL: body.NextAction.RedirectURL, Method: "GET"}
	}
	return res, nil
}

func refundResult(refundID string, resp *provider.Response) (payment.RefundsResult, error) {
	var body RefundResponse
	if err := resp.DecodeJSON(&body, "RefundResponse"); err != nil {
		return payment.RefundsResult{}, err
	}
	if body.ID == "" {
		return payment.RefundsResult{}, provider.NewDecodingFailed("id", nil)
	}
	status, err := refundStatuses.Normalize(body.Status)
	if err != nil {
		return payment.RefundsResult{}, err
	}
	return payment.RefundsResult{RefundID: refundID, ConnectorRefundID: body.ID, Status: status}, nil
}

// errorEnvelope takes the message from the first detail that has one, so
// validation failures name the offending parameter.
func errorEnvelope(resp *provider.Response) (payment.ErrorEnvelope, error) {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return payment.NewErrorEnvelope(resp.StatusCode, "", "", nil), nil
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return payment.ErrorEnvelope{}, provider.NewDecodingFailed("ErrorResponse", err)
	}
	message := body.Message
	for _, d := range body.Details {
		if d.Message != "" {
			message = d.Message
			break
		}
	}
	var reason *string
	if body.Reason != "" {
		reason = &body.Reason
	}
	return payment.NewErrorEnvelope(resp.StatusCode, body.Code, message, reason), nil
}
