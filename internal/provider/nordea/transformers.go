package nordea

import (
	"bytes"
	"encoding/json"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
	"payconnect/internal/provider/base"
)

var attemptStatuses = provider.MustStatusNormalizer(AllPaymentStatuses(), map[PaymentStatus]payment.AttemptStatus{
	StatusPendingConfirmation:       payment.AttemptConfirmationAwaited,
	StatusPendingSecondConfirmation: payment.AttemptConfirmationAwaited,
	StatusPendingUserApproval:       payment.AttemptAuthenticationPending,
	StatusOnHold:                    payment.AttemptPending,
	StatusConfirmed:                 payment.AttemptCharged,
	StatusPaid:                      payment.AttemptCharged,
	StatusRejected:                  payment.AttemptFailure,
	StatusInsufficientFunds:         payment.AttemptFailure,
	StatusLimitExceeded:             payment.AttemptFailure,
	StatusUserApprovalFailed:        payment.AttemptFailure,
	StatusUserApprovalTimeout:       payment.AttemptFailure,
	StatusUserApprovalCancelled:     payment.AttemptFailure,
	StatusUnknown:                   payment.AttemptPending, // resolved by a later sync
})

// AttemptStatus maps a Nordea status onto the domain.
func AttemptStatus(s PaymentStatus) (payment.AttemptStatus, error) {
	return attemptStatuses.Normalize(s)
}

const (
	sepaCurrency        = payment.EUR
	defaultAuthMethod   = "MTA"
	defaultLanguage     = "en"
	creditorReferenceRF = "RF"
	signingLinkRel      = "signing"
)

// sepaAmounts caps a single credit transfer at the SEPA rulebook maximum of
// 999,999,999.99 EUR.
var sepaAmounts = base.NewAmountValidator(1, 99_999_999_999)

func sepaCreditTransfer(ctx provider.RequestContext[payment.AuthorizeRequest], meta Metadata) (*SepaCreditTransferRequest, error) {
	req := ctx.Payload()
	amt, ok := ctx.Amount()
	if !ok {
		return nil, provider.NewMissingField("amount")
	}
	if req.Currency != sepaCurrency {
		return nil, provider.NewUnsupportedCurrency(string(req.Currency), nil)
	}
	if err := sepaAmounts.ValidateAmount(req.Amount, req.Currency); err != nil {
		return nil, err
	}

	var debtor Debtor
	switch m := req.Method.(type) {
	case payment.SepaBankDebit:
		if m.IBAN == "" {
			return nil, provider.NewMissingField("payment_method.sepa_bank_debit.iban")
		}
		iban, err := base.ValidateIBAN(m.IBAN)
		if err != nil {
			return nil, err
		}
		debtor = Debtor{Account: AccountNumber{Type: AccountIBAN, Currency: string(req.Currency), Value: iban}}
	case payment.Card, payment.Bizum, payment.Wallet:
		return nil, provider.NewUnsupportedPaymentMethod(string(m.Method()), provider.Nordea)
	case nil:
		return nil, provider.NewMissingField("payment_method")
	default:
		return nil, provider.NewUnsupportedPaymentMethod(string(m.Method()), provider.Nordea)
	}

	return &SepaCreditTransferRequest{
		Creditor: Creditor{
			Account:   AccountNumber{Type: meta.AccountType, Currency: string(req.Currency), Value: meta.DestinationAccountNumber},
			Name:      meta.MerchantName,
			Message:   req.Description,
			Reference: &CreditorReference{Type: creditorReferenceRF},
		},
		Debtor:           debtor,
		ExternalID:       req.PaymentID,
		InstructedAmount: InstructedAmount{Amount: amt, Currency: string(req.Currency)},
	}, nil
}

func confirmRequest(req payment.AuthorizeRequest) (*ConfirmRequest, error) {
	if req.ConnectorTransactionID == "" {
		return nil, provider.ErrMissingTransactionID
	}
	if req.ReturnURL == "" {
		return nil, provider.NewMissingField("return_url")
	}
	lang := defaultLanguage
	if req.Browser != nil && req.Browser.Language != "" {
		lang = req.Browser.Language
	}
	return &ConfirmRequest{
		AuthenticationMethod: defaultAuthMethod,
		Language:             lang,
		PaymentsIDs:          []string{req.ConnectorTransactionID},
		RedirectURL:          req.ReturnURL,
		State:                req.PaymentID,
	}, nil
}

func paymentResult(paymentID string, resp *provider.Response) (payment.PaymentsResult, error) {
	var body PaymentResponse
	if err := resp.DecodeJSON(&body, "PaymentResponse"); err != nil {
		return payment.PaymentsResult{}, err
	}
	if body.Response == nil {
		return payment.PaymentsResult{}, provider.NewDecodingFailed("response", nil)
	}
	status, err := AttemptStatus(body.Response.PaymentStatus)
	if err != nil {
		return payment.PaymentsResult{}, err
	}
	return payment.PaymentsResult{
		PaymentID:              paymentID,
		Status:                 status,
		ConnectorTransactionID: body.Response.ID,
		ConnectorReferenceID:   body.Response.ExternalID,
	}, nil
}

func confirmResult(paymentID string, resp *provider.Response) (payment.PaymentsResult, error) {
	var body ConfirmResponse
	if err := resp.DecodeJSON(&body, "ConfirmResponse"); err != nil {
		return payment.PaymentsResult{}, err
	}
	if body.Response == nil || len(body.Response.Payments) == 0 {
		return payment.PaymentsResult{}, provider.NewDecodingFailed("response.payments", nil)
	}
	first := body.Response.Payments[0]
	status, err := AttemptStatus(first.PaymentStatus)
	if err != nil {
		return payment.PaymentsResult{}, err
	}
	res := payment.PaymentsResult{
		PaymentID:              paymentID,
		Status:                 status,
		ConnectorTransactionID: first.ID,
		ConnectorReferenceID:   first.ExternalID,
	}
	links := append(append([]Link(nil), body.Response.Links...), first.Links...)
	for _, l := range links {
		if l.Rel == signingLinkRel && l.Href != "" {
			res.Redirect = &payment.RedirectForm{URL: l.Href, Method: "GET"}
			break
		}
	}
	return res, nil
}

// errorEnvelope prefers the first failure with a populated code or
// description, then the first failure, then the sentinels.
func errorEnvelope(resp *provider.Response) (payment.ErrorEnvelope, error) {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return payment.NewErrorEnvelope(resp.StatusCode, "", "", nil), nil
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return payment.ErrorEnvelope{}, provider.NewDecodingFailed("ErrorResponse", err)
	}
	if body.Error == nil || len(body.Error.Failures) == 0 {
		return payment.NewErrorEnvelope(resp.StatusCode, "", "", nil), nil
	}
	failure := body.Error.Failures[0]
	for _, f := range body.Error.Failures {
		if f.Code != "" || f.Description != "" {
			failure = f
			break
		}
	}
	var reason *string
	if failure.Type != "" {
		reason = &failure.Type
	}
	return payment.NewErrorEnvelope(resp.StatusCode, failure.Code, failure.Description, reason), nil
}
