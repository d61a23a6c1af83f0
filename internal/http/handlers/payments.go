package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"payconnect/internal/domain/payment"
	middlewarex "payconnect/internal/http/middleware"
	"payconnect/internal/provider"
	paymentsvc "payconnect/internal/services/payment"
)

// flowTimeout bounds one connector round trip including retries.
const flowTimeout = 45 * time.Second

type methodIn struct {
	Type          payment.PaymentMethod  `json:"type"`
	Card          *payment.Card          `json:"card,omitempty"`
	SepaBankDebit *payment.SepaBankDebit `json:"sepa_bank_debit,omitempty"`
	Bizum         *payment.Bizum         `json:"bizum,omitempty"`
	Wallet        *payment.Wallet        `json:"wallet,omitempty"`
}

// methodData returns nil for an absent method so the connector can report
// the missing field itself.
func (m *methodIn) methodData() (payment.MethodData, error) {
	if m == nil {
		return nil, nil
	}
	switch m.Type {
	case payment.MethodCard:
		if m.Card != nil {
			return *m.Card, nil
		}
	case payment.MethodSepaBankDebit:
		if m.SepaBankDebit != nil {
			return *m.SepaBankDebit, nil
		}
	case payment.MethodBizum:
		if m.Bizum != nil {
			return *m.Bizum, nil
		}
	case payment.MethodWallet:
		if m.Wallet != nil {
			return *m.Wallet, nil
		}
	default:
		return nil, fmt.Errorf("unknown payment method type %q", m.Type)
	}
	return nil, fmt.Errorf("payment method %s has no %s details", m.Type, m.Type)
}

type authorizeIn struct {
	PaymentID              string                `json:"payment_id"`
	Amount                 int64                 `json:"amount"`
	Currency               string                `json:"currency"`
	CaptureMethod          payment.CaptureMethod `json:"capture_method,omitempty"`
	PaymentMethod          *methodIn             `json:"payment_method"`
	Description            string                `json:"description,omitempty"`
	ReturnURL              string                `json:"return_url,omitempty"`
	Email                  string                `json:"email,omitempty"`
	CustomerName           string                `json:"customer_name,omitempty"`
	Browser                *payment.BrowserInfo  `json:"browser_info,omitempty"`
	ConnectorTransactionID string                `json:"connector_transaction_id,omitempty"`
}

type captureIn struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type voidIn struct {
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason,omitempty"`
}

type refundIn struct {
	RefundID               string `json:"refund_id"`
	PaymentID              string `json:"payment_id"`
	ConnectorTransactionID string `json:"connector_transaction_id"`
	Amount                 int64  `json:"amount"`
	Currency               string `json:"currency"`
	Reason                 string `json:"reason,omitempty"`
}

type accessTokenIn struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func parseMoney(amount int64, currency string) (payment.MinorUnit, payment.Currency, error) {
	if amount <= 0 {
		return 0, "", fmt.Errorf("amount must be positive")
	}
	cur, err := payment.ParseCurrency(currency)
	if err != nil {
		return 0, "", err
	}
	return payment.MinorUnit(amount), cur, nil
}

// flowScope extracts the merchant and connector of a flow request.
func flowScope(w http.ResponseWriter, r *http.Request) (string, provider.ConnectorKind, bool) {
	merchantID, ok := middlewarex.MerchantID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "merchant not found")
		return "", "", false
	}
	kind := provider.ConnectorKind(strings.ToLower(chi.URLParam(r, "connector")))
	return merchantID, kind, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return false
	}
	return true
}

type authorizeFunc func(ctx context.Context, merchantID string, kind provider.ConnectorKind, req payment.AuthorizeRequest) (payment.PaymentsResult, error)

func authorizeHandler(run authorizeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, kind, ok := flowScope(w, r)
		if !ok {
			return
		}
		var in authorizeIn
		if !decode(w, r, &in) {
			return
		}
		amt, cur, err := parseMoney(in.Amount, in.Currency)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		method, err := in.PaymentMethod.methodData()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), flowTimeout)
		defer cancel()

		res, err := run(ctx, merchantID, kind, payment.AuthorizeRequest{
			PaymentID:              in.PaymentID,
			Amount:                 amt,
			Currency:               cur,
			CaptureMethod:          in.CaptureMethod,
			Method:                 method,
			Description:            in.Description,
			ReturnURL:              in.ReturnURL,
			Email:                  in.Email,
			CustomerName:           in.CustomerName,
			Browser:                in.Browser,
			ConnectorTransactionID: in.ConnectorTransactionID,
		})
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Preprocess creates a payment at connectors that need a first leg.
func Preprocess(svc *paymentsvc.Service) http.HandlerFunc {
	return authorizeHandler(svc.Preprocess)
}

// Authorize starts or confirms a payment.
func Authorize(svc *paymentsvc.Service) http.HandlerFunc {
	return authorizeHandler(svc.Authorize)
}

// Capture captures an authorized payment identified by the connector
// transaction id in the path.
func Capture(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, kind, ok := flowScope(w, r)
		if !ok {
			return
		}
		var in captureIn
		if !decode(w, r, &in) {
			return
		}
		amt, cur, err := parseMoney(in.Amount, in.Currency)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), flowTimeout)
		defer cancel()

		res, err := svc.Capture(ctx, merchantID, kind, payment.CaptureRequest{
			PaymentID:              in.PaymentID,
			ConnectorTransactionID: chi.URLParam(r, "id"),
			Amount:                 amt,
			Currency:               cur,
		})
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Void cancels an authorized payment.
func Void(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, kind, ok := flowScope(w, r)
		if !ok {
			return
		}
		var in voidIn
		if !decode(w, r, &in) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), flowTimeout)
		defer cancel()

		res, err := svc.Void(ctx, merchantID, kind, payment.VoidRequest{
			PaymentID:              in.PaymentID,
			ConnectorTransactionID: chi.URLParam(r, "id"),
			Reason:                 in.Reason,
		})
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// SyncPayment polls the connector for the payment's current status.
func SyncPayment(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, kind, ok := flowScope(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), flowTimeout)
		defer cancel()

		res, err := svc.Sync(ctx, merchantID, kind, payment.SyncRequest{
			PaymentID:              r.URL.Query().Get("payment_id"),
			ConnectorTransactionID: chi.URLParam(r, "id"),
		})
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Refund refunds part or all of a captured payment.
func Refund(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, kind, ok := flowScope(w, r)
		if !ok {
			return
		}
		var in refundIn
		if !decode(w, r, &in) {
			return
		}
		amt, cur, err := parseMoney(in.Amount, in.Currency)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), flowTimeout)
		defer cancel()

		res, err := svc.Refund(ctx, merchantID, kind, payment.RefundRequest{
			RefundID:               in.RefundID,
			PaymentID:              in.PaymentID,
			ConnectorTransactionID: in.ConnectorTransactionID,
			Amount:                 amt,
			Currency:               cur,
			Reason:                 in.Reason,
		})
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// SyncRefund polls the connector for a refund's current status.
func SyncRefund(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, kind, ok := flowScope(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), flowTimeout)
		defer cancel()

		res, err := svc.RefundSync(ctx, merchantID, kind, payment.RefundSyncRequest{
			RefundID:          r.URL.Query().Get("refund_id"),
			ConnectorRefundID: chi.URLParam(r, "id"),
		})
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// StoreAccessToken records a caller-obtained bearer token for the
// merchant's connector account.
func StoreAccessToken(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, kind, ok := flowScope(w, r)
		if !ok {
			return
		}
		var in accessTokenIn
		if !decode(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.Token) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "token is required")
			return
		}
		if !in.ExpiresAt.IsZero() && !in.ExpiresAt.After(time.Now()) {
			writeError(w, http.StatusBadRequest, "invalid_request", "token already expired")
			return
		}

		err := svc.StoreAccessToken(r.Context(), merchantID, kind, provider.AccessToken{Token: in.Token, ExpiresAt: in.ExpiresAt})
		switch {
		case errors.Is(err, paymentsvc.ErrAccountNotConfigured):
			writeError(w, http.StatusNotFound, "account_not_configured", err.Error())
			return
		case err != nil:
			log.Error().Err(err).Str("merchant_id", merchantID).Str("connector", string(kind)).Msg("store access token failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "could not store token")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
