package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	merchantsvc "payconnect/internal/services/merchant"
)

// OnboardMerchant creates a merchant and returns its first API key.
func OnboardMerchant(svc *merchantsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req merchantsvc.OnboardingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON")
			return
		}

		resp, err := svc.Onboard(r.Context(), req)
		if err != nil {
			writeMerchantError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// AddAccount stores connector credentials for a merchant.
func AddAccount(svc *merchantsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := chi.URLParam(r, "merchantID")

		var req merchantsvc.AccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON")
			return
		}

		resp, err := svc.AddAccount(r.Context(), merchantID, req)
		if err != nil {
			writeMerchantError(w, err)
			return
		}
		log.Info().Str("merchant_id", merchantID).Str("connector", resp.Connector).Str("account_id", resp.AccountID).Msg("connector account configured")
		writeJSON(w, http.StatusCreated, resp)
	}
}

// ListAccounts lists a merchant's active connector accounts.
func ListAccounts(svc *merchantsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := svc.ListAccounts(r.Context(), chi.URLParam(r, "merchantID"))
		if err != nil {
			writeMerchantError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
	}
}

func writeMerchantError(w http.ResponseWriter, err error) {
	var verr *merchantsvc.ValidationError
	var serr *merchantsvc.ServiceError
	switch {
	case errors.Is(err, merchantsvc.ErrMerchantNotFound):
		writeError(w, http.StatusNotFound, "merchant_not_found", err.Error())
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: verr.Message, Field: verr.Field})
	case errors.As(err, &serr):
		log.Error().Err(err).Str("op", serr.Op).Msg("merchant operation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "merchant operation failed")
	default:
		log.Error().Err(err).Msg("merchant operation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
