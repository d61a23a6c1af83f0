package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"payconnect/internal/provider"
	paymentsvc "payconnect/internal/services/payment"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// flowStatus maps a failed connector flow to a response status.
func flowStatus(err error) (int, errorBody) {
	if errors.Is(err, paymentsvc.ErrAccountNotConfigured) {
		return http.StatusNotFound, errorBody{Code: "account_not_configured", Message: err.Error()}
	}
	var ce *provider.ConnectorError
	if !errors.As(err, &ce) {
		return http.StatusBadGateway, errorBody{Code: "connector_unreachable", Message: "connector request failed"}
	}
	body := errorBody{Code: ce.Code, Message: ce.Message, Field: ce.Field}
	switch {
	case errors.Is(err, provider.ErrConnectorNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, provider.ErrNotImplemented):
		return http.StatusNotImplemented, body
	case errors.Is(err, provider.ErrUnsupportedCurrency):
		return http.StatusUnprocessableEntity, body
	}
	switch ce.Kind {
	case provider.EncodingError:
		return http.StatusBadRequest, body
	case provider.UnsupportedOperationError:
		return http.StatusUnprocessableEntity, body
	case provider.AuthError:
		return http.StatusPreconditionFailed, body
	case provider.DecodingError:
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}

func writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := flowStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("connector flow failed")
	}
	writeJSON(w, status, body)
}
