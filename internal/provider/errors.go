package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies connector-layer failures.
type ErrorKind string

const (
	ConfigError               ErrorKind = "config_error"
	EncodingError             ErrorKind = "encoding_error"
	UnsupportedOperationError ErrorKind = "unsupported_operation_error"
	DecodingError             ErrorKind = "decoding_error"
	AuthError                 ErrorKind = "auth_error"
)

// Error codes
const (
	CodeInvalidKeyMaterial            = "invalid_key_material"
	CodeMalformedBaseURL              = "malformed_base_url"
	CodeInvalidConnectorMetadata      = "invalid_connector_metadata"
	CodeMissingAccessToken            = "missing_access_token"
	CodeFailedToObtainAuthType        = "failed_to_obtain_auth_type"
	CodeUnsupportedPaymentMethod      = "unsupported_payment_method"
	CodeUnsupportedCurrency           = "unsupported_currency"
	CodeNotImplemented                = "not_implemented"
	CodeMissingRequiredField          = "missing_required_field"
	CodeRequestEncodingFailed         = "request_encoding_failed"
	CodeResponseDeserializationFailed = "response_deserialization_failed"
	CodeMissingConnectorTransactionID = "missing_connector_transaction_id"
	CodeConnectorNotFound             = "connector_not_found"
	CodeInvalidRequestData            = "invalid_request_data"
)

// ConnectorError is returned by every fallible connector-layer operation.
// Field names the configuration key or request field at fault, when known.
type ConnectorError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Field   string
	Cause   error
}

func (e *ConnectorError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s)", e.Field)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConnectorError) Unwrap() error { return e.Cause }

// Is matches on Code so callers can compare against the sentinels below.
func (e *ConnectorError) Is(target error) bool {
	t, ok := target.(*ConnectorError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrMissingAccessToken       = &ConnectorError{Kind: AuthError, Code: CodeMissingAccessToken, Message: "access token is missing or expired"}
	ErrFailedToObtainAuthType   = &ConnectorError{Kind: AuthError, Code: CodeFailedToObtainAuthType, Message: "credential bundle does not match connector"}
	ErrMalformedBaseURL         = &ConnectorError{Kind: ConfigError, Code: CodeMalformedBaseURL, Message: "base url is malformed"}
	ErrInvalidKeyMaterial       = &ConnectorError{Kind: ConfigError, Code: CodeInvalidKeyMaterial, Message: "private key could not be parsed"}
	ErrInvalidConnectorMetadata = &ConnectorError{Kind: ConfigError, Code: CodeInvalidConnectorMetadata, Message: "connector metadata is invalid"}
	ErrUnsupportedPaymentMethod = &ConnectorError{Kind: UnsupportedOperationError, Code: CodeUnsupportedPaymentMethod, Message: "payment method not supported"}
	ErrUnsupportedCurrency      = &ConnectorError{Kind: ConfigError, Code: CodeUnsupportedCurrency, Message: "currency not supported"}
	ErrNotImplemented           = &ConnectorError{Kind: UnsupportedOperationError, Code: CodeNotImplemented, Message: "flow not implemented"}
	ErrMissingRequiredField     = &ConnectorError{Kind: EncodingError, Code: CodeMissingRequiredField, Message: "missing required field"}
	ErrRequestEncodingFailed    = &ConnectorError{Kind: EncodingError, Code: CodeRequestEncodingFailed, Message: "request encoding failed"}
	ErrResponseDeserialization  = &ConnectorError{Kind: DecodingError, Code: CodeResponseDeserializationFailed, Message: "response handling failed"}
	ErrMissingTransactionID     = &ConnectorError{Kind: EncodingError, Code: CodeMissingConnectorTransactionID, Message: "connector transaction id is required"}
	ErrConnectorNotFound        = &ConnectorError{Kind: ConfigError, Code: CodeConnectorNotFound, Message: "connector not registered"}
	ErrInvalidRequestData       = &ConnectorError{Kind: EncodingError, Code: CodeInvalidRequestData, Message: "invalid request data"}
)

func newError(base *ConnectorError, field string, cause error) *ConnectorError {
	return &ConnectorError{Kind: base.Kind, Code: base.Code, Message: base.Message, Field: field, Cause: cause}
}

func NewMalformedBaseURL(field string, cause error) error {
	return newError(ErrMalformedBaseURL, field, cause)
}

func NewInvalidKeyMaterial(field string, cause error) error {
	return newError(ErrInvalidKeyMaterial, field, cause)
}

func NewInvalidMetadata(field string, cause error) error {
	return newError(ErrInvalidConnectorMetadata, field, cause)
}

func NewMissingField(field string) error { return newError(ErrMissingRequiredField, field, nil) }

// NewInvalidField reports a present but malformed request field.
func NewInvalidField(field, message string) error {
	e := newError(ErrInvalidRequestData, field, nil)
	e.Message = message
	return e
}

func NewEncodingFailed(field string, cause error) error {
	return newError(ErrRequestEncodingFailed, field, cause)
}

func NewDecodingFailed(field string, cause error) error {
	return newError(ErrResponseDeserialization, field, cause)
}

func NewFailedToObtainAuthType(field string) error {
	return newError(ErrFailedToObtainAuthType, field, nil)
}

// NewUnsupportedPaymentMethod names the rejected variant.
func NewUnsupportedPaymentMethod(method string, connector ConnectorKind) error {
	e := newError(ErrUnsupportedPaymentMethod, "payment_method", nil)
	e.Message = fmt.Sprintf("payment method %s not supported by %s", method, connector)
	return e
}

// NewNotImplemented names the missing flow.
func NewNotImplemented(flow Flow, connector ConnectorKind) error {
	e := newError(ErrNotImplemented, "flow", nil)
	e.Message = fmt.Sprintf("%s not implemented for %s", flow, connector)
	return e
}

func NewUnsupportedCurrency(currency string, cause error) error {
	e := newError(ErrUnsupportedCurrency, "currency", cause)
	e.Message = fmt.Sprintf("currency %s not supported", currency)
	return e
}

// KindOf returns the kind of a ConnectorError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}
