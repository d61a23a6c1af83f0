package provider

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"payconnect/internal/masking"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// RequestContent is a request body serialized exactly once. Bytes returns the
// wire format that is both digested and sent.
type RequestContent interface {
	ContentType() string
	Bytes() []byte
}

type encodedContent struct {
	contentType string
	body        []byte
}

func (c encodedContent) ContentType() string { return c.contentType }
func (c encodedContent) Bytes() []byte       { return c.body }

// JSONContent marshals v once.
func JSONContent(v any) (RequestContent, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, NewEncodingFailed("body", err)
	}
	return encodedContent{contentType: ContentTypeJSON, body: b}, nil
}

// FormContent encodes values in their key=value&... wire form.
func FormContent(values url.Values) RequestContent {
	return encodedContent{contentType: ContentTypeForm, body: []byte(values.Encode())}
}

// Header is one outbound header. Sensitive values are masked when logged.
type Header struct {
	Name      string
	Value     string
	Sensitive bool
}

// Headers is an ordered header list.
type Headers []Header

// Get returns the first value of name, case-insensitively.
func (h Headers) Get(name string) (string, bool) {
	for _, hd := range h {
		if strings.EqualFold(hd.Name, name) {
			return hd.Value, true
		}
	}
	return "", false
}

// HTTP converts the list into an http.Header.
func (h Headers) HTTP() http.Header {
	out := make(http.Header, len(h))
	for _, hd := range h {
		out.Add(hd.Name, hd.Value)
	}
	return out
}

// Masked renders the headers for logs.
func (h Headers) Masked() map[string]string {
	out := make(map[string]string, len(h))
	for _, hd := range h {
		if strings.EqualFold(hd.Name, "Authorization") {
			out[hd.Name] = masking.MaskAuthorization(hd.Value)
			continue
		}
		if hd.Sensitive || masking.IsSensitiveHeader(hd.Name) {
			out[hd.Name] = masking.MaskLast4(hd.Value)
			continue
		}
		out[hd.Name] = hd.Value
	}
	return out
}

// Request is a fully built outbound request.
type Request struct {
	Connector ConnectorKind
	Flow      Flow
	Method    string
	URL       string
	Headers   Headers
	Body      RequestContent
}

// Idempotent reports whether the transport may retry the request.
func (r *Request) Idempotent() bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Response is a connector's raw HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess checks if the response indicates success (2xx status code)
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON unmarshals the body into v, reporting failures as decoding errors.
func (r *Response) DecodeJSON(v any, schema string) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return NewDecodingFailed(schema, err)
	}
	return nil
}
