package masking

import (
	"net/http"
	"strings"
)

var sensitiveHeaders = map[string]bool{
	"authorization":                true,
	"x-ibm-client-id":              true,
	"x-ibm-client-secret":          true,
	"x-client-id":                  true,
	"x-client-secret":              true,
	"x-nordea-originating-user-ip": true,
	"signature":                    true,
	"digest":                       true,
	"cookie":                       true,
}

// IsSensitiveHeader reports whether a header value must be masked before logging.
func IsSensitiveHeader(name string) bool {
	return sensitiveHeaders[strings.ToLower(strings.TrimSpace(name))]
}

// MaskAuthorization masks bearer tokens, preserving the scheme.
func MaskAuthorization(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Fields(value)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return "Bearer " + MaskLast4(parts[1])
	}
	return MaskLast4(value)
}

// MaskHeaders returns a copy of headers with sensitive fields masked.
func MaskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for key, values := range headers {
		joined := strings.Join(values, ",")
		switch {
		case strings.EqualFold(key, "authorization"):
			masked[key] = MaskAuthorization(joined)
		case IsSensitiveHeader(key):
			masked[key] = MaskLast4(joined)
		default:
			masked[key] = joined
		}
	}
	return masked
}

// MaskLast4 keeps only the last four characters of value.
func MaskLast4(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
