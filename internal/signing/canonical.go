// Package signing implements RSA-SHA256 HTTP message signatures over a
// canonical header string bound to the request body by a SHA-256 digest.
package signing

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// Algorithm is advertised in the Signature header.
	Algorithm = "rsa-sha256"
	// RequestTarget is the pseudo header covering method and path.
	RequestTarget = "(request-target)"

	digestPrefix = "sha-256="
)

var (
	ErrInvalidKeyMaterial = errors.New("invalid key material")
	ErrMissingDigest      = errors.New("bodied request requires a digest")
	ErrMissingField       = errors.New("missing signature parameter")
)

// Scheme names the originating host and date headers a connector expects.
type Scheme struct {
	HostHeader string
	DateHeader string
}

var (
	GenericScheme = Scheme{HostHeader: "X-Originating-Host", DateHeader: "X-Originating-Date"}
	NordeaScheme  = Scheme{HostHeader: "X-Nordea-Originating-Host", DateHeader: "X-Nordea-Originating-Date"}
)

// Params are the inputs of one canonical string. Digest is the full header
// value including the "sha-256=" prefix and must be set for bodied methods.
type Params struct {
	Method      string
	Host        string
	Path        string
	Date        string
	ContentType string
	Digest      string
}

// Canonical is a signing string and the header names it covers, in order.
type Canonical struct {
	Text    string
	Headers []string
}

// HeaderList is the space-joined value of the Signature headers field.
func (c Canonical) HeaderList() string { return strings.Join(c.Headers, " ") }

// MethodHasBody reports whether method carries a request body.
func MethodHasBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Digest hashes the exact wire bytes of a body. Form bodies must be passed
// in their encoded key=value&... form.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return digestPrefix + base64.StdEncoding.EncodeToString(sum[:])
}

// HTTPDate formats t as an RFC 7231 IMF-fixdate.
func HTTPDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// CanonicalString builds the newline-joined signing string. Bodyless
// methods sign three lines and ignore any digest; bodied methods add the
// content-type and digest lines.
func (s Scheme) CanonicalString(p Params) (Canonical, error) {
	for name, v := range map[string]string{"method": p.Method, "host": p.Host, "path": p.Path, "date": p.Date} {
		if v == "" {
			return Canonical{}, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	hostHdr := strings.ToLower(s.HostHeader)
	dateHdr := strings.ToLower(s.DateHeader)

	headers := []string{RequestTarget, hostHdr, dateHdr}
	lines := []string{
		RequestTarget + " " + strings.ToLower(p.Method) + " " + p.Path,
		hostHdr + ": " + p.Host,
		dateHdr + ": " + p.Date,
	}
	if MethodHasBody(p.Method) {
		if p.Digest == "" {
			return Canonical{}, ErrMissingDigest
		}
		if p.ContentType == "" {
			return Canonical{}, fmt.Errorf("%w: content type", ErrMissingField)
		}
		headers = append(headers, "content-type", "digest")
		lines = append(lines, "content-type: "+p.ContentType, "digest: "+p.Digest)
	}
	return Canonical{Text: strings.Join(lines, "\n"), Headers: headers}, nil
}

// FormatSignatureHeader renders the Signature header value.
func FormatSignatureHeader(keyID, headerList, signature string) string {
	return fmt.Sprintf(`keyId="%s",algorithm="%s",headers="%s",signature="%s"`, keyID, Algorithm, headerList, signature)
}

// ParseSignatureHeader splits a Signature header into its parameters.
func ParseSignatureHeader(value string) (map[string]string, error) {
	out := make(map[string]string, 4)
	for _, part := range strings.Split(value, `",`) {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed signature parameter %q", part)
		}
		out[strings.TrimSpace(k)] = strings.Trim(v, `"`)
	}
	for _, k := range []string{"keyId", "algorithm", "headers", "signature"} {
		if _, ok := out[k]; !ok {
			return nil, fmt.Errorf("signature header missing %s", k)
		}
	}
	return out, nil
}
