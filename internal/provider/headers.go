package provider

import (
	"errors"
	"net/url"
	"time"

	"payconnect/internal/masking"
	"payconnect/internal/signing"
)

// HeaderScheme names the client credential headers and the signing scheme
// of a signed connector.
type HeaderScheme struct {
	ClientIDHeader     string
	ClientSecretHeader string
	Signing            signing.Scheme
}

var (
	GenericHeaders = HeaderScheme{
		ClientIDHeader:     "X-Client-Id",
		ClientSecretHeader: "X-Client-Secret",
		Signing:            signing.GenericScheme,
	}
	NordeaHeaders = HeaderScheme{
		ClientIDHeader:     "X-IBM-Client-ID",
		ClientSecretHeader: "X-IBM-Client-Secret",
		Signing:            signing.NordeaScheme,
	}
)

// SignedAuth is the credential shape of a signed connector.
type SignedAuth struct {
	ClientID     masking.Secret
	ClientSecret masking.Secret
	PrivateKey   masking.Secret
}

// SignedHeaderInput describes one request to sign.
type SignedHeaderInput struct {
	Method    string
	BaseURL   string
	TargetURL string
	// ContentType is sent on every request; Body is nil for bodyless methods.
	ContentType string
	Body        RequestContent
	Token       *AccessToken
	Auth        SignedAuth
	// Owner scopes cached key material to one connector account.
	Owner string
}

// HeaderBuilder assembles the signed header set of a request. It holds no
// mutable state.
type HeaderBuilder struct {
	scheme HeaderScheme
	signer *signing.Signer
	now    func() time.Time
}

func NewHeaderBuilder(scheme HeaderScheme, signer *signing.Signer) *HeaderBuilder {
	if signer == nil {
		signer = signing.NewSigner(scheme.Signing)
	}
	return &HeaderBuilder{scheme: scheme, signer: signer, now: time.Now}
}

// WithClock returns a copy that reads the originating date from now.
func (b *HeaderBuilder) WithClock(now func() time.Time) *HeaderBuilder {
	cp := *b
	cp.now = now
	return &cp
}

func (b *HeaderBuilder) Scheme() HeaderScheme { return b.scheme }

// Build returns the full outbound header list.
func (b *HeaderBuilder) Build(in SignedHeaderInput) (Headers, error) {
	now := b.now()
	if !in.Token.Valid(now) {
		return nil, ErrMissingAccessToken
	}
	if in.Auth.ClientID.IsEmpty() {
		return nil, NewFailedToObtainAuthType("client_id")
	}
	if in.Auth.ClientSecret.IsEmpty() {
		return nil, NewFailedToObtainAuthType("client_secret")
	}

	base, err := url.Parse(in.BaseURL)
	if err != nil {
		return nil, NewMalformedBaseURL("base_url", err)
	}
	host := base.Hostname()
	if host == "" {
		return nil, NewMalformedBaseURL("base_url", errors.New("no host"))
	}
	target, err := url.Parse(in.TargetURL)
	if err != nil {
		return nil, NewEncodingFailed("url", err)
	}
	date := signing.HTTPDate(now)
	contentType := in.ContentType
	if in.Body != nil {
		contentType = in.Body.ContentType()
	}

	headers := Headers{
		{Name: "Content-Type", Value: contentType},
		{Name: "Authorization", Value: "Bearer " + in.Token.Token, Sensitive: true},
		{Name: b.scheme.ClientIDHeader, Value: in.Auth.ClientID.Expose(), Sensitive: true},
		{Name: b.scheme.ClientSecretHeader, Value: in.Auth.ClientSecret.Expose(), Sensitive: true},
		{Name: b.scheme.Signing.DateHeader, Value: date},
		{Name: b.scheme.Signing.HostHeader, Value: host},
	}

	params := signing.Params{
		Method:      in.Method,
		Host:        host,
		Date:        date,
		ContentType: contentType,
		Path:        target.EscapedPath(),
	}
	if signing.MethodHasBody(in.Method) {
		if in.Body == nil {
			return nil, NewMissingField("body")
		}
		params.Digest = signing.Digest(in.Body.Bytes())
		headers = append(headers, Header{Name: "Digest", Value: params.Digest, Sensitive: true})
	} else if target.RawQuery != "" {
		params.Path += "?" + target.RawQuery
	}

	sig, err := b.signer.Sign(signing.Credentials{
		KeyID:      in.Auth.ClientID.Expose(),
		Owner:      in.Owner,
		PrivateKey: in.Auth.PrivateKey,
	}, params)
	switch {
	case errors.Is(err, signing.ErrInvalidKeyMaterial):
		return nil, NewInvalidKeyMaterial("private_key", err)
	case err != nil:
		return nil, NewEncodingFailed("signature", err)
	}
	return append(headers, Header{Name: "Signature", Value: sig.Header, Sensitive: true}), nil
}
