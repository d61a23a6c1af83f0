package credential

import (
	"encoding/json"
	"fmt"
	"strings"

	"payconnect/internal/crypto"
	"payconnect/internal/masking"
)

// AuthKind is the shape of a connector credential bundle.
type AuthKind string

const (
	HeaderKey    AuthKind = "header_key"
	BodyKey      AuthKind = "body_key"
	SignatureKey AuthKind = "signature_key"
	NoKey        AuthKind = "no_key"
)

// Valid reports whether k is a known bundle shape.
func (k AuthKind) Valid() bool {
	switch k {
	case HeaderKey, BodyKey, SignatureKey, NoKey:
		return true
	}
	return false
}

// AuthType is a decrypted credential bundle. Each connector decides which
// fields it reads; every field stays wrapped until a connector exposes it.
type AuthType struct {
	Kind      AuthKind
	APIKey    masking.Secret
	Key1      masking.Secret
	APISecret masking.Secret
}

// Account is a merchant connector account: the per-merchant configuration of
// one connector, with its credential fields encrypted at rest.
type Account struct {
	ID           string
	MerchantID   string
	Connector    string
	AuthKind     AuthKind
	APIKeyEnc    string
	Key1Enc      string
	APISecretEnc string
	// Metadata is the connector-specific configuration blob, decoded by the
	// connector that owns it.
	Metadata json.RawMessage
	IsActive bool
}

// NewAccount creates an active account with validation.
func NewAccount(id, merchantID, connector string, kind AuthKind, metadata json.RawMessage) (*Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("account id is required")
	}
	if strings.TrimSpace(merchantID) == "" {
		return nil, fmt.Errorf("merchant id is required")
	}
	if strings.TrimSpace(connector) == "" {
		return nil, fmt.Errorf("connector is required")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid auth kind: %s", kind)
	}
	if len(metadata) > 0 && !json.Valid(metadata) {
		return nil, fmt.Errorf("connector metadata must be valid JSON")
	}
	return &Account{
		ID:         id,
		MerchantID: merchantID,
		Connector:  connector,
		AuthKind:   kind,
		Metadata:   metadata,
		IsActive:   true,
	}, nil
}

// SetSecrets encrypts the non-empty fields of auth into the account.
func (a *Account) SetSecrets(auth AuthType, encryptionKey []byte) error {
	fields := []struct {
		name string
		src  masking.Secret
		dst  *string
	}{
		{"api_key", auth.APIKey, &a.APIKeyEnc},
		{"key1", auth.Key1, &a.Key1Enc},
		{"api_secret", auth.APISecret, &a.APISecretEnc},
	}
	for _, f := range fields {
		if f.src.IsEmpty() {
			*f.dst = ""
			continue
		}
		enc, err := crypto.EncryptString(encryptionKey, f.src.Expose())
		if err != nil {
			return fmt.Errorf("failed to encrypt field %s: %w", f.name, err)
		}
		*f.dst = enc
	}
	return nil
}

// AuthType decrypts the account's credential bundle.
func (a *Account) AuthType(encryptionKey []byte) (AuthType, error) {
	auth := AuthType{Kind: a.AuthKind}
	fields := []struct {
		name string
		src  string
		dst  *masking.Secret
	}{
		{"api_key", a.APIKeyEnc, &auth.APIKey},
		{"key1", a.Key1Enc, &auth.Key1},
		{"api_secret", a.APISecretEnc, &auth.APISecret},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		plain, err := crypto.DecryptString(encryptionKey, f.src)
		if err != nil {
			return AuthType{}, fmt.Errorf("failed to decrypt field %s: %w", f.name, err)
		}
		*f.dst = masking.NewSecret(plain)
	}
	return auth, nil
}
