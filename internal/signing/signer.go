package signing

import (
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"time"

	"payconnect/internal/cache"
	"payconnect/internal/masking"
)

// Credentials identify the signing key of one connector account.
type Credentials struct {
	// KeyID is advertised as keyId, usually the connector client id.
	KeyID string
	// Owner is the merchant connector account the key belongs to. Parsed keys
	// are only cached when it is set.
	Owner      string
	PrivateKey masking.Secret
}

// Signature is the outcome of signing one request.
type Signature struct {
	Canonical Canonical
	Value     string
	Header    string
}

type keyRef struct {
	owner       string
	fingerprint [sha256.Size]byte
}

// Signer signs canonical strings for one header scheme. It holds no
// per-request state and is safe for concurrent use.
type Signer struct {
	scheme Scheme
	keys   *cache.TTLCache[keyRef, *rsa.PrivateKey]
	ttl    time.Duration
}

// Option configures a Signer.
type Option func(*Signer)

// WithKeyCache caches parsed private keys for ttl. A non-positive ttl
// disables caching.
func WithKeyCache(ttl time.Duration) Option {
	return func(s *Signer) {
		if ttl <= 0 {
			s.keys = nil
			return
		}
		s.keys = cache.NewTTLCache[keyRef, *rsa.PrivateKey]()
		s.ttl = ttl
	}
}

func NewSigner(scheme Scheme, opts ...Option) *Signer {
	s := &Signer{scheme: scheme}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Signer) Scheme() Scheme { return s.scheme }

// Sign builds the canonical string for p, signs it with the credential's key
// and formats the Signature header.
func (s *Signer) Sign(creds Credentials, p Params) (Signature, error) {
	if creds.KeyID == "" {
		return Signature{}, fmt.Errorf("%w: key id", ErrMissingField)
	}
	canonical, err := s.scheme.CanonicalString(p)
	if err != nil {
		return Signature{}, err
	}
	key, err := s.privateKey(creds)
	if err != nil {
		return Signature{}, err
	}
	value, err := SignCanonical(key, canonical.Text)
	if err != nil {
		return Signature{}, err
	}
	return Signature{
		Canonical: canonical,
		Value:     value,
		Header:    FormatSignatureHeader(creds.KeyID, canonical.HeaderList(), value),
	}, nil
}

func (s *Signer) privateKey(creds Credentials) (*rsa.PrivateKey, error) {
	pemText := creds.PrivateKey.Expose()
	if pemText == "" {
		return nil, fmt.Errorf("%w: empty private key", ErrInvalidKeyMaterial)
	}
	if s.keys == nil || creds.Owner == "" {
		return ParsePrivateKey(pemText)
	}
	ref := keyRef{owner: creds.Owner, fingerprint: sha256.Sum256([]byte(pemText))}
	if key, ok := s.keys.Get(ref); ok {
		return key, nil
	}
	key, err := ParsePrivateKey(pemText)
	if err != nil {
		return nil, err
	}
	s.keys.Set(ref, key, s.ttl)
	return key, nil
}

// CachedKeys reports how many parsed keys are held.
func (s *Signer) CachedKeys() int {
	if s.keys == nil {
		return 0
	}
	return s.keys.Len()
}

// Sweep evicts expired keys, including those of rotated credentials that
// will never be looked up again.
func (s *Signer) Sweep() int {
	return s.keys.Sweep()
}
