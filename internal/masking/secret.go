package masking

import (
	"encoding/json"
	"fmt"
)

// Redacted is what a Secret prints as, whatever the formatting verb.
const Redacted = "*** redacted ***"

// Secret wraps sensitive material (API keys, client secrets, private keys,
// card data) so that it never reaches a log line or a JSON document by
// accident. The plaintext is only reachable through Expose.
type Secret struct {
	value string
}

// NewSecret wraps s.
func NewSecret(s string) Secret { return Secret{value: s} }

// Expose returns the plaintext.
func (s Secret) Expose() string { return s.value }

// IsEmpty reports whether the wrapped value is the empty string.
func (s Secret) IsEmpty() bool { return s.value == "" }

func (s Secret) String() string   { return Redacted }
func (s Secret) GoString() string { return Redacted }

// Format keeps %v, %+v, %#v, %s and %q from printing the plaintext.
func (s Secret) Format(f fmt.State, verb rune) {
	_, _ = fmt.Fprint(f, Redacted)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(Redacted)
}

// UnmarshalJSON accepts a plain JSON string so inbound API payloads can carry
// secrets directly into the wrapper.
func (s *Secret) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s.value = v
	return nil
}
