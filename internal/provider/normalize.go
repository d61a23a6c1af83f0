package provider

import (
	"fmt"

	"payconnect/internal/domain/payment"
)

// DomainStatus is the constraint satisfied by the domain status enums.
type DomainStatus interface {
	payment.AttemptStatus | payment.RefundStatus
	Valid() bool
}

// StatusNormalizer maps a connector status vocabulary onto a domain status.
// Construction fails unless every listed variant maps to a valid domain
// status, so an unmapped variant cannot ship.
type StatusNormalizer[S comparable, D DomainStatus] struct {
	table    map[S]D
	variants []S
}

func NewStatusNormalizer[S comparable, D DomainStatus](variants []S, table map[S]D) (*StatusNormalizer[S, D], error) {
	for _, v := range variants {
		d, ok := table[v]
		if !ok {
			return nil, fmt.Errorf("status %v has no domain mapping", v)
		}
		if !d.Valid() {
			return nil, fmt.Errorf("status %v maps to invalid domain status %v", v, d)
		}
	}
	if len(table) != len(variants) {
		return nil, fmt.Errorf("status table has %d entries for %d variants", len(table), len(variants))
	}
	return &StatusNormalizer[S, D]{table: table, variants: variants}, nil
}

// MustStatusNormalizer panics on an incomplete table. Use it for package
// level tables only.
func MustStatusNormalizer[S comparable, D DomainStatus](variants []S, table map[S]D) *StatusNormalizer[S, D] {
	n, err := NewStatusNormalizer(variants, table)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize maps s. Only values outside the declared variants fail.
func (n *StatusNormalizer[S, D]) Normalize(s S) (D, error) {
	d, ok := n.table[s]
	if !ok {
		return d, NewDecodingFailed("status", fmt.Errorf("unmapped status %v", s))
	}
	return d, nil
}

// Variants returns the declared connector statuses.
func (n *StatusNormalizer[S, D]) Variants() []S {
	return append([]S(nil), n.variants...)
}

// FirstPopulated returns the first non-empty value, or "".
func FirstPopulated(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
