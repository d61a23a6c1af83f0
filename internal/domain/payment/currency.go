package payment

import (
	"fmt"
	"strings"
)

// MinorUnit is an amount in the smallest unit of its currency (cents for EUR).
type MinorUnit int64

// Currency is an ISO 4217 alphabetic code.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
	SEK Currency = "SEK"
	DKK Currency = "DKK"
	NOK Currency = "NOK"
	CHF Currency = "CHF"
	PLN Currency = "PLN"
	JPY Currency = "JPY"
	KRW Currency = "KRW"
	ISK Currency = "ISK"
	KES Currency = "KES"
	BHD Currency = "BHD"
	KWD Currency = "KWD"
	JOD Currency = "JOD"
	OMR Currency = "OMR"
	TND Currency = "TND"
)

// minor-unit exponents per ISO 4217
var exponents = map[Currency]int32{
	EUR: 2, USD: 2, GBP: 2, SEK: 2, DKK: 2, NOK: 2, CHF: 2, PLN: 2, KES: 2,
	JPY: 0, KRW: 0, ISK: 0,
	BHD: 3, KWD: 3, JOD: 3, OMR: 3, TND: 3,
}

// Exponent returns the number of minor-unit digits of c.
func (c Currency) Exponent() (int32, bool) {
	e, ok := exponents[c]
	return e, ok
}

// KnownCurrencies lists every currency with a known exponent.
func KnownCurrencies() []Currency {
	out := make([]Currency, 0, len(exponents))
	for c := range exponents {
		out = append(out, c)
	}
	return out
}

// ParseCurrency normalises and validates an ISO code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := exponents[c]; !ok {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return c, nil
}
