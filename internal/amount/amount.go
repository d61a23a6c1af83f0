// Package amount converts minor-unit integers into the representation a
// connector puts on the wire.
package amount

import (
	"fmt"

	"github.com/shopspring/decimal"

	"payconnect/internal/domain/payment"
)

// Unit is the representation a connector expects.
type Unit string

const (
	// MajorUnit renders "10.00" for 1000 EUR cents.
	MajorUnit Unit = "major"
	// MinorUnit renders "1000" for 1000 EUR cents.
	MinorUnit Unit = "minor"
)

// Converted is a string-encoded amount in a known unit. The zero value is
// not a valid amount.
type Converted struct {
	value    string
	unit     Unit
	currency payment.Currency
}

func (c Converted) String() string             { return c.value }
func (c Converted) Unit() Unit                 { return c.unit }
func (c Converted) Currency() payment.Currency { return c.currency }
func (c Converted) IsZero() bool               { return c.value == "" }

// MarshalJSON emits the amount as a JSON string.
func (c Converted) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.value + `"`), nil
}

// ConversionError reports a currency the connector cannot express.
type ConversionError struct {
	Currency payment.Currency
	Reason   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("unsupported currency %s: %s", e.Currency, e.Reason)
}

// Converter is stateless after construction and safe for concurrent use.
type Converter struct {
	unit       Unit
	currencies map[payment.Currency]struct{}
}

// NewConverter restricts conversion to supported; an empty list allows every
// currency with a known exponent.
func NewConverter(unit Unit, supported ...payment.Currency) *Converter {
	c := &Converter{unit: unit}
	if len(supported) > 0 {
		c.currencies = make(map[payment.Currency]struct{}, len(supported))
		for _, cur := range supported {
			c.currencies[cur] = struct{}{}
		}
	}
	return c
}

func (c *Converter) Unit() Unit { return c.unit }

// Supports reports whether cur can be expressed by this converter.
func (c *Converter) Supports(cur payment.Currency) bool {
	if _, ok := cur.Exponent(); !ok {
		return false
	}
	if c.currencies == nil {
		return true
	}
	_, ok := c.currencies[cur]
	return ok
}

// Convert renders minor in the converter's unit.
func (c *Converter) Convert(minor payment.MinorUnit, cur payment.Currency) (Converted, error) {
	exp, ok := cur.Exponent()
	if !ok {
		return Converted{}, &ConversionError{Currency: cur, Reason: "unknown minor unit exponent"}
	}
	if !c.Supports(cur) {
		return Converted{}, &ConversionError{Currency: cur, Reason: "not accepted by connector"}
	}
	var s string
	switch c.unit {
	case MajorUnit:
		s = decimal.New(int64(minor), -exp).StringFixed(exp)
	case MinorUnit:
		s = decimal.NewFromInt(int64(minor)).String()
	default:
		return Converted{}, fmt.Errorf("unknown amount unit %q", c.unit)
	}
	return Converted{value: s, unit: c.unit, currency: cur}, nil
}

// Parse is the inverse of Convert. Amounts with more fractional digits than
// the currency allows are rejected rather than rounded.
func (c *Converter) Parse(s string, cur payment.Currency) (payment.MinorUnit, error) {
	exp, ok := cur.Exponent()
	if !ok {
		return 0, &ConversionError{Currency: cur, Reason: "unknown minor unit exponent"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if c.unit == MajorUnit {
		d = d.Shift(exp)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more precision than %s allows", s, cur)
	}
	return payment.MinorUnit(d.IntPart()), nil
}
