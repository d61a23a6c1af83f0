package base

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
)

// PhoneValidator validates national mobile numbers for phone-based methods.
type PhoneValidator struct {
	countryCode string
	prefix      string
	patterns    []*regexp.Regexp
}

// NewPhoneValidator creates a validator for a specific country
func NewPhoneValidator(countryCode string) *PhoneValidator {
	v := &PhoneValidator{countryCode: countryCode}
	switch countryCode {
	case "ES":
		v.prefix = "34"
		v.patterns = []*regexp.Regexp{regexp.MustCompile(`^34[67]\d{8}$`)}
	case "PT":
		v.prefix = "351"
		v.patterns = []*regexp.Regexp{regexp.MustCompile(`^3519[1236]\d{7}$`)}
	}
	return v
}

// ValidatePhone normalizes phone to international digits, adding the
// country prefix to national numbers.
func (v *PhoneValidator) ValidatePhone(phone string) (string, error) {
	normalized := strings.NewReplacer(" ", "", "-", "", "+", "", "(", "", ")", "").Replace(phone)
	normalized = strings.TrimPrefix(normalized, "00")
	if v.prefix != "" && !strings.HasPrefix(normalized, v.prefix) {
		normalized = v.prefix + normalized
	}
	for _, pattern := range v.patterns {
		if pattern.MatchString(normalized) {
			return normalized, nil
		}
	}
	return "", provider.NewInvalidField("phone_number", fmt.Sprintf("invalid phone number format for %s", v.countryCode))
}

var ibanShape = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{11,30}$`)

// ValidateIBAN normalizes an IBAN and checks its ISO 13616 check digits.
func ValidateIBAN(iban string) (string, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if !ibanShape.MatchString(normalized) {
		return "", provider.NewInvalidField("iban", "iban is malformed")
	}
	rearranged := normalized[4:] + normalized[:4]
	var digits strings.Builder
	for _, r := range rearranged {
		if r >= 'A' && r <= 'Z' {
			fmt.Fprintf(&digits, "%d", r-'A'+10)
			continue
		}
		digits.WriteRune(r)
	}
	n, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok || new(big.Int).Mod(n, big.NewInt(97)).Int64() != 1 {
		return "", provider.NewInvalidField("iban", "iban check digits do not match")
	}
	return normalized, nil
}

// AmountValidator validates payment amounts
type AmountValidator struct {
	minAmount payment.MinorUnit
	maxAmount payment.MinorUnit
}

// NewAmountValidator creates an amount validator with limits. A zero
// maximum is unbounded.
func NewAmountValidator(minAmount, maxAmount payment.MinorUnit) *AmountValidator {
	return &AmountValidator{minAmount: minAmount, maxAmount: maxAmount}
}

// ValidateAmount validates payment amount
func (v *AmountValidator) ValidateAmount(amount payment.MinorUnit, currency payment.Currency) error {
	if amount <= 0 {
		return provider.NewInvalidField("amount", "amount must be greater than zero")
	}
	if amount < v.minAmount {
		return provider.NewInvalidField("amount", fmt.Sprintf("amount must be at least %d %s minor units", v.minAmount, currency))
	}
	if v.maxAmount > 0 && amount > v.maxAmount {
		return provider.NewInvalidField("amount", fmt.Sprintf("amount must not exceed %d %s minor units", v.maxAmount, currency))
	}
	return nil
}
