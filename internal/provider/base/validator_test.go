package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
)

func TestPhoneValidator(t *testing.T) {
	v := NewPhoneValidator("ES")
	for _, in := range []string{"+34 612 345 678", "612345678", "0034612345678", "34-712-345-678"} {
		got, err := v.ValidatePhone(in)
		require.NoError(t, err, in)
		assert.Len(t, got, 11)
	}
	_, err := v.ValidatePhone("912345678")
	assert.ErrorIs(t, err, provider.ErrInvalidRequestData)

	_, err = NewPhoneValidator("XX").ValidatePhone("612345678")
	assert.Error(t, err)
}

func TestValidateIBAN(t *testing.T) {
	got, err := ValidateIBAN("fi21 1234 5600 0007 85")
	require.NoError(t, err)
	assert.Equal(t, "FI2112345600000785", got)

	_, err = ValidateIBAN("GB82WEST12345698765432")
	assert.NoError(t, err)

	_, err = ValidateIBAN("FI2112345600000786")
	assert.ErrorIs(t, err, provider.ErrInvalidRequestData)
	_, err = ValidateIBAN("not-an-iban")
	assert.Error(t, err)
}

func TestAmountValidator(t *testing.T) {
	v := NewAmountValidator(50, 1_000_00)
	assert.NoError(t, v.ValidateAmount(100, payment.EUR))
	assert.Error(t, v.ValidateAmount(0, payment.EUR))
	assert.Error(t, v.ValidateAmount(10, payment.EUR))
	assert.Error(t, v.ValidateAmount(2_000_00, payment.EUR))
	assert.NoError(t, NewAmountValidator(1, 0).ValidateAmount(1<<40, payment.EUR))
}
