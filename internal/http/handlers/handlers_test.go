package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payconnect/internal/domain/payment"
	"payconnect/internal/provider"
	paymentsvc "payconnect/internal/services/payment"
)

func TestMethodData(t *testing.T) {
	var absent *methodIn
	m, err := absent.methodData()
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = (&methodIn{Type: payment.MethodBizum, Bizum: &payment.Bizum{PhoneNumber: "+34600000000"}}).methodData()
	require.NoError(t, err)
	assert.Equal(t, payment.Bizum{PhoneNumber: "+34600000000"}, m)

	m, err = (&methodIn{Type: payment.MethodSepaBankDebit, SepaBankDebit: &payment.SepaBankDebit{IBAN: "FI2112345600000785"}}).methodData()
	require.NoError(t, err)
	assert.Equal(t, payment.MethodSepaBankDebit, m.Method())

	_, err = (&methodIn{Type: payment.MethodCard}).methodData()
	assert.Error(t, err)
	_, err = (&methodIn{Type: "crypto"}).methodData()
	assert.Error(t, err)
}

func TestFlowStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: nordea", paymentsvc.ErrAccountNotConfigured), http.StatusNotFound},
		{provider.ErrConnectorNotFound, http.StatusNotFound},
		{provider.NewNotImplemented(provider.FlowRefundExecute, provider.Nordea), http.StatusNotImplemented},
		{provider.ErrUnsupportedPaymentMethod, http.StatusUnprocessableEntity},
		{provider.ErrUnsupportedCurrency, http.StatusUnprocessableEntity},
		{provider.ErrMissingRequiredField, http.StatusBadRequest},
		{provider.ErrMissingAccessToken, http.StatusPreconditionFailed},
		{provider.ErrResponseDeserialization, http.StatusBadGateway},
		{provider.ErrInvalidKeyMaterial, http.StatusInternalServerError},
		{errors.New("dial tcp: connection refused"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		got, body := flowStatus(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
		assert.NotEmpty(t, body.Code)
	}
}
