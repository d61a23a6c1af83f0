package nordea

import (
	"bytes"
	"encoding/json"

	"payconnect/internal/provider"
)

// Metadata is the merchant's Nordea configuration stored on the connector
// account.
type Metadata struct {
	DestinationAccountNumber string      `json:"destination_account_number"`
	AccountType              AccountType `json:"account_type"`
	MerchantName             string      `json:"merchant_name"`
}

func parseMetadata(raw json.RawMessage) (Metadata, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Metadata{}, provider.NewInvalidMetadata("connector_metadata", nil)
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metadata{}, provider.NewInvalidMetadata("connector_metadata", err)
	}
	switch {
	case m.DestinationAccountNumber == "":
		return Metadata{}, provider.NewInvalidMetadata("destination_account_number", nil)
	case m.MerchantName == "":
		return Metadata{}, provider.NewInvalidMetadata("merchant_name", nil)
	case m.AccountType == "":
		m.AccountType = AccountIBAN
	case !m.AccountType.valid():
		return Metadata{}, provider.NewInvalidMetadata("account_type", nil)
	}
	return m, nil
}
