package nordea

import "payconnect/internal/amount"

// AccountType is the numbering scheme of an account.
type AccountType string

const (
	AccountIBAN      AccountType = "IBAN"
	AccountBBANSE    AccountType = "BBAN_SE"
	AccountBBANDK    AccountType = "BBAN_DK"
	AccountBBANNO    AccountType = "BBAN_NO"
	AccountBGNR      AccountType = "BGNR"
	AccountPGNR      AccountType = "PGNR"
	AccountGiroDK    AccountType = "GIRO_DK"
	AccountBBANOther AccountType = "BBAN_OTHER"
)

func (t AccountType) valid() bool {
	switch t {
	case AccountIBAN, AccountBBANSE, AccountBBANDK, AccountBBANNO, AccountBGNR, AccountPGNR, AccountGiroDK, AccountBBANOther:
		return true
	}
	return false
}

type AccountNumber struct {
	Type     AccountType `json:"_type"`
	Currency string      `json:"currency,omitempty"`
	Value    string      `json:"value"`
}

type CreditorReference struct {
	Type  string `json:"_type"`
	Value string `json:"value,omitempty"`
}

type Creditor struct {
	Account   AccountNumber      `json:"account"`
	Country   string             `json:"country,omitempty"`
	Message   string             `json:"message,omitempty"`
	Name      string             `json:"name,omitempty"`
	Reference *CreditorReference `json:"reference,omitempty"`
}

type Debtor struct {
	Account AccountNumber `json:"account"`
	Message string        `json:"message,omitempty"`
}

type InstructedAmount struct {
	Amount   amount.Converted `json:"amount"`
	Currency string           `json:"currency"`
}

// SepaCreditTransferRequest initiates a SEPA credit transfer.
type SepaCreditTransferRequest struct {
	Creditor               Creditor         `json:"creditor"`
	Debtor                 Debtor           `json:"debtor"`
	ExternalID             string           `json:"external_id,omitempty"`
	InstructedAmount       InstructedAmount `json:"instructed_amount"`
	RequestedExecutionDate string           `json:"requested_execution_date,omitempty"`
	Urgency                string           `json:"urgency,omitempty"`
}

// ConfirmRequest asks the payer to approve initiated payments.
type ConfirmRequest struct {
	AuthenticationMethod string   `json:"authentication_method"`
	Language             string   `json:"language,omitempty"`
	PaymentsIDs          []string `json:"payments_ids"`
	RedirectURL          string   `json:"redirect_url"`
	State                string   `json:"state,omitempty"`
}
