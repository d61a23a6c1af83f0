package payment

// PaymentMethod identifies a payment method variant by name.
type PaymentMethod string

const (
	MethodCard          PaymentMethod = "card"
	MethodSepaBankDebit PaymentMethod = "sepa_bank_debit"
	MethodBizum         PaymentMethod = "bizum"
	MethodWallet        PaymentMethod = "wallet"
)

// MethodData is the closed set of payment method payloads. Connectors switch
// over the concrete types and reject the ones they do not support.
type MethodData interface {
	Method() PaymentMethod
	isMethodData()
}

// Card holds raw card details.
type Card struct {
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVC         string `json:"cvc"`
	HolderName  string `json:"holder_name,omitempty"`
}

// SepaBankDebit is a debtor IBAN for SEPA credit transfers and debits.
type SepaBankDebit struct {
	IBAN           string `json:"iban"`
	AccountHolder  string `json:"account_holder,omitempty"`
	BIC            string `json:"bic,omitempty"`
	AccountCountry string `json:"account_country,omitempty"`
}

// Bizum is a Spanish phone-number based push payment.
type Bizum struct {
	PhoneNumber string `json:"phone_number"`
}

// Wallet is a tokenised wallet payment (Apple Pay, Google Pay).
type Wallet struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

func (Card) Method() PaymentMethod          { return MethodCard }
func (SepaBankDebit) Method() PaymentMethod { return MethodSepaBankDebit }
func (Bizum) Method() PaymentMethod         { return MethodBizum }
func (Wallet) Method() PaymentMethod        { return MethodWallet }

func (Card) isMethodData()          {}
func (SepaBankDebit) isMethodData() {}
func (Bizum) isMethodData()         {}
func (Wallet) isMethodData()        {}
