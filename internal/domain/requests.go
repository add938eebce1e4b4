package domain

// ChargeRequest is a validated payment creation request, ready to forward.
type ChargeRequest struct {
	Amount                     int64                       `json:"amount"`
	Reference                  string                      `json:"reference"`
	Description                string                      `json:"description"`
	ReturnURL                  string                      `json:"return_url,omitempty"`
	Language                   string                      `json:"language,omitempty"`
	Email                      string                      `json:"email,omitempty"`
	DelayedCapture             bool                        `json:"delayed_capture,omitempty"`
	Moto                       bool                        `json:"moto,omitempty"`
	Metadata                   map[string]any              `json:"metadata,omitempty"`
	PrefilledCardholderDetails *PrefilledCardholderDetails `json:"prefilled_cardholder_details,omitempty"`
	AuthorisationMode          AuthorisationMode           `json:"authorisation_mode"`
	AgreementID                string                      `json:"agreement_id,omitempty"`
	SavePaymentInstrument      bool                        `json:"save_payment_instrument_to_agreement,omitempty"`
}

// PrefilledCardholderDetails pre-populates the payment page.
type PrefilledCardholderDetails struct {
	CardholderName string          `json:"cardholder_name,omitempty"`
	BillingAddress *BillingAddress `json:"billing_address,omitempty"`
}

// RefundRequest asks Connector to refund part or all of a payment.
// RefundAmountAvailable guards against concurrent refunds.
type RefundRequest struct {
	Amount                int64 `json:"amount"`
	RefundAmountAvailable int64 `json:"refund_amount_available"`
}
