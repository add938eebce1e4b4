package domain

import "fmt"

// AuthorisationMode determines which authorisation relations are legal.
type AuthorisationMode string

const (
	AuthorisationModeWeb       AuthorisationMode = "web"
	AuthorisationModeAgreement AuthorisationMode = "agreement"
	AuthorisationModeMotoAPI   AuthorisationMode = "moto_api"
)

// State is the backend's view of where a payment is in its lifecycle.
type State struct {
	Status   string `json:"status"`
	Finished bool   `json:"finished"`
	Message  string `json:"message,omitempty"`
	Code     string `json:"code,omitempty"`
	CanRetry *bool  `json:"can_retry,omitempty"`
}

// InFlightStatuses are the statuses a payment can hold while it is still
// active in Connector.
var InFlightStatuses = []string{"created", "started", "submitted", "capturable"}

// KnownStatuses lists every payment status a caller may filter on.
var KnownStatuses = []string{"created", "started", "submitted", "capturable", "success", "failed", "cancelled", "error"}

// PaymentType is a closed set: Card or DirectDebit. Consumers must switch
// over both variants and treat anything else as a programming error.
type PaymentType interface {
	paymentType()
}

// Card holds the fields only card payments carry.
type Card struct {
	Details *CardDetails
	// LegacyCardBrand is the deprecated top-level card_brand some backends
	// still populate.
	LegacyCardBrand string
}

// DirectDebit holds the fields only direct debit payments carry.
type DirectDebit struct {
	MandateID string
}

func (Card) paymentType()        {}
func (DirectDebit) paymentType() {}

// UnknownPaymentTypeError is raised when a PaymentType outside the closed set
// reaches a switch.
func UnknownPaymentTypeError(t PaymentType) error {
	return fmt.Errorf("unknown payment type %T", t)
}

// CardDetails describes the card used for a payment.
type CardDetails struct {
	LastDigitsCardNumber  string          `json:"last_digits_card_number,omitempty"`
	FirstDigitsCardNumber string          `json:"first_digits_card_number,omitempty"`
	CardholderName        string          `json:"cardholder_name,omitempty"`
	ExpiryDate            string          `json:"expiry_date,omitempty"`
	BillingAddress        *BillingAddress `json:"billing_address,omitempty"`
	CardBrand             string          `json:"card_brand"`
	CardType              string          `json:"card_type,omitempty"`
	WalletType            string          `json:"wallet_type,omitempty"`
}

// BillingAddress is the cardholder's billing address.
type BillingAddress struct {
	Line1    string `json:"line1,omitempty"`
	Line2    string `json:"line2,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
}

// RefundSummary describes how much of a payment may still be refunded.
type RefundSummary struct {
	Status          string `json:"status"`
	AmountAvailable int64  `json:"amount_available"`
	AmountSubmitted int64  `json:"amount_submitted"`
}

// SettlementSummary carries capture and settlement timestamps, verbatim.
type SettlementSummary struct {
	CaptureSubmitTime string `json:"capture_submit_time,omitempty"`
	CapturedDate      string `json:"captured_date,omitempty"`
	SettledDate       string `json:"settled_date,omitempty"`
}

// AuthorisationSummary carries 3-D Secure information.
type AuthorisationSummary struct {
	ThreeDSecure *ThreeDSecure `json:"three_d_secure,omitempty"`
}

// ThreeDSecure records whether 3-D Secure was required.
type ThreeDSecure struct {
	Required bool `json:"required"`
}

// ActionLink is a next action advertised by Connector for a charge.
type ActionLink struct {
	Href   string
	Method string
	Type   string
	Params map[string]string
}

// Actions holds the next actions Connector advertises. A nil field means the
// action is not currently available. Ledger records never carry actions.
type Actions struct {
	NextURL     *ActionLink
	NextURLPost *ActionLink
	Capture     *ActionLink
	// OneTimeToken is set while a moto_api payment still has an unconsumed
	// authorisation token.
	OneTimeToken string
}

// Payment is a backend payment record with explicit optionality.
type Payment struct {
	ID                     string
	Amount                 int64
	State                  State
	Description            string
	Reference              string
	Language               string
	Email                  *string
	PaymentProvider        string
	CreatedDate            string
	ReturnURL              string
	Type                   PaymentType
	RefundSummary          *RefundSummary
	SettlementSummary      *SettlementSummary
	AuthorisationSummary   *AuthorisationSummary
	Metadata               map[string]any
	DelayedCapture         bool
	Moto                   bool
	CorporateCardSurcharge *int64
	TotalAmount            *int64
	Fee                    *int64
	NetAmount              *int64
	ProviderID             string
	AuthorisationMode      AuthorisationMode
	AgreementID            string
	Actions                Actions
}
