package payment

import (
	"paygateway/internal/domain"
)

// Canonical is the single public representation of a payment, regardless of
// which backend supplied the record.
type Canonical struct {
	PaymentID              string                       `json:"payment_id"`
	Amount                 int64                        `json:"amount"`
	State                  domain.State                 `json:"state"`
	Description            string                       `json:"description"`
	Reference              string                       `json:"reference"`
	Language               string                       `json:"language,omitempty"`
	Email                  *string                      `json:"email,omitempty"`
	PaymentProvider        string                       `json:"payment_provider"`
	CreatedDate            string                       `json:"created_date"`
	ReturnURL              string                       `json:"return_url,omitempty"`
	CardBrand              string                       `json:"card_brand"`
	CardDetails            *domain.CardDetails          `json:"card_details,omitempty"`
	MandateID              string                       `json:"mandate_id,omitempty"`
	RefundSummary          *domain.RefundSummary        `json:"refund_summary,omitempty"`
	SettlementSummary      *domain.SettlementSummary    `json:"settlement_summary,omitempty"`
	AuthorisationSummary   *domain.AuthorisationSummary `json:"authorisation_summary,omitempty"`
	DelayedCapture         bool                         `json:"delayed_capture"`
	Moto                   bool                         `json:"moto"`
	CorporateCardSurcharge *int64                       `json:"corporate_card_surcharge,omitempty"`
	TotalAmount            *int64                       `json:"total_amount,omitempty"`
	Fee                    *int64                       `json:"fee,omitempty"`
	NetAmount              *int64                       `json:"net_amount,omitempty"`
	ProviderID             string                       `json:"provider_id,omitempty"`
	Metadata               map[string]any               `json:"metadata,omitempty"`
	AuthorisationMode      domain.AuthorisationMode     `json:"authorisation_mode"`
	AgreementID            string                       `json:"agreement_id,omitempty"`
	Links                  Links                        `json:"_links"`
}

// Assembler turns a backend payment record into its Canonical form. It has
// no side effects: the same record always yields the same output.
type Assembler struct {
	links LinkBuilder
}

// NewAssembler creates an Assembler.
func NewAssembler(links LinkBuilder) Assembler {
	return Assembler{links: links}
}

// Assemble copies every scalar field verbatim and attaches links.
func (a Assembler) Assemble(p domain.Payment) Canonical {
	c := Canonical{
		PaymentID:              p.ID,
		Amount:                 p.Amount,
		State:                  p.State,
		Description:            p.Description,
		Reference:              p.Reference,
		Language:               p.Language,
		Email:                  p.Email,
		PaymentProvider:        p.PaymentProvider,
		CreatedDate:            p.CreatedDate,
		ReturnURL:              p.ReturnURL,
		RefundSummary:          p.RefundSummary,
		SettlementSummary:      p.SettlementSummary,
		AuthorisationSummary:   p.AuthorisationSummary,
		DelayedCapture:         p.DelayedCapture,
		Moto:                   p.Moto,
		CorporateCardSurcharge: p.CorporateCardSurcharge,
		TotalAmount:            p.TotalAmount,
		Fee:                    p.Fee,
		NetAmount:              p.NetAmount,
		ProviderID:             p.ProviderID,
		Metadata:               p.Metadata,
		AuthorisationMode:      p.AuthorisationMode,
		AgreementID:            p.AgreementID,
		Links:                  a.links.Build(p),
	}

	switch t := p.Type.(type) {
	case domain.Card:
		c.CardDetails = t.Details
		c.CardBrand = cardBrand(t)
	case domain.DirectDebit:
		c.MandateID = t.MandateID
	default:
		panic(domain.UnknownPaymentTypeError(p.Type))
	}

	return c
}

// cardBrand derives the deprecated top-level card_brand: the nested brand
// wins, then the legacy backend value, then "".
func cardBrand(c domain.Card) string {
	if c.Details != nil && c.Details.CardBrand != "" {
		return c.Details.CardBrand
	}
	return c.LegacyCardBrand
}

// AssembleAll assembles every record of a page, preserving order.
func (a Assembler) AssembleAll(payments []domain.Payment) []Canonical {
	out := make([]Canonical, 0, len(payments))
	for _, p := range payments {
		out = append(out, a.Assemble(p))
	}
	return out
}
