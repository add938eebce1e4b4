package connector

import (
	"paygateway/internal/domain"
)

const (
	relNextURL     = "next_url"
	relNextURLPost = "next_url_post"
	relCapture     = "capture"
	relAuthURLPost = "auth_url_post"

	paymentTypeDirectDebit = "DIRECT_DEBIT"
)

type link struct {
	Rel    string            `json:"rel"`
	Href   string            `json:"href"`
	Method string            `json:"method"`
	Type   string            `json:"type,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// chargeResponse is Connector's charge representation.
type chargeResponse struct {
	ChargeID               string                       `json:"charge_id"`
	Amount                 int64                        `json:"amount"`
	State                  domain.State                 `json:"state"`
	Description            string                       `json:"description"`
	Reference              string                       `json:"reference"`
	Language               string                       `json:"language"`
	Email                  *string                      `json:"email"`
	PaymentProvider        string                       `json:"payment_provider"`
	CreatedDate            string                       `json:"created_date"`
	ReturnURL              string                       `json:"return_url"`
	PaymentType            string                       `json:"payment_type"`
	MandateID              string                       `json:"mandate_id"`
	CardDetails            *domain.CardDetails          `json:"card_details"`
	CardBrand              string                       `json:"card_brand"`
	RefundSummary          *domain.RefundSummary        `json:"refund_summary"`
	SettlementSummary      *domain.SettlementSummary    `json:"settlement_summary"`
	AuthorisationSummary   *domain.AuthorisationSummary `json:"authorisation_summary"`
	Metadata               map[string]any               `json:"metadata"`
	DelayedCapture         bool                         `json:"delayed_capture"`
	Moto                   bool                         `json:"moto"`
	CorporateCardSurcharge *int64                       `json:"corporate_card_surcharge"`
	TotalAmount            *int64                       `json:"total_amount"`
	Fee                    *int64                       `json:"fee"`
	NetAmount              *int64                       `json:"net_amount"`
	GatewayTransactionID   string                       `json:"gateway_transaction_id"`
	AuthorisationMode      string                       `json:"authorisation_mode"`
	AgreementID            string                       `json:"agreement_id"`
	Links                  []link                       `json:"links"`
}

func (c chargeResponse) toPayment() domain.Payment {
	p := domain.Payment{
		ID:                     c.ChargeID,
		Amount:                 c.Amount,
		State:                  c.State,
		Description:            c.Description,
		Reference:              c.Reference,
		Language:               c.Language,
		Email:                  c.Email,
		PaymentProvider:        c.PaymentProvider,
		CreatedDate:            c.CreatedDate,
		ReturnURL:              c.ReturnURL,
		RefundSummary:          c.RefundSummary,
		SettlementSummary:      c.SettlementSummary,
		AuthorisationSummary:   c.AuthorisationSummary,
		Metadata:               c.Metadata,
		DelayedCapture:         c.DelayedCapture,
		Moto:                   c.Moto,
		CorporateCardSurcharge: c.CorporateCardSurcharge,
		TotalAmount:            c.TotalAmount,
		Fee:                    c.Fee,
		NetAmount:              c.NetAmount,
		ProviderID:             c.GatewayTransactionID,
		AuthorisationMode:      domain.AuthorisationMode(c.AuthorisationMode),
		AgreementID:            c.AgreementID,
	}

	if p.AuthorisationMode == "" {
		p.AuthorisationMode = domain.AuthorisationModeWeb
	}

	if c.PaymentType == paymentTypeDirectDebit {
		p.Type = domain.DirectDebit{MandateID: c.MandateID}
	} else {
		p.Type = domain.Card{Details: c.CardDetails, LegacyCardBrand: c.CardBrand}
	}

	for _, l := range c.Links {
		al := &domain.ActionLink{Href: l.Href, Method: l.Method, Type: l.Type, Params: l.Params}
		switch l.Rel {
		case relNextURL:
			p.Actions.NextURL = al
		case relNextURLPost:
			p.Actions.NextURLPost = al
		case relCapture:
			p.Actions.Capture = al
		case relAuthURLPost:
			p.Actions.OneTimeToken = l.Params["one_time_token"]
		}
	}

	return p
}

type searchResponse struct {
	Total   int64            `json:"total"`
	Count   int              `json:"count"`
	Page    int              `json:"page"`
	Results []chargeResponse `json:"results"`
}

type refundResponse struct {
	RefundID          string                          `json:"refund_id"`
	ChargeID          string                          `json:"charge_id"`
	Amount            int64                           `json:"amount"`
	Status            string                          `json:"status"`
	CreatedDate       string                          `json:"created_date"`
	SettlementSummary *domain.RefundSettlementSummary `json:"settlement_summary"`
}

func (r refundResponse) toRefund(paymentID string) domain.Refund {
	if r.ChargeID != "" {
		paymentID = r.ChargeID
	}
	return domain.Refund{
		ID:                r.RefundID,
		PaymentID:         paymentID,
		Amount:            r.Amount,
		Status:            r.Status,
		CreatedDate:       r.CreatedDate,
		SettlementSummary: r.SettlementSummary,
	}
}

type refundsResponse struct {
	PaymentID string `json:"payment_id"`
	Embedded  struct {
		Refunds []refundResponse `json:"refunds"`
	} `json:"_embedded"`
}
