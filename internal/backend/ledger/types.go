package ledger

import (
	"paygateway/internal/domain"
)

const (
	transactionTypePayment = "PAYMENT"
	transactionTypeRefund  = "REFUND"
	transactionTypeDispute = "DISPUTE"

	paymentTypeDirectDebit = "DIRECT_DEBIT"
)

// transaction is Ledger's payment transaction representation. Ledger never
// advertises next actions and has no legacy top-level card brand.
type transaction struct {
	TransactionID          string                       `json:"transaction_id"`
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
}

func (t transaction) toPayment() domain.Payment {
	p := domain.Payment{
		ID:                     t.TransactionID,
		Amount:                 t.Amount,
		State:                  t.State,
		Description:            t.Description,
		Reference:              t.Reference,
		Language:               t.Language,
		Email:                  t.Email,
		PaymentProvider:        t.PaymentProvider,
		CreatedDate:            t.CreatedDate,
		ReturnURL:              t.ReturnURL,
		RefundSummary:          t.RefundSummary,
		SettlementSummary:      t.SettlementSummary,
		AuthorisationSummary:   t.AuthorisationSummary,
		Metadata:               t.Metadata,
		DelayedCapture:         t.DelayedCapture,
		Moto:                   t.Moto,
		CorporateCardSurcharge: t.CorporateCardSurcharge,
		TotalAmount:            t.TotalAmount,
		Fee:                    t.Fee,
		NetAmount:              t.NetAmount,
		ProviderID:             t.GatewayTransactionID,
		AuthorisationMode:      domain.AuthorisationMode(t.AuthorisationMode),
		AgreementID:            t.AgreementID,
	}

	if p.AuthorisationMode == "" {
		p.AuthorisationMode = domain.AuthorisationModeWeb
	}

	if t.PaymentType == paymentTypeDirectDebit {
		p.Type = domain.DirectDebit{MandateID: t.MandateID}
	} else {
		p.Type = domain.Card{Details: t.CardDetails}
	}

	return p
}

type refundTransaction struct {
	TransactionID       string                          `json:"transaction_id"`
	ParentTransactionID string                          `json:"parent_transaction_id"`
	Amount              int64                           `json:"amount"`
	State               domain.State                    `json:"state"`
	CreatedDate         string                          `json:"created_date"`
	SettlementSummary   *domain.RefundSettlementSummary `json:"settlement_summary"`
}

func (r refundTransaction) toRefund() domain.Refund {
	return domain.Refund{
		ID:                r.TransactionID,
		PaymentID:         r.ParentTransactionID,
		Amount:            r.Amount,
		Status:            r.State.Status,
		CreatedDate:       r.CreatedDate,
		SettlementSummary: r.SettlementSummary,
	}
}

type childTransactions struct {
	ParentTransactionID string              `json:"parent_transaction_id"`
	Transactions        []refundTransaction `json:"transactions"`
}

type disputeTransaction struct {
	TransactionID       string       `json:"transaction_id"`
	ParentTransactionID string       `json:"parent_transaction_id"`
	Amount              int64        `json:"amount"`
	Fee                 *int64       `json:"fee"`
	NetAmount           *int64       `json:"net_amount"`
	State               domain.State `json:"state"`
	Reason              string       `json:"reason"`
	CreatedDate         string       `json:"created_date"`
	EvidenceDueDate     string       `json:"evidence_due_date"`
	SettlementSummary   *struct {
		SettledDate string `json:"settled_date"`
	} `json:"settlement_summary"`
}

func (d disputeTransaction) toDispute() domain.Dispute {
	dispute := domain.Dispute{
		ID:              d.TransactionID,
		PaymentID:       d.ParentTransactionID,
		Amount:          d.Amount,
		Fee:             d.Fee,
		NetAmount:       d.NetAmount,
		Status:          d.State.Status,
		Reason:          d.Reason,
		CreatedDate:     d.CreatedDate,
		EvidenceDueDate: d.EvidenceDueDate,
	}
	if d.SettlementSummary != nil {
		dispute.SettledDate = d.SettlementSummary.SettledDate
	}
	return dispute
}

type eventsResponse struct {
	TransactionID string `json:"transaction_id"`
	Events        []struct {
		State     domain.State `json:"state"`
		Timestamp string       `json:"timestamp"`
	} `json:"events"`
}

type agreement struct {
	ExternalID        string                    `json:"external_id"`
	Reference         string                    `json:"reference"`
	Description       string                    `json:"description"`
	Status            string                    `json:"status"`
	CreatedDate       string                    `json:"created_date"`
	UserIdentifier    string                    `json:"user_identifier"`
	PaymentInstrument *domain.PaymentInstrument `json:"payment_instrument"`
}

func (a agreement) toAgreement() domain.Agreement {
	return domain.Agreement{
		ID:                a.ExternalID,
		Reference:         a.Reference,
		Description:       a.Description,
		Status:            a.Status,
		CreatedDate:       a.CreatedDate,
		UserIdentifier:    a.UserIdentifier,
		PaymentInstrument: a.PaymentInstrument,
	}
}

type searchResponse[T any] struct {
	Total   int64 `json:"total"`
	Count   int   `json:"count"`
	Page    int   `json:"page"`
	Results []T   `json:"results"`
}

func toPage[W any, T any](resp searchResponse[W], convert func(W) T) domain.Page[T] {
	page := domain.Page[T]{
		Total:   resp.Total,
		Count:   resp.Count,
		Page:    resp.Page,
		Results: make([]T, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		page.Results = append(page.Results, convert(r))
	}
	return page
}
