// Package refund implements refund lookup, listing and creation.
package refund

import (
	"net/http"

	"paygateway/internal/domain"
	"paygateway/internal/payment"
	"paygateway/internal/uris"
)

// Links is the _links object of a refund.
type Links struct {
	Self    payment.Link `json:"self"`
	Payment payment.Link `json:"payment"`
}

// View is the public representation of a refund.
type View struct {
	RefundID          string                          `json:"refund_id"`
	PaymentID         string                          `json:"payment_id"`
	CreatedDate       string                          `json:"created_date"`
	Amount            int64                           `json:"amount"`
	Status            string                          `json:"status"`
	SettlementSummary *domain.RefundSettlementSummary `json:"settlement_summary,omitempty"`
	Links             Links                           `json:"_links"`
}

// ListView is the refunds of one payment.
type ListView struct {
	PaymentID string `json:"payment_id"`
	Links     Links  `json:"_links"`
	Embedded  struct {
		Refunds []View `json:"refunds"`
	} `json:"_embedded"`
}

// Assembler builds refund views.
type Assembler struct {
	uris uris.Public
}

// NewAssembler creates an Assembler.
func NewAssembler(public uris.Public) Assembler {
	return Assembler{uris: public}
}

// Assemble builds the view of r.
func (a Assembler) Assemble(r domain.Refund) View {
	return View{
		RefundID:          r.ID,
		PaymentID:         r.PaymentID,
		CreatedDate:       r.CreatedDate,
		Amount:            r.Amount,
		Status:            r.Status,
		SettlementSummary: r.SettlementSummary,
		Links: Links{
			Self:    payment.Link{Href: a.uris.PaymentRefund(r.PaymentID, r.ID), Method: http.MethodGet},
			Payment: payment.Link{Href: a.uris.Payment(r.PaymentID), Method: http.MethodGet},
		},
	}
}

// AssembleAll builds the views of refunds, preserving order.
func (a Assembler) AssembleAll(refunds []domain.Refund) []View {
	out := make([]View, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, a.Assemble(r))
	}
	return out
}

// AssembleList builds the refund list of paymentID.
func (a Assembler) AssembleList(paymentID string, refunds []domain.Refund) ListView {
	view := ListView{
		PaymentID: paymentID,
		Links: Links{
			Self:    payment.Link{Href: a.uris.PaymentRefunds(paymentID), Method: http.MethodGet},
			Payment: payment.Link{Href: a.uris.Payment(paymentID), Method: http.MethodGet},
		},
	}
	view.Embedded.Refunds = a.AssembleAll(refunds)
	return view
}
