// Package dispute builds the public view of chargebacks.
package dispute

import (
	"net/http"

	"paygateway/internal/domain"
	"paygateway/internal/payment"
	"paygateway/internal/uris"
)

// View is the public representation of a dispute.
type View struct {
	DisputeID       string      `json:"dispute_id"`
	PaymentID       string      `json:"payment_id"`
	Amount          int64       `json:"amount"`
	Fee             *int64      `json:"fee,omitempty"`
	NetAmount       *int64      `json:"net_amount,omitempty"`
	Status          string      `json:"status"`
	Reason          string      `json:"reason,omitempty"`
	CreatedDate     string      `json:"created_date"`
	EvidenceDueDate string      `json:"evidence_due_date,omitempty"`
	Settlement      *Settlement `json:"settlement_summary,omitempty"`
	Links           struct {
		Payment payment.Link `json:"payment"`
	} `json:"_links"`
}

// Settlement carries the date the dispute was settled.
type Settlement struct {
	SettledDate string `json:"settled_date"`
}

// Assembler builds dispute views.
type Assembler struct {
	uris uris.Public
}

func NewAssembler(public uris.Public) Assembler {
	return Assembler{uris: public}
}

func (a Assembler) Assemble(d domain.Dispute) View {
	v := View{
		DisputeID:       d.ID,
		PaymentID:       d.PaymentID,
		Amount:          d.Amount,
		Fee:             d.Fee,
		NetAmount:       d.NetAmount,
		Status:          d.Status,
		Reason:          d.Reason,
		CreatedDate:     d.CreatedDate,
		EvidenceDueDate: d.EvidenceDueDate,
	}
	if d.SettledDate != "" {
		v.Settlement = &Settlement{SettledDate: d.SettledDate}
	}
	v.Links.Payment = payment.Link{Href: a.uris.Payment(d.PaymentID), Method: http.MethodGet}
	return v
}

func (a Assembler) AssembleAll(disputes []domain.Dispute) []View {
	out := make([]View, 0, len(disputes))
	for _, d := range disputes {
		out = append(out, a.Assemble(d))
	}
	return out
}
