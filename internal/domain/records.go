package domain

// Refund is a backend refund record.
type Refund struct {
	ID                string
	PaymentID         string
	Amount            int64
	Status            string
	CreatedDate       string
	SettlementSummary *RefundSettlementSummary
}

// RefundSettlementSummary carries the settled date of a refund, verbatim.
type RefundSettlementSummary struct {
	SettledDate string `json:"settled_date,omitempty"`
}

// Event is one state transition of a payment, as recorded by Ledger.
type Event struct {
	PaymentID string
	State     State
	Updated   string
}

// Agreement is a recurring payment agreement record.
type Agreement struct {
	ID                string
	Reference         string
	Description       string
	Status            string
	CreatedDate       string
	UserIdentifier    string
	PaymentInstrument *PaymentInstrument
}

// PaymentInstrument is the card stored against an agreement.
type PaymentInstrument struct {
	Type        string       `json:"type"`
	CardDetails *CardDetails `json:"card_details,omitempty"`
	CreatedDate string       `json:"created_date,omitempty"`
}

// Dispute is a chargeback raised against a payment.
type Dispute struct {
	ID              string
	PaymentID       string
	Amount          int64
	Fee             *int64
	NetAmount       *int64
	Status          string
	Reason          string
	CreatedDate     string
	EvidenceDueDate string
	SettledDate     string
}

// Page is one page of backend search results.
type Page[T any] struct {
	Total   int64
	Count   int
	Page    int
	Results []T
}
