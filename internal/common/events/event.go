package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event types published after a successful public operation.
const (
	TypePaymentCreated    = "publicapi.payment.created"
	TypePaymentCancelled  = "publicapi.payment.cancel_requested"
	TypePaymentCaptured   = "publicapi.payment.capture_requested"
	TypeRefundCreated     = "publicapi.refund.created"
	TypeAgreementCanceled = "publicapi.agreement.cancel_requested"
)

// Event represents a domain event envelope
type Event struct {
	ID            string          `json:"event_id"`
	Type          string          `json:"type"`
	Version       int             `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	AccountID     string          `json:"account_id"`
	ResourceType  string          `json:"resource_type"`
	ResourceID    string          `json:"resource_id"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// NewEvent creates a new event
func NewEvent(eventType, accountID, resourceType, resourceID string, data any) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:           ulid.Make().String(),
		Type:         eventType,
		Version:      1,
		OccurredAt:   time.Now().UTC(),
		AccountID:    accountID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Data:         dataBytes,
	}, nil
}

// WithCorrelation ties the event to the request that caused it.
func (e *Event) WithCorrelation(correlationID string) *Event {
	e.CorrelationID = correlationID
	return e
}

// DecodeData decodes the event data into a struct
func (e *Event) DecodeData(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Publisher publishes events to a message broker
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Discard is a Publisher that drops every event. It is used when no broker
// is configured.
type Discard struct{}

func (Discard) Publish(context.Context, *Event) error { return nil }

// PaymentCreated is the data of TypePaymentCreated.
type PaymentCreated struct {
	Amount            int64  `json:"amount"`
	Reference         string `json:"reference"`
	AuthorisationMode string `json:"authorisation_mode"`
	Replayed          bool   `json:"replayed"`
}

// RefundCreated is the data of TypeRefundCreated.
type RefundCreated struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}
