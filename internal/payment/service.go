// Package payment assembles the public view of payments and implements the
// payment operations: lookup, creation, cancellation, capture and events.
package payment

import (
	"context"
	"log/slog"
	"net/http"

	"paygateway/internal/apierror"
	"paygateway/internal/common/events"
	"paygateway/internal/domain"
	"paygateway/internal/uris"
)

// ChargeActions mutates live charges in Connector.
type ChargeActions interface {
	CancelCharge(ctx context.Context, accountID, chargeID string) error
	CaptureCharge(ctx context.Context, accountID, chargeID string) error
}

// EventReader reads payment history from Ledger.
type EventReader interface {
	GetEvents(ctx context.Context, accountID, paymentID string) ([]domain.Event, error)
}

// EventView is one entry of a payment's event list.
type EventView struct {
	PaymentID string       `json:"payment_id"`
	State     domain.State `json:"state"`
	Updated   string       `json:"updated"`
	Links     struct {
		PaymentURL Link `json:"payment_url"`
	} `json:"_links"`
}

// EventsView is the response of the events endpoint.
type EventsView struct {
	PaymentID string      `json:"payment_id"`
	Events    []EventView `json:"events"`
	Links     struct {
		Self Link `json:"self"`
	} `json:"_links"`
}

// Service implements the payment operations.
type Service struct {
	router      *Router
	assembler   Assembler
	coordinator *Coordinator
	actions     ChargeActions
	history     EventReader
	uris        uris.Public
	notifier    *events.Notifier
	logger      *slog.Logger
}

// NewService creates a payment service.
func NewService(
	router *Router,
	assembler Assembler,
	coordinator *Coordinator,
	actions ChargeActions,
	history EventReader,
	public uris.Public,
	notifier *events.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		router:      router,
		assembler:   assembler,
		coordinator: coordinator,
		actions:     actions,
		history:     history,
		uris:        public,
		notifier:    notifier,
		logger:      logger,
	}
}

// Get returns one payment from whichever backend holds it.
func (s *Service) Get(ctx context.Context, account domain.Account, id string) (Canonical, error) {
	p, source, err := s.router.Payment(ctx, account, id)
	if err != nil {
		return Canonical{}, err
	}
	s.logger.Debug("payment resolved", "payment_id", id, "source", source)
	return s.assembler.Assemble(p), nil
}

// Create validates req and creates (or replays) a payment.
func (s *Service) Create(ctx context.Context, account domain.Account, req CreateRequest, idempotencyKey string) (Canonical, bool, error) {
	charge, err := req.Validate(account)
	if err != nil {
		return Canonical{}, false, err
	}

	c, created, err := s.coordinator.CreateOrReuse(ctx, account, charge, idempotencyKey)
	if err != nil {
		return Canonical{}, false, err
	}

	s.notifier.Notify(ctx, events.TypePaymentCreated, account.ID, "payment", c.PaymentID, events.PaymentCreated{
		Amount:            c.Amount,
		Reference:         c.Reference,
		AuthorisationMode: string(c.AuthorisationMode),
		Replayed:          !created,
	})

	return c, created, nil
}

// Cancel asks Connector to cancel a payment that has not finished.
func (s *Service) Cancel(ctx context.Context, account domain.Account, id string) error {
	if err := s.actions.CancelCharge(ctx, account.ID, id); err != nil {
		return apierror.FromError(apierror.OpCancelPayment, err)
	}
	s.logger.Info("payment cancel requested", "account_id", account.ID, "payment_id", id)
	s.notifier.Notify(ctx, events.TypePaymentCancelled, account.ID, "payment", id, nil)
	return nil
}

// Capture asks Connector to capture a delayed-capture payment.
func (s *Service) Capture(ctx context.Context, account domain.Account, id string) error {
	if err := s.actions.CaptureCharge(ctx, account.ID, id); err != nil {
		return apierror.FromError(apierror.OpCapturePayment, err)
	}
	s.logger.Info("payment capture requested", "account_id", account.ID, "payment_id", id)
	s.notifier.Notify(ctx, events.TypePaymentCaptured, account.ID, "payment", id, nil)
	return nil
}

// Events returns the state transitions of a payment.
func (s *Service) Events(ctx context.Context, account domain.Account, id string) (EventsView, error) {
	evs, err := s.history.GetEvents(ctx, account.ID, id)
	if err != nil {
		return EventsView{}, apierror.FromError(apierror.OpGetEvents, err)
	}

	self := s.uris.Payment(id)

	view := EventsView{PaymentID: id, Events: make([]EventView, 0, len(evs))}
	view.Links.Self = Link{Href: s.uris.PaymentEvents(id), Method: http.MethodGet}
	for _, e := range evs {
		ev := EventView{PaymentID: e.PaymentID, State: e.State, Updated: e.Updated}
		ev.Links.PaymentURL = Link{Href: self, Method: http.MethodGet}
		view.Events = append(view.Events, ev)
	}
	return view, nil
}
