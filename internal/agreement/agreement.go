// Package agreement exposes recurring payment agreements. Every operation
// requires an account with recurring card capability.
package agreement

import (
	"context"
	"log/slog"
	"net/http"

	"paygateway/internal/apierror"
	"paygateway/internal/common/events"
	"paygateway/internal/domain"
	"paygateway/internal/payment"
	"paygateway/internal/uris"
)

// View is the public representation of an agreement.
type View struct {
	AgreementID       string                    `json:"agreement_id"`
	Reference         string                    `json:"reference"`
	Description       string                    `json:"description"`
	Status            string                    `json:"status"`
	CreatedDate       string                    `json:"created_date"`
	UserIdentifier    string                    `json:"user_identifier,omitempty"`
	PaymentInstrument *domain.PaymentInstrument `json:"payment_instrument,omitempty"`
	Links             struct {
		Self payment.Link `json:"self"`
	} `json:"_links"`
}

// Assembler builds agreement views.
type Assembler struct {
	uris uris.Public
}

func NewAssembler(public uris.Public) Assembler {
	return Assembler{uris: public}
}

func (a Assembler) Assemble(ag domain.Agreement) View {
	v := View{
		AgreementID:       ag.ID,
		Reference:         ag.Reference,
		Description:       ag.Description,
		Status:            ag.Status,
		CreatedDate:       ag.CreatedDate,
		UserIdentifier:    ag.UserIdentifier,
		PaymentInstrument: ag.PaymentInstrument,
	}
	v.Links.Self = payment.Link{Href: a.uris.Agreement(ag.ID), Method: http.MethodGet}
	return v
}

func (a Assembler) AssembleAll(agreements []domain.Agreement) []View {
	out := make([]View, 0, len(agreements))
	for _, ag := range agreements {
		out = append(out, a.Assemble(ag))
	}
	return out
}

// Reader reads agreements from Ledger.
type Reader interface {
	GetAgreement(ctx context.Context, accountID, agreementID string) (domain.Agreement, error)
}

// Canceller cancels agreements in Connector.
type Canceller interface {
	CancelAgreement(ctx context.Context, accountID, agreementID string) error
}

// Service implements the agreement operations.
type Service struct {
	ledger    Reader
	connector Canceller
	assembler Assembler
	notifier  *events.Notifier
	logger    *slog.Logger
}

func NewService(ledger Reader, connector Canceller, assembler Assembler, notifier *events.Notifier, logger *slog.Logger) *Service {
	return &Service{
		ledger:    ledger,
		connector: connector,
		assembler: assembler,
		notifier:  notifier,
		logger:    logger,
	}
}

// Get returns one agreement.
func (s *Service) Get(ctx context.Context, account domain.Account, id string) (View, error) {
	if !account.CanUseAgreements() {
		return View{}, apierror.RecurringNotEnabled()
	}

	ag, err := s.ledger.GetAgreement(ctx, account.ID, id)
	if err != nil {
		return View{}, apierror.FromError(apierror.OpGetAgreement, err)
	}
	return s.assembler.Assemble(ag), nil
}

// Cancel cancels an active agreement.
func (s *Service) Cancel(ctx context.Context, account domain.Account, id string) error {
	if !account.CanUseAgreements() {
		return apierror.RecurringNotEnabled()
	}

	if err := s.connector.CancelAgreement(ctx, account.ID, id); err != nil {
		return apierror.FromError(apierror.OpCancelAgreement, err)
	}

	s.logger.Info("agreement cancel requested", "account_id", account.ID, "agreement_id", id)
	s.notifier.Notify(ctx, events.TypeAgreementCanceled, account.ID, "agreement", id, nil)
	return nil
}
