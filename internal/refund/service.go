package refund

import (
	"context"
	"log/slog"

	"paygateway/internal/apierror"
	"paygateway/internal/common/events"
	"paygateway/internal/common/validation"
	"paygateway/internal/domain"
	"paygateway/internal/payment"
)

// CreateRequest is the caller's refund body. When RefundAmountAvailable is
// omitted the current value is read from the payment.
type CreateRequest struct {
	Amount                *int64 `json:"amount" validate:"required,min=1,max=10000000"`
	RefundAmountAvailable *int64 `json:"refund_amount_available" validate:"omitempty,min=0"`
}

// Creator submits refunds to Connector.
type Creator interface {
	CreateRefund(ctx context.Context, accountID, chargeID string, req domain.RefundRequest) (domain.Refund, error)
}

// Service implements the refund operations.
type Service struct {
	router    *payment.Router
	connector Creator
	assembler Assembler
	notifier  *events.Notifier
	logger    *slog.Logger
}

// NewService creates a refund service.
func NewService(router *payment.Router, connector Creator, assembler Assembler, notifier *events.Notifier, logger *slog.Logger) *Service {
	return &Service{
		router:    router,
		connector: connector,
		assembler: assembler,
		notifier:  notifier,
		logger:    logger,
	}
}

// Get returns one refund of a payment.
func (s *Service) Get(ctx context.Context, account domain.Account, paymentID, refundID string) (View, error) {
	r, source, err := s.router.Refund(ctx, account, paymentID, refundID)
	if err != nil {
		return View{}, err
	}
	s.logger.Debug("refund resolved", "refund_id", refundID, "source", source)
	if r.PaymentID == "" {
		r.PaymentID = paymentID
	}
	return s.assembler.Assemble(r), nil
}

// List returns every refund of a payment.
func (s *Service) List(ctx context.Context, account domain.Account, paymentID string) (ListView, error) {
	refunds, _, err := s.router.Refunds(ctx, account, paymentID)
	if err != nil {
		return ListView{}, err
	}
	for i := range refunds {
		if refunds[i].PaymentID == "" {
			refunds[i].PaymentID = paymentID
		}
	}
	return s.assembler.AssembleList(paymentID, refunds), nil
}

// Create submits a refund of paymentID.
func (s *Service) Create(ctx context.Context, account domain.Account, paymentID string, req CreateRequest) (View, error) {
	if err := validation.Validate.Struct(req); err != nil {
		fields, ok := validation.FieldErrors(err)
		if !ok || len(fields) == 0 {
			return View{}, apierror.Internal()
		}
		fe := fields[0]
		if validation.IsMissing(fe) {
			return View{}, apierror.MissingAttribute(validation.Field(fe))
		}
		return View{}, apierror.InvalidAttribute(validation.Field(fe), validation.Describe(fe))
	}

	available, err := s.amountAvailable(ctx, account, paymentID, req)
	if err != nil {
		return View{}, err
	}

	r, err := s.connector.CreateRefund(ctx, account.ID, paymentID, domain.RefundRequest{
		Amount:                *req.Amount,
		RefundAmountAvailable: available,
	})
	if err != nil {
		perr := apierror.FromError(apierror.OpCreateRefund, err)
		s.logger.Warn("refund creation failed",
			"payment_id", paymentID,
			"code", perr.Code,
			"error", err,
		)
		return View{}, perr
	}

	if r.PaymentID == "" {
		r.PaymentID = paymentID
	}

	s.logger.Info("refund created", "payment_id", paymentID, "refund_id", r.ID)
	s.notifier.Notify(ctx, events.TypeRefundCreated, account.ID, "refund", r.ID, events.RefundCreated{
		PaymentID: paymentID,
		Amount:    r.Amount,
		Status:    r.Status,
	})

	return s.assembler.Assemble(r), nil
}

func (s *Service) amountAvailable(ctx context.Context, account domain.Account, paymentID string, req CreateRequest) (int64, error) {
	if req.RefundAmountAvailable != nil {
		return *req.RefundAmountAvailable, nil
	}

	p, _, err := s.router.PaymentFor(ctx, apierror.OpCreateRefund, account, paymentID)
	if err != nil {
		return 0, err
	}
	if p.RefundSummary == nil {
		return 0, apierror.RefundNotAvailable("unavailable")
	}
	return p.RefundSummary.AmountAvailable, nil
}
