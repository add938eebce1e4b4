package payment

import (
	"context"
	"log/slog"

	"paygateway/internal/apierror"
	"paygateway/internal/domain"
)

// Source records which backend answered a lookup.
type Source string

const (
	SourceConnector Source = "connector"
	SourceLedger    Source = "ledger"
)

// ConnectorReader is the part of Connector the router reads from.
type ConnectorReader interface {
	GetCharge(ctx context.Context, accountID, chargeID string) (domain.Payment, error)
	GetRefund(ctx context.Context, accountID, chargeID, refundID string) (domain.Refund, error)
	ListRefunds(ctx context.Context, accountID, chargeID string) ([]domain.Refund, error)
}

// LedgerReader is the part of Ledger the router falls back to.
type LedgerReader interface {
	GetTransaction(ctx context.Context, accountID, id string) (domain.Payment, error)
	GetRefund(ctx context.Context, accountID, paymentID, refundID string) (domain.Refund, error)
	ListRefunds(ctx context.Context, accountID, paymentID string) ([]domain.Refund, error)
}

// Router resolves single-resource lookups against Connector, falling back to
// Ledger only when Connector has no record. Any other Connector failure is
// returned as is. Calls are strictly sequential.
type Router struct {
	connector ConnectorReader
	ledger    LedgerReader
	logger    *slog.Logger
}

// NewRouter creates a Router.
func NewRouter(connector ConnectorReader, ledger LedgerReader, logger *slog.Logger) *Router {
	return &Router{connector: connector, ledger: ledger, logger: logger}
}

// Payment fetches one payment.
func (r *Router) Payment(ctx context.Context, account domain.Account, id string) (domain.Payment, Source, error) {
	return r.PaymentFor(ctx, apierror.OpGetPayment, account, id)
}

// PaymentFor fetches one payment on behalf of op, so failures carry op's
// error codes.
func (r *Router) PaymentFor(ctx context.Context, op apierror.Operation, account domain.Account, id string) (domain.Payment, Source, error) {
	return resolve(ctx, r, op, id,
		func(ctx context.Context) (domain.Payment, error) {
			return r.connector.GetCharge(ctx, account.ID, id)
		},
		func(ctx context.Context) (domain.Payment, error) {
			return r.ledger.GetTransaction(ctx, account.ID, id)
		},
	)
}

// Refund fetches one refund of a payment.
func (r *Router) Refund(ctx context.Context, account domain.Account, paymentID, refundID string) (domain.Refund, Source, error) {
	return resolve(ctx, r, apierror.OpGetRefund, refundID,
		func(ctx context.Context) (domain.Refund, error) {
			return r.connector.GetRefund(ctx, account.ID, paymentID, refundID)
		},
		func(ctx context.Context) (domain.Refund, error) {
			return r.ledger.GetRefund(ctx, account.ID, paymentID, refundID)
		},
	)
}

// Refunds fetches every refund of a payment.
func (r *Router) Refunds(ctx context.Context, account domain.Account, paymentID string) ([]domain.Refund, Source, error) {
	return resolve(ctx, r, apierror.OpGetRefunds, paymentID,
		func(ctx context.Context) ([]domain.Refund, error) {
			return r.connector.ListRefunds(ctx, account.ID, paymentID)
		},
		func(ctx context.Context) ([]domain.Refund, error) {
			return r.ledger.ListRefunds(ctx, account.ID, paymentID)
		},
	)
}

func resolve[T any](
	ctx context.Context,
	r *Router,
	op apierror.Operation,
	id string,
	primary, fallback func(context.Context) (T, error),
) (T, Source, error) {
	var zero T

	v, err := primary(ctx)
	if err == nil {
		return v, SourceConnector, nil
	}

	perr := apierror.FromError(op, err)
	if perr.Kind != apierror.KindNotFound {
		r.logger.Warn("connector lookup failed",
			"operation", op,
			"id", id,
			"error", err,
		)
		return zero, SourceConnector, perr
	}

	r.logger.Debug("connector has no record, trying ledger", "operation", op, "id", id)

	v, err = fallback(ctx)
	if err != nil {
		return zero, SourceLedger, apierror.FromError(op, err)
	}
	return v, SourceLedger, nil
}
