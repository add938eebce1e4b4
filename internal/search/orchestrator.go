// Package search validates search requests, routes them to the backend that
// can answer them and paginates the results.
package search

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strconv"

	"paygateway/internal/agreement"
	"paygateway/internal/apierror"
	"paygateway/internal/dispute"
	"paygateway/internal/domain"
	"paygateway/internal/payment"
	"paygateway/internal/refund"
	"paygateway/internal/uris"
)

// ConnectorSearcher searches live charges.
type ConnectorSearcher interface {
	SearchCharges(ctx context.Context, accountID string, query url.Values) (domain.Page[domain.Payment], error)
}

// LedgerSearcher searches the transaction history.
type LedgerSearcher interface {
	SearchTransactions(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Payment], error)
	SearchRefunds(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Refund], error)
	SearchAgreements(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Agreement], error)
	SearchDisputes(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Dispute], error)
}

// Assemblers converts backend records into their public views.
type Assemblers struct {
	Payments   payment.Assembler
	Refunds    refund.Assembler
	Agreements agreement.Assembler
	Disputes   dispute.Assembler
}

// Orchestrator runs searches.
type Orchestrator struct {
	connector  ConnectorSearcher
	ledger     LedgerSearcher
	assemblers Assemblers
	uris       uris.Public
	logger     *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(connector ConnectorSearcher, ledger LedgerSearcher, assemblers Assemblers, public uris.Public, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		connector:  connector,
		ledger:     ledger,
		assemblers: assemblers,
		uris:       public,
		logger:     logger,
	}
}

// PaymentSource picks the backend for a payment search. Direct debit
// accounts always use Ledger. Card accounts use Connector only when the
// caller filters on a single in-flight state.
func PaymentSource(account domain.Account, params PaymentParams) payment.Source {
	if !account.IsCard() {
		return payment.SourceLedger
	}
	if slices.Contains(domain.InFlightStatuses, params.State) {
		return payment.SourceConnector
	}
	return payment.SourceLedger
}

// SearchPayments searches payments.
func (o *Orchestrator) SearchPayments(ctx context.Context, account domain.Account, q Query) (Results[payment.Canonical], error) {
	params, err := parsePayments(account, q)
	if err != nil {
		return Results[payment.Canonical]{}, err
	}

	f := filters(params)
	p := resolvePaging(params.Page, params.DisplaySize)
	source := PaymentSource(account, params)

	var page domain.Page[domain.Payment]
	switch source {
	case payment.SourceConnector:
		page, err = o.connector.SearchCharges(ctx, account.ID, withPaging(f, p))
	default:
		page, err = o.ledger.SearchTransactions(ctx, account.ID, withPaging(f, p))
	}
	if err != nil {
		return Results[payment.Canonical]{}, apierror.FromError(apierror.OpSearchPayments, err)
	}

	o.logger.Debug("payment search",
		"account_id", account.ID,
		"source", source,
		"total", page.Total,
	)

	return paginate(page, o.assemblers.Payments.AssembleAll, o.uris.Payments(), f, p), nil
}

// SearchRefunds searches refunds across every payment of the account.
func (o *Orchestrator) SearchRefunds(ctx context.Context, account domain.Account, q Query) (Results[refund.View], error) {
	var params RefundParams
	bind(q, &params)
	if err := check(apierror.OpSearchRefunds, q, params); err != nil {
		return Results[refund.View]{}, err
	}

	f := filters(params)
	p := resolvePaging(params.Page, params.DisplaySize)

	page, err := o.ledger.SearchRefunds(ctx, account.ID, withPaging(f, p))
	if err != nil {
		return Results[refund.View]{}, apierror.FromError(apierror.OpSearchRefunds, err)
	}
	return paginate(page, o.assemblers.Refunds.AssembleAll, o.uris.Refunds(), f, p), nil
}

// SearchAgreements searches agreements. The account must have recurring
// card capability.
func (o *Orchestrator) SearchAgreements(ctx context.Context, account domain.Account, q Query) (Results[agreement.View], error) {
	if !account.CanUseAgreements() {
		return Results[agreement.View]{}, apierror.RecurringNotEnabled()
	}

	var params AgreementParams
	bind(q, &params)
	if err := check(apierror.OpSearchAgreements, q, params); err != nil {
		return Results[agreement.View]{}, err
	}

	f := filters(params)
	p := resolvePaging(params.Page, params.DisplaySize)

	page, err := o.ledger.SearchAgreements(ctx, account.ID, withPaging(f, p))
	if err != nil {
		return Results[agreement.View]{}, apierror.FromError(apierror.OpSearchAgreements, err)
	}
	return paginate(page, o.assemblers.Agreements.AssembleAll, o.uris.Agreements(), f, p), nil
}

// SearchDisputes searches disputes.
func (o *Orchestrator) SearchDisputes(ctx context.Context, account domain.Account, q Query) (Results[dispute.View], error) {
	var params DisputeParams
	bind(q, &params)
	if err := check(apierror.OpSearchDisputes, q, params); err != nil {
		return Results[dispute.View]{}, err
	}

	f := filters(params)
	p := resolvePaging(params.Page, params.DisplaySize)

	page, err := o.ledger.SearchDisputes(ctx, account.ID, withPaging(f, p))
	if err != nil {
		return Results[dispute.View]{}, apierror.FromError(apierror.OpSearchDisputes, err)
	}
	return paginate(page, o.assemblers.Disputes.AssembleAll, o.uris.Disputes(), f, p), nil
}

func withPaging(f url.Values, p paging) url.Values {
	q := url.Values{}
	for k, vs := range f {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("page", strconv.Itoa(p.page))
	q.Set("display_size", strconv.Itoa(p.displaySize))
	return q
}
