// Package ledger is the client for Ledger, the read-optimized projection of
// completed and in-flight transactions.
package ledger

import (
	"context"
	"net/http"
	"net/url"

	"paygateway/internal/backend"
	"paygateway/internal/domain"
	"paygateway/internal/uris"
)

// Doer performs backend requests. *backend.Client implements it.
type Doer interface {
	Do(ctx context.Context, req backend.Request, out any) (int, error)
}

// Client talks to Ledger. Every call is scoped to the caller's account.
type Client struct {
	http  Doer
	paths uris.Ledger
}

// New creates a Ledger client.
func New(doer Doer) *Client {
	return &Client{http: doer}
}

func accountQuery(accountID string) url.Values {
	q := url.Values{}
	q.Set("account_id", accountID)
	return q
}

func scoped(accountID, transactionType string, filters url.Values) url.Values {
	q := url.Values{}
	for k, vs := range filters {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("account_id", accountID)
	if transactionType != "" {
		q.Set("transaction_type", transactionType)
	}
	return q
}

// GetTransaction fetches a payment transaction.
func (c *Client) GetTransaction(ctx context.Context, accountID, id string) (domain.Payment, error) {
	q := accountQuery(accountID)
	q.Set("transaction_type", transactionTypePayment)

	var resp transaction
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Transaction(id),
		Query:  q,
	}, &resp); err != nil {
		return domain.Payment{}, err
	}
	return resp.toPayment(), nil
}

// SearchTransactions runs a payment search with already-validated filters.
func (c *Client) SearchTransactions(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Payment], error) {
	var resp searchResponse[transaction]
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Transactions(),
		Query:  scoped(accountID, transactionTypePayment, filters),
	}, &resp); err != nil {
		return domain.Page[domain.Payment]{}, err
	}
	return toPage(resp, transaction.toPayment), nil
}

// GetRefund fetches a refund transaction of paymentID.
func (c *Client) GetRefund(ctx context.Context, accountID, paymentID, refundID string) (domain.Refund, error) {
	q := accountQuery(accountID)
	q.Set("transaction_type", transactionTypeRefund)
	q.Set("parent_external_id", paymentID)

	var resp refundTransaction
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Transaction(refundID),
		Query:  q,
	}, &resp); err != nil {
		return domain.Refund{}, err
	}
	return resp.toRefund(), nil
}

// ListRefunds fetches the refund transactions of paymentID.
func (c *Client) ListRefunds(ctx context.Context, accountID, paymentID string) ([]domain.Refund, error) {
	q := accountQuery(accountID)
	q.Set("transaction_type", transactionTypeRefund)

	var resp childTransactions
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Children(paymentID),
		Query:  q,
	}, &resp); err != nil {
		return nil, err
	}

	refunds := make([]domain.Refund, 0, len(resp.Transactions))
	for _, r := range resp.Transactions {
		refund := r.toRefund()
		if refund.PaymentID == "" {
			refund.PaymentID = paymentID
		}
		refunds = append(refunds, refund)
	}
	return refunds, nil
}

// SearchRefunds runs a refund search.
func (c *Client) SearchRefunds(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Refund], error) {
	var resp searchResponse[refundTransaction]
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Transactions(),
		Query:  scoped(accountID, transactionTypeRefund, filters),
	}, &resp); err != nil {
		return domain.Page[domain.Refund]{}, err
	}
	return toPage(resp, refundTransaction.toRefund), nil
}

// SearchDisputes runs a dispute search.
func (c *Client) SearchDisputes(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Dispute], error) {
	var resp searchResponse[disputeTransaction]
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Transactions(),
		Query:  scoped(accountID, transactionTypeDispute, filters),
	}, &resp); err != nil {
		return domain.Page[domain.Dispute]{}, err
	}
	return toPage(resp, disputeTransaction.toDispute), nil
}

// GetEvents fetches the state transitions of a payment.
func (c *Client) GetEvents(ctx context.Context, accountID, paymentID string) ([]domain.Event, error) {
	var resp eventsResponse
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Events(paymentID),
		Query:  accountQuery(accountID),
	}, &resp); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(resp.Events))
	for _, e := range resp.Events {
		events = append(events, domain.Event{
			PaymentID: paymentID,
			State:     e.State,
			Updated:   e.Timestamp,
		})
	}
	return events, nil
}

// GetAgreement fetches an agreement.
func (c *Client) GetAgreement(ctx context.Context, accountID, agreementID string) (domain.Agreement, error) {
	var resp agreement
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Agreement(agreementID),
		Query:  accountQuery(accountID),
	}, &resp); err != nil {
		return domain.Agreement{}, err
	}
	return resp.toAgreement(), nil
}

// SearchAgreements runs an agreement search.
func (c *Client) SearchAgreements(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Agreement], error) {
	var resp searchResponse[agreement]
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Agreements(),
		Query:  scoped(accountID, "", filters),
	}, &resp); err != nil {
		return domain.Page[domain.Agreement]{}, err
	}
	return toPage(resp, agreement.toAgreement), nil
}
