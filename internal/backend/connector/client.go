// Package connector is the client for Connector, the service holding live,
// mutable charge state.
package connector

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

// Client talks to Connector.
type Client struct {
	http  Doer
	paths uris.Connector
}

// New creates a Connector client.
func New(doer Doer) *Client {
	return &Client{http: doer}
}

// GetCharge fetches a charge.
func (c *Client) GetCharge(ctx context.Context, accountID, chargeID string) (domain.Payment, error) {
	var resp chargeResponse
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Charge(accountID, chargeID),
	}, &resp); err != nil {
		return domain.Payment{}, err
	}
	return resp.toPayment(), nil
}

// SearchCharges runs a charge search with already-validated filters.
func (c *Client) SearchCharges(ctx context.Context, accountID string, query url.Values) (domain.Page[domain.Payment], error) {
	var resp searchResponse
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Charges(accountID),
		Query:  query,
	}, &resp); err != nil {
		return domain.Page[domain.Payment]{}, err
	}

	page := domain.Page[domain.Payment]{
		Total:   resp.Total,
		Count:   resp.Count,
		Page:    resp.Page,
		Results: make([]domain.Payment, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		page.Results = append(page.Results, r.toPayment())
	}
	return page, nil
}

// CreateCharge creates a charge. When idempotencyKey is set Connector
// deduplicates: created reports whether a new charge was made (201) or an
// existing one replayed (200).
func (c *Client) CreateCharge(ctx context.Context, accountID string, req domain.ChargeRequest, idempotencyKey string) (payment domain.Payment, created bool, err error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	var resp chargeResponse
	status, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   c.paths.Charges(accountID),
		Body:   req,
		Header: header,
	}, &resp)
	if err != nil {
		return domain.Payment{}, false, err
	}

	return resp.toPayment(), status == http.StatusCreated, nil
}

// CancelCharge cancels a charge that has not finished.
func (c *Client) CancelCharge(ctx context.Context, accountID, chargeID string) error {
	_, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   c.paths.Cancel(accountID, chargeID),
	}, nil)
	return err
}

// CaptureCharge captures a delayed-capture charge.
func (c *Client) CaptureCharge(ctx context.Context, accountID, chargeID string) error {
	_, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   c.paths.Capture(accountID, chargeID),
	}, nil)
	return err
}

// GetRefund fetches one refund of a charge.
func (c *Client) GetRefund(ctx context.Context, accountID, chargeID, refundID string) (domain.Refund, error) {
	var resp refundResponse
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Refund(accountID, chargeID, refundID),
	}, &resp); err != nil {
		return domain.Refund{}, err
	}
	return resp.toRefund(chargeID), nil
}

// ListRefunds fetches every refund of a charge.
func (c *Client) ListRefunds(ctx context.Context, accountID, chargeID string) ([]domain.Refund, error) {
	var resp refundsResponse
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   c.paths.Refunds(accountID, chargeID),
	}, &resp); err != nil {
		return nil, err
	}

	refunds := make([]domain.Refund, 0, len(resp.Embedded.Refunds))
	for _, r := range resp.Embedded.Refunds {
		refunds = append(refunds, r.toRefund(chargeID))
	}
	return refunds, nil
}

// CreateRefund submits a refund.
func (c *Client) CreateRefund(ctx context.Context, accountID, chargeID string, req domain.RefundRequest) (domain.Refund, error) {
	var resp refundResponse
	if _, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   c.paths.Refunds(accountID, chargeID),
		Body:   req,
	}, &resp); err != nil {
		return domain.Refund{}, err
	}
	return resp.toRefund(chargeID), nil
}

// CancelAgreement cancels a recurring payment agreement.
func (c *Client) CancelAgreement(ctx context.Context, accountID, agreementID string) error {
	_, err := c.http.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   c.paths.CancelAgreement(accountID, agreementID),
	}, nil)
	return err
}
