// Package uris maps resource identifiers to backend paths and to the URLs
// this gateway advertises to callers.
package uris

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Connector builds Connector paths.
type Connector struct{}

func (Connector) Charges(accountID string) string {
	return fmt.Sprintf("/v1/api/accounts/%s/charges", url.PathEscape(accountID))
}

func (c Connector) Charge(accountID, chargeID string) string {
	return c.Charges(accountID) + "/" + url.PathEscape(chargeID)
}

func (c Connector) Cancel(accountID, chargeID string) string {
	return c.Charge(accountID, chargeID) + "/cancel"
}

func (c Connector) Capture(accountID, chargeID string) string {
	return c.Charge(accountID, chargeID) + "/capture"
}

func (c Connector) Refunds(accountID, chargeID string) string {
	return c.Charge(accountID, chargeID) + "/refunds"
}

func (c Connector) Refund(accountID, chargeID, refundID string) string {
	return c.Refunds(accountID, chargeID) + "/" + url.PathEscape(refundID)
}

func (Connector) CancelAgreement(accountID, agreementID string) string {
	return fmt.Sprintf("/v1/api/accounts/%s/agreements/%s/cancel", url.PathEscape(accountID), url.PathEscape(agreementID))
}

// Ledger builds Ledger paths.
type Ledger struct{}

func (Ledger) Transactions() string {
	return "/v1/transaction"
}

func (l Ledger) Transaction(id string) string {
	return l.Transactions() + "/" + url.PathEscape(id)
}

func (l Ledger) Events(id string) string {
	return l.Transaction(id) + "/event"
}

// Children lists transactions whose parent is id (refunds of a payment).
func (l Ledger) Children(id string) string {
	return l.Transaction(id) + "/transaction"
}

func (Ledger) Agreements() string {
	return "/v1/agreement"
}

func (l Ledger) Agreement(id string) string {
	return l.Agreements() + "/" + url.PathEscape(id)
}

// Public builds the URLs advertised in _links.
type Public struct {
	baseURL string
}

// NewPublic creates a public URI generator rooted at baseURL.
func NewPublic(baseURL string) Public {
	return Public{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (p Public) Payments() string {
	return p.baseURL + "/v1/payments"
}

func (p Public) Payment(id string) string {
	return p.Payments() + "/" + url.PathEscape(id)
}

func (p Public) PaymentEvents(id string) string {
	return p.Payment(id) + "/events"
}

func (p Public) PaymentRefunds(id string) string {
	return p.Payment(id) + "/refunds"
}

func (p Public) PaymentRefund(paymentID, refundID string) string {
	return p.PaymentRefunds(paymentID) + "/" + url.PathEscape(refundID)
}

func (p Public) PaymentCancel(id string) string {
	return p.Payment(id) + "/cancel"
}

func (p Public) PaymentCapture(id string) string {
	return p.Payment(id) + "/capture"
}

// Auth is the endpoint that authorises moto_api payments with a one-time token.
func (p Public) Auth() string {
	return p.baseURL + "/v1/auth"
}

func (p Public) Refunds() string {
	return p.baseURL + "/v1/refunds"
}

func (p Public) Agreements() string {
	return p.baseURL + "/v1/agreements"
}

func (p Public) Agreement(id string) string {
	return p.Agreements() + "/" + url.PathEscape(id)
}

func (p Public) Disputes() string {
	return p.baseURL + "/v1/disputes"
}

// Page returns collection with the caller's filters and the given page.
// Query keys are encoded in sorted order so the same inputs always produce
// the same URL.
func Page(collection string, filters url.Values, page, displaySize int) string {
	q := url.Values{}
	for k, vs := range filters {
		if k == "page" || k == "display_size" {
			continue
		}
		q[k] = append([]string(nil), vs...)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("display_size", strconv.Itoa(displaySize))
	return collection + "?" + q.Encode()
}
