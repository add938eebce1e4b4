package uris

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURIs(t *testing.T) {
	p := NewPublic("https://publicapi.example/")

	assert.Equal(t, "https://publicapi.example/v1/payments/ch_abc", p.Payment("ch_abc"))
	assert.Equal(t, "https://publicapi.example/v1/payments/ch_abc/events", p.PaymentEvents("ch_abc"))
	assert.Equal(t, "https://publicapi.example/v1/payments/ch_abc/refunds/rf_1", p.PaymentRefund("ch_abc", "rf_1"))
	assert.Equal(t, "https://publicapi.example/v1/auth", p.Auth())
	assert.Equal(t, "https://publicapi.example/v1/agreements/ag_1", p.Agreement("ag_1"))
}

func TestBackendPathsEscapeIDs(t *testing.T) {
	assert.Equal(t, "/v1/api/accounts/42/charges/a%2Fb/cancel", Connector{}.Cancel("42", "a/b"))
	assert.Equal(t, "/v1/transaction/tx_1/event", Ledger{}.Events("tx_1"))
	assert.Equal(t, "/v1/api/accounts/42/agreements/ag_1/cancel", Connector{}.CancelAgreement("42", "ag_1"))
}

func TestPageIsDeterministic(t *testing.T) {
	filters := url.Values{
		"state":        {"success"},
		"reference":    {"ref 1"},
		"page":         {"7"},
		"display_size": {"9"},
	}

	got := Page("https://publicapi.example/v1/payments", filters, 2, 1)
	assert.Equal(t, "https://publicapi.example/v1/payments?display_size=1&page=2&reference=ref+1&state=success", got)
	assert.Equal(t, got, Page("https://publicapi.example/v1/payments", filters, 2, 1))

	// The caller's filters are not modified.
	assert.Equal(t, "7", filters.Get("page"))
}
