package dispute

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygateway/internal/domain"
	"paygateway/internal/uris"
)

func TestAssemble(t *testing.T) {
	fee := int64(1500)
	a := NewAssembler(uris.NewPublic("https://publicapi.example"))

	v := a.Assemble(domain.Dispute{
		ID:          "dp_1",
		PaymentID:   "ch_abc",
		Amount:      500,
		Fee:         &fee,
		Status:      "lost",
		Reason:      "fraudulent",
		SettledDate: "2024-02-01",
	})

	assert.Equal(t, "dp_1", v.DisputeID)
	require.NotNil(t, v.Settlement)
	assert.Equal(t, "2024-02-01", v.Settlement.SettledDate)
	assert.Equal(t, "https://publicapi.example/v1/payments/ch_abc", v.Links.Payment.Href)
}

func TestAssembleOmitsUnsettledSummary(t *testing.T) {
	a := NewAssembler(uris.NewPublic("https://publicapi.example"))

	data, err := json.Marshal(a.Assemble(domain.Dispute{ID: "dp_1", PaymentID: "ch_abc", Status: "needs_response"}))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotContains(t, out, "settlement_summary")
	assert.NotContains(t, out, "fee")
	assert.Contains(t, out, "_links")
}
