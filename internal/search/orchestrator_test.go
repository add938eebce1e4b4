package search

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygateway/internal/agreement"
	"paygateway/internal/apierror"
	"paygateway/internal/backend"
	"paygateway/internal/dispute"
	"paygateway/internal/domain"
	"paygateway/internal/payment"
	"paygateway/internal/refund"
	"paygateway/internal/uris"
)

const baseURL = "https://publicapi.example"

var (
	cardAccount      = domain.Account{ID: "42", Type: domain.AccountTypeCard}
	recurringAccount = domain.Account{ID: "42", Type: domain.AccountTypeCard, RecurringEnabled: true}
	ddAccount        = domain.Account{ID: "7", Type: domain.AccountTypeDirectDebit}
)

type fakeConnector struct {
	queries []url.Values
	page    domain.Page[domain.Payment]
}

func (f *fakeConnector) SearchCharges(ctx context.Context, accountID string, query url.Values) (domain.Page[domain.Payment], error) {
	f.queries = append(f.queries, query)
	return f.page, nil
}

type fakeLedger struct {
	queries    []url.Values
	payments   domain.Page[domain.Payment]
	refunds    domain.Page[domain.Refund]
	agreements domain.Page[domain.Agreement]
	disputes   domain.Page[domain.Dispute]
	err        error
}

func (f *fakeLedger) SearchTransactions(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Payment], error) {
	f.queries = append(f.queries, filters)
	return f.payments, f.err
}

func (f *fakeLedger) SearchRefunds(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Refund], error) {
	f.queries = append(f.queries, filters)
	return f.refunds, f.err
}

func (f *fakeLedger) SearchAgreements(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Agreement], error) {
	f.queries = append(f.queries, filters)
	return f.agreements, f.err
}

func (f *fakeLedger) SearchDisputes(ctx context.Context, accountID string, filters url.Values) (domain.Page[domain.Dispute], error) {
	f.queries = append(f.queries, filters)
	return f.disputes, f.err
}

func newOrchestrator(conn *fakeConnector, ledger *fakeLedger) *Orchestrator {
	public := uris.NewPublic(baseURL)
	return NewOrchestrator(conn, ledger, Assemblers{
		Payments:   payment.NewAssembler(payment.NewLinkBuilder(public)),
		Refunds:    refund.NewAssembler(public),
		Agreements: agreement.NewAssembler(public),
		Disputes:   dispute.NewAssembler(public),
	}, public, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func finishedPayment(id string) domain.Payment {
	return domain.Payment{
		ID:                id,
		State:             domain.State{Status: "success", Finished: true},
		Type:              domain.Card{},
		AuthorisationMode: domain.AuthorisationModeWeb,
	}
}

func TestPaymentSource(t *testing.T) {
	tests := []struct {
		name    string
		account domain.Account
		state   string
		want    payment.Source
	}{
		{"card without state", cardAccount, "", payment.SourceLedger},
		{"card in-flight state", cardAccount, "started", payment.SourceConnector},
		{"card capturable", cardAccount, "capturable", payment.SourceConnector},
		{"card finished state", cardAccount, "success", payment.SourceLedger},
		{"direct debit in-flight state", ddAccount, "started", payment.SourceLedger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentSource(tt.account, PaymentParams{State: tt.state}))
		})
	}
}

func TestSearchPaymentsMiddlePage(t *testing.T) {
	ledger := &fakeLedger{payments: domain.Page[domain.Payment]{
		Total:   3,
		Count:   1,
		Page:    2,
		Results: []domain.Payment{finishedPayment("ch_2")},
	}}
	o := newOrchestrator(&fakeConnector{}, ledger)

	res, err := o.SearchPayments(context.Background(), cardAccount, ParseQuery("reference=ref-1&page=2&display_size=1"))
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "ch_2", res.Results[0].PaymentID)

	link := func(page string) string {
		return baseURL + "/v1/payments?display_size=1&page=" + page + "&reference=ref-1"
	}
	assert.Equal(t, link("2"), res.Links.Self.Href)
	assert.Equal(t, link("1"), res.Links.FirstPage.Href)
	assert.Equal(t, link("3"), res.Links.LastPage.Href)
	require.NotNil(t, res.Links.PrevPage)
	assert.Equal(t, link("1"), res.Links.PrevPage.Href)
	require.NotNil(t, res.Links.NextPage)
	assert.Equal(t, link("3"), res.Links.NextPage.Href)

	require.Len(t, ledger.queries, 1)
	assert.Equal(t, "2", ledger.queries[0].Get("page"))
	assert.Equal(t, "1", ledger.queries[0].Get("display_size"))
	assert.Equal(t, "ref-1", ledger.queries[0].Get("reference"))
}

func TestSearchPaymentsFirstAndLastPage(t *testing.T) {
	ledger := &fakeLedger{payments: domain.Page[domain.Payment]{Total: 3, Page: 1, Results: []domain.Payment{finishedPayment("ch_1")}}}
	o := newOrchestrator(&fakeConnector{}, ledger)

	res, err := o.SearchPayments(context.Background(), cardAccount, ParseQuery("display_size=1"))
	require.NoError(t, err)
	assert.Nil(t, res.Links.PrevPage)
	assert.NotNil(t, res.Links.NextPage)

	ledger.payments.Page = 3
	res, err = o.SearchPayments(context.Background(), cardAccount, ParseQuery("display_size=1&page=3"))
	require.NoError(t, err)
	assert.NotNil(t, res.Links.PrevPage)
	assert.Nil(t, res.Links.NextPage)
}

func TestSearchPaymentsEmpty(t *testing.T) {
	o := newOrchestrator(&fakeConnector{}, &fakeLedger{})

	res, err := o.SearchPayments(context.Background(), cardAccount, ParseQuery(""))
	require.NoError(t, err)

	assert.Zero(t, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.NotNil(t, res.Results)
	assert.Equal(t, baseURL+"/v1/payments?display_size=500&page=1", res.Links.LastPage.Href)
	assert.Nil(t, res.Links.PrevPage)
	assert.Nil(t, res.Links.NextPage)
}

func TestSearchPaymentsRoutesInFlightStateToConnector(t *testing.T) {
	conn := &fakeConnector{page: domain.Page[domain.Payment]{Total: 0, Page: 1}}
	ledger := &fakeLedger{}
	o := newOrchestrator(conn, ledger)

	_, err := o.SearchPayments(context.Background(), cardAccount, ParseQuery("state=started"))
	require.NoError(t, err)
	assert.Len(t, conn.queries, 1)
	assert.Empty(t, ledger.queries)

	_, err = o.SearchPayments(context.Background(), ddAccount, ParseQuery("state=started"))
	require.NoError(t, err)
	assert.Len(t, conn.queries, 1)
	assert.Len(t, ledger.queries, 1)
}

func TestSearchPaymentsRejectsAgreementIDWithoutCapability(t *testing.T) {
	ledger := &fakeLedger{}
	o := newOrchestrator(&fakeConnector{}, ledger)

	_, err := o.SearchPayments(context.Background(), cardAccount, ParseQuery("agreement_id=ag_1"))
	perr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "P0401", perr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, perr.HTTPStatus)
	assert.Contains(t, perr.Description, "agreement_id")
	assert.Empty(t, ledger.queries)

	_, err = o.SearchPayments(context.Background(), recurringAccount, ParseQuery("agreement_id=ag_1"))
	require.NoError(t, err)
}

func TestSearchPaymentsListsEveryInvalidFieldInCallerOrder(t *testing.T) {
	o := newOrchestrator(&fakeConnector{}, &fakeLedger{})

	_, err := o.SearchPayments(context.Background(), cardAccount,
		ParseQuery("state=bogus&reference=ok&display_size=0&first_digits_card_number=12&page=x"))
	perr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t,
		"Invalid parameters: state, display_size, first_digits_card_number, page. See Public API documentation for the correct data formats",
		perr.Description)
}

func TestSearchPaymentsTranslatesBackendFailure(t *testing.T) {
	o := newOrchestrator(&fakeConnector{}, &fakeLedger{err: &backend.Fault{Service: backend.ServiceLedger, Status: http.StatusServiceUnavailable}})

	_, err := o.SearchPayments(context.Background(), cardAccount, ParseQuery(""))
	perr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "P0498", perr.Code)
}

func TestSearchRefunds(t *testing.T) {
	ledger := &fakeLedger{refunds: domain.Page[domain.Refund]{
		Total:   1,
		Page:    1,
		Results: []domain.Refund{{ID: "rf_1", PaymentID: "ch_1", Amount: 10, Status: "success"}},
	}}
	o := newOrchestrator(&fakeConnector{}, ledger)

	res, err := o.SearchRefunds(context.Background(), cardAccount, ParseQuery("from_settled_date=2024-01-01"))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, baseURL+"/v1/payments/ch_1/refunds/rf_1", res.Results[0].Links.Self.Href)
	assert.Equal(t, baseURL+"/v1/refunds?display_size=500&from_settled_date=2024-01-01&page=1", res.Links.Self.Href)

	_, err = o.SearchRefunds(context.Background(), cardAccount, ParseQuery("from_date=yesterday"))
	perr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "P1101", perr.Code)
	assert.Contains(t, perr.Description, "from_date")
}

func TestSearchAgreements(t *testing.T) {
	ledger := &fakeLedger{agreements: domain.Page[domain.Agreement]{
		Total:   1,
		Page:    1,
		Results: []domain.Agreement{{ID: "ag_1", Status: "active"}},
	}}
	o := newOrchestrator(&fakeConnector{}, ledger)

	_, err := o.SearchAgreements(context.Background(), cardAccount, ParseQuery(""))
	assert.True(t, apierror.Is(err, apierror.KindCapabilityMismatch))
	assert.Empty(t, ledger.queries)

	_, err = o.SearchAgreements(context.Background(), recurringAccount, ParseQuery("status=paused"))
	perr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "P2401", perr.Code)

	res, err := o.SearchAgreements(context.Background(), recurringAccount, ParseQuery("status=active"))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "ag_1", res.Results[0].AgreementID)
}

func TestSearchDisputes(t *testing.T) {
	ledger := &fakeLedger{disputes: domain.Page[domain.Dispute]{
		Total:   1,
		Page:    1,
		Results: []domain.Dispute{{ID: "dp_1", PaymentID: "ch_1", Status: "won"}},
	}}
	o := newOrchestrator(&fakeConnector{}, ledger)

	res, err := o.SearchDisputes(context.Background(), cardAccount, ParseQuery("status=won"))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "won", ledger.queries[0].Get("status"))

	_, err = o.SearchDisputes(context.Background(), cardAccount, ParseQuery("status=pending"))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}
