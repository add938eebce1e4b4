package payment

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygateway/internal/apierror"
	"paygateway/internal/backend"
	"paygateway/internal/domain"
)

func notFound(service backend.Service) error {
	return &backend.Fault{Service: service, Status: http.StatusNotFound}
}

func TestRouterPrefersConnector(t *testing.T) {
	conn := &fakeConnector{getChargeFn: func(ctx context.Context, accountID, chargeID string) (domain.Payment, error) {
		return webCardPayment(), nil
	}}
	ledger := &fakeLedger{}

	p, source, err := NewRouter(conn, ledger, testLogger()).Payment(context.Background(), cardAccount, "ch_abc")
	require.NoError(t, err)
	assert.Equal(t, SourceConnector, source)
	assert.Equal(t, "ch_abc", p.ID)
	assert.Zero(t, ledger.calls)
}

func TestRouterFallsBackOnNotFound(t *testing.T) {
	conn := &fakeConnector{getChargeFn: func(ctx context.Context, accountID, chargeID string) (domain.Payment, error) {
		return domain.Payment{}, notFound(backend.ServiceConnector)
	}}
	ledger := &fakeLedger{getTransactionFn: func(ctx context.Context, accountID, id string) (domain.Payment, error) {
		assert.Equal(t, "42", accountID)
		p := webCardPayment()
		p.State = domain.State{Status: "success", Finished: true}
		p.Actions = domain.Actions{}
		return p, nil
	}}

	p, source, err := NewRouter(conn, ledger, testLogger()).Payment(context.Background(), cardAccount, "ch_abc")
	require.NoError(t, err)
	assert.Equal(t, SourceLedger, source)
	assert.Equal(t, 1, conn.calls)
	assert.Equal(t, 1, ledger.calls)
	assert.True(t, p.State.Finished)
}

func TestRouterDoesNotFallBackOnOtherFailures(t *testing.T) {
	tests := []struct {
		name  string
		fault *backend.Fault
		code  string
	}{
		{"server error", &backend.Fault{Service: backend.ServiceConnector, Status: http.StatusInternalServerError}, "P0298"},
		{"timeout", &backend.Fault{Service: backend.ServiceConnector, Timeout: true}, "P0298"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConnector{getChargeFn: func(ctx context.Context, accountID, chargeID string) (domain.Payment, error) {
				return domain.Payment{}, tt.fault
			}}
			ledger := &fakeLedger{}

			_, source, err := NewRouter(conn, ledger, testLogger()).Payment(context.Background(), cardAccount, "ch_abc")
			require.Error(t, err)
			assert.Equal(t, SourceConnector, source)
			assert.Zero(t, ledger.calls)

			perr, ok := apierror.As(err)
			require.True(t, ok)
			assert.Equal(t, apierror.KindDownstreamUnavailable, perr.Kind)
			assert.Equal(t, tt.code, perr.Code)
		})
	}
}

func TestRouterNotFoundInBoth(t *testing.T) {
	conn := &fakeConnector{getChargeFn: func(ctx context.Context, accountID, chargeID string) (domain.Payment, error) {
		return domain.Payment{}, notFound(backend.ServiceConnector)
	}}
	ledger := &fakeLedger{getTransactionFn: func(ctx context.Context, accountID, id string) (domain.Payment, error) {
		return domain.Payment{}, notFound(backend.ServiceLedger)
	}}

	_, source, err := NewRouter(conn, ledger, testLogger()).Payment(context.Background(), cardAccount, "nope")
	assert.Equal(t, SourceLedger, source)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	perr, _ := apierror.As(err)
	assert.Equal(t, "P0200", perr.Code)
	assert.Equal(t, http.StatusNotFound, perr.HTTPStatus)
}

func TestRouterRefundsFallBack(t *testing.T) {
	conn := &fakeConnector{listRefundsFn: func(ctx context.Context, accountID, chargeID string) ([]domain.Refund, error) {
		return nil, notFound(backend.ServiceConnector)
	}}
	ledger := &fakeLedger{listRefundsFn: func(ctx context.Context, accountID, paymentID string) ([]domain.Refund, error) {
		return []domain.Refund{{ID: "rf_1", PaymentID: paymentID}}, nil
	}}

	refunds, source, err := NewRouter(conn, ledger, testLogger()).Refunds(context.Background(), cardAccount, "ch_abc")
	require.NoError(t, err)
	assert.Equal(t, SourceLedger, source)
	require.Len(t, refunds, 1)
	assert.Equal(t, "ch_abc", refunds[0].PaymentID)
}

func TestRouterPaymentForUsesOperationCodes(t *testing.T) {
	conn := &fakeConnector{getChargeFn: func(ctx context.Context, accountID, chargeID string) (domain.Payment, error) {
		return domain.Payment{}, notFound(backend.ServiceConnector)
	}}
	ledger := &fakeLedger{getTransactionFn: func(ctx context.Context, accountID, id string) (domain.Payment, error) {
		return domain.Payment{}, notFound(backend.ServiceLedger)
	}}

	_, _, err := NewRouter(conn, ledger, testLogger()).PaymentFor(context.Background(), apierror.OpCreateRefund, cardAccount, "ch_abc")
	perr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindNotFound, perr.Kind)
	assert.Equal(t, "P0600", perr.Code)
}
