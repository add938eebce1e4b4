package payment

import (
	"context"
	"io"
	"log/slog"

	"paygateway/internal/domain"
	"paygateway/internal/uris"
)

const baseURL = "https://publicapi.example"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAssembler() Assembler {
	return NewAssembler(NewLinkBuilder(uris.NewPublic(baseURL)))
}

var cardAccount = domain.Account{ID: "42", Type: domain.AccountTypeCard, TokenLink: "tl-1"}

// webCardPayment is a started card payment as Connector returns it.
func webCardPayment() domain.Payment {
	return domain.Payment{
		ID:                "ch_abc",
		Amount:            1000,
		State:             domain.State{Status: "started"},
		Description:       "Pay your council tax",
		Reference:         "ref-1",
		Language:          "en",
		PaymentProvider:   "sandbox",
		CreatedDate:       "2024-01-02T03:04:05.678Z",
		ReturnURL:         "https://service.example/return",
		Type:              domain.Card{},
		AuthorisationMode: domain.AuthorisationModeWeb,
		Actions: domain.Actions{
			NextURL: &domain.ActionLink{Href: "https://card.example/secure/tok", Method: "GET"},
			NextURLPost: &domain.ActionLink{
				Href:   "https://card.example/secure",
				Method: "POST",
				Type:   "application/x-www-form-urlencoded",
				Params: map[string]string{"chargeTokenId": "tok"},
			},
		},
	}
}

type fakeConnector struct {
	getChargeFn   func(ctx context.Context, accountID, chargeID string) (domain.Payment, error)
	getRefundFn   func(ctx context.Context, accountID, chargeID, refundID string) (domain.Refund, error)
	listRefundsFn func(ctx context.Context, accountID, chargeID string) ([]domain.Refund, error)
	cancelFn      func(ctx context.Context, accountID, chargeID string) error
	captureFn     func(ctx context.Context, accountID, chargeID string) error
	calls         int
}

func (f *fakeConnector) GetCharge(ctx context.Context, accountID, chargeID string) (domain.Payment, error) {
	f.calls++
	return f.getChargeFn(ctx, accountID, chargeID)
}

func (f *fakeConnector) GetRefund(ctx context.Context, accountID, chargeID, refundID string) (domain.Refund, error) {
	f.calls++
	return f.getRefundFn(ctx, accountID, chargeID, refundID)
}

func (f *fakeConnector) ListRefunds(ctx context.Context, accountID, chargeID string) ([]domain.Refund, error) {
	f.calls++
	return f.listRefundsFn(ctx, accountID, chargeID)
}

func (f *fakeConnector) CancelCharge(ctx context.Context, accountID, chargeID string) error {
	return f.cancelFn(ctx, accountID, chargeID)
}

func (f *fakeConnector) CaptureCharge(ctx context.Context, accountID, chargeID string) error {
	return f.captureFn(ctx, accountID, chargeID)
}

type fakeLedger struct {
	getTransactionFn func(ctx context.Context, accountID, id string) (domain.Payment, error)
	getRefundFn      func(ctx context.Context, accountID, paymentID, refundID string) (domain.Refund, error)
	listRefundsFn    func(ctx context.Context, accountID, paymentID string) ([]domain.Refund, error)
	getEventsFn      func(ctx context.Context, accountID, paymentID string) ([]domain.Event, error)
	calls            int
}

func (f *fakeLedger) GetTransaction(ctx context.Context, accountID, id string) (domain.Payment, error) {
	f.calls++
	return f.getTransactionFn(ctx, accountID, id)
}

func (f *fakeLedger) GetRefund(ctx context.Context, accountID, paymentID, refundID string) (domain.Refund, error) {
	f.calls++
	return f.getRefundFn(ctx, accountID, paymentID, refundID)
}

func (f *fakeLedger) ListRefunds(ctx context.Context, accountID, paymentID string) ([]domain.Refund, error) {
	f.calls++
	return f.listRefundsFn(ctx, accountID, paymentID)
}

func (f *fakeLedger) GetEvents(ctx context.Context, accountID, paymentID string) ([]domain.Event, error) {
	return f.getEventsFn(ctx, accountID, paymentID)
}
