package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygateway/internal/domain"
)

type tokenRow struct {
	accountID, paymentType, tokenLink string
	recurring                         bool
}

// fakeQuerier serves api_tokens rows keyed by token hash.
type fakeQuerier struct {
	rows map[string]tokenRow
	err  error
	args []any
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not supported")
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.args = args
	if f.err != nil {
		return rowFunc(func(...any) error { return f.err })
	}
	row, ok := f.rows[args[0].(string)]
	if !ok {
		return rowFunc(func(...any) error { return pgx.ErrNoRows })
	}
	return rowFunc(func(dest ...any) error {
		*dest[0].(*string) = row.accountID
		*dest[1].(*string) = row.paymentType
		*dest[2].(*bool) = row.recurring
		*dest[3].(*string) = row.tokenLink
		return nil
	})
}

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func newStore(q *fakeQuerier) *Store {
	return NewStore(q, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLookup(t *testing.T) {
	q := &fakeQuerier{rows: map[string]tokenRow{
		HashToken("secret-card"): {accountID: "42", paymentType: "card", tokenLink: "tl-1", recurring: true},
		HashToken("secret-dd"):   {accountID: "7", paymentType: "direct_debit", tokenLink: "tl-2"},
	}}
	s := newStore(q)

	account, err := s.Lookup(context.Background(), "secret-card")
	require.NoError(t, err)
	assert.Equal(t, domain.Account{ID: "42", Type: domain.AccountTypeCard, RecurringEnabled: true, TokenLink: "tl-1"}, account)
	assert.True(t, account.CanUseAgreements())

	// Only the hash is sent to the database.
	assert.Equal(t, []any{HashToken("secret-card")}, q.args)

	account, err = s.Lookup(context.Background(), "secret-dd")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountTypeDirectDebit, account.Type)
	assert.False(t, account.CanUseAgreements())
}

func TestLookupInvalidToken(t *testing.T) {
	q := &fakeQuerier{rows: map[string]tokenRow{
		HashToken("odd"): {accountID: "9", paymentType: "cheque"},
	}}
	s := newStore(q)

	for _, token := range []string{"", "unknown", "odd"} {
		_, err := s.Lookup(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestLookupDatabaseError(t *testing.T) {
	s := newStore(&fakeQuerier{err: errors.New("connection reset")})

	_, err := s.Lookup(context.Background(), "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestHashToken(t *testing.T) {
	assert.Len(t, HashToken("x"), 64)
	assert.Equal(t, HashToken("x"), HashToken("x"))
	assert.NotEqual(t, HashToken("x"), HashToken("y"))
}
