// Package auth resolves bearer tokens to the calling account.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"paygateway/internal/common/database"
	"paygateway/internal/domain"
)

// ErrInvalidToken is returned for unknown or revoked tokens.
var ErrInvalidToken = errors.New("invalid api token")

// Store looks tokens up in the api_tokens table. Only token hashes are
// stored.
type Store struct {
	db     database.Querier
	logger *slog.Logger
}

// NewStore creates a token store.
func NewStore(db database.Querier, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// HashToken returns the stored form of token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

const lookupSQL = `
	SELECT account_id, payment_type, recurring_enabled, token_link
	FROM api_tokens
	WHERE token_hash = $1 AND revoked_at IS NULL`

// Lookup resolves token to its account.
func (s *Store) Lookup(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		return domain.Account{}, ErrInvalidToken
	}

	var (
		account     domain.Account
		paymentType string
	)
	err := s.db.QueryRow(ctx, lookupSQL, HashToken(token)).Scan(
		&account.ID,
		&paymentType,
		&account.RecurringEnabled,
		&account.TokenLink,
	)
	if err != nil {
		if database.IsNotFound(err) {
			return domain.Account{}, ErrInvalidToken
		}
		return domain.Account{}, fmt.Errorf("looking up token: %w", err)
	}

	switch domain.AccountType(paymentType) {
	case domain.AccountTypeCard, domain.AccountTypeDirectDebit:
		account.Type = domain.AccountType(paymentType)
	default:
		s.logger.Error("token has unknown payment type", "token_link", account.TokenLink, "payment_type", paymentType)
		return domain.Account{}, ErrInvalidToken
	}

	return account, nil
}
