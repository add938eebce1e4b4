// Package domain contains the normalized records the gateway works with.
// Backend adapters translate their wire formats into these types; nothing
// above the adapters sees raw backend JSON.
package domain

// AccountType identifies what kind of payments an account takes.
type AccountType string

const (
	AccountTypeCard        AccountType = "card"
	AccountTypeDirectDebit AccountType = "direct_debit"
)

// Account identifies the calling service. It is resolved from the bearer
// token at the start of every request and never persisted by the gateway.
type Account struct {
	ID               string
	Type             AccountType
	RecurringEnabled bool
	TokenLink        string
}

// IsCard reports whether the account takes card payments.
func (a Account) IsCard() bool {
	return a.Type == AccountTypeCard
}

// CanUseAgreements reports whether the account has recurring card capability.
func (a Account) CanUseAgreements() bool {
	return a.Type == AccountTypeCard && a.RecurringEnabled
}
