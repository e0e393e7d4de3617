package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the kind of account the portal exposes. Only the two savings
// products are supported.
type AccountType string

const (
	// AccountTypeSavings is a daily-availability savings account (Tagesgeld).
	AccountTypeSavings AccountType = "savings"
	// AccountTypeFixedTerm is a fixed-term deposit account (Festgeld).
	AccountTypeFixedTerm AccountType = "fixed_term_deposit"
)

// Account identifies one account of the logged-in customer.
type Account struct {
	ID        string      // portal-internal account id
	IBAN      string      // IBAN, or the numeric id when the portal omits it
	Currency  string      // ISO 4217 code
	Type      AccountType // savings or fixed-term deposit
	OwnerName string      // account holder, cached once per listing
}

// DisplayName returns the human-readable name shown for the account.
func (a Account) DisplayName() string {
	label := "Tagesgeld"
	if a.Type == AccountTypeFixedTerm {
		label = "Festgeld"
	}
	if a.Currency == "" {
		return label
	}
	return label + " " + a.Currency
}

// Balance is the amount available on one account at one point in time. It is
// never cached; every refresh recomputes it.
type Balance struct {
	AccountID string
	Amount    decimal.Decimal
	FetchedAt time.Time
}

// AccountData bundles everything one refresh produced for a single account.
// Balance is nil when neither balance source returned data; that means
// "unknown", not zero.
type AccountData struct {
	Account      Account
	Balance      *Balance
	Transactions []Transaction
}
