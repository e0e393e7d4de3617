package bank

import (
	"context"
	"encoding/json"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/dsommer/bankfeed/internal/logger"
	"github.com/shopspring/decimal"
)

const accountsPath = "/account/api/accounts"

// accountEntry is one element of the accounts endpoint response.
type accountEntry struct {
	ID               json.Number     `json:"id"`
	IBAN             string          `json:"iban"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CurrencyCode     string          `json:"currencyCode"`
	AgreementType    string          `json:"agreementTypeCode"`
	AccountType      string          `json:"accountTypeCode"`
}

// Accounts lists the customer's accounts. The owner name cached on the
// session during the code exchange is applied to every account; it is
// populated once per listing and never re-fetched.
func (s *Session) Accounts(ctx context.Context) ([]domain.Account, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var entries []accountEntry
	if err := s.getJSON(ctx, s.apiBaseURL, accountsPath, nil, &entries); err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(entries))
	for _, e := range entries {
		iban := e.IBAN
		if iban == "" {
			iban = e.ID.String()
		}
		accounts = append(accounts, domain.Account{
			ID:        e.ID.String(),
			IBAN:      iban,
			Currency:  e.CurrencyCode,
			Type:      accountType(e),
			OwnerName: s.ownerName,
		})
	}

	log := logger.FromContext(ctx)
	log.Info().Int("count", len(accounts)).Msg("Listed accounts")
	return accounts, nil
}

// accountType maps the portal's type codes onto the two supported products.
// The agreement type is authoritative; the account type code is a fallback
// seen on older payload variants. Anything unrecognized is treated as a
// savings account.
func accountType(e accountEntry) domain.AccountType {
	for _, code := range []string{e.AgreementType, e.AccountType} {
		switch code {
		case "FESTGELD", "FIXED_TERM_DEPOSIT", "TERM_DEPOSIT":
			return domain.AccountTypeFixedTerm
		case "TAGESGELD", "SAVINGS", "INSTANT_ACCESS_SAVINGS":
			return domain.AccountTypeSavings
		}
	}
	return domain.AccountTypeSavings
}
