package bank

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/dsommer/bankfeed/internal/logger"
	"github.com/shopspring/decimal"
)

const depositSummaryPath = "/deposit/api/dashboard/deposit-summary"

// depositEntry is one element of the deposit-summary fallback endpoint.
type depositEntry struct {
	ID              json.Number     `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Interest        decimal.Decimal `json:"interest"`
	AccruedInterest decimal.Decimal `json:"accruedInterest"`
}

// Balance resolves the current balance for one account. The accounts list is
// the primary source: the first entry matching by id or IBAN wins and its
// availableBalance reflects the live balance. When the list has no match the
// deposit summary serves as fallback and its first entry's amount is used.
//
// A nil result with nil error means the balance is unknown; callers must not
// treat that as zero. Nothing is cached, every refresh resolves anew.
func (s *Session) Balance(ctx context.Context, accountID, iban string) (*domain.Balance, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	log := logger.FromContext(ctx)

	body, err := s.get(ctx, s.apiBaseURL, accountsPath, nil)
	if err != nil {
		return nil, err
	}

	var entries []accountEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		// Malformed payload degrades to "no data"; the fallback may still
		// produce a balance.
		log.Warn().Err(err).Msg("Accounts payload malformed, trying deposit summary")
		entries = nil
	}

	for _, e := range entries {
		if matches(e, accountID, iban) {
			return newBalance(accountID, e.AvailableBalance), nil
		}
	}

	body, err = s.get(ctx, s.apiBaseURL, depositSummaryPath, nil)
	if err != nil {
		return nil, err
	}

	var deposits []depositEntry
	if err := json.Unmarshal(body, &deposits); err != nil {
		log.Warn().Err(err).Msg("Deposit summary payload malformed, balance unknown")
		return nil, nil
	}
	if len(deposits) == 0 {
		log.Info().Str("account_id", accountID).Msg("No balance source matched, balance unknown")
		return nil, nil
	}
	return newBalance(accountID, deposits[0].Amount), nil
}

func matches(e accountEntry, accountID, iban string) bool {
	if accountID != "" && e.ID.String() == accountID {
		return true
	}
	return iban != "" && e.IBAN == iban
}

func newBalance(accountID string, amount decimal.Decimal) *domain.Balance {
	return &domain.Balance{
		AccountID: accountID,
		Amount:    amount,
		FetchedAt: time.Now(),
	}
}
