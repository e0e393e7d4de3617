package bank

import (
	"context"
	"time"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/dsommer/bankfeed/internal/logger"
)

// Fetch runs a full refresh: list accounts, then resolve balance and fetch
// transactions per account, strictly sequentially. Partial data is a valid
// outcome; an account may carry transactions but an unknown balance. A
// transport failure surfaces immediately together with whatever was already
// collected.
func (s *Session) Fetch(ctx context.Context, since time.Time) ([]domain.AccountData, error) {
	log := logger.FromContext(ctx)

	accounts, err := s.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.AccountData, 0, len(accounts))
	for _, account := range accounts {
		balance, err := s.Balance(ctx, account.ID, account.IBAN)
		if err != nil {
			return results, err
		}

		transactions, err := s.Transactions(ctx, account, since)
		if err != nil {
			return results, err
		}

		results = append(results, domain.AccountData{
			Account:      account,
			Balance:      balance,
			Transactions: transactions,
		})

		log.Info().
			Str("account", account.DisplayName()).
			Bool("balance_known", balance != nil).
			Int("transactions", len(transactions)).
			Msg("Refreshed account")
	}

	return results, nil
}
