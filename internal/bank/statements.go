package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/dsommer/bankfeed/internal/logger"
)

const (
	statementPath     = "/account/api/account-statement"
	statementPageSize = 100

	// historyWindowYears caps how far back statements are requested. The
	// portal retains five years; three is a deliberate conservative business
	// boundary.
	historyWindowYears = 3

	dateLayout = "2006-01-02"
)

// statementPage is the paged response of the statement endpoint. Transactions
// stay raw maps because the portal varies field names across response
// variants; the normalizer resolves them.
type statementPage struct {
	Transactions []map[string]interface{} `json:"transactions"`
	Pagination   struct {
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

// Transactions fetches and normalizes all transactions of one account since
// the given time. The start is clamped to the history window, pages of 100
// are fetched sequentially starting at page 1, and items are appended in
// server order. A malformed page or a missing transactions field ends the
// loop gracefully; only transport failures surface as errors.
func (s *Session) Transactions(ctx context.Context, account domain.Account, since time.Time) ([]domain.Transaction, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	log := logger.FromContext(ctx)

	now := time.Now()
	start := clampSince(since, now)

	query := url.Values{
		"accountId": {account.ID},
		"startDate": {start.Format(dateLayout)},
		"endDate":   {now.Format(dateLayout)},
		"pageSize":  {strconv.Itoa(statementPageSize)},
	}

	var out []domain.Transaction
	for page := 1; ; page++ {
		query.Set("pageNumber", strconv.Itoa(page))

		body, err := s.get(ctx, s.apiBaseURL, statementPath, query)
		if err != nil {
			return out, err
		}

		var resp statementPage
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&resp); err != nil || resp.Transactions == nil {
			// End of data: the portal omits the transactions field (or sends
			// something unparsable) past the last page.
			log.Debug().Int("page", page).Msg("No transactions field, stopping pagination")
			break
		}

		for _, item := range resp.Transactions {
			out = append(out, normalizeTransaction(item, account))
		}

		if len(resp.Transactions) < statementPageSize {
			break
		}
		// Also terminates when the pagination block is missing or reports an
		// inconsistent zero total.
		if resp.Pagination.TotalPages <= page {
			break
		}
	}

	log.Info().
		Str("account_id", account.ID).
		Int("transaction_count", len(out)).
		Msg("Fetched account statement")
	return out, nil
}

// clampSince limits the requested start to at most historyWindowYears before
// now.
func clampSince(since, now time.Time) time.Time {
	earliest := now.AddDate(-historyWindowYears, 0, 0)
	if since.Before(earliest) {
		return earliest
	}
	return since
}
