package notionsync

import (
	"context"
	"fmt"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/dsommer/bankfeed/internal/logger"
	"github.com/jomei/notionapi"
)

// SyncTransactions pushes the transactions of one refresh into a Notion
// database. Pages are keyed by the transaction fingerprint stored in the
// Reference title: fingerprints already present are skipped, pages whose
// fingerprint no longer appears in the fetched set are archived, everything
// else is created. With dryRun set, changes are logged but not applied.
func SyncTransactions(ctx context.Context, notionClient NotionService, notionDBID string, accounts []domain.AccountData, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Bool("dry_run", dryRun).
		Int("accounts", len(accounts)).
		Msg("Starting transaction sync to Notion")

	// Build the fetched set: fingerprint -> (account, transaction).
	type fetched struct {
		account domain.Account
		tx      domain.Transaction
	}
	current := make(map[string]fetched)
	var order []string
	for _, data := range accounts {
		for _, tx := range data.Transactions {
			ref := tx.Fingerprint()
			if _, ok := current[ref]; ok {
				continue
			}
			current[ref] = fetched{account: data.Account, tx: tx}
			order = append(order, ref)
		}
	}

	// Query all existing pages from Notion
	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]bool)
	var deleted int
	for _, page := range notionPages {
		ref := extractReference(page)

		if _, ok := current[ref]; ok && ref != "" {
			existing[ref] = true
			continue
		}

		// Pages without a reference (from old syncs) or no longer in the
		// fetched set are stale.
		if dryRun {
			log.Info().
				Str("reference", ref).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would delete stale Notion page")
			deleted++
			continue
		}
		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("reference", ref).
				Str("page_id", string(page.ID)).
				Msg("Failed to delete stale Notion page")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("Deleted stale pages from Notion")
	}

	var created, skipped int
	for _, ref := range order {
		if existing[ref] {
			skipped++
			continue
		}

		item := current[ref]
		if dryRun {
			log.Info().
				Str("reference", ref).
				Msg("[DRY RUN] Would create new Notion page")
			created++
			continue
		}

		props := TransactionToNotionProperties(item.account, item.tx)
		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("reference", ref).
				Msg("Failed to create Notion page")
			// Continue processing other transactions
			continue
		}
		log.Debug().
			Str("reference", ref).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(current)).
		Msg("Transaction sync completed")

	return nil
}

// queryAllNotionPages pages through the whole database using the API cursor.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
