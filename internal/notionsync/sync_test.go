package notionsync

import (
	"context"
	"testing"
	"time"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNotionService is a hand-written NotionService for testing sync behavior.
type mockNotionService struct {
	pages []notionapi.Page

	created []notionapi.Properties
	deleted []string
}

func (m *mockNotionService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, properties)
	return &notionapi.Page{ID: "new-page"}, nil
}

func (m *mockNotionService) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{
		Results: m.pages,
		HasMore: false,
	}, nil
}

func (m *mockNotionService) DeletePage(ctx context.Context, pageID string) error {
	m.deleted = append(m.deleted, pageID)
	return nil
}

func pageWithReference(id, ref string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Reference": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: ref}},
			},
		},
	}
}

func testAccountData() []domain.AccountData {
	account := domain.Account{ID: "17", Currency: "EUR", Type: domain.AccountTypeSavings}
	return []domain.AccountData{
		{
			Account: account,
			Transactions: []domain.Transaction{
				{
					BookingDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
					Purpose:     "Miete",
					Amount:      decimal.RequireFromString("-850.00"),
					Currency:    "EUR",
					Booked:      true,
				},
				{
					BookingDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
					Purpose:     "Gehalt",
					Amount:      decimal.RequireFromString("2500.00"),
					Currency:    "EUR",
					Booked:      true,
				},
			},
		},
	}
}

func TestSyncTransactions_CreatesMissingOnly(t *testing.T) {
	data := testAccountData()
	existingRef := data[0].Transactions[0].Fingerprint()

	mock := &mockNotionService{
		pages: []notionapi.Page{pageWithReference("page-1", existingRef)},
	}

	err := SyncTransactions(context.Background(), mock, "db-1", data, false)
	require.NoError(t, err)

	// Only the second transaction is missing in Notion.
	require.Len(t, mock.created, 1)
	assert.Empty(t, mock.deleted)

	title := mock.created[0]["Reference"].(notionapi.TitleProperty)
	assert.Equal(t, data[0].Transactions[1].Fingerprint(), title.Title[0].Text.Content)
}

func TestSyncTransactions_DeletesStalePages(t *testing.T) {
	data := testAccountData()

	mock := &mockNotionService{
		pages: []notionapi.Page{
			pageWithReference("stale-page", "deadbeef00000000"),
			{ID: "no-ref-page", Properties: notionapi.Properties{}},
		},
	}

	err := SyncTransactions(context.Background(), mock, "db-1", data, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"stale-page", "no-ref-page"}, mock.deleted)
	assert.Len(t, mock.created, 2)
}

func TestSyncTransactions_DryRun(t *testing.T) {
	data := testAccountData()

	mock := &mockNotionService{
		pages: []notionapi.Page{pageWithReference("stale-page", "deadbeef00000000")},
	}

	err := SyncTransactions(context.Background(), mock, "db-1", data, true)
	require.NoError(t, err)

	assert.Empty(t, mock.created, "dry run must not create pages")
	assert.Empty(t, mock.deleted, "dry run must not delete pages")
}

func TestSyncTransactions_DeduplicatesWithinFetch(t *testing.T) {
	data := testAccountData()
	// The same transaction twice, e.g. returned on two overlapping pages.
	data[0].Transactions = append(data[0].Transactions, data[0].Transactions[0])

	mock := &mockNotionService{}

	err := SyncTransactions(context.Background(), mock, "db-1", data, false)
	require.NoError(t, err)
	assert.Len(t, mock.created, 2)
}
