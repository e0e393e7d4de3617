package notionsync

import (
	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/jomei/notionapi"
)

// TransactionToNotionProperties converts one normalized transaction to Notion
// properties. The transaction fingerprint becomes the page title so later
// syncs can recognize already-exported rows.
func TransactionToNotionProperties(account domain.Account, tx domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Reference": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Fingerprint(),
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount.InexactFloat64(),
		},
		"Booked": notionapi.CheckboxProperty{
			Checkbox: tx.Booked,
		},
	}

	if !tx.BookingDate.IsZero() {
		date := notionapi.Date(tx.BookingDate)
		props["Booking Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &date,
			},
		}
	}

	if !tx.ValueDate.IsZero() {
		date := notionapi.Date(tx.ValueDate)
		props["Value Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &date,
			},
		}
	}

	// Counterpart
	if tx.Counterpart != "" {
		props["Counterpart"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Counterpart,
					},
				},
			},
		}
	}

	// Purpose
	if tx.Purpose != "" {
		props["Purpose"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Purpose,
					},
				},
			},
		}
	}

	// Currency
	if tx.Currency != "" {
		props["Currency"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Currency,
			},
		}
	}

	// Account
	props["Account"] = notionapi.SelectProperty{
		Select: notionapi.Option{
			Name: account.DisplayName(),
		},
	}

	return props
}

// extractReference reads the transaction fingerprint back out of a Notion
// page created by a previous sync. Empty when the page has no Reference title.
func extractReference(page notionapi.Page) string {
	var title []notionapi.RichText
	switch prop := page.Properties["Reference"].(type) {
	case *notionapi.TitleProperty:
		title = prop.Title
	case notionapi.TitleProperty:
		title = prop.Title
	default:
		return ""
	}
	if len(title) == 0 {
		return ""
	}
	if title[0].PlainText != "" {
		return title[0].PlainText
	}
	if title[0].Text != nil {
		return title[0].Text.Content
	}
	return ""
}
