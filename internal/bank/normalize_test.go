package bank

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/shopspring/decimal"
)

func TestNormalizeTransaction_AliasResolution(t *testing.T) {
	account := domain.Account{ID: "17", Currency: "EUR"}

	tests := []struct {
		name string
		item map[string]interface{}
		want domain.Transaction
	}{
		{
			name: "canonical field names",
			item: map[string]interface{}{
				"bookingDate":      "2024-03-01",
				"valueDate":        "2024-03-02",
				"amount":           json.Number("-42.50"),
				"counterPartyName": "REWE Markt",
				"purpose":          "Einkauf",
				"currencyCode":     "EUR",
				"booked":           true,
			},
			want: domain.Transaction{
				BookingDate: date(2024, 3, 1),
				ValueDate:   date(2024, 3, 2),
				Counterpart: "REWE Markt",
				Purpose:     "Einkauf",
				Amount:      dec("-42.50"),
				Currency:    "EUR",
				Booked:      true,
			},
		},
		{
			name: "alternate field names date and sum",
			item: map[string]interface{}{
				"date":        "2024-03-01",
				"sum":         json.Number("10.00"),
				"partnerName": "Arbeitgeber GmbH",
				"text":        "Gehalt",
			},
			want: domain.Transaction{
				BookingDate: date(2024, 3, 1),
				ValueDate:   date(2024, 3, 1),
				Counterpart: "Arbeitgeber GmbH",
				Purpose:     "Gehalt",
				Amount:      dec("10.00"),
				Currency:    "EUR",
				Booked:      true,
			},
		},
		{
			name: "booking date as millisecond timestamp",
			item: map[string]interface{}{
				"bookingDate": json.Number("1709251200000"), // 2024-03-01 UTC
				"amount":      json.Number("1.00"),
			},
			want: domain.Transaction{
				BookingDate: date(2024, 3, 1),
				ValueDate:   date(2024, 3, 1),
				Amount:      dec("1.00"),
				Currency:    "EUR",
				Booked:      true,
			},
		},
		{
			name: "iso timestamp string is read as its calendar date",
			item: map[string]interface{}{
				"bookingDate": "2024-03-01T09:30:00.000Z",
				"amount":      json.Number("1.00"),
			},
			want: domain.Transaction{
				BookingDate: date(2024, 3, 1),
				ValueDate:   date(2024, 3, 1),
				Amount:      dec("1.00"),
				Currency:    "EUR",
				Booked:      true,
			},
		},
		{
			name: "missing amount defaults to zero instead of dropping the row",
			item: map[string]interface{}{
				"bookingDate": "2024-03-01",
				"purpose":     "Storno",
			},
			want: domain.Transaction{
				BookingDate: date(2024, 3, 1),
				ValueDate:   date(2024, 3, 1),
				Purpose:     "Storno",
				Amount:      dec("0"),
				Currency:    "EUR",
				Booked:      true,
			},
		},
		{
			name: "pending transaction",
			item: map[string]interface{}{
				"bookingDate": "2024-03-01",
				"amount":      json.Number("5.00"),
				"booked":      false,
			},
			want: domain.Transaction{
				BookingDate: date(2024, 3, 1),
				ValueDate:   date(2024, 3, 1),
				Amount:      dec("5.00"),
				Currency:    "EUR",
				Booked:      false,
			},
		},
		{
			name: "transaction currency wins over account currency",
			item: map[string]interface{}{
				"bookingDate": "2024-03-01",
				"amount":      json.Number("5.00"),
				"currency":    "USD",
			},
			want: domain.Transaction{
				BookingDate: date(2024, 3, 1),
				ValueDate:   date(2024, 3, 1),
				Amount:      dec("5.00"),
				Currency:    "USD",
				Booked:      true,
			},
		},
		{
			name: "purpose alias priority",
			item: map[string]interface{}{
				"bookingDate":      "2024-03-01",
				"amount":           json.Number("5.00"),
				"text":             "low priority",
				"paymentReference": "high priority",
			},
			want: domain.Transaction{
				BookingDate: date(2024, 3, 1),
				ValueDate:   date(2024, 3, 1),
				Purpose:     "high priority",
				Amount:      dec("5.00"),
				Currency:    "EUR",
				Booked:      true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeTransaction(tt.item, account)

			if !got.BookingDate.Equal(tt.want.BookingDate) {
				t.Errorf("BookingDate = %v, want %v", got.BookingDate, tt.want.BookingDate)
			}
			if !got.ValueDate.Equal(tt.want.ValueDate) {
				t.Errorf("ValueDate = %v, want %v", got.ValueDate, tt.want.ValueDate)
			}
			if got.Counterpart != tt.want.Counterpart {
				t.Errorf("Counterpart = %q, want %q", got.Counterpart, tt.want.Counterpart)
			}
			if got.Purpose != tt.want.Purpose {
				t.Errorf("Purpose = %q, want %q", got.Purpose, tt.want.Purpose)
			}
			if !got.Amount.Equal(tt.want.Amount) {
				t.Errorf("Amount = %s, want %s", got.Amount, tt.want.Amount)
			}
			if got.Currency != tt.want.Currency {
				t.Errorf("Currency = %q, want %q", got.Currency, tt.want.Currency)
			}
			if got.Booked != tt.want.Booked {
				t.Errorf("Booked = %v, want %v", got.Booked, tt.want.Booked)
			}
		})
	}
}

func TestNormalizeTransaction_CurrencyDefault(t *testing.T) {
	// Neither the transaction nor the account carries a currency.
	got := normalizeTransaction(map[string]interface{}{
		"bookingDate": "2024-03-01",
		"amount":      json.Number("5.00"),
	}, domain.Account{ID: "17"})

	if got.Currency != "EUR" {
		t.Errorf("Currency = %q, want default EUR", got.Currency)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
