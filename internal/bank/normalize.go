package bank

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/shopspring/decimal"
)

// The portal is inconsistent about field names across response variants, so
// every canonical field resolves from an ordered alias list: first present,
// non-empty source field wins.
var (
	bookingDateAliases = []string{"bookingDate", "date"}
	valueDateAliases   = []string{"valueDate", "valutaDate"}
	amountAliases      = []string{"amount", "sum"}
	counterpartAliases = []string{"counterPartyName", "partnerName", "creditorName", "debtorName"}
	purposeAliases     = []string{"purpose", "paymentReference", "remittanceInformation", "text"}
	currencyAliases    = []string{"currencyCode", "currency"}
)

const defaultCurrency = "EUR"

// normalizeTransaction maps one raw statement item into the canonical record.
// Missing dates stay zero, a missing amount becomes zero rather than dropping
// the row, and the currency falls back to the account's currency and finally
// to EUR. The booked flag defaults to true unless explicitly false.
func normalizeTransaction(item map[string]interface{}, account domain.Account) domain.Transaction {
	booking := firstDate(item, bookingDateAliases)
	value := firstDate(item, valueDateAliases)
	if value.IsZero() {
		value = booking
	}

	currency := firstString(item, currencyAliases)
	if currency == "" {
		currency = account.Currency
	}
	if currency == "" {
		currency = defaultCurrency
	}

	booked := true
	if b, ok := item["booked"].(bool); ok {
		booked = b
	}

	return domain.Transaction{
		BookingDate: booking,
		ValueDate:   value,
		Counterpart: firstString(item, counterpartAliases),
		Purpose:     firstString(item, purposeAliases),
		Amount:      firstDecimal(item, amountAliases),
		Currency:    currency,
		Booked:      booked,
	}
}

// firstString returns the first non-empty string among the aliased fields.
func firstString(m map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstDate resolves the first aliased field that parses as a date. String
// values are read as calendar dates (an ISO timestamp's date prefix counts);
// numeric values are read as millisecond Unix timestamps.
func firstDate(m map[string]interface{}, keys []string) time.Time {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if len(v) >= len(dateLayout) {
				if t, err := time.Parse(dateLayout, v[:len(dateLayout)]); err == nil {
					return t
				}
			}
		case json.Number:
			if ms, err := v.Int64(); err == nil && ms > 0 {
				return time.UnixMilli(ms).UTC().Truncate(24 * time.Hour)
			}
		case float64:
			if v > 0 {
				return time.UnixMilli(int64(v)).UTC().Truncate(24 * time.Hour)
			}
		}
	}
	return time.Time{}
}

// firstDecimal resolves the first aliased numeric field, zero when absent.
func firstDecimal(m map[string]interface{}, keys []string) decimal.Decimal {
	for _, key := range keys {
		switch v := m[key].(type) {
		case json.Number:
			if d, err := decimal.NewFromString(v.String()); err == nil {
				return d
			}
		case float64:
			return decimal.NewFromFloat(v)
		case string:
			if d, err := decimal.NewFromString(v); err == nil {
				return d
			}
		}
	}
	return decimal.Zero
}
