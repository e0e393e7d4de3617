package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized booking as reported by the bank portal.
// The portal returns the same transaction in several payload variants with
// differing field names; the normalizer in internal/bank collapses those into
// this shape. A Transaction is immutable once constructed and ordering follows
// the server's response order.
type Transaction struct {
	BookingDate time.Time       // day the transaction was booked
	ValueDate   time.Time       // value date, falls back to BookingDate
	Counterpart string          // name of the other party, may be empty
	Purpose     string          // free-form purpose / reference text
	Amount      decimal.Decimal // signed, negative for debits
	Currency    string          // ISO 4217 code
	Booked      bool            // false for pending transactions
}

// Fingerprint returns a stable identifier derived from the transaction's
// content. The portal does not expose a transaction id, so downstream sinks
// (the Notion exporter) use this for deduplication.
func (t Transaction) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(t.BookingDate.Format("2006-01-02")))
	h.Write([]byte{0})
	h.Write([]byte(t.Amount.String()))
	h.Write([]byte{0})
	h.Write([]byte(t.Counterpart))
	h.Write([]byte{0})
	h.Write([]byte(t.Purpose))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
