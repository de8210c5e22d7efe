package wallet

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"
)

type EntryType string

const (
	TypeCredit EntryType = "CREDIT"
	TypeDebit  EntryType = "DEBIT"
)

const (
	ReasonTopUp              = "TOPUP"
	ReasonReservationPayment = "RESERVATION_PAYMENT"
	ReasonReservationRefund  = "RESERVATION_REFUND"
	ReasonPromotion          = "PROMOTION"
	ReasonAdjustment         = "ADJUSTMENT"
)

// LedgerEntry is an immutable record of one balance change. Entries are only
// appended; the running signed sum always equals the latest balance_after.
type LedgerEntry struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	Type           EntryType `db:"type" json:"type"`
	Reason         string    `db:"reason" json:"reason"`
	Credits        float64   `db:"credits" json:"credits"`
	BalanceAfter   float64   `db:"balance_after" json:"balance_after"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key"`
	Metadata       Metadata  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Signed returns the credits magnitude with the entry's sign applied.
func (e *LedgerEntry) Signed() float64 {
	if e.Type == TypeDebit {
		return -e.Credits
	}
	return e.Credits
}

type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	default:
		return errors.New("unsupported metadata source type")
	}
}

type ApplyParams struct {
	UserID         int
	Type           EntryType
	Reason         string
	Credits        float64
	IdempotencyKey string
	Metadata       Metadata
}

type ApplyResult struct {
	Entry    *LedgerEntry
	Replayed bool
}

// Round2 rounds to 2 decimal places, the resolution of all credit amounts.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type TopUpRequest struct {
	UserID         int     `json:"user_id" binding:"required"`
	Credits        float64 `json:"credits" binding:"required,gt=0"`
	IdempotencyKey string  `json:"idempotency_key" binding:"required"`
}
