package reservation

import (
	"fmt"
	"time"
)

const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

const (
	MethodCredits = "credits"
	MethodCard    = "card"
	MethodFree    = "free"
	MethodOnSite  = "on_site"
)

type Reservation struct {
	ID             int       `db:"id" json:"id"`
	CourtID        int       `db:"court_id" json:"court_id"`
	UserID         int       `db:"user_id" json:"user_id"`
	Sport          string    `db:"sport" json:"sport"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	EndTime        time.Time `db:"end_time" json:"end_time"`
	Status         string    `db:"status" json:"status"`
	PaymentStatus  string    `db:"payment_status" json:"payment_status"`
	PaymentMethod  string    `db:"payment_method" json:"payment_method,omitempty"`
	TotalPrice     float64   `db:"total_price" json:"total_price"`
	IdempotencyKey string    `db:"payment_idempotency_key" json:"-"`
	CheckoutRef    string    `db:"checkout_ref" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type CreateReservationRequest struct {
	CourtID   int    `json:"court_id" binding:"required"`
	Sport     string `json:"sport" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type PayRequest struct {
	PaymentMethod  string  `json:"payment_method" binding:"required,oneof=credits card free"`
	Amount         float64 `json:"amount"`
	IdempotencyKey string  `json:"idempotency_key" binding:"required"`
	AppliedPromo   string  `json:"applied_promo,omitempty"`
}

type PaymentResponse struct {
	ReservationID int      `json:"reservation_id"`
	PaymentMethod string   `json:"payment_method"`
	Amount        float64  `json:"amount"`
	CreditsUsed   *float64 `json:"credits_used,omitempty"`
	BalanceAfter  *float64 `json:"balance_after,omitempty"`
	RedirectURL   string   `json:"redirect_url,omitempty"`
	Replayed      bool     `json:"replayed,omitempty"`
}

// AmountMismatchError reports the expected vs provided payment amount.
type AmountMismatchError struct {
	Expected float64
	Provided float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %.2f, got %.2f", e.Expected, e.Provided)
}
