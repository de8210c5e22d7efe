package reservation

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"courtslot/internal/availability"
	"courtslot/internal/court"
)

type Repository interface {
	// CreatePending inserts a pending reservation after re-running the conflict
	// check against row-locked overlapping reservations, all in one transaction.
	CreatePending(ctx context.Context, crt *court.Court, userID int, sport string, start, end time.Time, totalPrice float64) (*Reservation, error)

	GetByID(ctx context.Context, id int) (*Reservation, error)
	GetUserReservations(ctx context.Context, userID int) ([]Reservation, error)
	GetByCourtDate(ctx context.Context, courtID int, from, to time.Time) ([]Reservation, error)

	// ListActiveForCourtTx satisfies availability.ReservationSource.
	ListActiveForCourtTx(ctx context.Context, tx *sqlx.Tx, courtID int, from, to time.Time) ([]availability.BookedInterval, error)

	LockByIDTx(ctx context.Context, tx *sqlx.Tx, id int) (*Reservation, error)
	MarkPaidTx(ctx context.Context, tx *sqlx.Tx, id int, method, idempotencyKey string) error
	StoreCheckoutTx(ctx context.Context, tx *sqlx.Tx, id int, idempotencyKey, checkoutRef string) error
	CancelTx(ctx context.Context, tx *sqlx.Tx, id int, refunded bool) error
}
