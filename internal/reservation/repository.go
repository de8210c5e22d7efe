package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"courtslot/internal/availability"
	"courtslot/internal/court"
	"courtslot/internal/db"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSlotConflict        = errors.New("slot conflicts with an existing reservation")
)

const reservationColumns = `id, court_id, user_id, sport, start_time, end_time, status,
	payment_status, payment_method, total_price, payment_idempotency_key, checkout_ref,
	created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

// CreatePending re-checks conflicts inside the same transaction that inserts the
// pending row. The court row is locked FOR UPDATE first so concurrent creates on
// the same court serialize even when no overlapping row exists yet; the loser of
// the lock then re-reads and sees the winner's insert.
func (r *repository) CreatePending(ctx context.Context, crt *court.Court, userID int, sport string, start, end time.Time, totalPrice float64) (*Reservation, error) {
	var created Reservation

	err := db.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		var courtID int
		if err := tx.GetContext(ctx, &courtID,
			`SELECT id FROM courts WHERE id = $1 FOR UPDATE`, crt.ID); err != nil {
			return err
		}

		var overlapping []Reservation
		err := tx.SelectContext(ctx, &overlapping, `
			SELECT `+reservationColumns+`
			FROM reservations
			WHERE court_id = $1
			  AND status IN ('pending', 'paid', 'in_progress')
			  AND start_time < $3
			  AND end_time > $2
			FOR UPDATE
		`, crt.ID, start, end)
		if err != nil {
			return err
		}

		booked := make([]availability.BookedInterval, 0, len(overlapping))
		for _, o := range overlapping {
			booked = append(booked, availability.BookedInterval{
				ReservationID: o.ID,
				UserID:        o.UserID,
				Sport:         o.Sport,
				Start:         o.StartTime,
				End:           o.EndTime,
			})
		}

		if availability.HasConflict(crt, sport, booked) {
			return ErrSlotConflict
		}

		return tx.QueryRowxContext(ctx, `
			INSERT INTO reservations (court_id, user_id, sport, start_time, end_time, status, payment_status, total_price)
			VALUES ($1, $2, $3, $4, $5, 'pending', 'unpaid', $6)
			RETURNING `+reservationColumns+`
		`, crt.ID, userID, sport, start, end, totalPrice).StructScan(&created)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Reservation, error) {
	var res Reservation
	err := r.db.GetContext(ctx, &res,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	if err != nil {
		return nil, ErrReservationNotFound
	}
	return &res, nil
}

func (r *repository) GetUserReservations(ctx context.Context, userID int) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.SelectContext(ctx, &reservations, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE user_id = $1
		ORDER BY start_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *repository) GetByCourtDate(ctx context.Context, courtID int, from, to time.Time) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.SelectContext(ctx, &reservations, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE court_id = $1
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`, courtID, from, to)
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *repository) ListActiveForCourtTx(ctx context.Context, tx *sqlx.Tx, courtID int, from, to time.Time) ([]availability.BookedInterval, error) {
	var intervals []availability.BookedInterval
	err := tx.SelectContext(ctx, &intervals, `
		SELECT id AS reservation_id, user_id, sport, start_time AS start, end_time AS "end"
		FROM reservations
		WHERE court_id = $1
		  AND status IN ('pending', 'paid', 'in_progress')
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`, courtID, from, to)
	if err != nil {
		return nil, err
	}
	return intervals, nil
}

func (r *repository) LockByIDTx(ctx context.Context, tx *sqlx.Tx, id int) (*Reservation, error) {
	var res Reservation
	err := tx.GetContext(ctx, &res,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, ErrReservationNotFound
	}
	return &res, nil
}

func (r *repository) MarkPaidTx(ctx context.Context, tx *sqlx.Tx, id int, method, idempotencyKey string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE reservations
		SET status = 'paid', payment_status = 'paid', payment_method = $1,
		    payment_idempotency_key = $2, updated_at = NOW()
		WHERE id = $3
	`, method, idempotencyKey, id)
	return err
}

func (r *repository) StoreCheckoutTx(ctx context.Context, tx *sqlx.Tx, id int, idempotencyKey, checkoutRef string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE reservations
		SET payment_method = 'card', payment_idempotency_key = $1, checkout_ref = $2, updated_at = NOW()
		WHERE id = $3
	`, idempotencyKey, checkoutRef, id)
	return err
}

func (r *repository) CancelTx(ctx context.Context, tx *sqlx.Tx, id int, refunded bool) error {
	paymentStatus := "unpaid"
	if refunded {
		paymentStatus = "refunded"
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE reservations
		SET status = 'cancelled', payment_status = $1, updated_at = NOW()
		WHERE id = $2
	`, paymentStatus, id)
	return err
}
