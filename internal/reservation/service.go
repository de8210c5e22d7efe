package reservation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"courtslot/internal/availability"
	"courtslot/internal/center"
	"courtslot/internal/court"
	"courtslot/internal/db"
	"courtslot/internal/metrics"
	"courtslot/internal/promotion"
	"courtslot/internal/wallet"
)

var (
	ErrForbidden         = errors.New("reservation belongs to another user")
	ErrInvalidState      = errors.New("reservation is not in a payable state")
	ErrCourtNotFound     = errors.New("court not found")
	ErrCourtInactive     = errors.New("court is not active")
	ErrSportNotSupported = errors.New("sport is not supported on this court")
	ErrOutsideHours      = errors.New("requested time is outside the center's open hours")
	ErrInvalidTimeRange  = errors.New("invalid reservation time range")
	ErrPromotionRequired = errors.New("free payment requires a zero-cost promotion")
)

// amountTolerance is the rounding slack allowed when comparing payment amounts.
const amountTolerance = 0.01

type PaymentRequest struct {
	ReservationID  int
	UserID         int
	Method         string
	Amount         float64
	IdempotencyKey string
	AppliedPromo   string
}

type Service interface {
	Create(ctx context.Context, userID int, req CreateReservationRequest) (*Reservation, error)
	ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
	Cancel(ctx context.Context, userID, reservationID int) error
	Get(ctx context.Context, userID, reservationID int) (*Reservation, error)
	GetUserReservations(ctx context.Context, userID int) ([]Reservation, error)
	GetByCourtDate(ctx context.Context, courtID int, from, to time.Time) ([]Reservation, error)
}

type service struct {
	database     *sqlx.DB
	reservations Repository
	courts       court.Repository
	centers      center.Repository
	walletRepo   wallet.Repository
	promotions   promotion.Repository
	cache        *availability.Cache

	checkoutBaseURL string
	now             func() time.Time
}

func NewService(
	database *sqlx.DB,
	reservations Repository,
	courts court.Repository,
	centers center.Repository,
	walletRepo wallet.Repository,
	promotions promotion.Repository,
	cache *availability.Cache,
	checkoutBaseURL string,
) Service {
	return &service{
		database:        database,
		reservations:    reservations,
		courts:          courts,
		centers:         centers,
		walletRepo:      walletRepo,
		promotions:      promotions,
		cache:           cache,
		checkoutBaseURL: checkoutBaseURL,
		now:             time.Now,
	}
}

func (s *service) Create(ctx context.Context, userID int, req CreateReservationRequest) (*Reservation, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	if !end.After(start) || start.Before(s.now()) {
		return nil, ErrInvalidTimeRange
	}

	crt, err := s.courts.GetCourtByID(ctx, req.CourtID)
	if err != nil {
		return nil, ErrCourtNotFound
	}
	if !crt.IsActive {
		return nil, ErrCourtInactive
	}
	if crt.Capability(req.Sport) == court.SportUnsupported {
		return nil, ErrSportNotSupported
	}

	ctr, err := s.centers.GetCenterByID(ctx, crt.CenterID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(ctr.Timezone)
	if err != nil {
		loc = time.UTC
	}

	if !withinOpenHours(ctr.ScheduleConfig, start.In(loc), end.In(loc), loc) {
		return nil, ErrOutsideHours
	}

	price := wallet.Round2(crt.HourlyRate * end.Sub(start).Hours())

	created, err := s.reservations.CreatePending(ctx, crt, userID, req.Sport, start, end, price)
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			metrics.RecordReservationCreated("conflict")
		} else {
			metrics.RecordReservationCreated("error")
		}
		return nil, err
	}

	metrics.RecordReservationCreated("created")
	s.cache.InvalidateCourt(ctx, crt.ID, start.In(loc))
	return created, nil
}

// withinOpenHours requires the whole [start, end) range to fit in one resolved
// open interval of the reservation's calendar date.
func withinOpenHours(cfg center.ScheduleConfig, start, end time.Time, loc *time.Location) bool {
	intervals := center.ResolveDay(cfg, start)
	for _, iv := range intervals {
		ivStart, err1 := center.ParseClock(iv.Start)
		ivEnd, err2 := center.ParseClock(iv.End)
		if err1 != nil || err2 != nil {
			continue
		}

		openAt := center.ClockAt(start, ivStart, loc)
		closeAt := center.ClockAt(start, ivEnd, loc)
		if !start.Before(openAt) && !end.After(closeAt) {
			return true
		}
	}
	return false
}

// ProcessPayment validates and settles a payment for a pending reservation. All
// state changes for credit and free payments happen in one transaction; a card
// payment only records the checkout handle and leaves the reservation pending
// until the processor's asynchronous confirmation.
func (s *service) ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	var resp *PaymentResponse

	err := db.Transact(ctx, s.database, func(tx *sqlx.Tx) error {
		r, err := s.reservations.LockByIDTx(ctx, tx, req.ReservationID)
		if err != nil {
			return err
		}

		if r.UserID != req.UserID {
			return ErrForbidden
		}

		// Replay: the same key presented again returns the original outcome
		// without any further financial effect.
		if req.IdempotencyKey != "" && r.IdempotencyKey == req.IdempotencyKey {
			resp, err = s.replayResponse(ctx, r, req)
			return err
		}

		if r.Status != StatusPending || r.PaymentStatus == PaymentPaid {
			return ErrInvalidState
		}

		// A named discount code is locked and validated inside this
		// transaction, so an inactive, expired, or exhausted code cannot
		// reduce the price.
		var promo *promotion.Promotion
		expected := r.TotalPrice
		if req.AppliedPromo != "" {
			promo, err = s.lockDiscountPromo(ctx, tx, req.AppliedPromo)
			if err != nil {
				return err
			}
			expected, err = promotion.ComputeDiscount(promo, r.TotalPrice)
			if err != nil {
				return err
			}
		}

		if req.Method == MethodFree {
			if req.AppliedPromo == "" || expected > amountTolerance {
				return ErrPromotionRequired
			}
			expected = 0
		}

		if math.Abs(req.Amount-expected) > amountTolerance {
			return &AmountMismatchError{Expected: expected, Provided: req.Amount}
		}

		switch req.Method {
		case MethodCredits:
			result, err := s.walletRepo.ApplyEntryTx(ctx, tx, wallet.ApplyParams{
				UserID:         req.UserID,
				Type:           wallet.TypeDebit,
				Reason:         wallet.ReasonReservationPayment,
				Credits:        req.Amount,
				IdempotencyKey: req.IdempotencyKey,
				Metadata:       wallet.Metadata{"reservation_id": r.ID},
			})
			if err != nil {
				return err
			}

			if err := s.reservations.MarkPaidTx(ctx, tx, r.ID, MethodCredits, req.IdempotencyKey); err != nil {
				return err
			}
			if promo != nil {
				if err := s.recordPromotionUse(ctx, tx, promo, r, expected); err != nil {
					return err
				}
			}

			used := result.Entry.Credits
			after := result.Entry.BalanceAfter
			resp = &PaymentResponse{
				ReservationID: r.ID,
				PaymentMethod: MethodCredits,
				Amount:        req.Amount,
				CreditsUsed:   &used,
				BalanceAfter:  &after,
				Replayed:      result.Replayed,
			}
			return nil

		case MethodFree:
			if err := s.reservations.MarkPaidTx(ctx, tx, r.ID, MethodFree, req.IdempotencyKey); err != nil {
				return err
			}
			if promo != nil {
				if err := s.recordPromotionUse(ctx, tx, promo, r, expected); err != nil {
					return err
				}
			}
			resp = &PaymentResponse{
				ReservationID: r.ID,
				PaymentMethod: MethodFree,
				Amount:        0,
			}
			return nil

		case MethodCard:
			checkoutRef := uuid.NewString()
			if err := s.reservations.StoreCheckoutTx(ctx, tx, r.ID, req.IdempotencyKey, checkoutRef); err != nil {
				return err
			}
			resp = &PaymentResponse{
				ReservationID: r.ID,
				PaymentMethod: MethodCard,
				Amount:        req.Amount,
				RedirectURL:   fmt.Sprintf("%s/%s", s.checkoutBaseURL, checkoutRef),
			}
			return nil

		default:
			return ErrInvalidState
		}
	})

	if err != nil {
		metrics.RecordPayment(req.Method, "error")
		return nil, err
	}

	metrics.RecordPayment(req.Method, "ok")
	return resp, nil
}

// replayResponse rebuilds the original payment response for a repeated key.
func (s *service) replayResponse(ctx context.Context, r *Reservation, req PaymentRequest) (*PaymentResponse, error) {
	switch r.PaymentMethod {
	case MethodCredits:
		entry, err := s.walletRepo.GetEntryByKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		used := entry.Credits
		after := entry.BalanceAfter
		return &PaymentResponse{
			ReservationID: r.ID,
			PaymentMethod: MethodCredits,
			Amount:        entry.Credits,
			CreditsUsed:   &used,
			BalanceAfter:  &after,
			Replayed:      true,
		}, nil

	case MethodCard:
		return &PaymentResponse{
			ReservationID: r.ID,
			PaymentMethod: MethodCard,
			Amount:        req.Amount,
			RedirectURL:   fmt.Sprintf("%s/%s", s.checkoutBaseURL, r.CheckoutRef),
			Replayed:      true,
		}, nil

	case MethodFree:
		return &PaymentResponse{
			ReservationID: r.ID,
			PaymentMethod: MethodFree,
			Amount:        0,
			Replayed:      true,
		}, nil

	default:
		return nil, ErrInvalidState
	}
}

// lockDiscountPromo resolves a discount code, locks its row for the duration of
// the payment transaction, and validates that it is still applicable.
func (s *service) lockDiscountPromo(ctx context.Context, tx *sqlx.Tx, code string) (*promotion.Promotion, error) {
	p, err := s.promotions.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	locked, err := s.promotions.LockByIDTx(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}

	if err := promotion.CheckApplicable(locked, s.now()); err != nil {
		return nil, err
	}

	return locked, nil
}

// recordPromotionUse accounts a settled discount: one application row plus a
// guarded usage_count bump, in the payment's transaction. Card checkouts are
// not settled, so they only validate the code here and account it on
// confirmation.
func (s *service) recordPromotionUse(ctx context.Context, tx *sqlx.Tx, p *promotion.Promotion, r *Reservation, finalAmount float64) error {
	if _, err := s.promotions.InsertApplicationTx(ctx, tx, &promotion.PromotionApplication{
		PromotionID:    p.ID,
		UserID:         r.UserID,
		CreditsAwarded: wallet.Round2(r.TotalPrice - finalAmount),
		Metadata:       wallet.Metadata{"reservation_id": r.ID},
	}); err != nil {
		return err
	}

	return s.promotions.IncrementUsageTx(ctx, tx, p.ID)
}

func (s *service) Cancel(ctx context.Context, userID, reservationID int) error {
	return db.Transact(ctx, s.database, func(tx *sqlx.Tx) error {
		r, err := s.reservations.LockByIDTx(ctx, tx, reservationID)
		if err != nil {
			return err
		}

		if r.UserID != userID {
			return ErrForbidden
		}

		if r.Status != StatusPending && r.Status != StatusPaid {
			return ErrInvalidState
		}

		refunded := false
		if r.PaymentStatus == PaymentPaid && r.PaymentMethod == MethodCredits {
			// Refund what the ledger says was debited, not the list price:
			// a discounted payment debited less than TotalPrice.
			refundAmount := r.TotalPrice
			if r.IdempotencyKey != "" {
				entry, err := s.walletRepo.GetEntryByKey(ctx, r.IdempotencyKey)
				if err != nil {
					return err
				}
				refundAmount = entry.Credits
			}

			_, err := s.walletRepo.ApplyEntryTx(ctx, tx, wallet.ApplyParams{
				UserID:         userID,
				Type:           wallet.TypeCredit,
				Reason:         wallet.ReasonReservationRefund,
				Credits:        refundAmount,
				IdempotencyKey: fmt.Sprintf("refund:reservation:%d", r.ID),
				Metadata:       wallet.Metadata{"reservation_id": r.ID},
			})
			if err != nil {
				return err
			}
			refunded = true
		}

		return s.reservations.CancelTx(ctx, tx, r.ID, refunded)
	})
}

func (s *service) Get(ctx context.Context, userID, reservationID int) (*Reservation, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if r.UserID != userID {
		return nil, ErrForbidden
	}

	return r, nil
}

func (s *service) GetUserReservations(ctx context.Context, userID int) ([]Reservation, error) {
	return s.reservations.GetUserReservations(ctx, userID)
}

func (s *service) GetByCourtDate(ctx context.Context, courtID int, from, to time.Time) ([]Reservation, error) {
	return s.reservations.GetByCourtDate(ctx, courtID, from, to)
}
