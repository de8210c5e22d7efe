package availability

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"courtslot/internal/center"
	"courtslot/internal/court"
	"courtslot/internal/db"
	"courtslot/internal/metrics"
)

var (
	ErrCourtNotFound     = errors.New("court not found")
	ErrCourtInactive     = errors.New("court is not active")
	ErrSportNotSupported = errors.New("sport is not supported on this court")
)

// ReservationSource supplies the active reservations the resolver must consider.
// The read runs on the caller's transaction so it shares a snapshot with the
// maintenance read.
type ReservationSource interface {
	ListActiveForCourtTx(ctx context.Context, tx *sqlx.Tx, courtID int, from, to time.Time) ([]BookedInterval, error)
}

type Service interface {
	GetAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error)
}

type service struct {
	database     *sqlx.DB
	courts       court.Repository
	centers      center.Repository
	reservations ReservationSource
	cache        *Cache
	stepMinutes  int
	now          func() time.Time
}

func NewService(database *sqlx.DB, courts court.Repository, centers center.Repository, reservations ReservationSource, cache *Cache, stepMinutes int) Service {
	if stepMinutes <= 0 {
		stepMinutes = 30
	}
	return &service{
		database:     database,
		courts:       courts,
		centers:      centers,
		reservations: reservations,
		cache:        cache,
		stepMinutes:  stepMinutes,
		now:          time.Now,
	}
}

func (s *service) GetAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	if cached, ok := s.cache.Get(ctx, req); ok {
		metrics.RecordAvailabilityQuery("hit")
		return cached, nil
	}
	metrics.RecordAvailabilityQuery("miss")

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

	intervals := center.ResolveDay(ctr.ScheduleConfig, req.Date)
	slots := GenerateSlots(intervals, req.Date, req.DurationMinutes, s.stepMinutes, loc)

	dayStart := center.ClockAt(req.Date, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	// Both reads come from one REPEATABLE READ snapshot, so a write landing
	// between them cannot produce a combined view no single instant had.
	var reservations []BookedInterval
	var maintenance []court.MaintenanceWindow
	err = db.TransactReadOnly(ctx, s.database, func(tx *sqlx.Tx) error {
		reservations, err = s.reservations.ListActiveForCourtTx(ctx, tx, req.CourtID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		maintenance, err = s.courts.GetActiveMaintenanceTx(ctx, tx, req.CourtID, dayStart, dayEnd)
		return err
	})
	if err != nil {
		return nil, err
	}

	results := Resolve(ResolveInput{
		Court:          crt,
		RequestedSport: req.Sport,
		UserID:         req.UserID,
		Slots:          slots,
		Reservations:   reservations,
		Maintenance:    maintenance,
		Now:            s.now(),
	})

	resp := &AvailabilityResponse{
		CourtID: req.CourtID,
		Date:    req.Date.Format("2006-01-02"),
		Sport:   req.Sport,
		Slots:   results,
		Summary: Summarize(results),
	}

	s.cache.Set(ctx, req, resp)
	return resp, nil
}
