package court

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrCourtNotFound       = errors.New("court not found")
	ErrMaintenanceNotFound = errors.New("maintenance window not found")
	ErrPrimaryInAllowed    = errors.New("primary sport cannot be listed as an allowed secondary sport")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCourt(ctx context.Context, centerID int, name, primarySport string, allowedSports []string, hourlyRate float64) (*Court, error) {
	for _, s := range allowedSports {
		if s == primarySport {
			return nil, ErrPrimaryInAllowed
		}
	}

	query := `
		INSERT INTO courts (center_id, name, primary_sport, allowed_sports, is_multiuse, is_active, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, true, $6)
		RETURNING id, center_id, name, primary_sport, allowed_sports, is_multiuse, is_active, hourly_rate, created_at
	`

	var c Court
	err := r.db.GetContext(ctx, &c, query,
		centerID, name, primarySport, pq.StringArray(allowedSports), len(allowedSports) > 0, hourlyRate)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetCourtByID(ctx context.Context, id int) (*Court, error) {
	query := `
		SELECT id, center_id, name, primary_sport, allowed_sports, is_multiuse, is_active, hourly_rate, created_at
		FROM courts
		WHERE id = $1
	`

	var c Court
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetCourtsByCenter(ctx context.Context, centerID int) ([]Court, error) {
	query := `
		SELECT id, center_id, name, primary_sport, allowed_sports, is_multiuse, is_active, hourly_rate, created_at
		FROM courts
		WHERE center_id = $1
		ORDER BY name
	`

	var courts []Court
	err := r.db.SelectContext(ctx, &courts, query, centerID)
	if err != nil {
		return nil, err
	}

	return courts, nil
}

func (r *repository) SetCourtActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE courts SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCourtNotFound
	}

	return nil
}

func (r *repository) CreateMaintenance(ctx context.Context, courtID int, startTime time.Time, durationMinutes int, description string) (*MaintenanceWindow, error) {
	query := `
		INSERT INTO maintenance_windows (court_id, start_time, duration_minutes, status, description)
		VALUES ($1, $2, $3, 'scheduled', $4)
		RETURNING id, court_id, start_time, duration_minutes, status, description, created_at
	`

	var mw MaintenanceWindow
	err := r.db.GetContext(ctx, &mw, query, courtID, startTime, durationMinutes, description)
	if err != nil {
		return nil, err
	}

	return &mw, nil
}

// GetActiveMaintenanceTx returns scheduled and in-progress windows intersecting
// [from, to). It runs on the caller's transaction so availability reads share
// one snapshot with the reservation read.
func (r *repository) GetActiveMaintenanceTx(ctx context.Context, tx *sqlx.Tx, courtID int, from, to time.Time) ([]MaintenanceWindow, error) {
	query := `
		SELECT id, court_id, start_time, duration_minutes, status, description, created_at
		FROM maintenance_windows
		WHERE court_id = $1
		  AND status IN ('scheduled', 'in_progress')
		  AND start_time < $3
		  AND start_time + (duration_minutes * interval '1 minute') > $2
		ORDER BY start_time
	`

	var windows []MaintenanceWindow
	err := tx.SelectContext(ctx, &windows, query, courtID, from, to)
	if err != nil {
		return nil, err
	}

	return windows, nil
}

func (r *repository) UpdateMaintenanceStatus(ctx context.Context, id int, status string) (*MaintenanceWindow, error) {
	query := `
		UPDATE maintenance_windows SET status = $1 WHERE id = $2
		RETURNING id, court_id, start_time, duration_minutes, status, description, created_at
	`

	var mw MaintenanceWindow
	err := r.db.GetContext(ctx, &mw, query, status, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, err
	}

	return &mw, nil
}
