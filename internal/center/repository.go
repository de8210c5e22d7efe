package center

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrCenterNotFound = errors.New("center not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCenter(ctx context.Context, name, location, timezone string, cfg ScheduleConfig) (*Center, error) {
	query := `
		INSERT INTO centers (name, location, timezone, schedule_config)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, location, timezone, schedule_config, created_at
	`

	var c Center
	err := r.db.GetContext(ctx, &c, query, name, location, timezone, cfg)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetCenterByID(ctx context.Context, id int) (*Center, error) {
	query := `
		SELECT id, name, location, timezone, schedule_config, created_at
		FROM centers
		WHERE id = $1
	`

	var c Center
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetAllCenters(ctx context.Context) ([]Center, error) {
	query := `
		SELECT id, name, location, timezone, schedule_config, created_at
		FROM centers
		ORDER BY name
	`

	var centers []Center
	err := r.db.SelectContext(ctx, &centers, query)
	if err != nil {
		return nil, err
	}

	return centers, nil
}

func (r *repository) UpdateSchedule(ctx context.Context, id int, cfg ScheduleConfig) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE centers SET schedule_config = $1 WHERE id = $2`,
		cfg, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCenterNotFound
	}

	return nil
}
