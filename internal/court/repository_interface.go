package court

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateCourt(ctx context.Context, centerID int, name, primarySport string, allowedSports []string, hourlyRate float64) (*Court, error)
	GetCourtByID(ctx context.Context, id int) (*Court, error)
	GetCourtsByCenter(ctx context.Context, centerID int) ([]Court, error)
	SetCourtActive(ctx context.Context, id int, active bool) error

	CreateMaintenance(ctx context.Context, courtID int, startTime time.Time, durationMinutes int, description string) (*MaintenanceWindow, error)
	GetActiveMaintenanceTx(ctx context.Context, tx *sqlx.Tx, courtID int, from, to time.Time) ([]MaintenanceWindow, error)
	UpdateMaintenanceStatus(ctx context.Context, id int, status string) (*MaintenanceWindow, error)
}
