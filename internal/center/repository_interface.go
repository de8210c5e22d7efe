package center

import "context"

type Repository interface {
	CreateCenter(ctx context.Context, name, location, timezone string, cfg ScheduleConfig) (*Center, error)
	GetCenterByID(ctx context.Context, id int) (*Center, error)
	GetAllCenters(ctx context.Context) ([]Center, error)
	UpdateSchedule(ctx context.Context, id int, cfg ScheduleConfig) error
}
