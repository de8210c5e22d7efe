package center

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Center struct {
	ID             int            `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Location       string         `db:"location" json:"location"`
	Timezone       string         `db:"timezone" json:"timezone"`
	ScheduleConfig ScheduleConfig `db:"schedule_config" json:"schedule_config"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// Interval is a clock range within one day, "HH:MM" inclusive start, exclusive end.
type Interval struct {
	Start string `json:"start" example:"09:00"`
	End   string `json:"end" example:"22:00"`
}

type DaySchedule struct {
	Closed bool       `json:"closed,omitempty"`
	Slots  []Interval `json:"slots,omitempty"`
}

type Exception struct {
	Closed    bool       `json:"closed,omitempty"`
	Intervals []Interval `json:"intervals,omitempty"`
}

type LegacyHours struct {
	Closed bool   `json:"closed,omitempty"`
	Open   string `json:"open"`
	Close  string `json:"close"`
}

// ScheduleConfig holds every historical schedule format a center may carry.
// Resolution never merges formats; see ResolveDay for the priority order.
type ScheduleConfig struct {
	WeeklySlots map[string]DaySchedule `json:"weekly_slots,omitempty"` // keyed by lowercase weekday name
	Legacy      *LegacyHours           `json:"operating_hours,omitempty"`
	Exceptions  map[string]Exception   `json:"exceptions,omitempty"` // keyed by "2006-01-02"
}

func (c ScheduleConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *ScheduleConfig) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = ScheduleConfig{}
		return nil
	default:
		return errors.New("unsupported schedule_config source type")
	}
}

type CreateCenterRequest struct {
	Name           string         `json:"name" binding:"required"`
	Location       string         `json:"location" binding:"required"`
	Timezone       string         `json:"timezone"`
	ScheduleConfig ScheduleConfig `json:"schedule_config"`
}

type UpdateScheduleRequest struct {
	ScheduleConfig ScheduleConfig `json:"schedule_config" binding:"required"`
}
