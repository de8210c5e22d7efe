package court

import (
	"time"

	"github.com/lib/pq"
)

type Court struct {
	ID            int            `db:"id" json:"id"`
	CenterID      int            `db:"center_id" json:"center_id"`
	Name          string         `db:"name" json:"name"`
	PrimarySport  string         `db:"primary_sport" json:"primary_sport"`
	AllowedSports pq.StringArray `db:"allowed_sports" json:"allowed_sports"`
	IsMultiuse    bool           `db:"is_multiuse" json:"is_multiuse"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	HourlyRate    float64        `db:"hourly_rate" json:"hourly_rate"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// SportCapability classifies a sport against a court's capability set.
type SportCapability int

const (
	SportUnsupported SportCapability = iota
	SportPrimary
	SportSecondary
)

// Capability resolves how a sport relates to the court. The primary sport occupies
// the court exclusively; allowed secondary sports may share time with each other.
func (c *Court) Capability(sport string) SportCapability {
	if sport == c.PrimarySport {
		return SportPrimary
	}
	if !c.IsMultiuse {
		return SportUnsupported
	}
	for _, s := range c.AllowedSports {
		if s == sport {
			return SportSecondary
		}
	}
	return SportUnsupported
}

const (
	MaintenanceScheduled  = "scheduled"
	MaintenanceInProgress = "in_progress"
	MaintenanceCompleted  = "completed"
	MaintenanceCancelled  = "cancelled"
)

type MaintenanceWindow struct {
	ID              int       `db:"id" json:"id"`
	CourtID         int       `db:"court_id" json:"court_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          string    `db:"status" json:"status"`
	Description     string    `db:"description" json:"description"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

func (m *MaintenanceWindow) EndTime() time.Time {
	return m.StartTime.Add(time.Duration(m.DurationMinutes) * time.Minute)
}

type CreateCourtRequest struct {
	CenterID      int      `json:"center_id" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	PrimarySport  string   `json:"primary_sport" binding:"required"`
	AllowedSports []string `json:"allowed_sports"`
	HourlyRate    float64  `json:"hourly_rate" binding:"required,gt=0"`
}

type CreateMaintenanceRequest struct {
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
	Description     string `json:"description"`
}
