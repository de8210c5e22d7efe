package availability

import "time"

type SlotStatus string

const (
	StatusAvailable   SlotStatus = "AVAILABLE"
	StatusBooked      SlotStatus = "BOOKED"
	StatusMaintenance SlotStatus = "MAINTENANCE"
	StatusUserBooked  SlotStatus = "USER_BOOKED"
	StatusPast        SlotStatus = "PAST"
	StatusUnavailable SlotStatus = "UNAVAILABLE"
)

// Slot is a candidate reservable interval on a court.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SlotResult struct {
	Start   time.Time  `json:"start"`
	End     time.Time  `json:"end"`
	Status  SlotStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// BookedInterval is the slice of a reservation the conflict resolver needs.
type BookedInterval struct {
	ReservationID int       `db:"reservation_id" json:"reservation_id"`
	UserID        int       `db:"user_id" json:"user_id"`
	Sport         string    `db:"sport" json:"sport"`
	Start         time.Time `db:"start" json:"start"`
	End           time.Time `db:"end" json:"end"`
}

type AvailabilityRequest struct {
	CourtID         int
	UserID          int
	Sport           string
	Date            time.Time
	DurationMinutes int
}

type AvailabilityResponse struct {
	CourtID int                `json:"court_id"`
	Date    string             `json:"date"`
	Sport   string             `json:"sport"`
	Slots   []SlotResult       `json:"slots"`
	Summary map[SlotStatus]int `json:"summary"`
}
