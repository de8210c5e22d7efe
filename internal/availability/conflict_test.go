package availability

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtslot/internal/court"
)

func multiuseCourt() *court.Court {
	return &court.Court{
		ID:            1,
		PrimarySport:  "Fútbol",
		AllowedSports: []string{"Voleibol", "Básquet"},
		IsMultiuse:    true,
		IsActive:      true,
	}
}

func at(h, m int) time.Time {
	return time.Date(2025, 12, 22, h, m, 0, 0, time.UTC)
}

func slot(startH, startM, endH, endM int) Slot {
	return Slot{Start: at(startH, startM), End: at(endH, endM)}
}

// farPast keeps every test slot in the future relative to Now.
var farPast = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestResolve_PrimaryReservationBlocksSecondary(t *testing.T) {
	// Paid Fútbol 10:00-11:00 exists; Voleibol 10:30-11:30 must be blocked.
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Voleibol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(10, 30, 11, 30)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Fútbol", Start: at(10, 0), End: at(11, 0)},
		},
		Now: farPast,
	}

	results := Resolve(in)
	require.Len(t, results, 1)
	assert.Equal(t, StatusBooked, results[0].Status)
}

func TestResolve_SecondaryCoexistence(t *testing.T) {
	// Voleibol 10:00-11:00 exists; Básquet 10:00-11:00 is still available.
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Básquet",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(10, 0, 11, 0)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Voleibol", Start: at(10, 0), End: at(11, 0)},
		},
		Now: farPast,
	}

	results := Resolve(in)
	require.Len(t, results, 1)
	assert.Equal(t, StatusAvailable, results[0].Status)
}

func TestResolve_SameSecondarySportCoexists(t *testing.T) {
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Voleibol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(10, 0, 11, 0)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Voleibol", Start: at(10, 0), End: at(11, 0)},
		},
		Now: farPast,
	}

	results := Resolve(in)
	require.Len(t, results, 1)
	assert.Equal(t, StatusAvailable, results[0].Status)
}

func TestResolve_PrimaryRequestBlockedByAnyOverlap(t *testing.T) {
	// A secondary reservation is enough to block a primary-sport request.
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Fútbol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(10, 0, 11, 0)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Básquet", Start: at(10, 30), End: at(11, 30)},
		},
		Now: farPast,
	}

	results := Resolve(in)
	require.Len(t, results, 1)
	assert.Equal(t, StatusUnavailable, results[0].Status)
}

func TestResolve_PrimaryReservationBlocksPrimaryRequest(t *testing.T) {
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Fútbol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(10, 0, 11, 0)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Fútbol", Start: at(10, 0), End: at(11, 0)},
		},
		Now: farPast,
	}

	results := Resolve(in)
	assert.Equal(t, StatusBooked, results[0].Status)
}

func TestResolve_OwnReservationMarkedUserBooked(t *testing.T) {
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Fútbol",
		UserID:         7,
		Slots:          slices.Values([]Slot{slot(10, 0, 11, 0)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Fútbol", Start: at(10, 0), End: at(11, 0)},
		},
		Now: farPast,
	}

	results := Resolve(in)
	assert.Equal(t, StatusUserBooked, results[0].Status)
}

func TestResolve_MaintenanceBlocksEverything(t *testing.T) {
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Voleibol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(10, 0, 11, 0), slot(12, 0, 13, 0)}),
		Maintenance: []court.MaintenanceWindow{
			{CourtID: 1, StartTime: at(10, 30), DurationMinutes: 60, Status: court.MaintenanceScheduled},
		},
		Now: farPast,
	}

	results := Resolve(in)
	require.Len(t, results, 2)
	assert.Equal(t, StatusMaintenance, results[0].Status)
	assert.Equal(t, StatusAvailable, results[1].Status)
}

func TestResolve_PastWinsOverEverything(t *testing.T) {
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Voleibol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(10, 0, 11, 0)}),
		Maintenance: []court.MaintenanceWindow{
			{CourtID: 1, StartTime: at(10, 0), DurationMinutes: 60, Status: court.MaintenanceInProgress},
		},
		Now: at(12, 0),
	}

	results := Resolve(in)
	assert.Equal(t, StatusPast, results[0].Status)
}

func TestResolve_NonOverlappingReservationIgnored(t *testing.T) {
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Fútbol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(12, 0, 13, 0)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Fútbol", Start: at(10, 0), End: at(11, 0)},
		},
		Now: farPast,
	}

	results := Resolve(in)
	assert.Equal(t, StatusAvailable, results[0].Status)
}

func TestResolve_BackToBackIsNotOverlap(t *testing.T) {
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Fútbol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(11, 0, 12, 0)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Fútbol", Start: at(10, 0), End: at(11, 0)},
		},
		Now: farPast,
	}

	results := Resolve(in)
	assert.Equal(t, StatusAvailable, results[0].Status)
}

func TestResolve_Deterministic(t *testing.T) {
	in := ResolveInput{
		Court:          multiuseCourt(),
		RequestedSport: "Voleibol",
		UserID:         99,
		Slots:          slices.Values([]Slot{slot(9, 0, 10, 0), slot(10, 0, 11, 0), slot(11, 0, 12, 0)}),
		Reservations: []BookedInterval{
			{ReservationID: 1, UserID: 7, Sport: "Fútbol", Start: at(10, 0), End: at(11, 0)},
			{ReservationID: 2, UserID: 8, Sport: "Básquet", Start: at(11, 0), End: at(12, 0)},
		},
		Now: farPast,
	}

	assert.Equal(t, Resolve(in), Resolve(in))
}

// The exclusivity invariant: whenever either side of an overlapping pair uses the
// court's primary sport, the second booking must be rejected.
func TestHasConflict_ExclusivityInvariant(t *testing.T) {
	crt := multiuseCourt()
	sports := []string{"Fútbol", "Voleibol", "Básquet"}

	existing := BookedInterval{ReservationID: 1, UserID: 7, Start: at(10, 0), End: at(11, 0)}

	for _, existingSport := range sports {
		for _, requested := range sports {
			existing.Sport = existingSport
			got := HasConflict(crt, requested, []BookedInterval{existing})

			wantConflict := existingSport == crt.PrimarySport || requested == crt.PrimarySport
			assert.Equal(t, wantConflict, got, "existing=%s requested=%s", existingSport, requested)
		}
	}
}

func TestHasConflict_NoOverlap(t *testing.T) {
	assert.False(t, HasConflict(multiuseCourt(), "Fútbol", nil))
	assert.False(t, HasConflict(multiuseCourt(), "Voleibol", nil))
}

func TestSummarize(t *testing.T) {
	results := []SlotResult{
		{Status: StatusAvailable},
		{Status: StatusAvailable},
		{Status: StatusBooked},
		{Status: StatusPast},
	}

	summary := Summarize(results)
	assert.Equal(t, 2, summary[StatusAvailable])
	assert.Equal(t, 1, summary[StatusBooked])
	assert.Equal(t, 1, summary[StatusPast])
	assert.Equal(t, 0, summary[StatusMaintenance])
}
