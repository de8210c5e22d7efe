package center

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func weeklyConfig() ScheduleConfig {
	return ScheduleConfig{
		WeeklySlots: map[string]DaySchedule{
			"monday":    {Slots: []Interval{{Start: "09:00", End: "13:00"}, {Start: "15:00", End: "22:00"}}},
			"tuesday":   {Closed: true},
			"wednesday": {Slots: []Interval{{Start: "08:00", End: "20:00"}}},
			"thursday":  {Slots: []Interval{{Start: "08:00", End: "20:00"}}},
			"friday":    {Slots: []Interval{{Start: "08:00", End: "23:00"}}},
			"saturday":  {Slots: []Interval{{Start: "09:00", End: "21:00"}}},
			"sunday":    {Slots: []Interval{{Start: "09:00", End: "14:00"}}},
		},
	}
}

func TestResolveDay_WeeklySlots(t *testing.T) {
	// 2025-12-22 is a Monday
	got := ResolveDay(weeklyConfig(), mustDate(t, "2025-12-22"))
	assert.Equal(t, []Interval{{Start: "09:00", End: "13:00"}, {Start: "15:00", End: "22:00"}}, got)
}

func TestResolveDay_WeeklyClosedDay(t *testing.T) {
	// 2025-12-23 is a Tuesday, marked closed
	got := ResolveDay(weeklyConfig(), mustDate(t, "2025-12-23"))
	assert.Empty(t, got)
}

func TestResolveDay_ExceptionClosedBeatsWeekly(t *testing.T) {
	// Christmas 2025 falls on a Thursday, which is normally open.
	cfg := weeklyConfig()
	cfg.Exceptions = map[string]Exception{
		"2025-12-25": {Closed: true},
	}

	got := ResolveDay(cfg, mustDate(t, "2025-12-25"))
	assert.Empty(t, got)
}

func TestResolveDay_ExceptionIntervalsVerbatim(t *testing.T) {
	cfg := weeklyConfig()
	cfg.Exceptions = map[string]Exception{
		"2025-12-24": {Intervals: []Interval{{Start: "10:00", End: "14:00"}}},
	}

	got := ResolveDay(cfg, mustDate(t, "2025-12-24"))
	assert.Equal(t, []Interval{{Start: "10:00", End: "14:00"}}, got)
}

func TestResolveDay_ExceptionWithoutIntervalsClosesDay(t *testing.T) {
	cfg := weeklyConfig()
	cfg.Exceptions = map[string]Exception{
		"2025-12-24": {},
	}

	got := ResolveDay(cfg, mustDate(t, "2025-12-24"))
	assert.Empty(t, got)
}

func TestResolveDay_WeeklyDayMissingFallsToLegacy(t *testing.T) {
	cfg := ScheduleConfig{
		WeeklySlots: map[string]DaySchedule{
			"monday": {Slots: []Interval{{Start: "09:00", End: "13:00"}}},
		},
		Legacy: &LegacyHours{Open: "07:00", Close: "23:00"},
	}

	// Wednesday is absent from the weekly map
	got := ResolveDay(cfg, mustDate(t, "2025-12-24"))
	assert.Equal(t, []Interval{{Start: "07:00", End: "23:00"}}, got)
}

func TestResolveDay_LegacyOnly(t *testing.T) {
	cfg := ScheduleConfig{Legacy: &LegacyHours{Open: "08:00", Close: "22:00"}}
	got := ResolveDay(cfg, mustDate(t, "2025-12-22"))
	assert.Equal(t, []Interval{{Start: "08:00", End: "22:00"}}, got)
}

func TestResolveDay_LegacyClosed(t *testing.T) {
	cfg := ScheduleConfig{Legacy: &LegacyHours{Closed: true, Open: "08:00", Close: "22:00"}}
	assert.Empty(t, ResolveDay(cfg, mustDate(t, "2025-12-22")))
}

func TestResolveDay_NothingConfigured(t *testing.T) {
	assert.Empty(t, ResolveDay(ScheduleConfig{}, mustDate(t, "2025-12-22")))
}

func TestResolveDay_DropsInvalidIntervals(t *testing.T) {
	cfg := ScheduleConfig{
		WeeklySlots: map[string]DaySchedule{
			"monday": {Slots: []Interval{
				{Start: "nonsense", End: "13:00"},
				{Start: "15:00", End: "14:00"},
				{Start: "16:00", End: "20:00"},
			}},
		},
	}

	got := ResolveDay(cfg, mustDate(t, "2025-12-22"))
	assert.Equal(t, []Interval{{Start: "16:00", End: "20:00"}}, got)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"9", 0, true},
		{"ab:cd", 0, true},
		{"12:60", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestScheduleConfigScanValue(t *testing.T) {
	cfg := weeklyConfig()

	v, err := cfg.Value()
	require.NoError(t, err)

	var decoded ScheduleConfig
	require.NoError(t, decoded.Scan(v))
	assert.Equal(t, cfg, decoded)

	var fromNil ScheduleConfig
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil.WeeklySlots)
}
