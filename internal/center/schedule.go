package center

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateKeyLayout = "2006-01-02"

// ResolveDay turns a center's schedule configuration into the ordered list of open
// intervals for one calendar date. Exactly one source wins per date:
//
//	1. a date exception marked closed        -> no intervals
//	2. a date exception with explicit ranges -> those ranges, verbatim
//	3. the weekly slot list for that weekday -> its slots, unless the day is closed
//	4. the legacy single open/close pair     -> one interval, unless marked closed
//	5. nothing configured                    -> closed
//
// Sources are never merged. Intervals that fail to parse or are empty are dropped.
func ResolveDay(cfg ScheduleConfig, date time.Time) []Interval {
	if ex, ok := cfg.Exceptions[date.Format(dateKeyLayout)]; ok {
		if ex.Closed {
			return nil
		}
		if len(ex.Intervals) > 0 {
			return sanitize(ex.Intervals)
		}
		// An exception with no ranges overrides the day as closed.
		return nil
	}

	if day, ok := cfg.WeeklySlots[weekdayKey(date.Weekday())]; ok {
		if day.Closed {
			return nil
		}
		return sanitize(day.Slots)
	}

	if cfg.Legacy != nil && !cfg.Legacy.Closed {
		return sanitize([]Interval{{Start: cfg.Legacy.Open, End: cfg.Legacy.Close}})
	}

	return nil
}

func weekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

func sanitize(intervals []Interval) []Interval {
	out := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		start, err1 := ParseClock(iv.Start)
		end, err2 := ParseClock(iv.End)
		if err1 != nil || err2 != nil || end <= start {
			continue
		}
		out = append(out, iv)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseClock parses "HH:MM" into minutes from midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	total := h*60 + m
	if total > 24*60 {
		return 0, fmt.Errorf("clock value %q past midnight", s)
	}

	return total, nil
}

// ClockAt anchors minutes-from-midnight onto a calendar date in loc.
func ClockAt(date time.Time, minutes int, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(minutes) * time.Minute)
}
