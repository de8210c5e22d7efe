package availability

import (
	"iter"
	"time"

	"courtslot/internal/center"
)

// GenerateSlots discretizes a day's open intervals into candidate slots of the
// requested duration. Slot starts advance by step, not by duration, so candidates
// overlap on purpose: the conflict resolver filters them, not the generator.
// An interval shorter than the duration yields no slots.
//
// The sequence is lazy and restartable: it closes over immutable inputs, so
// ranging over it twice yields the same slots.
func GenerateSlots(intervals []center.Interval, date time.Time, durationMinutes, stepMinutes int, loc *time.Location) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		if durationMinutes <= 0 || stepMinutes <= 0 {
			return
		}

		for _, iv := range intervals {
			startMin, err := center.ParseClock(iv.Start)
			if err != nil {
				continue
			}
			endMin, err := center.ParseClock(iv.End)
			if err != nil {
				continue
			}

			for s := startMin; s+durationMinutes <= endMin; s += stepMinutes {
				slot := Slot{
					Start: center.ClockAt(date, s, loc),
					End:   center.ClockAt(date, s+durationMinutes, loc),
				}
				if !yield(slot) {
					return
				}
			}
		}
	}
}
