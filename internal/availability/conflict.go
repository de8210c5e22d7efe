package availability

import (
	"iter"
	"time"

	"courtslot/internal/court"
)

// ResolveInput carries everything the conflict resolver needs for one court and date.
// Resolution is a pure function of this input: same input, same output.
type ResolveInput struct {
	Court          *court.Court
	RequestedSport string
	UserID         int
	Slots          iter.Seq[Slot]
	Reservations   []BookedInterval
	Maintenance    []court.MaintenanceWindow
	Now            time.Time
}

// Resolve classifies every candidate slot.
//
// Per slot, in order: a started slot is PAST; an overlap with an active maintenance
// window is MAINTENANCE; an overlapping primary-sport reservation blocks everyone
// (BOOKED, or USER_BOOKED for its owner); a primary-sport request may not share time
// with any reservation; what remains is secondary-with-secondary coexistence, which
// is allowed.
func Resolve(in ResolveInput) []SlotResult {
	capability := in.Court.Capability(in.RequestedSport)

	results := []SlotResult{}
	for slot := range in.Slots {
		results = append(results, resolveSlot(in, capability, slot))
	}
	return results
}

func resolveSlot(in ResolveInput, capability court.SportCapability, slot Slot) SlotResult {
	res := SlotResult{Start: slot.Start, End: slot.End}

	if slot.Start.Before(in.Now) {
		res.Status = StatusPast
		res.Message = "slot has already started"
		return res
	}

	for _, mw := range in.Maintenance {
		if overlaps(slot.Start, slot.End, mw.StartTime, mw.EndTime()) {
			res.Status = StatusMaintenance
			res.Message = "court under maintenance"
			return res
		}
	}

	var overlapping []BookedInterval
	for _, b := range in.Reservations {
		if overlaps(slot.Start, slot.End, b.Start, b.End) {
			overlapping = append(overlapping, b)
		}
	}

	for _, b := range overlapping {
		if b.Sport == in.Court.PrimarySport {
			if b.UserID == in.UserID {
				res.Status = StatusUserBooked
				res.Message = "you already hold this slot"
			} else {
				res.Status = StatusBooked
				res.Message = "reserved for " + b.Sport
			}
			return res
		}
	}

	for _, b := range overlapping {
		if b.UserID == in.UserID {
			res.Status = StatusUserBooked
			res.Message = "you already hold this slot"
			return res
		}
	}

	if capability == court.SportPrimary && len(overlapping) > 0 {
		res.Status = StatusUnavailable
		res.Message = "primary sport requires exclusive use of the court"
		return res
	}

	res.Status = StatusAvailable
	return res
}

// HasConflict is the creation-time form of the same rule, applied to the
// reservations overlapping one requested slot. It must stay in lockstep with
// resolveSlot so availability answers and booking decisions cannot diverge.
func HasConflict(c *court.Court, requestedSport string, overlapping []BookedInterval) bool {
	for _, b := range overlapping {
		if b.Sport == c.PrimarySport {
			return true
		}
	}

	if c.Capability(requestedSport) == court.SportPrimary && len(overlapping) > 0 {
		return true
	}

	return false
}

// Summarize counts slots per status.
func Summarize(results []SlotResult) map[SlotStatus]int {
	summary := make(map[SlotStatus]int)
	for _, r := range results {
		summary[r.Status]++
	}
	return summary
}

// overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
