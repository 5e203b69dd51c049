package timeslot

import "time"

// TimeSlot represents a half-open interval of time occupied by an appointment
// or considered for one.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// New builds a slot from a start instant and a duration in minutes.
func New(start time.Time, durationMinutes int) TimeSlot {
	return TimeSlot{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}
}

// Duration returns the length of the slot.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether two slots collide for scheduling purposes.
//
// The test is deliberately spelled out as four clauses rather than the
// generic max(start) < min(end) comparison: two slots that begin at the
// identical instant always conflict, regardless of duration. Scheduling
// callers rely on that boundary behaviour.
func Overlaps(a, b TimeSlot) bool {
	// Identical start instants always conflict.
	if a.Start.Equal(b.Start) {
		return true
	}
	// b starts strictly inside a.
	if b.Start.After(a.Start) && b.Start.Before(a.End) {
		return true
	}
	// b ends strictly inside a.
	if b.End.After(a.Start) && b.End.Before(a.End) {
		return true
	}
	// b fully contains a.
	if !b.Start.After(a.Start) && !b.End.Before(a.End) {
		return true
	}
	return false
}

// Buffered expands a slot by the given number of minutes on each side.
// Conflict scans use the buffered slot so that back-to-back bookings keep a
// non-bookable margin around the actual service time.
func Buffered(s TimeSlot, beforeMinutes, afterMinutes int) TimeSlot {
	return TimeSlot{
		Start: s.Start.Add(-time.Duration(beforeMinutes) * time.Minute),
		End:   s.End.Add(time.Duration(afterMinutes) * time.Minute),
	}
}
