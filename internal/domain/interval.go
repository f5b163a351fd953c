package domain

import "time"

// Overlaps treats both intervals as closed, so intervals that only touch at
// an endpoint overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

type ConflictReason int

const (
	NoConflict ConflictReason = iota
	ConflictExact
	ConflictPartial
	ConflictAdjacent
	ConflictEnclosed
)

func (r ConflictReason) String() string {
	switch r {
	case ConflictExact:
		return "exact"
	case ConflictPartial:
		return "partial"
	case ConflictAdjacent:
		return "adjacent"
	case ConflictEnclosed:
		return "enclosed"
	default:
		return "none"
	}
}

func HasConflict(existing []Meeting, start, end time.Time) bool {
	_, reason := FindConflict(existing, start, end)
	return reason != NoConflict
}

// FindConflict returns the first scheduled meeting that rejects [start,end)
// and the rule that rejected it.
func FindConflict(existing []Meeting, start, end time.Time) (Meeting, ConflictReason) {
	for _, m := range existing {
		if m.Status != MeetingScheduled {
			continue
		}
		if r := conflictWith(m.StartTime, m.EndTime, start, end); r != NoConflict {
			return m, r
		}
	}
	return Meeting{}, NoConflict
}

func conflictWith(es, ee, start, end time.Time) ConflictReason {
	if start.Equal(es) && end.Equal(ee) {
		return ConflictExact
	}
	if (start.After(es) && start.Before(ee)) || (end.After(es) && end.Before(ee)) {
		return ConflictPartial
	}
	if start.Equal(ee) || end.Equal(es) {
		return ConflictAdjacent
	}
	// The candidate swallowing an existing meeting, or sharing one endpoint
	// with it, is enclosure seen from the other side.
	if !start.After(es) && !end.Before(ee) {
		return ConflictEnclosed
	}
	return NoConflict
}
