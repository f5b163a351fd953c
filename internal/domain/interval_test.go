package domain

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	tests := []struct {
		name       string
		aS, aE     int
		bS, bE     int
		wantResult bool
	}{
		{name: "disjoint before", aS: 0, aE: 10, bS: 20, bE: 30, wantResult: false},
		{name: "disjoint after", aS: 40, aE: 50, bS: 20, bE: 30, wantResult: false},
		{name: "touching end", aS: 0, aE: 20, bS: 20, bE: 30, wantResult: true},
		{name: "touching start", aS: 30, aE: 40, bS: 20, bE: 30, wantResult: true},
		{name: "partial", aS: 15, aE: 25, bS: 20, bE: 30, wantResult: true},
		{name: "contained", aS: 22, aE: 28, bS: 20, bE: 30, wantResult: true},
		{name: "containing", aS: 10, aE: 40, bS: 20, bE: 30, wantResult: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(at(tt.aS), at(tt.aE), at(tt.bS), at(tt.bE))
			if got != tt.wantResult {
				t.Fatalf("Overlaps = %v, want %v", got, tt.wantResult)
			}
			if rev := Overlaps(at(tt.bS), at(tt.bE), at(tt.aS), at(tt.aE)); rev != got {
				t.Fatalf("Overlaps not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

func TestSameDay_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	a := time.Date(2026, 3, 2, 16, 30, 0, 0, time.UTC) // 23:30 local
	b := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC) // 00:30 next day local

	if !SameDay(a, b, time.UTC) {
		t.Fatalf("expected same UTC day")
	}
	if SameDay(a, b, loc) {
		t.Fatalf("expected different local days")
	}
}

func TestFindConflict_Rules(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	existing := []Meeting{{
		ID:        1,
		RoomID:    1,
		Status:    MeetingScheduled,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}}
	at := func(min int) time.Time { return start.Add(time.Duration(min) * time.Minute) }

	tests := []struct {
		name   string
		s, e   int
		reason ConflictReason
	}{
		{name: "exact", s: 0, e: 60, reason: ConflictExact},
		{name: "start inside", s: 30, e: 90, reason: ConflictPartial},
		{name: "end inside", s: -30, e: 30, reason: ConflictPartial},
		{name: "strictly inside", s: 10, e: 50, reason: ConflictPartial},
		{name: "adjacent after", s: 60, e: 90, reason: ConflictAdjacent},
		{name: "adjacent before", s: -30, e: 0, reason: ConflictAdjacent},
		{name: "covers existing", s: -10, e: 70, reason: ConflictEnclosed},
		{name: "same start longer", s: 0, e: 90, reason: ConflictEnclosed},
		{name: "free before", s: -60, e: -15, reason: NoConflict},
		{name: "free after", s: 61, e: 120, reason: NoConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reason := FindConflict(existing, at(tt.s), at(tt.e))
			if reason != tt.reason {
				t.Fatalf("reason = %s, want %s", reason, tt.reason)
			}
			if HasConflict(existing, at(tt.s), at(tt.e)) != (tt.reason != NoConflict) {
				t.Fatalf("HasConflict disagrees with FindConflict")
			}
		})
	}
}

func TestFindConflict_IgnoresCanceled(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	existing := []Meeting{{
		ID:        1,
		Status:    MeetingCanceled,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}}

	if HasConflict(existing, start, start.Add(time.Hour)) {
		t.Fatalf("canceled meeting must not conflict")
	}
}
