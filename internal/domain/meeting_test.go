package domain

import (
	"testing"
	"time"
)

func TestMeetingDisplayStatus(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	m := Meeting{Status: MeetingScheduled, StartTime: start, EndTime: start.Add(time.Hour)}

	if got := m.DisplayStatus(start.Add(-time.Minute)); got != DisplayUpcoming {
		t.Fatalf("status = %s, want upcoming", got)
	}
	if got := m.DisplayStatus(start); got != DisplayInProgress {
		t.Fatalf("status = %s, want in_progress", got)
	}
	if got := m.DisplayStatus(start.Add(time.Hour)); got != DisplayInProgress {
		t.Fatalf("status = %s, want in_progress", got)
	}
	if got := m.DisplayStatus(start.Add(2 * time.Hour)); got != DisplayCompleted {
		t.Fatalf("status = %s, want completed", got)
	}

	m.Status = MeetingCanceled
	if got := m.DisplayStatus(start.Add(-time.Minute)); got != DisplayCanceled {
		t.Fatalf("status = %s, want canceled", got)
	}
}

func TestHistoryRowWithStatus(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	row := HistoryRow{StartTime: start, EndTime: start.Add(time.Hour)}

	if got := row.WithStatus(start.Add(2 * time.Hour)).Status; got != DisplayCompleted {
		t.Fatalf("status = %s, want completed", got)
	}
	row.Canceled = true
	if got := row.WithStatus(start.Add(-time.Hour)).Status; got != DisplayCanceled {
		t.Fatalf("status = %s, want canceled", got)
	}
}

func TestDisplayStatusValid(t *testing.T) {
	for _, s := range []DisplayStatus{0, 1, 2, 3} {
		if !s.Valid() {
			t.Fatalf("%d reported invalid", s)
		}
	}
	for _, s := range []DisplayStatus{-1, 4} {
		if s.Valid() {
			t.Fatalf("%d reported valid", s)
		}
	}
}
