package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// MeetingStatus is what gets persisted. Only Canceled and Scheduled are ever
// stored; the remaining display states are derived from the clock.
type MeetingStatus int16

const (
	MeetingCanceled  MeetingStatus = 0
	MeetingScheduled MeetingStatus = 1
)

type DisplayStatus int16

const (
	DisplayCanceled   DisplayStatus = 0
	DisplayUpcoming   DisplayStatus = 1
	DisplayInProgress DisplayStatus = 2
	DisplayCompleted  DisplayStatus = 3
)

func (s DisplayStatus) String() string {
	switch s {
	case DisplayCanceled:
		return "canceled"
	case DisplayUpcoming:
		return "upcoming"
	case DisplayInProgress:
		return "in_progress"
	case DisplayCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

func (s DisplayStatus) Valid() bool {
	return s >= DisplayCanceled && s <= DisplayCompleted
}

type Meeting struct {
	bun.BaseModel `bun:"table:meetings"`

	ID              int64         `bun:"id,pk,autoincrement"`
	RoomID          int64         `bun:"room_id,notnull"`
	PersonID        int64         `bun:"person_id,notnull"`
	Title           string        `bun:"title,notnull"`
	StartTime       time.Time     `bun:"start_time,notnull"`
	EndTime         time.Time     `bun:"end_time,notnull"`
	Status          MeetingStatus `bun:"status,notnull"`
	ReservationTime time.Time     `bun:"reservation_time,notnull"`
}

func (m Meeting) DisplayStatus(now time.Time) DisplayStatus {
	return displayStatus(m.Status == MeetingCanceled, m.StartTime, m.EndTime, now)
}

func displayStatus(canceled bool, start, end, now time.Time) DisplayStatus {
	switch {
	case canceled:
		return DisplayCanceled
	case now.Before(start):
		return DisplayUpcoming
	case now.After(end):
		return DisplayCompleted
	default:
		return DisplayInProgress
	}
}

// HistoryRow is a meeting joined with its room, as shown in a person's
// booking history.
type HistoryRow struct {
	MeetingID       int64
	RoomName        string
	Title           string
	StartTime       time.Time
	EndTime         time.Time
	ReservationTime time.Time
	Canceled        bool
	Status          DisplayStatus
}

func (h HistoryRow) WithStatus(now time.Time) HistoryRow {
	h.Status = displayStatus(h.Canceled, h.StartTime, h.EndTime, now)
	return h
}
