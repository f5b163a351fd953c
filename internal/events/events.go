// Package events publishes booking lifecycle notifications. Publishing
// happens after the booking is committed and is best effort.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	MeetingBooked   Type = "meeting.booked"
	MeetingUpdated  Type = "meeting.updated"
	MeetingCanceled Type = "meeting.canceled"
	SeatRegistered  Type = "seat.registered"
	SeatCanceled    Type = "seat.canceled"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	RoomID     int64     `json:"room_id"`
	PersonID   int64     `json:"person_id"`
	BookingID  int64     `json:"booking_id"`
	Title      string    `json:"title,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(t Type, roomID, personID, bookingID int64, start, end time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		RoomID:     roomID,
		PersonID:   personID,
		BookingID:  bookingID,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Nop struct{}

func (Nop) Publish(ctx context.Context, ev Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(ctx context.Context, ev Event) error {
	r.Events = append(r.Events, ev)
	return nil
}
