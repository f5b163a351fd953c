package store

import (
	"context"
	"time"

	"roombook/backend/internal/domain"
)

type RoomRepository interface {
	FindRoom(ctx context.Context, id int64) (domain.Room, error)
	// FindAvailableRoom returns ErrNotFound for soft-deleted rooms.
	FindAvailableRoom(ctx context.Context, id int64) (domain.Room, error)
	CreateRoom(ctx context.Context, room domain.Room) (domain.Room, error)
	SaveRoom(ctx context.Context, room domain.Room) error
	RoomNameExists(ctx context.Context, name string) (bool, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
}

type PersonRepository interface {
	FindPerson(ctx context.Context, id int64) (domain.Person, error)
}

type HistoryQuery struct {
	PersonID int64
	Title    string
	RoomName string
}

type MeetingRepository interface {
	FindMeeting(ctx context.Context, id int64) (domain.Meeting, error)
	ListMeetingsForRoom(ctx context.Context, roomID int64, status domain.MeetingStatus) ([]domain.Meeting, error)
	ListMeetingsForRoomOnDay(ctx context.Context, roomID int64, status domain.MeetingStatus, dayStart, dayEnd time.Time) ([]domain.Meeting, error)
	BookingHistory(ctx context.Context, q HistoryQuery) ([]domain.HistoryRow, error)
	MeetingForPerson(ctx context.Context, personID, meetingID int64) (domain.HistoryRow, error)
}

type SeatRepository interface {
	FindSeatRegistration(ctx context.Context, id int64) (domain.SeatRegistration, error)
	// RegistrationsForDay returns the non-canceled registrations of a room
	// touching [dayStart, dayEnd] in one read.
	RegistrationsForDay(ctx context.Context, roomID int64, dayStart, dayEnd time.Time) ([]domain.SeatRegistration, error)
}

// RoomTx is the set of operations that must run while the room is locked.
type RoomTx interface {
	FindMeeting(ctx context.Context, id int64) (domain.Meeting, error)
	CreateMeeting(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	SaveMeeting(ctx context.Context, m domain.Meeting) error
	ListMeetingsForRoom(ctx context.Context, roomID int64, status domain.MeetingStatus) ([]domain.Meeting, error)
	FindOverlappingMeetings(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]domain.Meeting, error)

	FindSeatRegistration(ctx context.Context, id int64) (domain.SeatRegistration, error)
	CreateSeatRegistration(ctx context.Context, r domain.SeatRegistration) (domain.SeatRegistration, error)
	SaveSeatRegistration(ctx context.Context, r domain.SeatRegistration) error
	AvailableSeats(ctx context.Context, roomID int64, seatsPerRegistration int, now time.Time) (int, error)
	// FindOverlappingRegistration reports the id of a registration of the
	// person in the room with the given status touching [start, end].
	FindOverlappingRegistration(ctx context.Context, roomID, personID int64, status domain.SeatStatus, start, end time.Time) (int64, bool, error)
}

type Transactor interface {
	InRoomTransaction(ctx context.Context, roomID int64, fn func(ctx context.Context, tx RoomTx) error) error
}
