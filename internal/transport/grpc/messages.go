package grpc

import (
	"time"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/service/rooms"
	"roombook/backend/internal/service/seats"
)

type Meeting struct {
	ID              int64     `json:"id"`
	RoomID          int64     `json:"room_id"`
	PersonID        int64     `json:"person_id"`
	Title           string    `json:"title"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	ReservationTime time.Time `json:"reservation_time"`
	Status          int16     `json:"status"`
}

type Booking struct {
	MeetingID       int64     `json:"meeting_id"`
	RoomName        string    `json:"room_name"`
	Title           string    `json:"title"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	ReservationTime time.Time `json:"reservation_time"`
	Status          int16     `json:"status"`
	StatusName      string    `json:"status_name"`
}

type Room struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Capacity  int        `json:"capacity"`
	Status    int16      `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type RoomSchedule struct {
	Room     Room      `json:"room"`
	Meetings []Meeting `json:"meetings"`
}

type SeatRegistration struct {
	ID               int64     `json:"id"`
	RoomID           int64     `json:"room_id"`
	PersonID         int64     `json:"person_id"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	RegistrationTime time.Time `json:"registration_time"`
	Status           int16     `json:"status"`
}

type OccupancyBlock struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`
}

type BookMeetingRequest struct {
	RoomID    int64      `json:"room_id"`
	PersonID  int64      `json:"person_id"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type MeetingResponse struct {
	Meeting Meeting `json:"meeting"`
}

type UpdateMeetingRequest struct {
	MeetingID int64      `json:"meeting_id"`
	PersonID  int64      `json:"person_id"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type CancelMeetingRequest struct {
	MeetingID int64 `json:"meeting_id"`
	PersonID  int64 `json:"person_id"`
}

type Empty struct{}

type ListBookingsRequest struct {
	PersonID    int64  `json:"person_id"`
	Title       string `json:"title"`
	RoomName    string `json:"room_name"`
	Status      *int16 `json:"status"`
	SortByStart bool   `json:"sort_by_start"`
}

type ListBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
}

type GetBookingRequest struct {
	PersonID  int64 `json:"person_id"`
	MeetingID int64 `json:"meeting_id"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
}

type RegisterSeatRequest struct {
	RoomID    int64      `json:"room_id"`
	PersonID  int64      `json:"person_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type SeatRegistrationResponse struct {
	Registration SeatRegistration `json:"registration"`
}

type CancelSeatRequest struct {
	RegistrationID int64 `json:"registration_id"`
	PersonID       int64 `json:"person_id"`
}

// SeatStatisticsRequest.Date is a calendar date (YYYY-MM-DD) in the facility
// timezone.
type SeatStatisticsRequest struct {
	RoomID       int64  `json:"room_id"`
	Date         string `json:"date"`
	BlockMinutes int    `json:"block_minutes"`
}

type SeatStatisticsResponse struct {
	RoomID int64            `json:"room_id"`
	Date   time.Time        `json:"date"`
	Blocks []OccupancyBlock `json:"blocks"`
}

type SearchRoomsRequest struct {
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	MinCapacity *int       `json:"min_capacity"`
	MaxCapacity *int       `json:"max_capacity"`
	RoomName    *string    `json:"room_name"`
}

type RoomsResponse struct {
	Rooms []RoomSchedule `json:"rooms"`
}

type AddRoomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type RoomResponse struct {
	Room Room `json:"room"`
}

type UpdateRoomRequest struct {
	RoomID   int64  `json:"room_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Status   int16  `json:"status"`
}

type RoomIDRequest struct {
	RoomID int64 `json:"room_id"`
}

type RoomScheduleResponse struct {
	Room RoomSchedule `json:"room"`
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func toMeeting(m domain.Meeting) Meeting {
	return Meeting{
		ID:              m.ID,
		RoomID:          m.RoomID,
		PersonID:        m.PersonID,
		Title:           m.Title,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		ReservationTime: m.ReservationTime,
		Status:          int16(m.Status),
	}
}

func toBooking(h domain.HistoryRow) Booking {
	return Booking{
		MeetingID:       h.MeetingID,
		RoomName:        h.RoomName,
		Title:           h.Title,
		StartTime:       h.StartTime,
		EndTime:         h.EndTime,
		ReservationTime: h.ReservationTime,
		Status:          int16(h.Status),
		StatusName:      h.Status.String(),
	}
}

func toRoom(r domain.Room) Room {
	return Room{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		Status:    int16(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toRoomSchedule(r rooms.RoomWithSchedule) RoomSchedule {
	out := RoomSchedule{Room: toRoom(r.Room), Meetings: make([]Meeting, 0, len(r.Meetings))}
	for _, m := range r.Meetings {
		out.Meetings = append(out.Meetings, toMeeting(m))
	}
	return out
}

func toSeatRegistration(r domain.SeatRegistration) SeatRegistration {
	return SeatRegistration{
		ID:               r.ID,
		RoomID:           r.RoomID,
		PersonID:         r.PersonID,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		RegistrationTime: r.RegistrationTime,
		Status:           int16(r.Status),
	}
}

func toStatistics(s seats.Statistics) *SeatStatisticsResponse {
	out := &SeatStatisticsResponse{RoomID: s.RoomID, Date: s.Date, Blocks: make([]OccupancyBlock, 0, len(s.Blocks))}
	for _, b := range s.Blocks {
		out.Blocks = append(out.Blocks, OccupancyBlock{Start: b.Start, End: b.End, Count: b.Count})
	}
	return out
}
