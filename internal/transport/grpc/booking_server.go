package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/service"
	"roombook/backend/internal/service/meetings"
	"roombook/backend/internal/service/rooms"
	"roombook/backend/internal/service/seats"
)

type meetingsService interface {
	Book(ctx context.Context, in meetings.BookInput) (domain.Meeting, error)
	Update(ctx context.Context, meetingID, personID int64, in meetings.UpdateInput) (domain.Meeting, error)
	Cancel(ctx context.Context, meetingID, personID int64) error
	History(ctx context.Context, q meetings.HistoryQuery) ([]domain.HistoryRow, error)
	Get(ctx context.Context, personID, meetingID int64) (domain.HistoryRow, error)
}

type seatsService interface {
	Register(ctx context.Context, in seats.RegisterInput) (domain.SeatRegistration, error)
	Cancel(ctx context.Context, registrationID, personID int64) error
	Statistics(ctx context.Context, roomID int64, date time.Time, blockMinutes int) (seats.Statistics, error)
}

type roomsService interface {
	Search(ctx context.Context, q rooms.SearchQuery) ([]rooms.RoomWithSchedule, error)
	Add(ctx context.Context, in rooms.AddRoomInput) (domain.Room, error)
	Update(ctx context.Context, roomID int64, in rooms.UpdateRoomInput) (domain.Room, error)
	Delete(ctx context.Context, roomID int64) error
	Detail(ctx context.Context, roomID int64) (rooms.RoomWithSchedule, error)
}

type BookingServer struct {
	meetings meetingsService
	seats    seatsService
	rooms    roomsService
	loc      *time.Location
	log      *slog.Logger
}

func NewBookingServer(m meetingsService, s seatsService, r roomsService, loc *time.Location, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BookingServer{
		meetings: m,
		seats:    s,
		rooms:    r,
		loc:      loc,
		log:      log.With(slog.String("component", "grpc.booking")),
	}
}

// rpcLog tags the server logger with the method and, when the RequestID
// interceptor ran, the request id.
func (s *BookingServer) rpcLog(ctx context.Context, rpc string) *slog.Logger {
	log := s.log.With(slog.String("rpc", rpc))
	if id := RequestIDFromContext(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	return log
}

// toStatus maps a service error onto a gRPC status. Internal failures are
// logged here and reported without detail.
func toStatus(log *slog.Logger, msg string, err error, attrs ...any) error {
	var code codes.Code
	switch service.KindOf(err) {
	case service.KindValidation, service.KindInvalidFormat:
		code = codes.InvalidArgument
	case service.KindNotFound:
		code = codes.NotFound
	case service.KindForbidden:
		code = codes.PermissionDenied
	case service.KindConflict:
		code = codes.AlreadyExists
	case service.KindBusinessRule:
		code = codes.FailedPrecondition
	default:
		log.Error(msg+" failed", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.Internal, "internal error")
	}
	if code == codes.InvalidArgument {
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
	} else {
		log.Info(msg+" rejected", append([]any{slog.String("reason", err.Error())}, attrs...)...)
	}
	return status.Error(code, err.Error())
}

func (s *BookingServer) BookMeeting(ctx context.Context, req *BookMeetingRequest) (*MeetingResponse, error) {
	log := s.rpcLog(ctx, "BookMeeting")

	m, err := s.meetings.Book(ctx, meetings.BookInput{
		RoomID:    req.RoomID,
		PersonID:  req.PersonID,
		Title:     req.Title,
		StartTime: deref(req.StartTime),
		EndTime:   deref(req.EndTime),
	})
	if err != nil {
		return nil, toStatus(log, "meeting book", err, slog.Int64("room_id", req.RoomID), slog.Int64("person_id", req.PersonID))
	}

	log.Info(
		"meeting booked",
		slog.Int64("meeting_id", m.ID),
		slog.Int64("room_id", m.RoomID),
		slog.Time("start_time", m.StartTime),
		slog.Time("end_time", m.EndTime),
	)
	return &MeetingResponse{Meeting: toMeeting(m)}, nil
}

func (s *BookingServer) UpdateMeeting(ctx context.Context, req *UpdateMeetingRequest) (*MeetingResponse, error) {
	log := s.rpcLog(ctx, "UpdateMeeting")

	m, err := s.meetings.Update(ctx, req.MeetingID, req.PersonID, meetings.UpdateInput{
		Title:     req.Title,
		StartTime: deref(req.StartTime),
		EndTime:   deref(req.EndTime),
	})
	if err != nil {
		return nil, toStatus(log, "meeting update", err, slog.Int64("meeting_id", req.MeetingID), slog.Int64("person_id", req.PersonID))
	}

	log.Info("meeting updated", slog.Int64("meeting_id", m.ID), slog.Time("start_time", m.StartTime), slog.Time("end_time", m.EndTime))
	return &MeetingResponse{Meeting: toMeeting(m)}, nil
}

func (s *BookingServer) CancelMeeting(ctx context.Context, req *CancelMeetingRequest) (*Empty, error) {
	log := s.rpcLog(ctx, "CancelMeeting")

	if err := s.meetings.Cancel(ctx, req.MeetingID, req.PersonID); err != nil {
		return nil, toStatus(log, "meeting cancel", err, slog.Int64("meeting_id", req.MeetingID), slog.Int64("person_id", req.PersonID))
	}

	log.Info("meeting canceled", slog.Int64("meeting_id", req.MeetingID), slog.Int64("person_id", req.PersonID))
	return &Empty{}, nil
}

func (s *BookingServer) ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error) {
	log := s.rpcLog(ctx, "ListBookings")

	q := meetings.HistoryQuery{
		PersonID:    req.PersonID,
		Title:       req.Title,
		RoomName:    req.RoomName,
		SortByStart: req.SortByStart,
	}
	if req.Status != nil {
		st := domain.DisplayStatus(*req.Status)
		q.Status = &st
	}

	rows, err := s.meetings.History(ctx, q)
	if err != nil {
		return nil, toStatus(log, "booking history", err, slog.Int64("person_id", req.PersonID))
	}

	out := make([]Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, toBooking(r))
	}
	log.Debug("bookings listed", slog.Int64("person_id", req.PersonID), slog.Int("count", len(out)))
	return &ListBookingsResponse{Bookings: out}, nil
}

func (s *BookingServer) GetBooking(ctx context.Context, req *GetBookingRequest) (*BookingResponse, error) {
	log := s.rpcLog(ctx, "GetBooking")

	row, err := s.meetings.Get(ctx, req.PersonID, req.MeetingID)
	if err != nil {
		return nil, toStatus(log, "booking get", err, slog.Int64("person_id", req.PersonID), slog.Int64("meeting_id", req.MeetingID))
	}
	return &BookingResponse{Booking: toBooking(row)}, nil
}

func (s *BookingServer) RegisterSeat(ctx context.Context, req *RegisterSeatRequest) (*SeatRegistrationResponse, error) {
	log := s.rpcLog(ctx, "RegisterSeat")

	reg, err := s.seats.Register(ctx, seats.RegisterInput{
		RoomID:    req.RoomID,
		PersonID:  req.PersonID,
		StartTime: deref(req.StartTime),
		EndTime:   deref(req.EndTime),
	})
	if err != nil {
		return nil, toStatus(log, "seat register", err, slog.Int64("room_id", req.RoomID), slog.Int64("person_id", req.PersonID))
	}

	log.Info("seat registered", slog.Int64("registration_id", reg.ID), slog.Int64("room_id", reg.RoomID), slog.Int64("person_id", reg.PersonID))
	return &SeatRegistrationResponse{Registration: toSeatRegistration(reg)}, nil
}

func (s *BookingServer) CancelSeat(ctx context.Context, req *CancelSeatRequest) (*Empty, error) {
	log := s.rpcLog(ctx, "CancelSeat")

	if err := s.seats.Cancel(ctx, req.RegistrationID, req.PersonID); err != nil {
		return nil, toStatus(log, "seat cancel", err, slog.Int64("registration_id", req.RegistrationID), slog.Int64("person_id", req.PersonID))
	}

	log.Info("seat canceled", slog.Int64("registration_id", req.RegistrationID), slog.Int64("person_id", req.PersonID))
	return &Empty{}, nil
}

func (s *BookingServer) SeatStatistics(ctx context.Context, req *SeatStatisticsRequest) (*SeatStatisticsResponse, error) {
	log := s.rpcLog(ctx, "SeatStatistics")

	var date time.Time
	if req.Date != "" {
		d, err := time.ParseInLocation(time.DateOnly, req.Date, s.loc)
		if err != nil {
			log.Warn("invalid request", slog.String("reason", "invalid_date"), slog.String("date", req.Date))
			return nil, status.Error(codes.InvalidArgument, "Invalid format param request.")
		}
		date = d
	}

	stats, err := s.seats.Statistics(ctx, req.RoomID, date, req.BlockMinutes)
	if err != nil {
		return nil, toStatus(log, "seat statistics", err, slog.Int64("room_id", req.RoomID))
	}
	return toStatistics(stats), nil
}

func (s *BookingServer) SearchRooms(ctx context.Context, req *SearchRoomsRequest) (*RoomsResponse, error) {
	log := s.rpcLog(ctx, "SearchRooms")

	found, err := s.rooms.Search(ctx, rooms.SearchQuery{
		From:        deref(req.From),
		To:          deref(req.To),
		MinCapacity: req.MinCapacity,
		MaxCapacity: req.MaxCapacity,
		RoomName:    req.RoomName,
	})
	if err != nil {
		return nil, toStatus(log, "room search", err)
	}

	out := make([]RoomSchedule, 0, len(found))
	for _, r := range found {
		out = append(out, toRoomSchedule(r))
	}
	log.Debug("rooms searched", slog.Int("count", len(out)))
	return &RoomsResponse{Rooms: out}, nil
}

func (s *BookingServer) AddRoom(ctx context.Context, req *AddRoomRequest) (*RoomResponse, error) {
	log := s.rpcLog(ctx, "AddRoom")

	room, err := s.rooms.Add(ctx, rooms.AddRoomInput{Name: req.Name, Capacity: req.Capacity})
	if err != nil {
		return nil, toStatus(log, "room add", err, slog.String("name", req.Name))
	}

	log.Info("room added", slog.Int64("room_id", room.ID), slog.String("name", room.Name))
	return &RoomResponse{Room: toRoom(room)}, nil
}

func (s *BookingServer) UpdateRoom(ctx context.Context, req *UpdateRoomRequest) (*RoomResponse, error) {
	log := s.rpcLog(ctx, "UpdateRoom")

	room, err := s.rooms.Update(ctx, req.RoomID, rooms.UpdateRoomInput{
		Name:     req.Name,
		Capacity: req.Capacity,
		Status:   domain.RoomStatus(req.Status),
	})
	if err != nil {
		return nil, toStatus(log, "room update", err, slog.Int64("room_id", req.RoomID))
	}

	log.Info("room updated", slog.Int64("room_id", room.ID))
	return &RoomResponse{Room: toRoom(room)}, nil
}

func (s *BookingServer) DeleteRoom(ctx context.Context, req *RoomIDRequest) (*Empty, error) {
	log := s.rpcLog(ctx, "DeleteRoom")

	if err := s.rooms.Delete(ctx, req.RoomID); err != nil {
		return nil, toStatus(log, "room delete", err, slog.Int64("room_id", req.RoomID))
	}

	log.Info("room deleted", slog.Int64("room_id", req.RoomID))
	return &Empty{}, nil
}

func (s *BookingServer) GetRoom(ctx context.Context, req *RoomIDRequest) (*RoomScheduleResponse, error) {
	log := s.rpcLog(ctx, "GetRoom")

	room, err := s.rooms.Detail(ctx, req.RoomID)
	if err != nil {
		return nil, toStatus(log, "room detail", err, slog.Int64("room_id", req.RoomID))
	}
	return &RoomScheduleResponse{Room: toRoomSchedule(room)}, nil
}
