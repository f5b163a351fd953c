package meetings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"roombook/backend/internal/cache"
	"roombook/backend/internal/domain"
	"roombook/backend/internal/events"
	"roombook/backend/internal/service"
	"roombook/backend/internal/store"
)

const (
	MinDuration     = 15 * time.Minute
	CancelLeadTime  = 15 * time.Minute
	ReservationGap  = 15 * time.Minute
	conflictMessage = "Meeting conflict detected. The requested time slot is not available."
)

type Repository interface {
	FindRoom(ctx context.Context, id int64) (domain.Room, error)
	FindPerson(ctx context.Context, id int64) (domain.Person, error)
	FindMeeting(ctx context.Context, id int64) (domain.Meeting, error)
	BookingHistory(ctx context.Context, q store.HistoryQuery) ([]domain.HistoryRow, error)
	MeetingForPerson(ctx context.Context, personID, meetingID int64) (domain.HistoryRow, error)
	InRoomTransaction(ctx context.Context, roomID int64, fn func(ctx context.Context, tx store.RoomTx) error) error
}

type Service struct {
	repo      Repository
	clock     service.Clock
	loc       *time.Location
	schedules *cache.Schedules
	publisher events.Publisher
	log       *slog.Logger
}

type Option func(*Service)

func WithClock(c service.Clock) Option { return func(s *Service) { s.clock = c } }

func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func WithSchedules(c *cache.Schedules) Option { return func(s *Service) { s.schedules = c } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }

func WithLogger(log *slog.Logger) Option { return func(s *Service) { s.log = log } }

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		clock:     service.SystemClock{},
		loc:       time.UTC,
		publisher: events.Nop{},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("component", "service.meetings"))
	return s
}

type BookInput struct {
	RoomID    int64
	PersonID  int64
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

func (s *Service) Book(ctx context.Context, in BookInput) (domain.Meeting, error) {
	now := s.clock.Now()
	if err := s.validateBook(in, now); err != nil {
		return domain.Meeting{}, err
	}

	room, err := s.repo.FindRoom(ctx, in.RoomID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Meeting{}, service.NotFound("Room not found")
	}
	if err != nil {
		return domain.Meeting{}, service.Internal("find room", err)
	}
	if room.Deleted() {
		return domain.Meeting{}, service.Forbidden("Scheduling meetings in soft-deleted room is not allowed.")
	}

	if _, err := s.repo.FindPerson(ctx, in.PersonID); errors.Is(err, store.ErrNotFound) {
		return domain.Meeting{}, service.NotFound("Person not found.")
	} else if err != nil {
		return domain.Meeting{}, service.Internal("find person", err)
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()

	var out domain.Meeting
	err = s.repo.InRoomTransaction(ctx, room.ID, func(ctx context.Context, tx store.RoomTx) error {
		scheduled, err := tx.ListMeetingsForRoom(ctx, room.ID, domain.MeetingScheduled)
		if err != nil {
			return err
		}
		if other, reason := domain.FindConflict(scheduled, start, end); reason != domain.NoConflict {
			s.log.Info(
				"meeting conflict",
				slog.Int64("room_id", room.ID),
				slog.Int64("conflicting_meeting_id", other.ID),
				slog.String("reason", reason.String()),
			)
			return service.Conflict(conflictMessage)
		}

		m, err := tx.CreateMeeting(ctx, domain.Meeting{
			RoomID:          room.ID,
			PersonID:        in.PersonID,
			Title:           strings.TrimSpace(in.Title),
			StartTime:       start,
			EndTime:         end,
			Status:          domain.MeetingScheduled,
			ReservationTime: now.UTC(),
		})
		if errors.Is(err, store.ErrConflict) {
			return service.Conflict(conflictMessage)
		}
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Meeting{}, service.Internal("book meeting", err)
	}

	if s.schedules != nil {
		s.schedules.Invalidate(ctx, out.RoomID)
	}
	s.publish(ctx, events.New(events.MeetingBooked, out.RoomID, out.PersonID, out.ID, out.StartTime, out.EndTime), out.Title)
	return out, nil
}

func (s *Service) validateBook(in BookInput, now time.Time) error {
	if in.RoomID <= 0 {
		return service.Validation("Room ID must be a positive number and not null.")
	}
	if in.PersonID <= 0 {
		return service.Validation("Person ID must be a positive number and not null.")
	}
	if !validTitle(in.Title) {
		return service.Validation("Title must be a non-empty string with length less than 255.")
	}
	if in.StartTime.IsZero() {
		return service.Validation("Start time must be not null.")
	}
	if in.EndTime.IsZero() {
		return service.Validation("End time must be not null.")
	}
	if in.EndTime.Sub(in.StartTime) < MinDuration {
		return service.Validation("Meeting duration must be at least 15 minutes.")
	}
	if now.After(in.StartTime) {
		return service.Validation("Start time must be after reservation time.")
	}
	if !domain.SameDay(in.StartTime, in.EndTime, s.loc) {
		return service.Validation("End time must be within the same day as start time and before 11:59:59 PM.")
	}
	return nil
}

type UpdateInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

func (s *Service) Update(ctx context.Context, meetingID, personID int64, in UpdateInput) (domain.Meeting, error) {
	var out domain.Meeting
	err := s.inMeetingRoom(ctx, meetingID, "No meeting schedule found", func(ctx context.Context, tx store.RoomTx, m domain.Meeting) error {
		now := s.clock.Now()
		if err := s.checkUpdate(ctx, m, personID, in, now); err != nil {
			return err
		}

		start := in.StartTime.UTC()
		end := in.EndTime.UTC()
		overlapping, err := tx.FindOverlappingMeetings(ctx, m.RoomID, start, end, m.ID)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return service.BusinessRule("The meeting schedule conflicts with existing meetings in the same room")
		}
		if !validTitle(in.Title) {
			return service.BusinessRule("The title cannot be blank and must not be larger than 255 characters")
		}

		m.Title = strings.TrimSpace(in.Title)
		m.StartTime = start
		m.EndTime = end
		m.ReservationTime = now.UTC()
		if err := tx.SaveMeeting(ctx, m); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return service.BusinessRule("The meeting schedule conflicts with existing meetings in the same room")
			}
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Meeting{}, service.Internal("update meeting", err)
	}

	if s.schedules != nil {
		s.schedules.Invalidate(ctx, out.RoomID)
	}
	s.publish(ctx, events.New(events.MeetingUpdated, out.RoomID, out.PersonID, out.ID, out.StartTime, out.EndTime), out.Title)
	return out, nil
}

func (s *Service) checkUpdate(ctx context.Context, m domain.Meeting, personID int64, in UpdateInput, now time.Time) error {
	if m.PersonID != personID {
		return service.BusinessRule("You do not have the right to update this meeting schedule.")
	}
	if now.After(m.EndTime) {
		return service.BusinessRule("The meeting has taken place and cannot be edited")
	}
	if !now.Before(m.StartTime) {
		return service.BusinessRule("The meeting is in progress and cannot be edited.")
	}
	deleted, err := s.roomDeleted(ctx, m.RoomID)
	if err != nil {
		return err
	}
	if deleted {
		return service.BusinessRule("Cannot update the meeting because the meeting room has been deleted.")
	}

	start, end := in.StartTime, in.EndTime
	switch {
	case start.IsZero() || end.IsZero():
		return service.BusinessRule("start time and end time cannot be null")
	case start.Before(now) || end.Before(now):
		return service.BusinessRule("The meeting time cannot be in the past")
	case start.After(end):
		return service.BusinessRule("Start time must be before end time.")
	case start.Add(MinDuration).After(end):
		return service.BusinessRule("The minimum meeting duration is 15 minutes")
	case !domain.SameDay(start, end, s.loc):
		return service.BusinessRule("The meeting cannot span across days.")
	case m.Status == domain.MeetingCanceled:
		return service.BusinessRule("The meeting is canceled")
	case m.ReservationTime.Add(ReservationGap).After(start):
		return service.BusinessRule("The meeting start time must be at least 15 minutes after the last reservation time")
	}
	return nil
}

func (s *Service) Cancel(ctx context.Context, meetingID, personID int64) error {
	var out domain.Meeting
	err := s.inMeetingRoom(ctx, meetingID, "No meeting schedule found.", func(ctx context.Context, tx store.RoomTx, m domain.Meeting) error {
		now := s.clock.Now()
		if m.PersonID != personID {
			return service.BusinessRule("You do not have the right to cancel this meeting schedule.")
		}
		if m.StartTime.Before(now.Add(CancelLeadTime)) {
			return service.BusinessRule("Cancellation must be 15 minutes in advance")
		}
		deleted, err := s.roomDeleted(ctx, m.RoomID)
		if err != nil {
			return err
		}
		if deleted {
			return service.BusinessRule("Cannot cancel the appointment because the meeting room has been deleted")
		}
		if m.Status == domain.MeetingCanceled {
			return service.BusinessRule("There is no scheduled meeting to cancel")
		}

		m.Status = domain.MeetingCanceled
		if err := tx.SaveMeeting(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return service.Internal("cancel meeting", err)
	}

	if s.schedules != nil {
		s.schedules.Invalidate(ctx, out.RoomID)
	}
	s.publish(ctx, events.New(events.MeetingCanceled, out.RoomID, out.PersonID, out.ID, out.StartTime, out.EndTime), out.Title)
	return nil
}

// inMeetingRoom looks the meeting up to learn its room, then reloads it
// under that room's lock so the rule chain sees committed state.
func (s *Service) inMeetingRoom(ctx context.Context, meetingID int64, notFound string, fn func(ctx context.Context, tx store.RoomTx, m domain.Meeting) error) error {
	m, err := s.repo.FindMeeting(ctx, meetingID)
	if errors.Is(err, store.ErrNotFound) {
		return service.BusinessRule(notFound)
	}
	if err != nil {
		return err
	}

	return s.repo.InRoomTransaction(ctx, m.RoomID, func(ctx context.Context, tx store.RoomTx) error {
		locked, err := tx.FindMeeting(ctx, meetingID)
		if errors.Is(err, store.ErrNotFound) {
			return service.BusinessRule(notFound)
		}
		if err != nil {
			return err
		}
		return fn(ctx, tx, locked)
	})
}

func (s *Service) roomDeleted(ctx context.Context, roomID int64) (bool, error) {
	room, err := s.repo.FindRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return room.Deleted(), nil
}

func (s *Service) publish(ctx context.Context, ev events.Event, title string) {
	ev.Title = title
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", slog.Any("err", err), slog.String("event", string(ev.Type)), slog.Int64("booking_id", ev.BookingID))
	}
}

func validTitle(title string) bool {
	return strings.TrimSpace(title) != "" && utf8.RuneCountInString(strings.TrimSpace(title)) <= domain.MaxNameLength
}
