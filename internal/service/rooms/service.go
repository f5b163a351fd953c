package rooms

import (
	"context"
	"log/slog"
	"time"

	"roombook/backend/internal/cache"
	"roombook/backend/internal/domain"
	"roombook/backend/internal/service"
)

type Repository interface {
	FindRoom(ctx context.Context, id int64) (domain.Room, error)
	FindAvailableRoom(ctx context.Context, id int64) (domain.Room, error)
	CreateRoom(ctx context.Context, room domain.Room) (domain.Room, error)
	SaveRoom(ctx context.Context, room domain.Room) error
	RoomNameExists(ctx context.Context, name string) (bool, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	ListMeetingsForRoom(ctx context.Context, roomID int64, status domain.MeetingStatus) ([]domain.Meeting, error)
	ListMeetingsForRoomOnDay(ctx context.Context, roomID int64, status domain.MeetingStatus, dayStart, dayEnd time.Time) ([]domain.Meeting, error)
}

type Service struct {
	repo      Repository
	clock     service.Clock
	loc       *time.Location
	schedules *cache.Schedules
	log       *slog.Logger
}

type Option func(*Service)

func WithClock(c service.Clock) Option { return func(s *Service) { s.clock = c } }

func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

// WithSchedules shares the schedule index with the meeting service so
// bookings made there show up in search results.
func WithSchedules(c *cache.Schedules) Option { return func(s *Service) { s.schedules = c } }

func WithLogger(log *slog.Logger) Option { return func(s *Service) { s.log = log } }

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		clock: service.SystemClock{},
		loc:   time.UTC,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("component", "service.rooms"))
	if s.schedules == nil {
		s.schedules = cache.NewSchedules(nil, ScheduledLoader(repo), s.log)
	}
	return s
}

// ScheduledLoader reads a room's scheduled meetings straight from the store.
func ScheduledLoader(repo interface {
	ListMeetingsForRoom(ctx context.Context, roomID int64, status domain.MeetingStatus) ([]domain.Meeting, error)
}) cache.LoadFunc {
	return func(ctx context.Context, roomID int64) ([]domain.Meeting, error) {
		return repo.ListMeetingsForRoom(ctx, roomID, domain.MeetingScheduled)
	}
}

type RoomWithSchedule struct {
	Room     domain.Room
	Meetings []domain.Meeting
}
