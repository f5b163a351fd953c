package seats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/events"
	"roombook/backend/internal/service"
	"roombook/backend/internal/store"
)

const (
	DefaultSeatsPerRegistration = 1
	DefaultMinDuration          = 15 * time.Minute
)

type Repository interface {
	FindPerson(ctx context.Context, id int64) (domain.Person, error)
	FindRoom(ctx context.Context, id int64) (domain.Room, error)
	FindAvailableRoom(ctx context.Context, id int64) (domain.Room, error)
	FindSeatRegistration(ctx context.Context, id int64) (domain.SeatRegistration, error)
	RegistrationsForDay(ctx context.Context, roomID int64, dayStart, dayEnd time.Time) ([]domain.SeatRegistration, error)
	InRoomTransaction(ctx context.Context, roomID int64, fn func(ctx context.Context, tx store.RoomTx) error) error
}

type Service struct {
	repo                 Repository
	clock                service.Clock
	loc                  *time.Location
	seatsPerRegistration int
	minDuration          time.Duration
	publisher            events.Publisher
	log                  *slog.Logger
}

type Option func(*Service)

func WithClock(c service.Clock) Option { return func(s *Service) { s.clock = c } }

func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }

func WithLogger(log *slog.Logger) Option { return func(s *Service) { s.log = log } }

// WithSeatsPerRegistration sets the seat cost charged against room capacity
// by each registration. Non-positive values are ignored.
func WithSeatsPerRegistration(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.seatsPerRegistration = n
		}
	}
}

func WithMinDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.minDuration = d
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:                 repo,
		clock:                service.SystemClock{},
		loc:                  time.UTC,
		seatsPerRegistration: DefaultSeatsPerRegistration,
		minDuration:          DefaultMinDuration,
		publisher:            events.Nop{},
		log:                  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("component", "service.seats"))
	return s
}

type RegisterInput struct {
	RoomID    int64
	PersonID  int64
	StartTime time.Time
	EndTime   time.Time
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.SeatRegistration, error) {
	if err := s.checkPerson(ctx, in.PersonID); err != nil {
		return domain.SeatRegistration{}, err
	}
	if err := s.checkRoom(ctx, in.RoomID); err != nil {
		return domain.SeatRegistration{}, err
	}

	now := s.clock.Now()
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return domain.SeatRegistration{}, service.BusinessRule("Time must not be left empty.")
	}
	if in.StartTime.Before(now) || in.EndTime.Before(now) {
		return domain.SeatRegistration{}, service.BusinessRule("Time cannot be set in the past.")
	}
	if !domain.SameDay(in.StartTime, in.EndTime, s.loc) {
		return domain.SeatRegistration{}, service.BusinessRule("Start time and end time on the same day.")
	}
	if in.EndTime.Sub(in.StartTime) < s.minDuration {
		return domain.SeatRegistration{}, service.BusinessRule(
			fmt.Sprintf("The minimum registration time is %d minutes.", int(s.minDuration/time.Minute)),
		)
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()

	var out domain.SeatRegistration
	err := s.repo.InRoomTransaction(ctx, in.RoomID, func(ctx context.Context, tx store.RoomTx) error {
		available, err := tx.AvailableSeats(ctx, in.RoomID, s.seatsPerRegistration, now)
		if err != nil {
			return err
		}
		if available < s.seatsPerRegistration {
			s.log.Info("room fully booked", slog.Int64("room_id", in.RoomID), slog.Int("available", available))
			return service.BusinessRule("Fully booked.")
		}

		if _, found, err := tx.FindOverlappingRegistration(ctx, in.RoomID, in.PersonID, domain.SeatRegistered, start, end); err != nil {
			return err
		} else if found {
			return service.BusinessRule("Overlap time.")
		}

		r, err := tx.CreateSeatRegistration(ctx, domain.SeatRegistration{
			RoomID:           in.RoomID,
			PersonID:         in.PersonID,
			StartTime:        start,
			EndTime:          end,
			Status:           domain.SeatRegistered,
			RegistrationTime: now.UTC(),
		})
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return domain.SeatRegistration{}, service.Internal("register seat", err)
	}

	s.publish(ctx, events.New(events.SeatRegistered, out.RoomID, out.PersonID, out.ID, out.StartTime, out.EndTime))
	return out, nil
}

func (s *Service) Cancel(ctx context.Context, registrationID, personID int64) error {
	const notFound = "Seat registration id not found"

	reg, err := s.repo.FindSeatRegistration(ctx, registrationID)
	if errors.Is(err, store.ErrNotFound) {
		return service.BusinessRule(notFound)
	}
	if err != nil {
		return service.Internal("find seat registration", err)
	}

	err = s.repo.InRoomTransaction(ctx, reg.RoomID, func(ctx context.Context, tx store.RoomTx) error {
		r, err := tx.FindSeatRegistration(ctx, registrationID)
		if errors.Is(err, store.ErrNotFound) {
			return service.BusinessRule(notFound)
		}
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if r.PersonID != personID {
			return service.BusinessRule("You do not have the right to cancel this seat")
		}
		if now.After(r.EndTime) {
			return service.BusinessRule("Past seat registrations cannot be cancelled")
		}
		if !now.Before(r.StartTime) {
			return service.BusinessRule("Seat registration is in progress and cannot be cancelled")
		}
		room, err := s.repo.FindRoom(ctx, r.RoomID)
		if err != nil {
			return err
		}
		if room.Deleted() {
			return service.BusinessRule("Seats cannot be canceled because the room is deleted")
		}
		if r.Status == domain.SeatCanceled {
			return service.BusinessRule("You have not registered for this seat yet")
		}

		r.Status = domain.SeatCanceled
		if err := tx.SaveSeatRegistration(ctx, r); err != nil {
			return err
		}
		reg = r
		return nil
	})
	if err != nil {
		return service.Internal("cancel seat", err)
	}

	s.publish(ctx, events.New(events.SeatCanceled, reg.RoomID, reg.PersonID, reg.ID, reg.StartTime, reg.EndTime))
	return nil
}

func (s *Service) checkPerson(ctx context.Context, personID int64) error {
	if personID <= 0 {
		return service.BusinessRule("User ID is incorrect.")
	}
	_, err := s.repo.FindPerson(ctx, personID)
	if errors.Is(err, store.ErrNotFound) {
		return service.BusinessRule("User ID is incorrect.")
	}
	return service.Internal("find person", err)
}

func (s *Service) checkRoom(ctx context.Context, roomID int64) error {
	const msg = "Room ID is incorrect or Room has been deleted."
	if roomID <= 0 {
		return service.BusinessRule(msg)
	}
	_, err := s.repo.FindAvailableRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return service.BusinessRule(msg)
	}
	return service.Internal("find room", err)
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", slog.Any("err", err), slog.String("event", string(ev.Type)), slog.Int64("booking_id", ev.BookingID))
	}
}
