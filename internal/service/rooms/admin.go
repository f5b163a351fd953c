package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/service"
	"roombook/backend/internal/store"
)

const duplicateName = "Room name cannot be the same"

type AddRoomInput struct {
	Name     string
	Capacity int
}

func (s *Service) Add(ctx context.Context, in AddRoomInput) (domain.Room, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name, ""); err != nil {
		return domain.Room{}, err
	}
	if in.Capacity <= 0 {
		return domain.Room{}, service.Validation("The number of capacity must be greater than 0")
	}

	room, err := s.repo.CreateRoom(ctx, domain.Room{
		Name:     name,
		Capacity: in.Capacity,
		Status:   domain.RoomAvailable,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return domain.Room{}, service.Validation(duplicateName)
	}
	if err != nil {
		return domain.Room{}, service.Internal("create room", err)
	}
	return room, nil
}

type UpdateRoomInput struct {
	Name     string
	Capacity int
	Status   domain.RoomStatus
}

func (s *Service) Update(ctx context.Context, roomID int64, in UpdateRoomInput) (domain.Room, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if room.Deleted() {
		return domain.Room{}, service.BusinessRule("Room has been soft-deleted and cannot be updated")
	}

	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name, room.Name); err != nil {
		return domain.Room{}, err
	}
	if in.Capacity <= 0 {
		return domain.Room{}, service.Validation("The number of capacity must be greater than 0")
	}
	if in.Status != domain.RoomAvailable {
		return domain.Room{}, service.Validation("Room status must be 2 - available")
	}

	now := s.clock.Now().UTC()
	room.Name = name
	room.Capacity = in.Capacity
	room.Status = in.Status
	room.UpdatedAt = &now
	if err := s.repo.SaveRoom(ctx, room); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.Room{}, service.Validation(duplicateName)
		}
		return domain.Room{}, service.Internal("save room", err)
	}
	return room, nil
}

func (s *Service) Delete(ctx context.Context, roomID int64) error {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Deleted() {
		return service.BusinessRule(fmt.Sprintf("Room with ID %d has already been deleted.", roomID))
	}

	now := s.clock.Now().UTC()
	room.DeletedAt = &now
	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return service.Internal("soft delete room", err)
	}
	s.schedules.Invalidate(ctx, roomID)
	return nil
}

// Detail returns an active room with the meetings scheduled in it today.
func (s *Service) Detail(ctx context.Context, roomID int64) (RoomWithSchedule, error) {
	room, err := s.repo.FindAvailableRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return RoomWithSchedule{}, service.NotFound("Room not found")
	}
	if err != nil {
		return RoomWithSchedule{}, service.Internal("find room", err)
	}

	dayStart := domain.StartOfDay(s.clock.Now(), s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	meetings, err := s.repo.ListMeetingsForRoomOnDay(ctx, roomID, domain.MeetingScheduled, dayStart, dayEnd)
	if err != nil {
		return RoomWithSchedule{}, service.Internal("meetings for day", err)
	}
	return RoomWithSchedule{Room: room, Meetings: meetings}, nil
}

func (s *Service) findRoom(ctx context.Context, roomID int64) (domain.Room, error) {
	room, err := s.repo.FindRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Room{}, service.NotFound(fmt.Sprintf("Room with ID %d does not exist.", roomID))
	}
	if err != nil {
		return domain.Room{}, service.Internal("find room", err)
	}
	return room, nil
}

// checkName validates a room name. current is the room's existing name,
// which may be kept on update.
func (s *Service) checkName(ctx context.Context, name, current string) error {
	if name == "" {
		return service.Validation("Room name cannot be empty")
	}
	if len(name) > domain.MaxNameLength {
		return service.Validation("Room name must not be longer than 255 characters")
	}
	if !domain.ValidRoomName(name) {
		return service.Validation("Room names cannot contain special characters")
	}
	if name == current {
		return nil
	}
	exists, err := s.repo.RoomNameExists(ctx, name)
	if err != nil {
		return service.Internal("room name exists", err)
	}
	if exists {
		return service.Validation(duplicateName)
	}
	return nil
}
