package seats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/service"
	"roombook/backend/internal/store"
)

type Statistics struct {
	RoomID int64
	Date   time.Time
	Blocks []domain.OccupancyBlock
}

// Statistics counts, for each blockMinutes-long slice of date, the
// registrations of the room that touch it. A zero blockMinutes is treated
// as missing.
func (s *Service) Statistics(ctx context.Context, roomID int64, date time.Time, blockMinutes int) (Statistics, error) {
	if roomID <= 0 || date.IsZero() || blockMinutes == 0 {
		s.log.Warn("invalid statistics request", slog.Int64("room_id", roomID), slog.Int("block_minutes", blockMinutes))
		return Statistics{}, service.InvalidFormat("Invalid format param request.")
	}

	room, err := s.repo.FindRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return Statistics{}, service.NotFound("Room not found. Please verify the provided Room Id.")
	}
	if err != nil {
		return Statistics{}, service.Internal("find room", err)
	}
	if room.Deleted() {
		return Statistics{}, service.Forbidden("Statistical analysis of seat registrations in the soft-deleted room is not allowed.")
	}

	blocks, err := domain.PartitionDay(date, s.loc, blockMinutes)
	if errors.Is(err, domain.ErrInvalidBlockSize) {
		return Statistics{}, service.InvalidFormat("Format param eachMinute in request is not satisfied request.")
	}
	if err != nil {
		return Statistics{}, service.Internal("partition day", err)
	}

	dayStart := blocks[0].Start
	dayEnd := blocks[len(blocks)-1].End
	regs, err := s.repo.RegistrationsForDay(ctx, roomID, dayStart, dayEnd)
	if err != nil {
		return Statistics{}, service.Internal("registrations for day", err)
	}

	return Statistics{
		RoomID: roomID,
		Date:   dayStart,
		Blocks: domain.CountOccupancy(blocks, regs),
	}, nil
}
