// Package cache keeps a read-side index of each room's scheduled meetings.
// Entries are never consulted when deciding whether a booking is accepted;
// they only serve search and room detail views.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"roombook/backend/internal/domain"
)

type Backend interface {
	Get(ctx context.Context, roomID int64) ([]domain.Meeting, bool, error)
	Set(ctx context.Context, roomID int64, meetings []domain.Meeting) error
	Delete(ctx context.Context, roomID int64) error
}

type LoadFunc func(ctx context.Context, roomID int64) ([]domain.Meeting, error)

type Schedules struct {
	backend Backend
	load    LoadFunc
	group   singleflight.Group
	log     *slog.Logger

	mu   sync.Mutex
	gens map[int64]uint64
}

// NewSchedules returns a read-through index. A nil backend disables caching
// and every read goes to load.
func NewSchedules(backend Backend, load LoadFunc, log *slog.Logger) *Schedules {
	if log == nil {
		log = slog.Default()
	}
	return &Schedules{
		backend: backend,
		load:    load,
		log:     log.With(slog.String("component", "cache.schedules")),
		gens:    make(map[int64]uint64),
	}
}

func (s *Schedules) generation(roomID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[roomID]
}

func (s *Schedules) Scheduled(ctx context.Context, roomID int64) ([]domain.Meeting, error) {
	if s.backend != nil {
		meetings, ok, err := s.backend.Get(ctx, roomID)
		if err != nil {
			s.log.Warn("schedule cache read failed", slog.Any("err", err), slog.Int64("room_id", roomID))
		} else if ok {
			return meetings, nil
		}
	}

	// Loads started before an Invalidate must not repopulate the entry, and
	// callers arriving after it must not share their result.
	gen := s.generation(roomID)
	key := strconv.FormatInt(roomID, 10) + ":" + strconv.FormatUint(gen, 10)
	v, err, _ := s.group.Do(key, func() (any, error) {
		meetings, err := s.load(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if s.backend != nil && s.generation(roomID) == gen {
			if err := s.backend.Set(ctx, roomID, meetings); err != nil {
				s.log.Warn("schedule cache write failed", slog.Any("err", err), slog.Int64("room_id", roomID))
			}
			if s.generation(roomID) != gen {
				s.drop(ctx, roomID)
			}
		}
		return meetings, nil
	})
	if err != nil {
		return nil, err
	}
	return copyMeetings(v.([]domain.Meeting)), nil
}

// Invalidate drops the room's entry. Call it after every committed change to
// the room's meetings.
func (s *Schedules) Invalidate(ctx context.Context, roomID int64) {
	if s.backend == nil {
		return
	}
	s.mu.Lock()
	s.gens[roomID]++
	s.mu.Unlock()
	s.drop(ctx, roomID)
}

func (s *Schedules) drop(ctx context.Context, roomID int64) {
	if err := s.backend.Delete(ctx, roomID); err != nil {
		s.log.Warn("schedule cache invalidate failed", slog.Any("err", err), slog.Int64("room_id", roomID))
	}
}

func copyMeetings(in []domain.Meeting) []domain.Meeting {
	if in == nil {
		return nil
	}
	out := make([]domain.Meeting, len(in))
	copy(out, in)
	return out
}
