package rooms

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/service"
)

// SearchQuery bounds are optional; nil means unbounded.
type SearchQuery struct {
	From        time.Time
	To          time.Time
	MinCapacity *int
	MaxCapacity *int
	RoomName    *string
}

func (q SearchQuery) validate() error {
	if q.From.IsZero() || q.To.IsZero() {
		return service.InvalidFormat("Both fromDate param and toDate param must be provided.")
	}
	if q.MinCapacity != nil && q.MaxCapacity != nil && *q.MinCapacity >= *q.MaxCapacity {
		return service.InvalidFormat("minCapacity cannot be greater than or equal to maxCapacity.")
	}
	if q.MinCapacity != nil && *q.MinCapacity < 0 {
		return service.InvalidFormat("minCapacity cannot be less than zero.")
	}
	if q.MaxCapacity != nil && *q.MaxCapacity >= math.MaxInt32 {
		return service.InvalidFormat("maxCapacity cannot exceed " + strconv.Itoa(math.MaxInt32) + ".")
	}
	if q.RoomName != nil && (strings.TrimSpace(*q.RoomName) == "" || utf8.RuneCountInString(*q.RoomName) > domain.MaxNameLength) {
		return service.InvalidFormat("roomName must be a non-empty string with length less than 255.")
	}
	if q.From.After(q.To) {
		return service.InvalidFormat("fromDate param cannot be after toDate param.")
	}
	return nil
}

// Search lists active rooms free over [From, To] first, then the busy ones,
// each group ordered by name, narrowed by name and capacity.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]RoomWithSchedule, error) {
	if err := q.validate(); err != nil {
		s.log.Warn("invalid room search", slog.String("err", err.Error()))
		return nil, err
	}

	all, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, service.Internal("list rooms", err)
	}

	var free, busy []RoomWithSchedule
	for _, room := range all {
		if room.Deleted() {
			continue
		}
		meetings, err := s.schedules.Scheduled(ctx, room.ID)
		if err != nil {
			return nil, service.Internal("scheduled meetings", err)
		}
		entry := RoomWithSchedule{Room: room, Meetings: meetings}
		if availableBetween(meetings, q.From, q.To) {
			free = append(free, entry)
		} else {
			busy = append(busy, entry)
		}
	}
	sortByName(free)
	sortByName(busy)
	out := append(free, busy...)

	if q.RoomName != nil {
		out = filterByName(out, *q.RoomName)
	}
	if q.MinCapacity != nil || q.MaxCapacity != nil {
		out = filterByCapacity(out, q.MinCapacity, q.MaxCapacity)
	}
	if len(out) == 0 {
		return nil, service.NotFound("No rooms match the search criteria.")
	}
	return out, nil
}

func availableBetween(meetings []domain.Meeting, from, to time.Time) bool {
	for _, m := range meetings {
		if m.Status != domain.MeetingScheduled {
			continue
		}
		if domain.Overlaps(from, to, m.StartTime, m.EndTime) {
			return false
		}
	}
	return true
}

func sortByName(rooms []RoomWithSchedule) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].Room.Name < rooms[j].Room.Name
	})
}

func filterByName(rooms []RoomWithSchedule, name string) []RoomWithSchedule {
	fold := cases.Fold()
	needle := fold.String(name)
	out := rooms[:0:0]
	for _, r := range rooms {
		if strings.Contains(fold.String(r.Room.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

func filterByCapacity(rooms []RoomWithSchedule, min, max *int) []RoomWithSchedule {
	out := rooms[:0:0]
	for _, r := range rooms {
		if min != nil && r.Room.Capacity < *min {
			continue
		}
		if max != nil && r.Room.Capacity > *max {
			continue
		}
		out = append(out, r)
	}
	return out
}
