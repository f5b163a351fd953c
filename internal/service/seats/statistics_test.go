package seats

import (
	"context"
	"testing"
	"time"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/service"
	"roombook/backend/internal/store"
)

func TestStatistics_BlocksCoverDayWithZeroFill(t *testing.T) {
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	var gotStart, gotEnd time.Time
	repo := newRepo(10)
	repo.registrationsForDayFn = func(ctx context.Context, roomID int64, dayStart, dayEnd time.Time) ([]domain.SeatRegistration, error) {
		gotStart, gotEnd = dayStart, dayEnd
		return []domain.SeatRegistration{
			{RoomID: 1, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour), Status: domain.SeatRegistered},
			{RoomID: 1, StartTime: day.Add(9*time.Hour + 30*time.Minute), EndTime: day.Add(11*time.Hour + 30*time.Minute), Status: domain.SeatRegistered},
		}, nil
	}
	svc := NewService(repo, WithClock(fixedClock()))

	for _, block := range []int{1, 15, 60, 120, 1440} {
		stats, err := svc.Statistics(context.Background(), 1, day.Add(13*time.Hour), block)
		if err != nil {
			t.Fatalf("Statistics(%d) error: %v", block, err)
		}
		if got, want := len(stats.Blocks), domain.MinutesPerDay/block; got != want {
			t.Fatalf("blocks(%d) = %d, want %d", block, got, want)
		}
		if !stats.Blocks[0].Start.Equal(day) || !stats.Blocks[len(stats.Blocks)-1].End.Equal(day.Add(24*time.Hour)) {
			t.Fatalf("blocks(%d) do not cover the day: %v..%v", block, stats.Blocks[0].Start, stats.Blocks[len(stats.Blocks)-1].End)
		}
		for i := 1; i < len(stats.Blocks); i++ {
			if !stats.Blocks[i].Start.Equal(stats.Blocks[i-1].End) {
				t.Fatalf("blocks(%d) gap at %d", block, i)
			}
		}
	}
	if !gotStart.Equal(day) || !gotEnd.Equal(day.Add(24*time.Hour)) {
		t.Fatalf("day window = %v..%v", gotStart, gotEnd)
	}

	stats, err := svc.Statistics(context.Background(), 1, day, 60)
	if err != nil {
		t.Fatalf("Statistics error: %v", err)
	}
	want := map[int]int{7: 0, 8: 1, 9: 2, 10: 2, 11: 1, 12: 0}
	for hour, count := range want {
		if got := stats.Blocks[hour].Count; got != count {
			t.Fatalf("block %02d:00 count = %d, want %d", hour, got, count)
		}
	}
}

func TestStatistics_UsesFacilityDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	repo := newRepo(10)
	repo.registrationsForDayFn = func(ctx context.Context, roomID int64, dayStart, dayEnd time.Time) ([]domain.SeatRegistration, error) {
		return nil, nil
	}
	svc := NewService(repo, WithClock(fixedClock()), WithLocation(loc))

	stats, err := svc.Statistics(context.Background(), 1, time.Date(2026, 3, 12, 20, 0, 0, 0, time.UTC), 720)
	if err != nil {
		t.Fatalf("Statistics error: %v", err)
	}
	if want := time.Date(2026, 3, 13, 0, 0, 0, 0, loc); !stats.Blocks[0].Start.Equal(want) {
		t.Fatalf("first block = %v, want %v", stats.Blocks[0].Start, want)
	}
}

func TestStatistics_Errors(t *testing.T) {
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	deletedAt := now

	tests := []struct {
		name   string
		room   func(ctx context.Context, id int64) (domain.Room, error)
		roomID int64
		date   time.Time
		block  int
		kind   service.Kind
		msg    string
	}{
		{name: "missing room id", roomID: 0, date: day, block: 60, kind: service.KindInvalidFormat, msg: "Invalid format param request."},
		{name: "missing date", roomID: 1, block: 60, kind: service.KindInvalidFormat, msg: "Invalid format param request."},
		{name: "missing block", roomID: 1, date: day, kind: service.KindInvalidFormat, msg: "Invalid format param request."},
		{
			name:   "room not found",
			room:   func(ctx context.Context, id int64) (domain.Room, error) { return domain.Room{}, store.ErrNotFound },
			roomID: 1, date: day, block: 60,
			kind: service.KindNotFound,
			msg:  "Room not found. Please verify the provided Room Id.",
		},
		{
			name:   "room deleted",
			room:   func(ctx context.Context, id int64) (domain.Room, error) { return domain.Room{ID: id, DeletedAt: &deletedAt}, nil },
			roomID: 1, date: day, block: 60,
			kind: service.KindForbidden,
			msg:  "Statistical analysis of seat registrations in the soft-deleted room is not allowed.",
		},
		{name: "block does not divide day", roomID: 1, date: day, block: 7, kind: service.KindInvalidFormat, msg: "Format param eachMinute in request is not satisfied request."},
		{name: "negative block", roomID: 1, date: day, block: -60, kind: service.KindInvalidFormat, msg: "Format param eachMinute in request is not satisfied request."},
		{name: "block larger than day", roomID: 1, date: day, block: 2880, kind: service.KindInvalidFormat, msg: "Format param eachMinute in request is not satisfied request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo(10)
			if tt.room != nil {
				repo.findRoomFn = tt.room
			}
			svc := NewService(repo, WithClock(fixedClock()))

			_, err := svc.Statistics(context.Background(), tt.roomID, tt.date, tt.block)
			if err == nil {
				t.Fatalf("expected error")
			}
			if service.KindOf(err) != tt.kind || err.Error() != tt.msg {
				t.Fatalf("error = %q (%s), want %q (%s)", err.Error(), service.KindOf(err), tt.msg, tt.kind)
			}
		})
	}
}
