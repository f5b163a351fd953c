package rooms

import (
	"context"
	"strings"
	"testing"
	"time"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/service"
	"roombook/backend/internal/store"
)

func noNames(ctx context.Context, name string) (bool, error) { return false, nil }

func TestAdd(t *testing.T) {
	var created domain.Room
	svc := NewService(&fakeRepo{
		roomNameExistsFn: noNames,
		createRoomFn: func(ctx context.Context, room domain.Room) (domain.Room, error) {
			created = room
			room.ID = 1
			return room, nil
		},
	}, WithClock(fixedClock()))

	room, err := svc.Add(context.Background(), AddRoomInput{Name: "  Board Room 2 ", Capacity: 12})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if room.ID != 1 || created.Name != "Board Room 2" || created.Status != domain.RoomAvailable {
		t.Fatalf("created = %+v", created)
	}
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name   string
		in     AddRoomInput
		exists bool
		msg    string
	}{
		{"blank", AddRoomInput{Name: "   ", Capacity: 1}, false, "Room name cannot be empty"},
		{"too long", AddRoomInput{Name: strings.Repeat("a", 256), Capacity: 1}, false, "Room name must not be longer than 255 characters"},
		{"special characters", AddRoomInput{Name: "Room #1", Capacity: 1}, false, "Room names cannot contain special characters"},
		{"duplicate", AddRoomInput{Name: "Orchid", Capacity: 1}, true, "Room name cannot be the same"},
		{"zero capacity", AddRoomInput{Name: "Orchid", Capacity: 0}, false, "The number of capacity must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists := tt.exists
			svc := NewService(&fakeRepo{
				roomNameExistsFn: func(ctx context.Context, name string) (bool, error) { return exists, nil },
			})
			_, err := svc.Add(context.Background(), tt.in)
			if service.KindOf(err) != service.KindValidation || err.Error() != tt.msg {
				t.Fatalf("error = %v (%s), want %q", err, service.KindOf(err), tt.msg)
			}
		})
	}
}

func TestAdd_UniqueViolationIsDuplicate(t *testing.T) {
	svc := NewService(&fakeRepo{
		roomNameExistsFn: noNames,
		createRoomFn: func(ctx context.Context, room domain.Room) (domain.Room, error) {
			return domain.Room{}, store.ErrDuplicate
		},
	})
	_, err := svc.Add(context.Background(), AddRoomInput{Name: "Orchid", Capacity: 4})
	if service.KindOf(err) != service.KindValidation || err.Error() != duplicateName {
		t.Fatalf("error = %v", err)
	}
}

func existingRoom(deleted bool) func(ctx context.Context, id int64) (domain.Room, error) {
	return func(ctx context.Context, id int64) (domain.Room, error) {
		if id != 1 {
			return domain.Room{}, store.ErrNotFound
		}
		room := domain.Room{ID: 1, Name: "Orchid", Capacity: 8, Status: domain.RoomAvailable}
		if deleted {
			at := now.Add(-time.Hour)
			room.DeletedAt = &at
		}
		return room, nil
	}
}

func TestUpdate(t *testing.T) {
	var saved domain.Room
	svc := NewService(&fakeRepo{
		findRoomFn: existingRoom(false),
		saveRoomFn: func(ctx context.Context, room domain.Room) error {
			saved = room
			return nil
		},
	}, WithClock(fixedClock()))

	// Keeping the current name must not trip the uniqueness check.
	room, err := svc.Update(context.Background(), 1, UpdateRoomInput{Name: "Orchid", Capacity: 20, Status: domain.RoomAvailable})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if room.Capacity != 20 || saved.Capacity != 20 || saved.UpdatedAt == nil || !saved.UpdatedAt.Equal(now) {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestUpdate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		roomID  int64
		deleted bool
		in      UpdateRoomInput
		kind    service.Kind
		msg     string
	}{
		{"missing", 2, false, UpdateRoomInput{Name: "x", Capacity: 1, Status: domain.RoomAvailable}, service.KindNotFound, "Room with ID 2 does not exist."},
		{"deleted", 1, true, UpdateRoomInput{Name: "x", Capacity: 1, Status: domain.RoomAvailable}, service.KindBusinessRule, "Room has been soft-deleted and cannot be updated"},
		{"status", 1, false, UpdateRoomInput{Name: "Orchid", Capacity: 1, Status: domain.RoomMaintenance}, service.KindValidation, "Room status must be 2 - available"},
		{"capacity", 1, false, UpdateRoomInput{Name: "Orchid", Capacity: -3, Status: domain.RoomAvailable}, service.KindValidation, "The number of capacity must be greater than 0"},
		{"taken name", 1, false, UpdateRoomInput{Name: "Lotus", Capacity: 1, Status: domain.RoomAvailable}, service.KindValidation, "Room name cannot be the same"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeRepo{
				findRoomFn:       existingRoom(tt.deleted),
				roomNameExistsFn: func(ctx context.Context, name string) (bool, error) { return name == "Lotus", nil },
			})
			_, err := svc.Update(context.Background(), tt.roomID, tt.in)
			if service.KindOf(err) != tt.kind || err.Error() != tt.msg {
				t.Fatalf("error = %v (%s), want %q (%s)", err, service.KindOf(err), tt.msg, tt.kind)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	var saved domain.Room
	svc := NewService(&fakeRepo{
		findRoomFn: existingRoom(false),
		saveRoomFn: func(ctx context.Context, room domain.Room) error {
			saved = room
			return nil
		},
	}, WithClock(fixedClock()))

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !saved.Deleted() || !saved.DeletedAt.Equal(now) {
		t.Fatalf("saved = %+v, want soft deleted at %v", saved, now)
	}
}

func TestDelete_Errors(t *testing.T) {
	svc := NewService(&fakeRepo{findRoomFn: existingRoom(true)})

	err := svc.Delete(context.Background(), 1)
	if service.KindOf(err) != service.KindBusinessRule || err.Error() != "Room with ID 1 has already been deleted." {
		t.Fatalf("error = %v", err)
	}
	err = svc.Delete(context.Background(), 3)
	if service.KindOf(err) != service.KindNotFound || err.Error() != "Room with ID 3 does not exist." {
		t.Fatalf("error = %v", err)
	}
}

func TestDetail(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	var gotStart, gotEnd time.Time
	svc := NewService(&fakeRepo{
		findAvailableRoomFn: existingRoom(false),
		listMeetingsForRoomDay: func(ctx context.Context, roomID int64, status domain.MeetingStatus, dayStart, dayEnd time.Time) ([]domain.Meeting, error) {
			gotStart, gotEnd = dayStart, dayEnd
			return []domain.Meeting{{ID: 3, RoomID: roomID, Status: status}}, nil
		},
	}, WithClock(fixedClock()), WithLocation(loc))

	detail, err := svc.Detail(context.Background(), 1)
	if err != nil {
		t.Fatalf("Detail error: %v", err)
	}
	if detail.Room.Name != "Orchid" || len(detail.Meetings) != 1 {
		t.Fatalf("detail = %+v", detail)
	}
	wantStart := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	if !gotStart.Equal(wantStart) || !gotEnd.Equal(wantStart.Add(24*time.Hour)) {
		t.Fatalf("window = %v..%v", gotStart, gotEnd)
	}

	_, err = svc.Detail(context.Background(), 2)
	if service.KindOf(err) != service.KindNotFound {
		t.Fatalf("error = %v, want not found", err)
	}
}
