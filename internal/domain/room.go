package domain

import (
	"context"
	"regexp"
	"time"

	"github.com/uptrace/bun"
)

const MaxNameLength = 255

var roomNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s]{1,255}$`)

// ValidRoomName reports whether name holds only ASCII letters, digits and
// whitespace, within MaxNameLength.
func ValidRoomName(name string) bool {
	return roomNamePattern.MatchString(name)
}

type RoomStatus int16

const (
	RoomUnavailable RoomStatus = 0
	RoomMaintenance RoomStatus = 1
	RoomAvailable   RoomStatus = 2
)

type Room struct {
	bun.BaseModel `bun:"table:rooms"`

	ID        int64      `bun:"id,pk,autoincrement"`
	Name      string     `bun:"name,notnull"`
	Capacity  int        `bun:"capacity,notnull"`
	Status    RoomStatus `bun:"status,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
	UpdatedAt *time.Time `bun:"updated_at"`
	DeletedAt *time.Time `bun:"deleted_at"`
}

func (r Room) Deleted() bool {
	return r.DeletedAt != nil
}

func (r *Room) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
	case *bun.UpdateQuery:
		r.UpdatedAt = &now
	}
	return nil
}

type Person struct {
	bun.BaseModel `bun:"table:persons"`

	ID       int64  `bun:"id,pk,autoincrement"`
	FullName string `bun:"full_name,notnull"`
	Age      int    `bun:"age"`
}
