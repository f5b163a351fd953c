package domain

import (
	"time"

	"github.com/uptrace/bun"
)

type SeatStatus int16

const (
	SeatCanceled   SeatStatus = 0
	SeatRegistered SeatStatus = 1
)

type SeatRegistration struct {
	bun.BaseModel `bun:"table:seat_registrations"`

	ID               int64      `bun:"id,pk,autoincrement"`
	RoomID           int64      `bun:"room_id,notnull"`
	PersonID         int64      `bun:"person_id,notnull"`
	StartTime        time.Time  `bun:"start_time,notnull"`
	EndTime          time.Time  `bun:"end_time,notnull"`
	Status           SeatStatus `bun:"status,notnull"`
	RegistrationTime time.Time  `bun:"registration_time,notnull"`
}
