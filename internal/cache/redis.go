package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"roombook/backend/internal/domain"
)

type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "roombook:schedule"
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

type cachedMeeting struct {
	ID              int64     `json:"id"`
	RoomID          int64     `json:"room_id"`
	PersonID        int64     `json:"person_id"`
	Title           string    `json:"title"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          int16     `json:"status"`
	ReservationTime time.Time `json:"reservation_time"`
}

func (r *Redis) Get(ctx context.Context, roomID int64) ([]domain.Meeting, bool, error) {
	bs, err := r.rdb.Get(ctx, r.key(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rows []cachedMeeting
	if err := json.Unmarshal(bs, &rows); err != nil {
		return nil, false, err
	}
	out := make([]domain.Meeting, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Meeting{
			ID:              m.ID,
			RoomID:          m.RoomID,
			PersonID:        m.PersonID,
			Title:           m.Title,
			StartTime:       m.StartTime,
			EndTime:         m.EndTime,
			Status:          domain.MeetingStatus(m.Status),
			ReservationTime: m.ReservationTime,
		})
	}
	return out, true, nil
}

func (r *Redis) Set(ctx context.Context, roomID int64, meetings []domain.Meeting) error {
	rows := make([]cachedMeeting, 0, len(meetings))
	for _, m := range meetings {
		rows = append(rows, cachedMeeting{
			ID:              m.ID,
			RoomID:          m.RoomID,
			PersonID:        m.PersonID,
			Title:           m.Title,
			StartTime:       m.StartTime,
			EndTime:         m.EndTime,
			Status:          int16(m.Status),
			ReservationTime: m.ReservationTime,
		})
	}
	bs, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return r.rdb.SetEx(ctx, r.key(roomID), bs, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, roomID int64) error {
	return r.rdb.Del(ctx, r.key(roomID)).Err()
}

func (r *Redis) key(roomID int64) string {
	return r.prefix + ":" + strconv.FormatInt(roomID, 10)
}
