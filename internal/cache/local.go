package cache

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"roombook/backend/internal/domain"
)

type Local struct {
	store *gocache.Cache
	ttl   time.Duration
}

func NewLocal(ttl time.Duration) *Local {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Local{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (l *Local) Get(ctx context.Context, roomID int64) ([]domain.Meeting, bool, error) {
	v, found := l.store.Get(localKey(roomID))
	if !found {
		return nil, false, nil
	}
	return copyMeetings(v.([]domain.Meeting)), true, nil
}

func (l *Local) Set(ctx context.Context, roomID int64, meetings []domain.Meeting) error {
	l.store.Set(localKey(roomID), copyMeetings(meetings), l.ttl)
	return nil
}

func (l *Local) Delete(ctx context.Context, roomID int64) error {
	l.store.Delete(localKey(roomID))
	return nil
}

func localKey(roomID int64) string {
	return "room:" + strconv.FormatInt(roomID, 10)
}
