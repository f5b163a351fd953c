package postgres

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/store"
)

func (r *Repo) FindMeeting(ctx context.Context, id int64) (domain.Meeting, error) {
	return findMeeting(ctx, r.db, id)
}

func (r *Repo) ListMeetingsForRoom(ctx context.Context, roomID int64, status domain.MeetingStatus) ([]domain.Meeting, error) {
	return listMeetingsForRoom(ctx, r.db, roomID, status)
}

func (r *Repo) ListMeetingsForRoomOnDay(ctx context.Context, roomID int64, status domain.MeetingStatus, dayStart, dayEnd time.Time) ([]domain.Meeting, error) {
	var rows []domain.Meeting
	err := r.db.NewSelect().
		Model(&rows).
		Where("room_id = ?", roomID).
		Where("status = ?", status).
		Where("start_time >= ?", dayStart).
		Where("start_time < ?", dayEnd).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type historyRecord struct {
	MeetingID       int64                `bun:"meeting_id"`
	RoomName        string               `bun:"room_name"`
	Title           string               `bun:"title"`
	StartTime       time.Time            `bun:"start_time"`
	EndTime         time.Time            `bun:"end_time"`
	ReservationTime time.Time            `bun:"reservation_time"`
	Status          domain.MeetingStatus `bun:"status"`
}

func (h historyRecord) row() domain.HistoryRow {
	return domain.HistoryRow{
		MeetingID:       h.MeetingID,
		RoomName:        h.RoomName,
		Title:           h.Title,
		StartTime:       h.StartTime,
		EndTime:         h.EndTime,
		ReservationTime: h.ReservationTime,
		Canceled:        h.Status == domain.MeetingCanceled,
	}
}

func (r *Repo) historySelect(personID int64) *bun.SelectQuery {
	return r.db.NewSelect().
		TableExpr("meetings AS m").
		Join("JOIN rooms AS r ON r.id = m.room_id").
		ColumnExpr("m.id AS meeting_id").
		ColumnExpr("r.name AS room_name").
		ColumnExpr("m.title, m.start_time, m.end_time, m.reservation_time, m.status").
		Where("m.person_id = ?", personID).
		Where("r.deleted_at IS NULL")
}

// BookingHistory returns rows unordered and without display status; callers
// apply both against their own clock.
func (r *Repo) BookingHistory(ctx context.Context, q store.HistoryQuery) ([]domain.HistoryRow, error) {
	sel := r.historySelect(q.PersonID)
	if q.Title != "" {
		sel = sel.Where("m.title ILIKE ?", containsPattern(q.Title))
	}
	if q.RoomName != "" {
		sel = sel.Where("r.name ILIKE ?", containsPattern(q.RoomName))
	}

	var recs []historyRecord
	if err := sel.Scan(ctx, &recs); err != nil {
		return nil, err
	}
	out := make([]domain.HistoryRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.row())
	}
	return out, nil
}

func (r *Repo) MeetingForPerson(ctx context.Context, personID, meetingID int64) (domain.HistoryRow, error) {
	var rec historyRecord
	err := r.historySelect(personID).
		Where("m.id = ?", meetingID).
		Limit(1).
		Scan(ctx, &rec)
	if err != nil {
		return domain.HistoryRow{}, mapError(err)
	}
	return rec.row(), nil
}

func findMeeting(ctx context.Context, db bun.IDB, id int64) (domain.Meeting, error) {
	var m domain.Meeting
	err := db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Meeting{}, mapError(err)
	}
	return m, nil
}

func listMeetingsForRoom(ctx context.Context, db bun.IDB, roomID int64, status domain.MeetingStatus) ([]domain.Meeting, error) {
	var rows []domain.Meeting
	err := db.NewSelect().
		Model(&rows).
		Where("room_id = ?", roomID).
		Where("status = ?", status).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r roomTx) FindMeeting(ctx context.Context, id int64) (domain.Meeting, error) {
	return findMeeting(ctx, r.tx, id)
}

func (r roomTx) ListMeetingsForRoom(ctx context.Context, roomID int64, status domain.MeetingStatus) ([]domain.Meeting, error) {
	return listMeetingsForRoom(ctx, r.tx, roomID, status)
}

func (r roomTx) CreateMeeting(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	row := domain.Meeting{
		RoomID:          m.RoomID,
		PersonID:        m.PersonID,
		Title:           m.Title,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		Status:          m.Status,
		ReservationTime: m.ReservationTime,
	}
	if _, err := r.tx.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return domain.Meeting{}, mapError(err)
	}
	m.ID = row.ID
	return m, nil
}

func (r roomTx) SaveMeeting(ctx context.Context, m domain.Meeting) error {
	res, err := r.tx.NewUpdate().
		Model(&m).
		Column("title", "start_time", "end_time", "status", "reservation_time").
		WherePK().
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

func (r roomTx) FindOverlappingMeetings(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]domain.Meeting, error) {
	var rows []domain.Meeting
	err := r.tx.NewSelect().
		Model(&rows).
		Where("room_id = ?", roomID).
		Where("status = ?", domain.MeetingScheduled).
		Where("id <> ?", excludeID).
		Where("start_time <= ?", end).
		Where("end_time >= ?", start).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
