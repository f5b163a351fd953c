package postgres

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"roombook/backend/internal/domain"
)

func (r *Repo) FindSeatRegistration(ctx context.Context, id int64) (domain.SeatRegistration, error) {
	return findSeatRegistration(ctx, r.db, id)
}

func (r *Repo) RegistrationsForDay(ctx context.Context, roomID int64, dayStart, dayEnd time.Time) ([]domain.SeatRegistration, error) {
	var rows []domain.SeatRegistration
	err := r.db.NewSelect().
		Model(&rows).
		Where("room_id = ?", roomID).
		Where("status <> ?", domain.SeatCanceled).
		Where("start_time <= ?", dayEnd).
		Where("end_time >= ?", dayStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func findSeatRegistration(ctx context.Context, db bun.IDB, id int64) (domain.SeatRegistration, error) {
	var reg domain.SeatRegistration
	err := db.NewSelect().
		Model(&reg).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.SeatRegistration{}, mapError(err)
	}
	return reg, nil
}

func (r roomTx) FindSeatRegistration(ctx context.Context, id int64) (domain.SeatRegistration, error) {
	return findSeatRegistration(ctx, r.tx, id)
}

func (r roomTx) CreateSeatRegistration(ctx context.Context, reg domain.SeatRegistration) (domain.SeatRegistration, error) {
	row := domain.SeatRegistration{
		RoomID:           reg.RoomID,
		PersonID:         reg.PersonID,
		StartTime:        reg.StartTime,
		EndTime:          reg.EndTime,
		Status:           reg.Status,
		RegistrationTime: reg.RegistrationTime,
	}
	if _, err := r.tx.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return domain.SeatRegistration{}, mapError(err)
	}
	reg.ID = row.ID
	return reg, nil
}

func (r roomTx) SaveSeatRegistration(ctx context.Context, reg domain.SeatRegistration) error {
	res, err := r.tx.NewUpdate().
		Model(&reg).
		Column("start_time", "end_time", "status").
		WherePK().
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

// AvailableSeats charges seatsPerRegistration for every registered seat in
// the room that has not ended by now. Soft-deleted rooms have no seats.
func (r roomTx) AvailableSeats(ctx context.Context, roomID int64, seatsPerRegistration int, now time.Time) (int, error) {
	var available int
	err := r.tx.NewRaw(
		`SELECT
			COALESCE((SELECT capacity FROM rooms WHERE id = ? AND deleted_at IS NULL), 0)
			- ? * (SELECT COUNT(*) FROM seat_registrations
				WHERE room_id = ? AND status = ? AND end_time >= ?)`,
		roomID, seatsPerRegistration, roomID, domain.SeatRegistered, now,
	).Scan(ctx, &available)
	if err != nil {
		return 0, err
	}
	return available, nil
}

func (r roomTx) FindOverlappingRegistration(ctx context.Context, roomID, personID int64, status domain.SeatStatus, start, end time.Time) (int64, bool, error) {
	var ids []int64
	err := r.tx.NewSelect().
		TableExpr("seat_registrations AS sr").
		Join("JOIN rooms AS r ON r.id = sr.room_id").
		ColumnExpr("sr.id").
		Where("r.deleted_at IS NULL").
		Where("sr.room_id = ?", roomID).
		Where("sr.person_id = ?", personID).
		Where("sr.status = ?", status).
		Where("sr.start_time <= ?", end).
		Where("sr.end_time >= ?", start).
		Limit(1).
		Scan(ctx, &ids)
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}
