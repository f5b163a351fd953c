package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"roombook/backend/internal/domain"
)

func (r *Repo) FindRoom(ctx context.Context, id int64) (domain.Room, error) {
	return findRoom(ctx, r.db, id, false)
}

func (r *Repo) FindAvailableRoom(ctx context.Context, id int64) (domain.Room, error) {
	return findRoom(ctx, r.db, id, true)
}

func findRoom(ctx context.Context, db bun.IDB, id int64, activeOnly bool) (domain.Room, error) {
	var room domain.Room
	q := db.NewSelect().
		Model(&room).
		Where("id = ?", id)
	if activeOnly {
		q = q.Where("deleted_at IS NULL")
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		return domain.Room{}, mapError(err)
	}
	return room, nil
}

func (r *Repo) CreateRoom(ctx context.Context, room domain.Room) (domain.Room, error) {
	m := domain.Room{
		Name:     room.Name,
		Capacity: room.Capacity,
		Status:   room.Status,
	}
	if _, err := r.db.NewInsert().Model(&m).Returning("*").Exec(ctx); err != nil {
		return domain.Room{}, mapError(err)
	}
	return m, nil
}

func (r *Repo) SaveRoom(ctx context.Context, room domain.Room) error {
	res, err := r.db.NewUpdate().
		Model(&room).
		Column("name", "capacity", "status", "updated_at", "deleted_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

func (r *Repo) RoomNameExists(ctx context.Context, name string) (bool, error) {
	return r.db.NewSelect().
		Model((*domain.Room)(nil)).
		Where("name = ?", name).
		Exists(ctx)
}

func (r *Repo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rows []domain.Room
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) FindPerson(ctx context.Context, id int64) (domain.Person, error) {
	var p domain.Person
	err := r.db.NewSelect().
		Model(&p).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Person{}, mapError(err)
	}
	return p, nil
}

func (r *Repo) CreatePerson(ctx context.Context, p domain.Person) (domain.Person, error) {
	m := domain.Person{FullName: p.FullName, Age: p.Age}
	if _, err := r.db.NewInsert().Model(&m).Returning("*").Exec(ctx); err != nil {
		return domain.Person{}, mapError(err)
	}
	return m, nil
}
