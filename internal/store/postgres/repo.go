package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"roombook/backend/internal/store"
)

const (
	meetingsOverlapConstraint = "meetings_no_overlap"

	codeExclusionViolation = "23P01"
	codeUniqueViolation    = "23505"
)

// Repo implements the store interfaces on top of bun. Reads go straight to
// the pool; check-and-write sequences run through InRoomTransaction.
type Repo struct {
	db *bun.DB
}

func NewRepo(db *bun.DB) *Repo {
	return &Repo{db: db}
}

type roomTx struct {
	tx bun.Tx
}

var (
	_ store.RoomRepository    = (*Repo)(nil)
	_ store.PersonRepository  = (*Repo)(nil)
	_ store.MeetingRepository = (*Repo)(nil)
	_ store.SeatRepository    = (*Repo)(nil)
	_ store.Transactor        = (*Repo)(nil)
	_ store.RoomTx            = roomTx{}
)

func (r *Repo) InRoomTransaction(ctx context.Context, roomID int64, fn func(ctx context.Context, tx store.RoomTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockRoom(ctx, tx, roomID); err != nil {
			return err
		}
		return fn(ctx, roomTx{tx: tx})
	})
}

func lockRoom(ctx context.Context, tx bun.Tx, roomID int64) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey(roomID)).Exec(ctx)
	return err
}

func lockKey(roomID int64) string {
	return "room:" + strconv.FormatInt(roomID, 10)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeExclusionViolation && pgErr.ConstraintName == meetingsOverlapConstraint:
			return store.ErrConflict
		case pgErr.Code == codeUniqueViolation:
			return store.ErrDuplicate
		}
	}
	return err
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
