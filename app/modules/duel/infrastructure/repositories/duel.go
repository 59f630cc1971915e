package dueldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new challenge repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) Create(ctx context.Context, db bun.IDB, challenge *Challenge) error {
	db = r.resolveDB(db)
	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = time.Now()
	}
	if _, err := db.NewInsert().Model(challenge).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("dueldb.Create: %w", err)
	}
	return nil
}

func (r *Impl) Get(ctx context.Context, db bun.IDB, id int64) (*Challenge, error) {
	return r.get(ctx, r.resolveDB(db), id, false)
}

func (r *Impl) GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*Challenge, error) {
	return r.get(ctx, r.resolveDB(db), id, true)
}

func (r *Impl) get(ctx context.Context, db bun.IDB, id int64, lock bool) (*Challenge, error) {
	challenge := new(Challenge)
	q := db.NewSelect().Model(challenge).Where("id = ?", id)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("dueldb.Get: %w", err)
	}
	return challenge, nil
}

func (r *Impl) ListForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, openOnly bool) ([]Challenge, error) {
	db = r.resolveDB(db)
	var challenges []Challenge
	q := db.NewSelect().
		Model(&challenges).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("challenger_id = ?", userID).WhereOr("opponent_id = ?", userID)
		}).
		Order("created_at DESC")
	if openOnly {
		q = q.Where("completed = false")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("dueldb.ListForUser: %w", err)
	}
	return challenges, nil
}

func (r *Impl) MarkAccepted(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Challenge)(nil)).
		Set("accepted = true").
		Where("id = ?", id).
		Where("accepted = false").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("dueldb.MarkAccepted: %w", err)
	}
	return affected(res)
}

func (r *Impl) SetAttempts(ctx context.Context, db bun.IDB, id int64, challenger bool, attempts int) (bool, error) {
	db = r.resolveDB(db)
	column := "opponent_attempts"
	if challenger {
		column = "challenger_attempts"
	}
	res, err := db.NewUpdate().
		Model((*Challenge)(nil)).
		Set("? = ?", bun.Ident(column), attempts).
		Where("id = ?", id).
		Where("? IS NULL", bun.Ident(column)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("dueldb.SetAttempts: %w", err)
	}
	return affected(res)
}

func (r *Impl) MarkCompleted(ctx context.Context, db bun.IDB, id int64, winner *sharedtypes.UserID, at time.Time) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Challenge)(nil)).
		Set("completed = true").
		Set("winner_id = ?", winner).
		Set("completed_at = ?", at).
		Where("id = ?", id).
		Where("completed = false").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("dueldb.MarkCompleted: %w", err)
	}
	return affected(res)
}

func (r *Impl) MarkPointsAssigned(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Challenge)(nil)).
		Set("points_assigned = true").
		Where("id = ?", id).
		Where("completed = true").
		Where("points_assigned = false").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("dueldb.MarkPointsAssigned: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("dueldb: rows affected: %w", err)
	}
	return rows > 0, nil
}
