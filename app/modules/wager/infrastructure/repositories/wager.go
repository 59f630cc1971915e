package wagerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new extra play repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) Create(ctx context.Context, db bun.IDB, play *ExtraPlay) error {
	db = r.resolveDB(db)
	if play.CreatedAt.IsZero() {
		play.CreatedAt = time.Now()
	}
	if _, err := db.NewInsert().Model(play).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("wagerdb.Create: %w", err)
	}
	return nil
}

func (r *Impl) Get(ctx context.Context, db bun.IDB, id int64) (*ExtraPlay, error) {
	return r.get(ctx, r.resolveDB(db), id, false)
}

func (r *Impl) GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*ExtraPlay, error) {
	return r.get(ctx, r.resolveDB(db), id, true)
}

func (r *Impl) get(ctx context.Context, db bun.IDB, id int64, lock bool) (*ExtraPlay, error) {
	play := new(ExtraPlay)
	q := db.NewSelect().Model(play).Where("id = ?", id)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("wagerdb.Get: %w", err)
	}
	return play, nil
}

func (r *Impl) CountCreatedBetween(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, from, to time.Time) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*ExtraPlay)(nil)).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		Where("created_at >= ?", from).
		Where("created_at < ?", to).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("wagerdb.CountCreatedBetween: %w", err)
	}
	return n, nil
}

func (r *Impl) ListOpen(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) ([]ExtraPlay, error) {
	db = r.resolveDB(db)
	var plays []ExtraPlay
	err := db.NewSelect().
		Model(&plays).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		Where("completed = false").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wagerdb.ListOpen: %w", err)
	}
	return plays, nil
}

func (r *Impl) MarkCompleted(ctx context.Context, db bun.IDB, id int64, payout decimal.Decimal, at time.Time) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*ExtraPlay)(nil)).
		Set("completed = true").
		Set("payout = ?", payout).
		Set("completed_at = ?", at).
		Where("id = ?", id).
		Where("completed = false").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("wagerdb.MarkCompleted: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("wagerdb.MarkCompleted: rows affected: %w", err)
	}
	return rows > 0, nil
}
