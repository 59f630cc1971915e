package catalogdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new catalog repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetGameBySlug(ctx context.Context, db bun.IDB, slug string) (*Game, error) {
	db = r.resolveDB(db)
	game := new(Game)
	err := db.NewSelect().
		Model(game).
		Where("slug = ?", slug).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalogdb.GetGameBySlug: %w", err)
	}
	return game, nil
}

func (r *Impl) GetGameByID(ctx context.Context, db bun.IDB, id int64) (*Game, error) {
	db = r.resolveDB(db)
	game := new(Game)
	err := db.NewSelect().
		Model(game).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalogdb.GetGameByID: %w", err)
	}
	return game, nil
}

func (r *Impl) ListActiveGames(ctx context.Context, db bun.IDB) ([]Game, error) {
	db = r.resolveDB(db)
	var games []Game
	err := db.NewSelect().
		Model(&games).
		Where("active = true").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalogdb.ListActiveGames: %w", err)
	}
	return games, nil
}

func (r *Impl) GetItemByName(ctx context.Context, db bun.IDB, gameID int64, name string) (*Item, error) {
	db = r.resolveDB(db)
	item := new(Item)
	err := db.NewSelect().
		Model(item).
		Where("game_id = ?", gameID).
		Where("lower(name) = lower(?)", name).
		Where("deleted = false").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalogdb.GetItemByName: %w", err)
	}
	return item, nil
}

func (r *Impl) GetItemsByIDs(ctx context.Context, db bun.IDB, ids []int64) ([]Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var items []Item
	err := db.NewSelect().
		Model(&items).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalogdb.GetItemsByIDs: %w", err)
	}
	return items, nil
}

func (r *Impl) ListRemainingItemNames(ctx context.Context, db bun.IDB, gameID int64, exclude []int64) ([]string, error) {
	db = r.resolveDB(db)
	var names []string
	q := db.NewSelect().
		Model((*Item)(nil)).
		Column("name").
		Where("game_id = ?", gameID).
		Where("deleted = false").
		Order("name ASC")
	if len(exclude) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(exclude))
	}
	if err := q.Scan(ctx, &names); err != nil {
		return nil, fmt.Errorf("catalogdb.ListRemainingItemNames: %w", err)
	}
	return names, nil
}

func (r *Impl) CountActiveItems(ctx context.Context, db bun.IDB, gameID int64) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*Item)(nil)).
		Where("game_id = ?", gameID).
		Where("deleted = false").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalogdb.CountActiveItems: %w", err)
	}
	return n, nil
}

func (r *Impl) GetActiveItemAt(ctx context.Context, db bun.IDB, gameID int64, offset int) (*Item, error) {
	db = r.resolveDB(db)
	item := new(Item)
	err := db.NewSelect().
		Model(item).
		Where("game_id = ?", gameID).
		Where("deleted = false").
		Order("id ASC").
		Offset(offset).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalogdb.GetActiveItemAt: %w", err)
	}
	return item, nil
}

func (r *Impl) GetDailyTarget(ctx context.Context, db bun.IDB, gameID int64, date time.Time, isTeam bool) (*DailyTarget, error) {
	db = r.resolveDB(db)
	target := new(DailyTarget)
	err := db.NewSelect().
		Model(target).
		Relation("Target").
		Where("dt.game_id = ?", gameID).
		Where("dt.date = ?", CalendarDate(date).Format(time.DateOnly)).
		Where("dt.is_team = ?", isTeam).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalogdb.GetDailyTarget: %w", err)
	}
	return target, nil
}

func (r *Impl) GetDailyTargetByID(ctx context.Context, db bun.IDB, id int64) (*DailyTarget, error) {
	db = r.resolveDB(db)
	target := new(DailyTarget)
	err := db.NewSelect().
		Model(target).
		Relation("Target").
		Where("dt.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalogdb.GetDailyTargetByID: %w", err)
	}
	return target, nil
}

func (r *Impl) CreateDailyTarget(ctx context.Context, db bun.IDB, target *DailyTarget) (bool, error) {
	db = r.resolveDB(db)
	target.Date = CalendarDate(target.Date)
	res, err := db.NewInsert().
		Model(target).
		On("CONFLICT (game_id, date, is_team) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("catalogdb.CreateDailyTarget: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("catalogdb.CreateDailyTarget: rows affected: %w", err)
	}
	return rows > 0, nil
}
