package catalogdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for catalog persistence.
type Repository interface {
	GetGameBySlug(ctx context.Context, db bun.IDB, slug string) (*Game, error)
	GetGameByID(ctx context.Context, db bun.IDB, id int64) (*Game, error)
	ListActiveGames(ctx context.Context, db bun.IDB) ([]Game, error)

	// GetItemByName looks a non-deleted item up by name, case-insensitively.
	GetItemByName(ctx context.Context, db bun.IDB, gameID int64, name string) (*Item, error)
	// GetItemsByIDs returns items including deleted ones, in no particular order.
	GetItemsByIDs(ctx context.Context, db bun.IDB, ids []int64) ([]Item, error)
	// ListRemainingItemNames returns non-deleted item names not in exclude, sorted.
	ListRemainingItemNames(ctx context.Context, db bun.IDB, gameID int64, exclude []int64) ([]string, error)
	CountActiveItems(ctx context.Context, db bun.IDB, gameID int64) (int, error)
	// GetActiveItemAt returns the offset-th non-deleted item ordered by id.
	GetActiveItemAt(ctx context.Context, db bun.IDB, gameID int64, offset int) (*Item, error)

	GetDailyTarget(ctx context.Context, db bun.IDB, gameID int64, date time.Time, isTeam bool) (*DailyTarget, error)
	GetDailyTargetByID(ctx context.Context, db bun.IDB, id int64) (*DailyTarget, error)
	// CreateDailyTarget inserts the target unless one already exists for its
	// (game, date, is_team) and reports whether a row was written.
	CreateDailyTarget(ctx context.Context, db bun.IDB, target *DailyTarget) (bool, error)
}
