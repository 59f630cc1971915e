package catalogservice

import (
	"context"
	"time"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Catalog Repo
// ------------------------

type FakeCatalogRepo struct {
	trace []string

	GetGameBySlugFunc          func(ctx context.Context, db bun.IDB, slug string) (*catalogdb.Game, error)
	GetGameByIDFunc            func(ctx context.Context, db bun.IDB, id int64) (*catalogdb.Game, error)
	ListActiveGamesFunc        func(ctx context.Context, db bun.IDB) ([]catalogdb.Game, error)
	GetItemByNameFunc          func(ctx context.Context, db bun.IDB, gameID int64, name string) (*catalogdb.Item, error)
	GetItemsByIDsFunc          func(ctx context.Context, db bun.IDB, ids []int64) ([]catalogdb.Item, error)
	ListRemainingItemNamesFunc func(ctx context.Context, db bun.IDB, gameID int64, exclude []int64) ([]string, error)
	CountActiveItemsFunc       func(ctx context.Context, db bun.IDB, gameID int64) (int, error)
	GetActiveItemAtFunc        func(ctx context.Context, db bun.IDB, gameID int64, offset int) (*catalogdb.Item, error)
	GetDailyTargetFunc         func(ctx context.Context, db bun.IDB, gameID int64, date time.Time, isTeam bool) (*catalogdb.DailyTarget, error)
	GetDailyTargetByIDFunc     func(ctx context.Context, db bun.IDB, id int64) (*catalogdb.DailyTarget, error)
	CreateDailyTargetFunc      func(ctx context.Context, db bun.IDB, target *catalogdb.DailyTarget) (bool, error)
}

func NewFakeCatalogRepo() *FakeCatalogRepo {
	return &FakeCatalogRepo{trace: []string{}}
}

func (f *FakeCatalogRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeCatalogRepo) GetGameBySlug(ctx context.Context, db bun.IDB, slug string) (*catalogdb.Game, error) {
	f.record("GetGameBySlug")
	if f.GetGameBySlugFunc != nil {
		return f.GetGameBySlugFunc(ctx, db, slug)
	}
	return nil, catalogdb.ErrNotFound
}

func (f *FakeCatalogRepo) GetGameByID(ctx context.Context, db bun.IDB, id int64) (*catalogdb.Game, error) {
	f.record("GetGameByID")
	if f.GetGameByIDFunc != nil {
		return f.GetGameByIDFunc(ctx, db, id)
	}
	return nil, catalogdb.ErrNotFound
}

func (f *FakeCatalogRepo) ListActiveGames(ctx context.Context, db bun.IDB) ([]catalogdb.Game, error) {
	f.record("ListActiveGames")
	if f.ListActiveGamesFunc != nil {
		return f.ListActiveGamesFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeCatalogRepo) GetItemByName(ctx context.Context, db bun.IDB, gameID int64, name string) (*catalogdb.Item, error) {
	f.record("GetItemByName")
	if f.GetItemByNameFunc != nil {
		return f.GetItemByNameFunc(ctx, db, gameID, name)
	}
	return nil, catalogdb.ErrNotFound
}

func (f *FakeCatalogRepo) GetItemsByIDs(ctx context.Context, db bun.IDB, ids []int64) ([]catalogdb.Item, error) {
	f.record("GetItemsByIDs")
	if f.GetItemsByIDsFunc != nil {
		return f.GetItemsByIDsFunc(ctx, db, ids)
	}
	return nil, nil
}

func (f *FakeCatalogRepo) ListRemainingItemNames(ctx context.Context, db bun.IDB, gameID int64, exclude []int64) ([]string, error) {
	f.record("ListRemainingItemNames")
	if f.ListRemainingItemNamesFunc != nil {
		return f.ListRemainingItemNamesFunc(ctx, db, gameID, exclude)
	}
	return nil, nil
}

func (f *FakeCatalogRepo) CountActiveItems(ctx context.Context, db bun.IDB, gameID int64) (int, error) {
	f.record("CountActiveItems")
	if f.CountActiveItemsFunc != nil {
		return f.CountActiveItemsFunc(ctx, db, gameID)
	}
	return 0, nil
}

func (f *FakeCatalogRepo) GetActiveItemAt(ctx context.Context, db bun.IDB, gameID int64, offset int) (*catalogdb.Item, error) {
	f.record("GetActiveItemAt")
	if f.GetActiveItemAtFunc != nil {
		return f.GetActiveItemAtFunc(ctx, db, gameID, offset)
	}
	return nil, catalogdb.ErrNotFound
}

func (f *FakeCatalogRepo) GetDailyTarget(ctx context.Context, db bun.IDB, gameID int64, date time.Time, isTeam bool) (*catalogdb.DailyTarget, error) {
	f.record("GetDailyTarget")
	if f.GetDailyTargetFunc != nil {
		return f.GetDailyTargetFunc(ctx, db, gameID, date, isTeam)
	}
	return nil, catalogdb.ErrNotFound
}

func (f *FakeCatalogRepo) GetDailyTargetByID(ctx context.Context, db bun.IDB, id int64) (*catalogdb.DailyTarget, error) {
	f.record("GetDailyTargetByID")
	if f.GetDailyTargetByIDFunc != nil {
		return f.GetDailyTargetByIDFunc(ctx, db, id)
	}
	return nil, catalogdb.ErrNotFound
}

func (f *FakeCatalogRepo) CreateDailyTarget(ctx context.Context, db bun.IDB, target *catalogdb.DailyTarget) (bool, error) {
	f.record("CreateDailyTarget")
	if f.CreateDailyTargetFunc != nil {
		return f.CreateDailyTargetFunc(ctx, db, target)
	}
	return true, nil
}

// --- Accessors for assertions ---

func (f *FakeCatalogRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ catalogdb.Repository = (*FakeCatalogRepo)(nil)

// withItems backs the random-selection methods with an in-memory item list.
func (f *FakeCatalogRepo) withItems(items []catalogdb.Item) *FakeCatalogRepo {
	active := func() []catalogdb.Item {
		var out []catalogdb.Item
		for _, it := range items {
			if !it.Deleted {
				out = append(out, it)
			}
		}
		return out
	}
	f.CountActiveItemsFunc = func(ctx context.Context, db bun.IDB, gameID int64) (int, error) {
		return len(active()), nil
	}
	f.GetActiveItemAtFunc = func(ctx context.Context, db bun.IDB, gameID int64, offset int) (*catalogdb.Item, error) {
		a := active()
		if offset < 0 || offset >= len(a) {
			return nil, catalogdb.ErrNotFound
		}
		it := a[offset]
		return &it, nil
	}
	return f
}
