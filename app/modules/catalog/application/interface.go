package catalogservice

import (
	"context"
	"time"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Service exposes games, items and target selection to the play modes.
//
// Methods taking a bun.IDB join the caller's transaction when db is non-nil.
type Service interface {
	GetGame(ctx context.Context, slug string) (*catalogdb.Game, error)
	GetGameByID(ctx context.Context, db bun.IDB, id int64) (*catalogdb.Game, error)

	// GameDay is the date whose daily target is live at now.
	GameDay(now time.Time) time.Time
	GetTodayTarget(ctx context.Context, db bun.IDB, gameID int64, isTeam bool) (*catalogdb.DailyTarget, error)
	GetYesterdayTarget(ctx context.Context, db bun.IDB, gameID int64, isTeam bool) (*catalogdb.DailyTarget, error)
	GetDailyTargetByID(ctx context.Context, db bun.IDB, id int64) (*catalogdb.DailyTarget, error)
	PickRandomTarget(ctx context.Context, db bun.IDB, gameID int64) (*catalogdb.Item, error)

	ResolveGuess(ctx context.Context, db bun.IDB, gameID int64, name string) (*catalogdb.Item, error)
	RemainingNames(ctx context.Context, db bun.IDB, gameID int64, exclude []int64) ([]string, error)
	ItemsByID(ctx context.Context, db bun.IDB, ids []int64) (map[int64]catalogdb.Item, error)

	GenerateDailyTargets(ctx context.Context) (*GenerationSummary, error)
}

// GenerationSummary reports what a daily target run did.
type GenerationSummary struct {
	Created  int
	Existing int
	// EmptyGames lists slugs that have no selectable items.
	EmptyGames []string
}
