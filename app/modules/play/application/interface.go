package playservice

import (
	"context"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	duelservice "github.com/Black-And-White-Club/guessdle/app/modules/duel/application"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	wagerservice "github.com/Black-And-White-Club/guessdle/app/modules/wager/application"
	wagerdb "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/uptrace/bun"
)

// Service is the guess submission entry point shared by every mode.
type Service interface {
	SubmitGuess(ctx context.Context, req GuessRequest) (*GuessOutcome, error)
	GetSessionState(ctx context.Context, req StateRequest) (*SessionState, error)
	// IsDailyResolved reports whether today's daily target exists and the
	// player has already guessed it.
	IsDailyResolved(ctx context.Context, player sharedtypes.Player, gameSlug string) (bool, error)
}

// Catalog is what play needs from the catalog module.
type Catalog interface {
	GetGame(ctx context.Context, slug string) (*catalogdb.Game, error)
	GetTodayTarget(ctx context.Context, db bun.IDB, gameID int64, isTeam bool) (*catalogdb.DailyTarget, error)
	GetYesterdayTarget(ctx context.Context, db bun.IDB, gameID int64, isTeam bool) (*catalogdb.DailyTarget, error)
	ResolveGuess(ctx context.Context, db bun.IDB, gameID int64, name string) (*catalogdb.Item, error)
	RemainingNames(ctx context.Context, db bun.IDB, gameID int64, exclude []int64) ([]string, error)
	ItemsByID(ctx context.Context, db bun.IDB, ids []int64) (map[int64]catalogdb.Item, error)
}

// Ledger credits finished daily sessions.
type Ledger interface {
	AwardForAttempts(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int) (*ledgerservice.Award, error)
	UpdateRating(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int, sessionID int64) (*ledgerservice.RatingChange, error)
}

// Wagers loads and settles extra plays.
type Wagers interface {
	GetWager(ctx context.Context, db bun.IDB, id int64) (*wagerdb.ExtraPlay, error)
	Settle(ctx context.Context, db bun.IDB, playID int64, sessionID int64, attempts int) (*wagerservice.Settlement, error)
}

// Duels loads challenges and takes attempt reports.
type Duels interface {
	GetChallenge(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error)
	AcceptIfNeeded(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID) (*dueldb.Challenge, error)
	ReportAttempts(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID, attempts int) (*duelservice.Resolution, error)
}
