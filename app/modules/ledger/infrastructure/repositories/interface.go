package ledgerdb

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Repository defines the contract for ledger persistence.
type Repository interface {
	// LockLedger creates the ledger row if missing and locks it FOR UPDATE.
	LockLedger(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, initial decimal.Decimal, rating float64) (*ScoreLedger, error)
	GetLedger(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (*ScoreLedger, error)
	ListLedgers(ctx context.Context, db bun.IDB, gameID int64) ([]ScoreLedger, error)

	// AddPoints adds delta to the balance, optionally counting a played game.
	AddPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, delta decimal.Decimal, countGame bool) (*ScoreLedger, error)
	// DebitIfSufficient subtracts amount only when the balance covers it.
	DebitIfSufficient(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (*ScoreLedger, bool, error)
	SetRating(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, rating float64) error
	// OpponentRatings returns ratings of other users of the game who have played.
	OpponentRatings(ctx context.Context, db bun.IDB, gameID int64, excludeUser sharedtypes.UserID) ([]float64, error)

	// FindScoringRule prefers a game rule over a global one for attemptNo.
	FindScoringRule(ctx context.Context, db bun.IDB, gameID int64, attemptNo int) (*ScoringRule, error)

	AverageWinningAttempts(ctx context.Context, db bun.IDB, filter AverageFilter) (float64, bool, error)
	// ListRankings aggregates won sessions; gameID 0 spans every game.
	ListRankings(ctx context.Context, db bun.IDB, gameID int64) ([]RankingRow, error)
	ListCompletedSessions(ctx context.Context, db bun.IDB, gameID int64, sessionType sharedtypes.SessionType) ([]CompletedSession, error)
	ResetRatings(ctx context.Context, db bun.IDB, gameID int64, rating float64) error

	// ResetStats deletes all play history and zeroes every ledger.
	ResetStats(ctx context.Context, db bun.IDB, rating float64) (*ResetCounts, error)
}
