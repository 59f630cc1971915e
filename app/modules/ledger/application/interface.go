package ledgerservice

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Service is the only writer of score ledgers.
//
// Methods taking a bun.IDB join the caller's transaction when db is non-nil,
// so a credit always commits together with the state flag that gates it.
type Service interface {
	PointsFor(ctx context.Context, db bun.IDB, gameID int64, attempts int) (int, error)
	AwardForAttempts(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int) (*Award, error)
	Credit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error)
	// LockBalance creates the ledger row if needed, locks it for the rest of
	// the transaction and returns the balance.
	LockBalance(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (decimal.Decimal, error)
	GetBalance(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (decimal.Decimal, error)
	BaselineAttempts(ctx context.Context, db bun.IDB, query BaselineQuery) (float64, bool, error)

	UpdateRating(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int, sessionID int64) (*RatingChange, error)
	RecalculateRatings(ctx context.Context, gameID int64) (int, error)

	GetStanding(ctx context.Context, userID sharedtypes.UserID, gameID int64) (*Standing, error)
	GetRankings(ctx context.Context, gameID int64) ([]RankingEntry, error)
	ResetStats(ctx context.Context) (*ResetSummary, error)
}
