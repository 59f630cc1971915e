package wagerservice

import (
	"context"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	wagerdb "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Service runs wagered extra plays.
type Service interface {
	StartWager(ctx context.Context, userID sharedtypes.UserID, gameID int64, stake decimal.Decimal) (*wagerdb.ExtraPlay, error)
	GetWager(ctx context.Context, db bun.IDB, id int64) (*wagerdb.ExtraPlay, error)
	// Settle pays out a finished extra play. db joins the caller's
	// transaction so settlement commits with the winning attempt.
	Settle(ctx context.Context, db bun.IDB, playID int64, sessionID int64, attempts int) (*Settlement, error)
	RemainingToday(ctx context.Context, userID sharedtypes.UserID, gameID int64) (int, error)
	ListOpen(ctx context.Context, userID sharedtypes.UserID, gameID int64) ([]wagerdb.ExtraPlay, error)
}

// Ledger is the slice of the ledger service wagers move points through.
type Ledger interface {
	LockBalance(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (decimal.Decimal, error)
	Debit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error)
	Credit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error)
	BaselineAttempts(ctx context.Context, db bun.IDB, query ledgerservice.BaselineQuery) (float64, bool, error)
}

// TargetPicker draws the hidden item of a new extra play.
type TargetPicker interface {
	PickRandomTarget(ctx context.Context, db bun.IDB, gameID int64) (*catalogdb.Item, error)
}
