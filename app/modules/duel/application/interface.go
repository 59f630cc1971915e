package duelservice

import (
	"context"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Service runs head-to-head challenges.
//
// Methods taking a bun.IDB join the caller's transaction when db is non-nil.
type Service interface {
	CreateChallenge(ctx context.Context, challengerID, opponentID sharedtypes.UserID, gameID int64) (*dueldb.Challenge, error)
	GetChallenge(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error)
	// AcceptIfNeeded accepts the challenge on the opponent's first
	// interaction and checks that userID takes part in it.
	AcceptIfNeeded(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID) (*dueldb.Challenge, error)
	// ReportAttempts stores the user's attempt count (the first report is
	// kept) and resolves the challenge once both sides have reported.
	ReportAttempts(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID, attempts int) (*Resolution, error)
	Resolve(ctx context.Context, db bun.IDB, id int64) (*Resolution, error)
	ListChallenges(ctx context.Context, userID sharedtypes.UserID, openOnly bool) ([]dueldb.Challenge, error)
}

// Ledger is the slice of the ledger service duels pay out through.
type Ledger interface {
	AwardForAttempts(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int) (*ledgerservice.Award, error)
	Credit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// TargetPicker draws the hidden item both duellists guess.
type TargetPicker interface {
	PickRandomTarget(ctx context.Context, db bun.IDB, gameID int64) (*catalogdb.Item, error)
}
