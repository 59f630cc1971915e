package ledgerdb

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ScoreLedger is a user's running balance and rating in one game.
type ScoreLedger struct {
	bun.BaseModel `bun:"table:score_ledgers,alias:sl"`

	UserID      sharedtypes.UserID `bun:"user_id,pk"`
	GameID      int64              `bun:"game_id,pk"`
	Points      decimal.Decimal    `bun:"points,type:numeric(14,2),notnull,default:0"`
	GamesPlayed int                `bun:"games_played,notnull,default:0"`
	Rating      float64            `bun:"rating,notnull,default:1200"`
	UpdatedAt   time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ScoringRule awards a fixed number of points for finishing in AttemptNo
// attempts. A nil GameID makes the rule global.
type ScoringRule struct {
	bun.BaseModel `bun:"table:scoring_rules,alias:sr"`

	ID        int64  `bun:"id,pk,autoincrement"`
	GameID    *int64 `bun:"game_id"`
	AttemptNo int    `bun:"attempt_no,notnull"`
	Points    int    `bun:"points,notnull"`
}

// AverageFilter narrows the won sessions averaged by AverageWinningAttempts.
type AverageFilter struct {
	GameID           int64
	SessionType      sharedtypes.SessionType
	ExcludeSessionID int64
	ExcludeUserID    sharedtypes.UserID
	OnlyUserID       sharedtypes.UserID
}

// RankingRow aggregates a user's won sessions.
type RankingRow struct {
	UserID          sharedtypes.UserID `bun:"user_id"`
	Games           int                `bun:"games"`
	AverageAttempts float64            `bun:"average_attempts"`
}

// CompletedSession is a won session as replayed by rating recalculation.
type CompletedSession struct {
	ID       int64              `bun:"id"`
	UserID   sharedtypes.UserID `bun:"user_id"`
	Attempts int                `bun:"winning_attempts"`
	WonAt    time.Time          `bun:"won_at"`
}

// ResetCounts reports what a stats reset removed.
type ResetCounts struct {
	Attempts   int64
	Sessions   int64
	ExtraPlays int64
	Ledgers    int64
}
