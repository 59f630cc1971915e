package ledgerservice

import (
	"errors"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidAttempts    = errors.New("attempt count must be positive")
)

// Settings are the ledger tunables.
type Settings struct {
	Floor         int
	Decrement     int
	InitialRating float64
	RatingK       float64
	InitialPoints decimal.Decimal
}

// DefaultSettings mirrors the configured defaults.
func DefaultSettings() Settings {
	return Settings{
		Floor:         0,
		Decrement:     10,
		InitialRating: 1200,
		RatingK:       32,
		InitialPoints: decimal.Zero,
	}
}

// Award is the outcome of crediting a finished session.
type Award struct {
	Points      int             `json:"points"`
	Balance     decimal.Decimal `json:"balance"`
	GamesPlayed int             `json:"games_played"`
}

// RatingChange reports a rating update. Applied is false when there was no
// baseline or no opponent yet.
type RatingChange struct {
	Before  float64 `json:"before"`
	After   float64 `json:"after"`
	Applied bool    `json:"applied"`
}

// BaselineQuery selects the won sessions whose mean attempt count forms a baseline.
type BaselineQuery struct {
	GameID           int64
	SessionType      sharedtypes.SessionType
	ExcludeSessionID int64
	ExcludeUserID    sharedtypes.UserID
	OnlyUserID       sharedtypes.UserID
}

// Standing is a user's position in one game.
type Standing struct {
	UserID          sharedtypes.UserID `json:"user_id"`
	GameID          int64              `json:"game_id"`
	Points          decimal.Decimal    `json:"points"`
	GamesPlayed     int                `json:"games_played"`
	Rating          float64            `json:"rating"`
	AverageAttempts float64            `json:"average_attempts"`
}

// RankingEntry is one row of a leaderboard ordered by average attempts.
type RankingEntry struct {
	Position        int                `json:"position"`
	UserID          sharedtypes.UserID `json:"user_id"`
	Games           int                `json:"games"`
	AverageAttempts float64            `json:"average_attempts"`
	Points          decimal.Decimal    `json:"points"`
	Rating          float64            `json:"rating"`
}

// ResetSummary reports what ResetStats removed.
type ResetSummary struct {
	Attempts   int64
	Sessions   int64
	ExtraPlays int64
	Ledgers    int64
}
