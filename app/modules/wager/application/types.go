package wagerservice

import (
	"errors"
	"time"

	wagerdb "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStake       = errors.New("stake must be positive")
	ErrDailyLimitReached  = errors.New("daily extra play limit reached")
	ErrInsufficientPoints = errors.New("insufficient points for stake")
	ErrWagerNotFound      = errors.New("extra play not found")
	ErrInvalidAttempts    = errors.New("attempt count must be positive")
)

// Settings are the wager tunables.
type Settings struct {
	MaxPerDay        int
	PayoutMultiplier decimal.Decimal
	Location         *time.Location
}

// DefaultSettings returns two plays a day paying 1.5x in UTC.
func DefaultSettings() Settings {
	return Settings{
		MaxPerDay:        2,
		PayoutMultiplier: decimal.RequireFromString("1.5"),
		Location:         time.UTC,
	}
}

// Settlement is the outcome of settling an extra play. AlreadySettled is set
// when an earlier call did the work and Payout is the stored value.
type Settlement struct {
	Play           *wagerdb.ExtraPlay `json:"play"`
	Won            bool               `json:"won"`
	Baseline       float64            `json:"baseline"`
	HasBaseline    bool               `json:"has_baseline"`
	Payout         decimal.Decimal    `json:"payout"`
	Balance        decimal.Decimal    `json:"balance"`
	AlreadySettled bool               `json:"already_settled"`
}
