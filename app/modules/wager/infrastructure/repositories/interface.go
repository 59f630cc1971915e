package wagerdb

import (
	"context"
	"errors"
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when an extra play does not exist.
var ErrNotFound = errors.New("extra play not found")

// Repository defines the contract for extra play persistence.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, play *ExtraPlay) error
	Get(ctx context.Context, db bun.IDB, id int64) (*ExtraPlay, error)
	GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*ExtraPlay, error)
	// CountCreatedBetween counts the user's plays created in [from, to).
	CountCreatedBetween(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, from, to time.Time) (int, error)
	ListOpen(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) ([]ExtraPlay, error)
	// MarkCompleted flips completed false->true and stores the payout. It
	// reports false when the play was already completed.
	MarkCompleted(ctx context.Context, db bun.IDB, id int64, payout decimal.Decimal, at time.Time) (bool, error)
}
