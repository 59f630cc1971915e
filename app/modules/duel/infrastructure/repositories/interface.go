package dueldb

import (
	"context"
	"errors"
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a challenge does not exist.
var ErrNotFound = errors.New("challenge not found")

// Repository defines the contract for challenge persistence.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, challenge *Challenge) error
	Get(ctx context.Context, db bun.IDB, id int64) (*Challenge, error)
	GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*Challenge, error)
	ListForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, openOnly bool) ([]Challenge, error)

	// The setters below only act on the first call; they report whether the
	// row changed.
	MarkAccepted(ctx context.Context, db bun.IDB, id int64) (bool, error)
	SetAttempts(ctx context.Context, db bun.IDB, id int64, challenger bool, attempts int) (bool, error)
	MarkCompleted(ctx context.Context, db bun.IDB, id int64, winner *sharedtypes.UserID, at time.Time) (bool, error)
	MarkPointsAssigned(ctx context.Context, db bun.IDB, id int64) (bool, error)
}
