package duelservice

import (
	"errors"

	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
)

var (
	ErrSelfChallenge     = errors.New("cannot challenge yourself")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrNotParticipant    = errors.New("user is not part of this challenge")
	ErrInvalidAttempts   = errors.New("attempt count must be positive")
)

// ResolutionStatus summarises what Resolve did.
type ResolutionStatus string

const (
	// StatusPending means at least one side has not reported yet.
	StatusPending ResolutionStatus = "pending"
	StatusTie     ResolutionStatus = "tie"
	StatusWinner  ResolutionStatus = "winner"
	// StatusAlreadyResolved means points were assigned by an earlier call.
	StatusAlreadyResolved ResolutionStatus = "already-resolved"
)

// Resolution is the outcome of resolving a challenge. Points holds the total
// credited per user by this call.
type Resolution struct {
	Challenge *dueldb.Challenge                      `json:"challenge"`
	Status    ResolutionStatus                       `json:"status"`
	WinnerID  sharedtypes.UserID                     `json:"winner_id,omitempty"`
	LoserID   sharedtypes.UserID                     `json:"loser_id,omitempty"`
	Points    map[sharedtypes.UserID]decimal.Decimal `json:"points,omitempty"`
}
