package dueldb

import (
	"time"

	dueldomain "github.com/Black-And-White-Club/guessdle/app/modules/duel/domain"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/uptrace/bun"
)

// Challenge is a duel between two users over the same hidden item.
type Challenge struct {
	bun.BaseModel `bun:"table:challenges,alias:ch"`

	ID                 int64               `bun:"id,pk,autoincrement"`
	ChallengerID       sharedtypes.UserID  `bun:"challenger_id,notnull"`
	OpponentID         sharedtypes.UserID  `bun:"opponent_id,notnull"`
	GameID             int64               `bun:"game_id,notnull"`
	TargetID           int64               `bun:"target_id,notnull"`
	Accepted           bool                `bun:"accepted,notnull,default:false"`
	Completed          bool                `bun:"completed,notnull,default:false"`
	WinnerID           *sharedtypes.UserID `bun:"winner_id,nullzero"`
	ChallengerAttempts *int                `bun:"challenger_attempts,nullzero"`
	OpponentAttempts   *int                `bun:"opponent_attempts,nullzero"`
	PointsAssigned     bool                `bun:"points_assigned,notnull,default:false"`
	CreatedAt          time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	CompletedAt        *time.Time          `bun:"completed_at,nullzero"`
}

// State is the lifecycle state of the challenge.
func (c *Challenge) State() dueldomain.State {
	return dueldomain.StateOf(c.Accepted, c.Completed, c.PointsAssigned)
}

// IsParticipant reports whether userID is one of the two duellists.
func (c *Challenge) IsParticipant(userID sharedtypes.UserID) bool {
	return userID == c.ChallengerID || userID == c.OpponentID
}

// UserOf maps a side back to its user.
func (c *Challenge) UserOf(side dueldomain.Side) sharedtypes.UserID {
	switch side {
	case dueldomain.SideChallenger:
		return c.ChallengerID
	case dueldomain.SideOpponent:
		return c.OpponentID
	}
	return ""
}

// AttemptsOf returns the reported attempts of userID, nil when not reported.
func (c *Challenge) AttemptsOf(userID sharedtypes.UserID) *int {
	switch userID {
	case c.ChallengerID:
		return c.ChallengerAttempts
	case c.OpponentID:
		return c.OpponentAttempts
	}
	return nil
}
