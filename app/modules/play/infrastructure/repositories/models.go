package playdb

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/uptrace/bun"
)

// PlaySession is one user's run at one target. WonAt and WinningAttempts are
// stamped by the first correct attempt.
type PlaySession struct {
	bun.BaseModel `bun:"table:play_sessions,alias:ps"`

	ID              int64                   `bun:"id,pk,autoincrement"`
	UserID          sharedtypes.UserID      `bun:"user_id,notnull"`
	GameID          int64                   `bun:"game_id,notnull"`
	SessionType     sharedtypes.SessionType `bun:"session_type,notnull"`
	ReferenceID     int64                   `bun:"reference_id,notnull"`
	WonAt           *time.Time              `bun:"won_at,nullzero"`
	WinningAttempts *int                    `bun:"winning_attempts,nullzero"`
	CreatedAt       time.Time               `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Won reports whether a correct attempt has landed.
func (s *PlaySession) Won() bool { return s.WonAt != nil }

// Attempt is one accepted guess.
type Attempt struct {
	bun.BaseModel `bun:"table:attempts,alias:at"`

	ID        int64              `bun:"id,pk,autoincrement"`
	SessionID int64              `bun:"session_id,notnull"`
	UserID    sharedtypes.UserID `bun:"user_id,notnull"`
	ItemID    int64              `bun:"item_id,notnull"`
	Correct   bool               `bun:"correct,notnull,default:false"`
	CreatedAt time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
