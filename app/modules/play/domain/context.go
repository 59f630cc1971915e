// Package playdomain describes which hidden item a play session is played
// against.
package playdomain

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
)

// SessionContext ties a session to the row that chose its target: a daily
// target, an extra play or a challenge. The set of variants is closed.
type SessionContext interface {
	Mode() sharedtypes.SessionType
	// ReferenceID is the id of the daily target, extra play or challenge.
	ReferenceID() int64
	TargetID() int64
	sessionContext()
}

type DailyContext struct {
	DailyTargetID int64
	Target        int64
	Date          time.Time
	IsTeam        bool
}

func (c DailyContext) Mode() sharedtypes.SessionType { return sharedtypes.SessionDaily }
func (c DailyContext) ReferenceID() int64            { return c.DailyTargetID }
func (c DailyContext) TargetID() int64               { return c.Target }
func (DailyContext) sessionContext()                 {}

type ExtraContext struct {
	ExtraPlayID int64
	Target      int64
	Completed   bool
}

func (c ExtraContext) Mode() sharedtypes.SessionType { return sharedtypes.SessionExtra }
func (c ExtraContext) ReferenceID() int64            { return c.ExtraPlayID }
func (c ExtraContext) TargetID() int64               { return c.Target }
func (ExtraContext) sessionContext()                 {}

type DuelContext struct {
	ChallengeID  int64
	Target       int64
	ChallengerID sharedtypes.UserID
	OpponentID   sharedtypes.UserID
}

func (c DuelContext) Mode() sharedtypes.SessionType { return sharedtypes.SessionChallenge }
func (c DuelContext) ReferenceID() int64            { return c.ChallengeID }
func (c DuelContext) TargetID() int64               { return c.Target }
func (DuelContext) sessionContext()                 {}

// SessionKey identifies exactly one session.
type SessionKey struct {
	UserID      sharedtypes.UserID
	GameID      int64
	Mode        sharedtypes.SessionType
	ReferenceID int64
}

// KeyFor builds the session key of a user playing in sc.
func KeyFor(userID sharedtypes.UserID, gameID int64, sc SessionContext) SessionKey {
	return SessionKey{
		UserID:      userID,
		GameID:      gameID,
		Mode:        sc.Mode(),
		ReferenceID: sc.ReferenceID(),
	}
}
