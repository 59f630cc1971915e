package sharedtypes

import "fmt"

// UserID identifies a player as supplied by the identity provider.
type UserID string

// SessionType selects which play mode a session belongs to.
type SessionType string

const (
	SessionDaily     SessionType = "DAILY"
	SessionExtra     SessionType = "EXTRA"
	SessionChallenge SessionType = "CHALLENGE"
)

// ParseSessionType validates a mode string coming off the wire.
func ParseSessionType(s string) (SessionType, error) {
	switch SessionType(s) {
	case SessionDaily, SessionExtra, SessionChallenge:
		return SessionType(s), nil
	}
	return "", fmt.Errorf("unknown session type %q", s)
}

// Player is what the identity provider hands to the core on every request.
type Player struct {
	UserID        UserID `json:"user_id"`
	IsTeamAccount bool   `json:"is_team_account"`
}
