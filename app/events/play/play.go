// Package playevents holds the guess submission topics and payloads.
package playevents

import (
	catalogdomain "github.com/Black-And-White-Club/guessdle/app/modules/catalog/domain"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
)

const (
	GuessSubmitRequestedV1 = "guessdle.guess.submit.requested.v1"
	GuessSubmitSucceededV1 = "guessdle.guess.submit.succeeded.v1"
	GuessSubmitFailedV1    = "guessdle.guess.submit.failed.v1"

	SessionStateRequestedV1 = "guessdle.session.state.requested.v1"
	SessionStateSucceededV1 = "guessdle.session.state.succeeded.v1"
	SessionStateFailedV1    = "guessdle.session.state.failed.v1"
)

// GuessSubmitRequestedPayloadV1 asks the core to evaluate one guess.
type GuessSubmitRequestedPayloadV1 struct {
	Player      sharedtypes.Player      `json:"player"`
	Game        string                  `json:"game"`
	Mode        sharedtypes.SessionType `json:"mode"`
	ReferenceID int64                   `json:"reference_id,omitempty"`
	Guess       string                  `json:"guess"`
}

// GuessSubmitSucceededPayloadV1 carries the evaluated guess. Accepted is
// false for an unknown or repeated name; nothing else is set then.
type GuessSubmitSucceededPayloadV1 struct {
	Player         sharedtypes.Player                `json:"player"`
	Game           string                            `json:"game"`
	Mode           sharedtypes.SessionType           `json:"mode"`
	ReferenceID    int64                             `json:"reference_id,omitempty"`
	Accepted       bool                              `json:"accepted"`
	Correct        bool                              `json:"correct"`
	Feedback       []catalogdomain.AttributeFeedback `json:"feedback,omitempty"`
	RemainingNames []string                          `json:"remaining_names"`
	SessionID      int64                             `json:"session_id,omitempty"`
	Attempts       int                               `json:"attempts"`
	Reward         *RewardV1                         `json:"reward,omitempty"`
}

// RewardV1 summarises what a winning guess paid.
type RewardV1 struct {
	Points       decimal.Decimal    `json:"points"`
	Balance      decimal.Decimal    `json:"balance"`
	RatingBefore *float64           `json:"rating_before,omitempty"`
	RatingAfter  *float64           `json:"rating_after,omitempty"`
	WagerWon     *bool              `json:"wager_won,omitempty"`
	DuelStatus   string             `json:"duel_status,omitempty"`
	DuelWinnerID sharedtypes.UserID `json:"duel_winner_id,omitempty"`
}

// GuessSubmitFailedPayloadV1 reports a rejected submission. For an unknown
// or repeated name the session is still open, so its progress and the names
// left to guess are included.
type GuessSubmitFailedPayloadV1 struct {
	Player         sharedtypes.Player      `json:"player"`
	Game           string                  `json:"game"`
	Mode           sharedtypes.SessionType `json:"mode"`
	ReferenceID    int64                   `json:"reference_id,omitempty"`
	Reason         string                  `json:"reason"`
	SessionID      int64                   `json:"session_id,omitempty"`
	Attempts       int                     `json:"attempts,omitempty"`
	RemainingNames []string                `json:"remaining_names,omitempty"`
}

// SessionStateRequestedPayloadV1 asks for the read-only view of a session.
type SessionStateRequestedPayloadV1 struct {
	Player      sharedtypes.Player      `json:"player"`
	Game        string                  `json:"game"`
	Mode        sharedtypes.SessionType `json:"mode"`
	ReferenceID int64                   `json:"reference_id,omitempty"`
}

// SessionStateSucceededPayloadV1 is the session view. TargetName is only
// set once the session is won.
type SessionStateSucceededPayloadV1 struct {
	Player          sharedtypes.Player      `json:"player"`
	Game            string                  `json:"game"`
	Mode            sharedtypes.SessionType `json:"mode"`
	ReferenceID     int64                   `json:"reference_id,omitempty"`
	SessionID       int64                   `json:"session_id,omitempty"`
	Won             bool                    `json:"won"`
	CanPlay         bool                    `json:"can_play"`
	TargetName      string                  `json:"target_name,omitempty"`
	Attempts        []AttemptV1             `json:"attempts"`
	RemainingNames  []string                `json:"remaining_names"`
	YesterdayTarget string                  `json:"yesterday_target,omitempty"`
}

// AttemptV1 is one past guess with its feedback.
type AttemptV1 struct {
	Name     string                            `json:"name"`
	Correct  bool                              `json:"correct"`
	Feedback []catalogdomain.AttributeFeedback `json:"feedback"`
}

// SessionStateFailedPayloadV1 reports a failed session lookup.
type SessionStateFailedPayloadV1 struct {
	Player sharedtypes.Player `json:"player"`
	Game   string             `json:"game"`
	Reason string             `json:"reason"`
}
