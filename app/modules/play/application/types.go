package playservice

import (
	"errors"
	"time"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	catalogdomain "github.com/Black-And-White-Club/guessdle/app/modules/catalog/domain"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	duelservice "github.com/Black-And-White-Club/guessdle/app/modules/duel/application"
	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	wagerservice "github.com/Black-And-White-Club/guessdle/app/modules/wager/application"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidGuess covers both an unknown name and a repeated guess; the
	// two are not told apart.
	ErrInvalidGuess     = errors.New("guess not accepted")
	ErrSessionClosed    = errors.New("session already won")
	ErrUnknownMode      = errors.New("unknown play mode")
	ErrUnknownReference = errors.New("no such extra play or challenge for this player")
	ErrNoActiveTarget   = catalogservice.ErrNoActiveTarget
	ErrGameNotFound     = catalogservice.ErrGameNotFound
)

// GuessRequest is one guess submission. ReferenceID names the extra play or
// challenge; daily guesses always play today's target and ignore it.
type GuessRequest struct {
	Player      sharedtypes.Player      `json:"player"`
	Game        string                  `json:"game"`
	Mode        sharedtypes.SessionType `json:"mode"`
	ReferenceID int64                   `json:"reference_id,omitempty"`
	Guess       string                  `json:"guess"`
}

// GuessOutcome is the answer to a guess. Feedback, Reward and Correct are only
// meaningful when Accepted is set.
type GuessOutcome struct {
	Accepted  bool                              `json:"accepted"`
	Correct   bool                              `json:"correct"`
	Feedback  []catalogdomain.AttributeFeedback `json:"feedback,omitempty"`
	Remaining []string                          `json:"remaining_names"`
	SessionID int64                             `json:"session_id"`
	Attempts  int                               `json:"attempts"`
	Reward    *Reward                           `json:"reward,omitempty"`
}

// Reward is what a winning guess paid out.
type Reward struct {
	Points  decimal.Decimal             `json:"points"`
	Balance decimal.Decimal             `json:"balance"`
	Rating  *ledgerservice.RatingChange `json:"rating,omitempty"`
	Wager   *wagerservice.Settlement    `json:"wager,omitempty"`
	Duel    *duelservice.Resolution     `json:"duel,omitempty"`
}

// StateRequest selects a session to inspect.
type StateRequest struct {
	Player      sharedtypes.Player      `json:"player"`
	Game        string                  `json:"game"`
	Mode        sharedtypes.SessionType `json:"mode"`
	ReferenceID int64                   `json:"reference_id,omitempty"`
}

// SessionState is the read-only view of a session. Target is only set once
// the session is won.
type SessionState struct {
	GameID          int64                   `json:"game_id"`
	Mode            sharedtypes.SessionType `json:"mode"`
	ReferenceID     int64                   `json:"reference_id"`
	SessionID       int64                   `json:"session_id,omitempty"`
	Won             bool                    `json:"won"`
	CanPlay         bool                    `json:"can_play"`
	Target          *catalogdb.Item         `json:"target,omitempty"`
	Attempts        []AttemptView           `json:"attempts"`
	Remaining       []string                `json:"remaining_names"`
	YesterdayTarget string                  `json:"yesterday_target,omitempty"`
}

// AttemptView is one past guess with its feedback.
type AttemptView struct {
	ItemID    int64                             `json:"item_id"`
	Name      string                            `json:"name"`
	Correct   bool                              `json:"correct"`
	Feedback  []catalogdomain.AttributeFeedback `json:"feedback"`
	CreatedAt time.Time                         `json:"created_at"`
}
