// Package duelevents holds the challenge topics and payloads.
package duelevents

import (
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
)

const (
	ChallengeCreateRequestedV1 = "guessdle.challenge.create.requested.v1"
	ChallengeCreateSucceededV1 = "guessdle.challenge.create.succeeded.v1"
	ChallengeCreateFailedV1    = "guessdle.challenge.create.failed.v1"

	ChallengeReportRequestedV1 = "guessdle.challenge.report.requested.v1"
	ChallengeReportSucceededV1 = "guessdle.challenge.report.succeeded.v1"
	ChallengeReportFailedV1    = "guessdle.challenge.report.failed.v1"
)

// ChallengeCreateRequestedPayloadV1 opens a challenge against OpponentID.
type ChallengeCreateRequestedPayloadV1 struct {
	Player     sharedtypes.Player `json:"player"`
	OpponentID sharedtypes.UserID `json:"opponent_id"`
	Game       string             `json:"game"`
}

// ChallengeCreateSucceededPayloadV1 names the new challenge.
type ChallengeCreateSucceededPayloadV1 struct {
	ChallengeID  int64              `json:"challenge_id"`
	ChallengerID sharedtypes.UserID `json:"challenger_id"`
	OpponentID   sharedtypes.UserID `json:"opponent_id"`
	Game         string             `json:"game"`
}

// ChallengeCreateFailedPayloadV1 reports a rejected challenge.
type ChallengeCreateFailedPayloadV1 struct {
	Player     sharedtypes.Player `json:"player"`
	OpponentID sharedtypes.UserID `json:"opponent_id"`
	Game       string             `json:"game"`
	Reason     string             `json:"reason"`
}

// ChallengeReportRequestedPayloadV1 reports a participant's attempt count.
type ChallengeReportRequestedPayloadV1 struct {
	Player      sharedtypes.Player `json:"player"`
	ChallengeID int64              `json:"challenge_id"`
	Attempts    int                `json:"attempts"`
}

// ChallengeReportSucceededPayloadV1 is the challenge after the report.
// Status is pending until both sides have reported.
type ChallengeReportSucceededPayloadV1 struct {
	ChallengeID int64                                  `json:"challenge_id"`
	Status      string                                 `json:"status"`
	WinnerID    sharedtypes.UserID                     `json:"winner_id,omitempty"`
	LoserID     sharedtypes.UserID                     `json:"loser_id,omitempty"`
	Points      map[sharedtypes.UserID]decimal.Decimal `json:"points,omitempty"`
}

// ChallengeReportFailedPayloadV1 reports a rejected attempt report.
type ChallengeReportFailedPayloadV1 struct {
	Player      sharedtypes.Player `json:"player"`
	ChallengeID int64              `json:"challenge_id"`
	Reason      string             `json:"reason"`
}
