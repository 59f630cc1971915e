// Package wagerevents holds the extra play topics and payloads.
package wagerevents

import (
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
)

const (
	WagerStartRequestedV1 = "guessdle.wager.start.requested.v1"
	WagerStartSucceededV1 = "guessdle.wager.start.succeeded.v1"
	WagerStartFailedV1    = "guessdle.wager.start.failed.v1"
)

// WagerStartRequestedPayloadV1 stakes points on a new extra play.
type WagerStartRequestedPayloadV1 struct {
	Player sharedtypes.Player `json:"player"`
	Game   string             `json:"game"`
	Stake  decimal.Decimal    `json:"stake"`
}

// WagerStartSucceededPayloadV1 names the extra play to guess against. The
// target stays hidden.
type WagerStartSucceededPayloadV1 struct {
	Player         sharedtypes.Player `json:"player"`
	Game           string             `json:"game"`
	ExtraPlayID    int64              `json:"extra_play_id"`
	Stake          decimal.Decimal    `json:"stake"`
	RemainingToday int                `json:"remaining_today"`
}

// WagerStartFailedPayloadV1 reports a rejected wager.
type WagerStartFailedPayloadV1 struct {
	Player sharedtypes.Player `json:"player"`
	Game   string             `json:"game"`
	Stake  decimal.Decimal    `json:"stake"`
	Reason string             `json:"reason"`
}
