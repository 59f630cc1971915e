package duelhandlers

import (
	"context"

	duelevents "github.com/Black-And-White-Club/guessdle/app/events/duel"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
)

// Handlers defines the challenge event handlers.
type Handlers interface {
	HandleChallengeCreateRequested(ctx context.Context, payload *duelevents.ChallengeCreateRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleChallengeReportRequested(ctx context.Context, payload *duelevents.ChallengeReportRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// GameLookup resolves the game slug carried on the wire.
type GameLookup interface {
	GetGame(ctx context.Context, slug string) (*catalogdb.Game, error)
}
