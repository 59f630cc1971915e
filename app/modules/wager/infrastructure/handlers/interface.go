package wagerhandlers

import (
	"context"

	wagerevents "github.com/Black-And-White-Club/guessdle/app/events/wager"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
)

// Handlers defines the wager event handlers.
type Handlers interface {
	HandleWagerStartRequested(ctx context.Context, payload *wagerevents.WagerStartRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// GameLookup resolves the game slug carried on the wire.
type GameLookup interface {
	GetGame(ctx context.Context, slug string) (*catalogdb.Game, error)
}
