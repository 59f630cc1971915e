package playhandlers

import (
	"context"

	playevents "github.com/Black-And-White-Club/guessdle/app/events/play"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
)

// Handlers defines the play event handlers.
type Handlers interface {
	HandleGuessSubmitRequested(ctx context.Context, payload *playevents.GuessSubmitRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleSessionStateRequested(ctx context.Context, payload *playevents.SessionStateRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
