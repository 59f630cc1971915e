package wagerhandlers

import (
	"context"
	"errors"
	"log/slog"

	wagerevents "github.com/Black-And-White-Club/guessdle/app/events/wager"
	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	wagerservice "github.com/Black-And-White-Club/guessdle/app/modules/wager/application"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// WagerHandlers turns wager requests into service calls.
type WagerHandlers struct {
	service wagerservice.Service
	games   GameLookup
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewWagerHandlers creates a new instance of WagerHandlers.
func NewWagerHandlers(service wagerservice.Service, games GameLookup, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &WagerHandlers{
		service: service,
		games:   games,
		logger:  logger,
		tracer:  tracer,
	}
}

var failures = []error{
	wagerservice.ErrInvalidStake,
	wagerservice.ErrDailyLimitReached,
	wagerservice.ErrInsufficientPoints,
	catalogservice.ErrGameNotFound,
	catalogservice.ErrEmptyGame,
}

func isFailure(err error) bool {
	for _, target := range failures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HandleWagerStartRequested debits the stake and opens an extra play.
func (h *WagerHandlers) HandleWagerStartRequested(
	ctx context.Context,
	payload *wagerevents.WagerStartRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	fail := func(err error) ([]handlerwrapper.Result, error) {
		if !isFailure(err) {
			return nil, err
		}
		h.logger.InfoContext(ctx, "Wager rejected",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(payload.Player.UserID),
			attr.String("reason", err.Error()),
		)
		return []handlerwrapper.Result{{
			Topic: wagerevents.WagerStartFailedV1,
			Payload: &wagerevents.WagerStartFailedPayloadV1{
				Player: payload.Player,
				Game:   payload.Game,
				Stake:  payload.Stake,
				Reason: err.Error(),
			},
		}}, nil
	}

	game, err := h.games.GetGame(ctx, payload.Game)
	if err != nil {
		return fail(err)
	}

	play, err := h.service.StartWager(ctx, payload.Player.UserID, game.ID, payload.Stake)
	if err != nil {
		return fail(err)
	}

	remaining, err := h.service.RemainingToday(ctx, payload.Player.UserID, game.ID)
	if err != nil {
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: wagerevents.WagerStartSucceededV1,
		Payload: &wagerevents.WagerStartSucceededPayloadV1{
			Player:         payload.Player,
			Game:           game.Slug,
			ExtraPlayID:    play.ID,
			Stake:          play.Stake,
			RemainingToday: remaining,
		},
	}}, nil
}
