package duelhandlers

import (
	"errors"
	"log/slog"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	duelservice "github.com/Black-And-White-Club/guessdle/app/modules/duel/application"
	"go.opentelemetry.io/otel/trace"
)

// DuelHandlers turns challenge requests into service calls.
type DuelHandlers struct {
	service duelservice.Service
	games   GameLookup
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewDuelHandlers creates a new instance of DuelHandlers.
func NewDuelHandlers(service duelservice.Service, games GameLookup, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &DuelHandlers{
		service: service,
		games:   games,
		logger:  logger,
		tracer:  tracer,
	}
}

var failures = []error{
	duelservice.ErrSelfChallenge,
	duelservice.ErrChallengeNotFound,
	duelservice.ErrNotParticipant,
	duelservice.ErrInvalidAttempts,
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
