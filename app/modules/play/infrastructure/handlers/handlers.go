package playhandlers

import (
	"errors"
	"log/slog"

	playservice "github.com/Black-And-White-Club/guessdle/app/modules/play/application"
	"go.opentelemetry.io/otel/trace"
)

// PlayHandlers turns play requests into service calls.
type PlayHandlers struct {
	service playservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewPlayHandlers creates a new instance of PlayHandlers.
func NewPlayHandlers(service playservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &PlayHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// failures become *.failed.v1 events; any other error is returned so the
// message is redelivered.
var failures = []error{
	playservice.ErrInvalidGuess,
	playservice.ErrSessionClosed,
	playservice.ErrUnknownMode,
	playservice.ErrUnknownReference,
	playservice.ErrNoActiveTarget,
	playservice.ErrGameNotFound,
}

func isFailure(err error) bool {
	for _, target := range failures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
