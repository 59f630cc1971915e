package playrouter

import (
	"context"
	"log/slog"

	playevents "github.com/Black-And-White-Club/guessdle/app/events/play"
	playhandlers "github.com/Black-And-White-Club/guessdle/app/modules/play/infrastructure/handlers"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// PlayRouter binds play topics to their handlers on the shared router.
type PlayRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewPlayRouter creates a new PlayRouter.
func NewPlayRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *PlayRouter {
	return &PlayRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the play handlers.
func (r *PlayRouter) Configure(ctx context.Context, handlers playhandlers.Handlers) error {
	return r.RegisterHandlers(ctx, handlers)
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "play." + topic
	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, handler),
	)
}

// RegisterHandlers binds every play topic to its handler.
func (r *PlayRouter) RegisterHandlers(ctx context.Context, handlers playhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, playevents.GuessSubmitRequestedV1, handlers.HandleGuessSubmitRequested)
	registerHandler(deps, playevents.SessionStateRequestedV1, handlers.HandleSessionStateRequested)

	r.logger.InfoContext(ctx, "Play handlers registered")
	return nil
}

// Close stops the shared router.
func (r *PlayRouter) Close() error {
	return r.Router.Close()
}
