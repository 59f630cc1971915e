package duelrouter

import (
	"context"
	"log/slog"

	duelevents "github.com/Black-And-White-Club/guessdle/app/events/duel"
	duelhandlers "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/handlers"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// DuelRouter binds challenge topics to their handlers on the shared router.
type DuelRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewDuelRouter creates a new DuelRouter.
func NewDuelRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *DuelRouter {
	return &DuelRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the challenge handlers.
func (r *DuelRouter) Configure(ctx context.Context, handlers duelhandlers.Handlers) error {
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
	handlerName := "duel." + topic
	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, handler),
	)
}

// RegisterHandlers binds every challenge topic to its handler.
func (r *DuelRouter) RegisterHandlers(ctx context.Context, handlers duelhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, duelevents.ChallengeCreateRequestedV1, handlers.HandleChallengeCreateRequested)
	registerHandler(deps, duelevents.ChallengeReportRequestedV1, handlers.HandleChallengeReportRequested)

	r.logger.InfoContext(ctx, "Duel handlers registered")
	return nil
}

// Close stops the shared router.
func (r *DuelRouter) Close() error {
	return r.Router.Close()
}
