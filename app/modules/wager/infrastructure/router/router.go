package wagerrouter

import (
	"context"
	"log/slog"

	wagerevents "github.com/Black-And-White-Club/guessdle/app/events/wager"
	wagerhandlers "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/handlers"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// WagerRouter binds wager topics to their handlers on the shared router.
type WagerRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewWagerRouter creates a new WagerRouter.
func NewWagerRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *WagerRouter {
	return &WagerRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the wager handlers.
func (r *WagerRouter) Configure(ctx context.Context, handlers wagerhandlers.Handlers) error {
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
	handlerName := "wager." + topic
	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, handler),
	)
}

// RegisterHandlers binds every wager topic to its handler.
func (r *WagerRouter) RegisterHandlers(ctx context.Context, handlers wagerhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, wagerevents.WagerStartRequestedV1, handlers.HandleWagerStartRequested)

	r.logger.InfoContext(ctx, "Wager handlers registered")
	return nil
}

// Close stops the shared router.
func (r *WagerRouter) Close() error {
	return r.Router.Close()
}
