// Package handlerwrapper adapts typed payload handlers to watermill.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MetadataTopic carries the destination topic of a produced message. The
// event bus routes on it when the router publishes without a fixed topic.
const MetadataTopic = "topic"

// Result is one message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTransformingTyped decodes the JSON payload into T, runs handler and
// encodes every Result into an outgoing message that keeps the incoming
// correlation id, minting one when the request carried none. A decode failure is returned as an error so the message is
// nacked.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			// Stamped on the incoming message too, so the router's
			// correlation middleware copies the same id onto the replies.
			correlationID = uuid.NewString()
			middleware.SetCorrelationID(correlationID, msg)
		}
		ctx := attr.WithCorrelationID(msg.Context(), correlationID)

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
				attribute.String("correlation_id", correlationID),
			))
			defer span.End()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			if span != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "unmarshal")
			}
			return nil, fmt.Errorf("%s: unmarshal payload: %w", handlerName, err)
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			if span != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "handler")
			}
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewMessage(r, correlationID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, m)
		}

		logger.DebugContext(ctx, "Handler completed",
			attr.ExtractCorrelationID(ctx),
			attr.String("handler", handlerName),
			attr.Int("results", len(out)),
		)
		return out, nil
	}
}

// NewMessage encodes a Result as a watermill message addressed to r.Topic.
func NewMessage(r Result, correlationID string) (*message.Message, error) {
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", r.Topic, err)
	}
	m := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(MetadataTopic, r.Topic)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, m)
	}
	return m, nil
}
