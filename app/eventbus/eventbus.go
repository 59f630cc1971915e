// Package eventbus provides the watermill publisher and subscriber the module
// routers run on: NATS (optionally JetStream) in production, an in-process
// gochannel for tests and local runs.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/guessdle/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the JetStream stream holding every guessdle subject.
const (
	StreamName    = "guessdle"
	StreamSubject = "guessdle.>"
	queueGroup    = "guessdle"
)

var ErrNoTopic = errors.New("message has no topic")

// EventBus is a watermill publisher and subscriber pair. Publishing to the
// empty topic routes each message by its handlerwrapper.MetadataTopic.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type eventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	createdStreams map[string]bool
	streamMutex    sync.Mutex
	closeOnce      sync.Once
}

// NewEventBus connects to NATS. With JetStream enabled the guessdle stream is
// provisioned before the publisher and subscriber are created.
func NewEventBus(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (EventBus, error) {
	natsConn, err := nc.Connect(cfg.URL, nc.RetryOnFailedConnect(true), nc.MaxReconnects(-1))
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	eb := &eventBus{
		natsConn:       natsConn,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}

	if cfg.JetStream {
		js, err := jetstream.New(natsConn)
		if err != nil {
			natsConn.Close()
			return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
		}
		eb.js = js
		if err := eb.CreateStream(ctx, StreamName, StreamSubject); err != nil {
			natsConn.Close()
			return nil, err
		}
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{
		Disabled:      !cfg.JetStream,
		AutoProvision: false,
		DurablePrefix: queueGroup,
		SubscribeOptions: []nc.SubOpt{
			nc.DeliverNew(),
			nc.AckExplicit(),
		},
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			Marshaler:   marshaler,
			NatsOptions: []nc.Option{nc.RetryOnFailedConnect(true)},
			JetStream:   jsConfig,
		},
		wmLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.URL,
			QueueGroupPrefix: queueGroup,
			SubscribersCount: 1,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     10 * time.Second,
			Unmarshaler:      marshaler,
			NatsOptions:      []nc.Option{nc.RetryOnFailedConnect(true)},
			JetStream:        jsConfig,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	eb.publisher = publisher
	eb.subscriber = subscriber
	return eb, nil
}

// NewInMemory returns an EventBus backed by a watermill gochannel.
func NewInMemory(logger *slog.Logger) EventBus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))
	return &eventBus{
		publisher:      pubSub,
		subscriber:     pubSub,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}
}

// Publish sends messages to topic, or to each message's own topic when topic
// is empty.
func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		dest := topic
		if dest == "" {
			dest = msg.Metadata.Get(handlerwrapper.MetadataTopic)
		}
		if dest == "" {
			return fmt.Errorf("publish %s: %w", msg.UUID, ErrNoTopic)
		}
		eb.logger.Debug("Publishing message",
			slog.String("topic", dest),
			slog.String("message_id", msg.UUID),
		)
		if err := eb.publisher.Publish(dest, msg); err != nil {
			eb.logger.Error("Failed to publish message",
				slog.String("topic", dest),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish to %s: %w", dest, err)
		}
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", slog.String("topic", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return messages, nil
}

// CreateStream makes sure streamName exists and covers subject.
func (eb *eventBus) CreateStream(ctx context.Context, streamName string, subject string) error {
	if eb.js == nil {
		return nil
	}

	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[streamName] {
		return nil
	}

	stream, err := eb.js.Stream(ctx, streamName)
	switch {
	case errors.Is(err, jetstream.ErrStreamNotFound):
		_, err = eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject},
			MaxAge:   7 * 24 * time.Hour,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		eb.logger.Info("Stream created", "stream_name", streamName, "subject", subject)
	case err != nil:
		return fmt.Errorf("failed to check if stream exists: %w", err)
	default:
		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		found := false
		for _, existing := range info.Config.Subjects {
			if existing == subject {
				found = true
				break
			}
		}
		if !found {
			info.Config.Subjects = append(info.Config.Subjects, subject)
			if _, err := eb.js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream with new subject: %w", err)
			}
			eb.logger.Info("Stream updated with new subject", "stream_name", streamName, "subject", subject)
		}
	}

	eb.createdStreams[streamName] = true
	return nil
}

// Close closes all NATS and Watermill resources.
func (eb *eventBus) Close() error {
	var errs []error
	eb.closeOnce.Do(func() {
		if eb.publisher != nil {
			if err := eb.publisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close publisher: %w", err))
			}
		}
		if eb.subscriber != nil && any(eb.subscriber) != any(eb.publisher) {
			if err := eb.subscriber.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close subscriber: %w", err))
			}
		}
		if eb.natsConn != nil {
			eb.natsConn.Close()
		}
	})
	return errors.Join(errs...)
}
