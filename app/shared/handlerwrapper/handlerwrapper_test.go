package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type pingPayload struct {
	Name string `json:"name"`
}

type pongPayload struct {
	Greeting string `json:"greeting"`
}

func TestWrapTransformingTyped(t *testing.T) {
	var seenCorrelation string
	handler := WrapTransformingTyped("test.ping", nil, noop.NewTracerProvider().Tracer("test"),
		func(ctx context.Context, p *pingPayload) ([]Result, error) {
			seenCorrelation = attr.CorrelationID(ctx)
			return []Result{{Topic: "pong", Payload: pongPayload{Greeting: "hi " + p.Name}}}, nil
		})

	in := message.NewMessage(watermill.NewUUID(), []byte(`{"name":"ada"}`))
	middleware.SetCorrelationID("corr-1", in)

	out, err := handler(in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "corr-1", seenCorrelation)
	assert.Equal(t, "pong", out[0].Metadata.Get(MetadataTopic))
	assert.Equal(t, "corr-1", middleware.MessageCorrelationID(out[0]))

	var got pongPayload
	require.NoError(t, json.Unmarshal(out[0].Payload, &got))
	assert.Equal(t, "hi ada", got.Greeting)
}

func TestWrapTransformingTyped_MintsCorrelationID(t *testing.T) {
	handler := WrapTransformingTyped("test.ping", nil, nil,
		func(ctx context.Context, p *pingPayload) ([]Result, error) {
			return []Result{{Topic: "pong", Payload: pongPayload{}}}, nil
		})

	in := message.NewMessage(watermill.NewUUID(), []byte(`{}`))
	out, err := handler(in)
	require.NoError(t, err)
	require.Len(t, out, 1)

	minted := middleware.MessageCorrelationID(in)
	_, err = uuid.Parse(minted)
	require.NoError(t, err)
	assert.Equal(t, minted, middleware.MessageCorrelationID(out[0]))
}

func TestWrapTransformingTyped_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		body    string
		err     error
		wantErr error
	}{
		{name: "bad json", body: `{`},
		{name: "handler error", body: `{}`, err: boom, wantErr: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := WrapTransformingTyped("test.ping", nil, nil,
				func(ctx context.Context, p *pingPayload) ([]Result, error) {
					return nil, tt.err
				})
			out, err := handler(message.NewMessage(watermill.NewUUID(), []byte(tt.body)))
			require.Error(t, err)
			assert.Nil(t, out)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
