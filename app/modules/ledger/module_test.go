package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/config"
	"github.com/stretchr/testify/require"
)

func TestModule_RunStops(t *testing.T) {
	tests := []struct {
		name string
		stop func(t *testing.T, m *Module, cancel context.CancelFunc)
	}{
		{
			name: "close before run starts",
			stop: func(t *testing.T, m *Module, _ context.CancelFunc) { require.NoError(t, m.Close()) },
		},
		{
			name: "parent context cancelled",
			stop: func(_ *testing.T, _ *Module, cancel context.CancelFunc) { cancel() },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewLedgerModule(context.Background(), observability.NewNoop(), config.Default().Game, nil)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			tt.stop(t, m, cancel)

			var wg sync.WaitGroup
			wg.Add(1)
			go m.Run(ctx, &wg)

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not return")
			}
		})
	}
}
