package play

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/guessdle/app/eventbus"
	playservice "github.com/Black-And-White-Club/guessdle/app/modules/play/application"
	playhandlers "github.com/Black-And-White-Club/guessdle/app/modules/play/infrastructure/handlers"
	playdb "github.com/Black-And-White-Club/guessdle/app/modules/play/infrastructure/repositories"
	playrouter "github.com/Black-And-White-Club/guessdle/app/modules/play/infrastructure/router"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the play module.
type Module struct {
	EventBus      eventbus.EventBus
	PlayService   *playservice.PlayService
	PlayRouter    *playrouter.PlayRouter
	stopCtx       context.Context
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewPlayModule wires the guess pipeline over the catalog, ledger, wager and
// duel services and registers its handlers on router.
func NewPlayModule(
	ctx context.Context,
	obs observability.Observability,
	db *bun.DB,
	clk clock.Clock,
	catalog playservice.Catalog,
	ledger playservice.Ledger,
	wagers playservice.Wagers,
	duels playservice.Duels,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "play.NewPlayModule initializing")

	repo := playdb.NewRepository(db)
	metrics := observability.NewOperationMetrics(obs.Registry, "play")
	service := playservice.NewPlayService(repo, catalog, ledger, wagers, duels, logger, metrics, obs.Tracer, db, clk)

	stopCtx, cancel := context.WithCancel(context.Background())
	m := &Module{
		stopCtx:       stopCtx,
		cancelFunc:    cancel,
		EventBus:      eventBus,
		PlayService:   service,
		observability: obs,
	}

	if router != nil {
		m.PlayRouter = playrouter.NewPlayRouter(logger, router, eventBus, eventBus, obs.Tracer)
		if err := m.PlayRouter.Configure(ctx, playhandlers.NewPlayHandlers(service, logger, obs.Tracer)); err != nil {
			return nil, fmt.Errorf("failed to configure play router: %w", err)
		}
	}
	return m, nil
}

// Run keeps the module alive until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting play module")

	if wg != nil {
		defer wg.Done()
	}

	select {
	case <-ctx.Done():
	case <-m.stopCtx.Done():
	}
	logger.InfoContext(ctx, "Play module goroutine stopped")
}

// Close shuts down the play module. The shared router is closed by the app.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping play module")
	m.cancelFunc()
	return nil
}
