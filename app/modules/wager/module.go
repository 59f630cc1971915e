package wager

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/guessdle/app/eventbus"
	wagerservice "github.com/Black-And-White-Club/guessdle/app/modules/wager/application"
	wagerhandlers "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/handlers"
	wagerdb "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories"
	wagerrouter "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/router"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/Black-And-White-Club/guessdle/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Module represents the wager module.
type Module struct {
	EventBus      eventbus.EventBus
	WagerService  *wagerservice.WagerService
	WagerRouter   *wagerrouter.WagerRouter
	stopCtx       context.Context
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewWagerModule creates and initializes a new wager module. Handlers are
// only registered when a router is given.
func NewWagerModule(
	ctx context.Context,
	obs observability.Observability,
	cfg config.GameConfig,
	db *bun.DB,
	clk clock.Clock,
	ledger wagerservice.Ledger,
	targets wagerservice.TargetPicker,
	games wagerhandlers.GameLookup,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "wager.NewWagerModule initializing")

	repo := wagerdb.NewRepository(db)
	metrics := observability.NewOperationMetrics(obs.Registry, "wager")
	settings := wagerservice.Settings{
		MaxPerDay:        cfg.Wager.MaxPerDay,
		PayoutMultiplier: decimal.NewFromFloat(cfg.Wager.PayoutMultiplier),
		Location:         cfg.Location(),
	}
	service := wagerservice.NewWagerService(repo, ledger, targets, logger, metrics, obs.Tracer, db, clk, settings)

	stopCtx, cancel := context.WithCancel(context.Background())
	m := &Module{
		stopCtx:       stopCtx,
		cancelFunc:    cancel,
		EventBus:      eventBus,
		WagerService:  service,
		observability: obs,
	}

	if router != nil {
		m.WagerRouter = wagerrouter.NewWagerRouter(logger, router, eventBus, eventBus, obs.Tracer)
		if err := m.WagerRouter.Configure(ctx, wagerhandlers.NewWagerHandlers(service, games, logger, obs.Tracer)); err != nil {
			return nil, fmt.Errorf("failed to configure wager router: %w", err)
		}
	}
	return m, nil
}

// Run keeps the module alive until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting wager module")

	if wg != nil {
		defer wg.Done()
	}

	select {
	case <-ctx.Done():
	case <-m.stopCtx.Done():
	}
	logger.InfoContext(ctx, "Wager module goroutine stopped")
}

// Close shuts down the wager module.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping wager module")
	m.cancelFunc()
	return nil
}
