package duel

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/guessdle/app/eventbus"
	duelservice "github.com/Black-And-White-Club/guessdle/app/modules/duel/application"
	duelhandlers "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/handlers"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	duelrouter "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/router"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/Black-And-White-Club/guessdle/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Module represents the duel module.
type Module struct {
	EventBus      eventbus.EventBus
	DuelService   *duelservice.DuelService
	DuelRouter    *duelrouter.DuelRouter
	stopCtx       context.Context
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewDuelModule creates and initializes a new duel module. Handlers are
// only registered when a router is given.
func NewDuelModule(
	ctx context.Context,
	obs observability.Observability,
	cfg config.GameConfig,
	db *bun.DB,
	clk clock.Clock,
	ledger duelservice.Ledger,
	targets duelservice.TargetPicker,
	games duelhandlers.GameLookup,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "duel.NewDuelModule initializing")

	repo := dueldb.NewRepository(db)
	metrics := observability.NewOperationMetrics(obs.Registry, "duel")
	service := duelservice.NewDuelService(repo, ledger, targets, logger, metrics, obs.Tracer, db, clk, decimal.NewFromInt(cfg.Duel.WinnerBonus))

	stopCtx, cancel := context.WithCancel(context.Background())
	m := &Module{
		stopCtx:       stopCtx,
		cancelFunc:    cancel,
		EventBus:      eventBus,
		DuelService:   service,
		observability: obs,
	}

	if router != nil {
		m.DuelRouter = duelrouter.NewDuelRouter(logger, router, eventBus, eventBus, obs.Tracer)
		if err := m.DuelRouter.Configure(ctx, duelhandlers.NewDuelHandlers(service, games, logger, obs.Tracer)); err != nil {
			return nil, fmt.Errorf("failed to configure duel router: %w", err)
		}
	}
	return m, nil
}

// Run keeps the module alive until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting duel module")

	if wg != nil {
		defer wg.Done()
	}

	select {
	case <-ctx.Done():
	case <-m.stopCtx.Done():
	}
	logger.InfoContext(ctx, "Duel module goroutine stopped")
}

// Close shuts down the duel module.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping duel module")
	m.cancelFunc()
	return nil
}
