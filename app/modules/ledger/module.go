package ledger

import (
	"context"
	"sync"

	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	ledgerdb "github.com/Black-And-White-Club/guessdle/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/config"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Module represents the ledger module.
type Module struct {
	LedgerService *ledgerservice.LedgerService
	stopCtx       context.Context
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewLedgerModule creates and initializes a new ledger module.
func NewLedgerModule(
	ctx context.Context,
	obs observability.Observability,
	cfg config.GameConfig,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "ledger.NewLedgerModule initializing")

	repo := ledgerdb.NewRepository(db)
	metrics := observability.NewOperationMetrics(obs.Registry, "ledger")
	service := ledgerservice.NewLedgerService(repo, logger, metrics, obs.Tracer, db, SettingsFromConfig(cfg))

	stopCtx, cancel := context.WithCancel(context.Background())
	return &Module{
		stopCtx:       stopCtx,
		cancelFunc:    cancel,
		LedgerService: service,
		observability: obs,
	}, nil
}

// SettingsFromConfig maps the game config onto ledger tunables.
func SettingsFromConfig(cfg config.GameConfig) ledgerservice.Settings {
	return ledgerservice.Settings{
		Floor:         cfg.Scoring.Floor,
		Decrement:     cfg.Scoring.Decrement,
		InitialRating: cfg.Scoring.InitialRating,
		RatingK:       cfg.Scoring.RatingK,
		InitialPoints: decimal.NewFromInt(cfg.Wager.InitialPoints),
	}
}

// Run keeps the module alive until ctx is cancelled or Close is called. The
// ledger has no background work of its own.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting ledger module")

	if wg != nil {
		defer wg.Done()
	}

	select {
	case <-ctx.Done():
	case <-m.stopCtx.Done():
	}
	logger.InfoContext(ctx, "Ledger module goroutine stopped")
}

// Close shuts down the ledger module.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping ledger module")
	m.cancelFunc()
	return nil
}
