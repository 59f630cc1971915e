// Package app wires the modules onto a shared database, event bus and
// message router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/guessdle/app/database"
	"github.com/Black-And-White-Club/guessdle/app/eventbus"
	"github.com/Black-And-White-Club/guessdle/app/modules/catalog"
	"github.com/Black-And-White-Club/guessdle/app/modules/duel"
	"github.com/Black-And-White-Club/guessdle/app/modules/ledger"
	"github.com/Black-And-White-Club/guessdle/app/modules/play"
	"github.com/Black-And-White-Club/guessdle/app/modules/wager"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/Black-And-White-Club/guessdle/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// App holds every module and the infrastructure they share.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	Clock         clock.Clock

	CatalogModule *catalog.Module
	LedgerModule  *ledger.Module
	WagerModule   *wager.Module
	DuelModule    *duel.Module
	PlayModule    *play.Module

	wg sync.WaitGroup
}

// Options selects optional infrastructure. A nil Clock uses the real clock;
// InMemoryBus replaces NATS with a gochannel.
type Options struct {
	Clock       clock.Clock
	InMemoryBus bool
	// WithoutTransport skips the event bus and router, for CLI commands that
	// only need the services.
	WithoutTransport bool
}

// New builds the App. The database must already be migrated.
func New(ctx context.Context, cfg *config.Config, obs observability.Observability, db *bun.DB, opts Options) (*App, error) {
	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		Clock:         opts.Clock,
	}
	if app.Clock == nil {
		app.Clock = clock.RealClock{}
	}

	if !opts.WithoutTransport {
		if err := app.initTransport(ctx, opts.InMemoryBus); err != nil {
			return nil, err
		}
	}

	if err := app.initModules(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// Open loads config-driven infrastructure: it connects to the database and
// builds the App on top of it.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	obs := observability.New(cfg.Observability)
	db, err := database.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	app, err := New(ctx, cfg, obs, db, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) initTransport(ctx context.Context, inMemory bool) error {
	logger := app.Observability.Logger

	if inMemory || app.Config.NATS.URL == "" {
		logger.InfoContext(ctx, "Using in-memory event bus")
		app.EventBus = eventbus.NewInMemory(logger)
	} else {
		bus, err := eventbus.NewEventBus(ctx, app.Config.NATS, logger)
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		app.EventBus = bus
	}

	router, err := eventbus.NewRouter(logger, app.Observability.Registry)
	if err != nil {
		return fmt.Errorf("failed to create message router: %w", err)
	}
	app.Router = router
	return nil
}

func (app *App) initModules(ctx context.Context) error {
	obs := app.Observability
	game := app.Config.Game

	var err error
	if app.CatalogModule, err = catalog.NewCatalogModule(ctx, obs, game, app.DB, app.Clock, app.Config.Postgres.DSN); err != nil {
		return fmt.Errorf("failed to initialize catalog module: %w", err)
	}
	if app.LedgerModule, err = ledger.NewLedgerModule(ctx, obs, game, app.DB); err != nil {
		return fmt.Errorf("failed to initialize ledger module: %w", err)
	}

	catalogSvc := app.CatalogModule.CatalogService
	ledgerSvc := app.LedgerModule.LedgerService

	if app.WagerModule, err = wager.NewWagerModule(ctx, obs, game, app.DB, app.Clock, ledgerSvc, catalogSvc, catalogSvc, app.EventBus, app.Router); err != nil {
		return fmt.Errorf("failed to initialize wager module: %w", err)
	}
	if app.DuelModule, err = duel.NewDuelModule(ctx, obs, game, app.DB, app.Clock, ledgerSvc, catalogSvc, catalogSvc, app.EventBus, app.Router); err != nil {
		return fmt.Errorf("failed to initialize duel module: %w", err)
	}
	if app.PlayModule, err = play.NewPlayModule(ctx, obs, app.DB, app.Clock, catalogSvc, ledgerSvc,
		app.WagerModule.WagerService, app.DuelModule.DuelService, app.EventBus, app.Router); err != nil {
		return fmt.Errorf("failed to initialize play module: %w", err)
	}
	return nil
}

type runner interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
}

// Run starts every module, the message router and the metrics endpoint, and
// blocks until ctx is cancelled or the router stops.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	modules := []runner{app.CatalogModule, app.LedgerModule, app.WagerModule, app.DuelModule, app.PlayModule}
	app.wg.Add(len(modules))
	for _, m := range modules {
		go m.Run(ctx, &app.wg)
	}

	go func() {
		if err := app.Observability.ServeMetrics(ctx, app.Config.Observability.MetricsAddress, app.ready); err != nil {
			logger.ErrorContext(ctx, "Metrics server stopped", slog.Any("error", err))
		}
	}()

	if app.Router == nil {
		<-ctx.Done()
		return nil
	}

	logger.InfoContext(ctx, "Starting message router")
	if err := app.Router.Run(ctx); err != nil {
		return fmt.Errorf("message router stopped: %w", err)
	}
	return nil
}

// ready backs /healthz: the database answers and the catalog job
// queue, when configured, is reachable.
func (app *App) ready(ctx context.Context) error {
	if err := app.DB.PingContext(ctx); err != nil {
		return err
	}
	return app.CatalogModule.HealthCheck(ctx)
}

// Close stops the modules, then the router and event bus, then the database.
func (app *App) Close() error {
	var errs []error
	closeModule := func(name string, m interface{ Close() error }) {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s module: %w", name, err))
		}
	}
	if app.PlayModule != nil {
		closeModule("play", app.PlayModule)
	}
	if app.DuelModule != nil {
		closeModule("duel", app.DuelModule)
	}
	if app.WagerModule != nil {
		closeModule("wager", app.WagerModule)
	}
	if app.LedgerModule != nil {
		closeModule("ledger", app.LedgerModule)
	}
	if app.CatalogModule != nil {
		closeModule("catalog", app.CatalogModule)
	}
	app.wg.Wait()

	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close router: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
