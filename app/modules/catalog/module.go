package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	catalogqueue "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/queue"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	catalogscheduler "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/scheduler"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/Black-And-White-Club/guessdle/config"
	"github.com/uptrace/bun"
)

// Module represents the catalog module.
type Module struct {
	CatalogService *catalogservice.CatalogService
	scheduler      *catalogscheduler.Scheduler
	queue          catalogqueue.QueueService
	stopCtx        context.Context
	cancelFunc     context.CancelFunc
	observability  observability.Observability
}

// NewCatalogModule creates and initializes a new catalog module. Target
// generation only runs when the scheduler is enabled in config; the river
// backend connects to dsn.
func NewCatalogModule(
	ctx context.Context,
	obs observability.Observability,
	cfg config.GameConfig,
	db *bun.DB,
	clk clock.Clock,
	dsn string,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "catalog.NewCatalogModule initializing")

	repo := catalogdb.NewRepository(db)
	metrics := observability.NewOperationMetrics(obs.Registry, "catalog")
	service := catalogservice.NewCatalogService(repo, logger, metrics, obs.Tracer, db, clk, cfg.Location(), cfg.CutoffHour)

	stopCtx, cancel := context.WithCancel(context.Background())
	m := &Module{
		CatalogService: service,
		stopCtx:        stopCtx,
		cancelFunc:     cancel,
		observability:  obs,
	}

	if !cfg.Scheduler.Enabled {
		return m, nil
	}

	switch cfg.Scheduler.Backend {
	case config.SchedulerRiver:
		if dsn == "" {
			cancel()
			return nil, errors.New("river scheduler needs a postgres DSN")
		}
		queue, err := catalogqueue.NewService(ctx, dsn, service, logger, metrics, cfg.Scheduler.Interval)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create catalog queue service: %w", err)
		}
		m.queue = queue
	default:
		sched, err := catalogscheduler.New(ctx, service, logger, cfg.Location(), cfg.Scheduler.Interval)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create catalog scheduler: %w", err)
		}
		m.scheduler = sched
	}
	return m, nil
}

// Run starts target generation and keeps the module alive until ctx is
// cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting catalog module")

	if wg != nil {
		defer wg.Done()
	}

	if m.scheduler != nil {
		m.scheduler.Start()
	}
	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Catalog queue did not start", attr.Error(err))
		}
	}

	select {
	case <-ctx.Done():
	case <-m.stopCtx.Done():
	}
	logger.InfoContext(ctx, "Catalog module goroutine stopped")
}

// HealthCheck reports whether the job queue, when configured, is reachable.
func (m *Module) HealthCheck(ctx context.Context) error {
	if m.queue == nil {
		return nil
	}
	return m.queue.HealthCheck(ctx)
}

// Close shuts down the catalog module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping catalog module")

	m.cancelFunc()
	if m.scheduler != nil {
		if err := m.scheduler.Close(); err != nil {
			return fmt.Errorf("error closing catalog scheduler: %w", err)
		}
	}
	if m.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.queue.Stop(ctx); err != nil {
			return fmt.Errorf("error closing catalog queue: %w", err)
		}
	}
	logger.Info("Catalog module stopped")
	return nil
}
