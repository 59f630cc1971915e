package catalogqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

const metricsService = "river"

// QueueService schedules daily target generation on River.
type QueueService interface {
	// EnqueueGeneration asks for one generation run outside the periodic schedule.
	EnqueueGeneration(ctx context.Context) (int64, error)
	// HealthCheck verifies the queue tables are reachable
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service runs the catalog's River client. Only the elected leader among
// running instances enqueues the periodic job, so several serve processes
// generate targets once per interval between them.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

// NewService connects a pgx pool to dsn, brings the River schema up to date
// and builds a client whose periodic job runs generator every interval,
// starting as soon as the client starts.
func NewService(ctx context.Context, dsn string, generator TargetGenerator, logger *slog.Logger, metrics observability.OperationMetrics, interval time.Duration) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_catalog_queue_service"),
		attr.String("component", "river_queue"),
	)
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewGenerateTargetsWorker(generator, ctxLogger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: ctxLogger,
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 1},
		},
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return GenerateTargetsJob{}, &river.InsertOpts{Queue: QueueName}
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))
	ctxLogger.InfoContext(ctx, "Catalog queue service initialized", attr.Duration("interval", interval))

	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

// Migrate applies River's own schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// Start starts working the catalog queue and the periodic schedule.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)
	if err := s.client.Start(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsService)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsService)
	s.logger.InfoContext(ctx, "Catalog queue service started")
	return nil
}

// Stop waits for running jobs to finish and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsService)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsService)
	s.logger.InfoContext(ctx, "Catalog queue service stopped")
	return nil
}

// EnqueueGeneration inserts a one-off generation job. Requests within the
// same minute collapse into one job.
func (s *Service) EnqueueGeneration(ctx context.Context) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_generation", metricsService)

	res, err := s.client.Insert(ctx, GenerateTargetsJob{}, &river.InsertOpts{
		Queue:      QueueName,
		UniqueOpts: river.UniqueOpts{ByPeriod: time.Minute},
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_generation", metricsService)
		return 0, fmt.Errorf("failed to enqueue daily target job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_generation", metricsService)
	s.metrics.RecordOperationDuration(ctx, "enqueue_generation", metricsService, time.Since(start))
	s.logger.InfoContext(ctx, "Daily target job enqueued",
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return res.Job.ID, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM river_job WHERE queue = $1", QueueName).Scan(&count); err != nil {
		s.metrics.RecordOperationFailure(ctx, "health_check", metricsService)
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	s.logger.DebugContext(ctx, "Queue service health check passed", attr.Int("catalog_jobs", count))
	return nil
}
