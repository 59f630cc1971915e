package catalogscheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/go-co-op/gocron/v2"
)

// TargetGenerator is the part of the catalog service the scheduler drives.
type TargetGenerator interface {
	GenerateDailyTargets(ctx context.Context) (*catalogservice.GenerationSummary, error)
}

// Scheduler keeps daily targets generated ahead of time.
type Scheduler struct {
	sched     gocron.Scheduler
	generator TargetGenerator
	logger    *slog.Logger
}

// New creates a scheduler running generator every interval, starting immediately.
func New(ctx context.Context, generator TargetGenerator, logger *slog.Logger, loc *time.Location, interval time.Duration) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{sched: sched, generator: generator, logger: logger}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.run(ctx) }),
		gocron.WithName("generate-daily-targets"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register daily target job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) run(ctx context.Context) {
	summary, err := s.generator.GenerateDailyTargets(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Daily target generation failed", attr.Error(err))
		return
	}
	s.logger.InfoContext(ctx, "Daily target generation finished",
		attr.Int("created", summary.Created),
		attr.Int("existing", summary.Existing),
		attr.Int("empty_games", len(summary.EmptyGames)),
	)
}

// Start begins running jobs.
func (s *Scheduler) Start() { s.sched.Start() }

// Close stops the scheduler and waits for running jobs.
func (s *Scheduler) Close() error { return s.sched.Shutdown() }
