package catalogqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/riverqueue/river"
)

// TargetGenerator is the part of the catalog service the worker drives.
type TargetGenerator interface {
	GenerateDailyTargets(ctx context.Context) (*catalogservice.GenerationSummary, error)
}

// GenerateTargetsWorker runs daily target generation for River.
type GenerateTargetsWorker struct {
	river.WorkerDefaults[GenerateTargetsJob]
	generator TargetGenerator
	logger    *slog.Logger
}

func NewGenerateTargetsWorker(generator TargetGenerator, logger *slog.Logger) *GenerateTargetsWorker {
	return &GenerateTargetsWorker{generator: generator, logger: logger}
}

// Timeout bounds a single generation run.
func (w *GenerateTargetsWorker) Timeout(*river.Job[GenerateTargetsJob]) time.Duration {
	return time.Minute
}

// Work generates the targets. A returned error makes River retry the job.
func (w *GenerateTargetsWorker) Work(ctx context.Context, job *river.Job[GenerateTargetsJob]) error {
	summary, err := w.generator.GenerateDailyTargets(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Daily target job failed",
			attr.Int64("job_id", job.ID),
			attr.Int("attempt", job.Attempt),
			attr.Error(err),
		)
		return fmt.Errorf("generate daily targets: %w", err)
	}
	w.logger.InfoContext(ctx, "Daily target job finished",
		attr.Int64("job_id", job.ID),
		attr.Int("created", summary.Created),
		attr.Int("existing", summary.Existing),
		attr.Int("empty_games", len(summary.EmptyGames)),
	)
	return nil
}
