package catalogservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/Black-And-White-Club/guessdle/app/shared/operation"
	"github.com/Black-And-White-Club/guessdle/app/shared/results"
	"github.com/gosimple/slug"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Picker returns a uniform index in [0, n).
type Picker func(n int) int

// CatalogService implements the Service interface.
type CatalogService struct {
	repo       catalogdb.Repository
	logger     *slog.Logger
	clock      clock.Clock
	loc        *time.Location
	cutoffHour int
	pick       Picker
	runner     *operation.Runner
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	repo catalogdb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	loc *time.Location,
	cutoffHour int,
) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &CatalogService{
		repo:       repo,
		logger:     logger,
		clock:      clk,
		loc:        loc,
		cutoffHour: cutoffHour,
		pick:       rand.IntN,
		runner: &operation.Runner{
			Service: "CatalogService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

// WithPicker replaces the random index source.
func (s *CatalogService) WithPicker(p Picker) *CatalogService {
	s.pick = p
	return s
}

// GetGame looks a game up by slug. The requested slug is normalised first so
// "One Piece" and "one-piece" resolve to the same game.
func (s *CatalogService) GetGame(ctx context.Context, requested string) (*catalogdb.Game, error) {
	normalized := slug.Make(requested)
	return operation.Run(s.runner, ctx, nil, "GetGame", normalized, func(ctx context.Context, db bun.IDB) (results.OperationResult[*catalogdb.Game, error], error) {
		game, err := s.repo.GetGameBySlug(ctx, db, normalized)
		if err != nil {
			if errors.Is(err, catalogdb.ErrNotFound) {
				return results.FailureResult[*catalogdb.Game, error](ErrGameNotFound), nil
			}
			return results.OperationResult[*catalogdb.Game, error]{}, err
		}
		return results.SuccessResult[*catalogdb.Game, error](game), nil
	})
}

func (s *CatalogService) GetGameByID(ctx context.Context, db bun.IDB, id int64) (*catalogdb.Game, error) {
	game, err := s.repo.GetGameByID(ctx, db, id)
	if errors.Is(err, catalogdb.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	return game, err
}

func (s *CatalogService) GameDay(now time.Time) time.Time {
	return clock.GameDay(now, s.loc, s.cutoffHour)
}

// GetTodayTarget returns the live daily target, honouring the cutoff hour.
func (s *CatalogService) GetTodayTarget(ctx context.Context, db bun.IDB, gameID int64, isTeam bool) (*catalogdb.DailyTarget, error) {
	return s.targetFor(ctx, db, gameID, s.GameDay(s.clock.Now()), isTeam)
}

func (s *CatalogService) GetYesterdayTarget(ctx context.Context, db bun.IDB, gameID int64, isTeam bool) (*catalogdb.DailyTarget, error) {
	return s.targetFor(ctx, db, gameID, s.GameDay(s.clock.Now()).AddDate(0, 0, -1), isTeam)
}

func (s *CatalogService) targetFor(ctx context.Context, db bun.IDB, gameID int64, day time.Time, isTeam bool) (*catalogdb.DailyTarget, error) {
	target, err := s.repo.GetDailyTarget(ctx, db, gameID, day, isTeam)
	if err != nil {
		if errors.Is(err, catalogdb.ErrNotFound) {
			return nil, ErrNoActiveTarget
		}
		return nil, err
	}
	return target, nil
}

func (s *CatalogService) GetDailyTargetByID(ctx context.Context, db bun.IDB, id int64) (*catalogdb.DailyTarget, error) {
	target, err := s.repo.GetDailyTargetByID(ctx, db, id)
	if errors.Is(err, catalogdb.ErrNotFound) {
		return nil, ErrNoActiveTarget
	}
	return target, err
}

// maxPickAttempts bounds retries when an item is deleted between count and fetch.
const maxPickAttempts = 3

// PickRandomTarget chooses uniformly among the game's non-deleted items.
func (s *CatalogService) PickRandomTarget(ctx context.Context, db bun.IDB, gameID int64) (*catalogdb.Item, error) {
	for range maxPickAttempts {
		n, err := s.repo.CountActiveItems(ctx, db, gameID)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrEmptyGame
		}
		item, err := s.repo.GetActiveItemAt(ctx, db, gameID, s.pick(n))
		if errors.Is(err, catalogdb.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return item, nil
	}
	return nil, ErrEmptyGame
}

// ResolveGuess maps a submitted name to a live item of the game.
func (s *CatalogService) ResolveGuess(ctx context.Context, db bun.IDB, gameID int64, name string) (*catalogdb.Item, error) {
	item, err := s.repo.GetItemByName(ctx, db, gameID, name)
	if err != nil {
		if errors.Is(err, catalogdb.ErrNotFound) {
			return nil, ErrUnknownItem
		}
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) RemainingNames(ctx context.Context, db bun.IDB, gameID int64, exclude []int64) ([]string, error) {
	return s.repo.ListRemainingItemNames(ctx, db, gameID, exclude)
}

func (s *CatalogService) ItemsByID(ctx context.Context, db bun.IDB, ids []int64) (map[int64]catalogdb.Item, error) {
	items, err := s.repo.GetItemsByIDs(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]catalogdb.Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// GenerateDailyTargets creates any missing daily targets for today and tomorrow
// (local calendar) for every active game and both account kinds.
func (s *CatalogService) GenerateDailyTargets(ctx context.Context) (*GenerationSummary, error) {
	now := s.clock.Now()
	today, _ := clock.LocalDayBounds(now, s.loc)
	days := []time.Time{today, today.AddDate(0, 0, 1)}

	return operation.Run(s.runner, ctx, nil, "GenerateDailyTargets", clock.DateKey(today), func(ctx context.Context, db bun.IDB) (results.OperationResult[*GenerationSummary, error], error) {
		games, err := s.repo.ListActiveGames(ctx, db)
		if err != nil {
			return results.OperationResult[*GenerationSummary, error]{}, err
		}

		summary := &GenerationSummary{}
		for _, game := range games {
			if err := s.generateForGame(ctx, db, game, days, summary); err != nil {
				return results.OperationResult[*GenerationSummary, error]{}, fmt.Errorf("game %s: %w", game.Slug, err)
			}
		}
		return results.SuccessResult[*GenerationSummary, error](summary), nil
	})
}

func (s *CatalogService) generateForGame(ctx context.Context, db bun.IDB, game catalogdb.Game, days []time.Time, summary *GenerationSummary) error {
	for _, day := range days {
		for _, isTeam := range []bool{false, true} {
			_, err := s.repo.GetDailyTarget(ctx, db, game.ID, day, isTeam)
			if err == nil {
				summary.Existing++
				continue
			}
			if !errors.Is(err, catalogdb.ErrNotFound) {
				return err
			}

			item, err := s.PickRandomTarget(ctx, db, game.ID)
			if errors.Is(err, ErrEmptyGame) {
				s.logger.WarnContext(ctx, "No items available to generate daily target",
					attr.String("game", game.Slug),
				)
				summary.EmptyGames = append(summary.EmptyGames, game.Slug)
				return nil
			}
			if err != nil {
				return err
			}

			created, err := s.repo.CreateDailyTarget(ctx, db, &catalogdb.DailyTarget{
				GameID:   game.ID,
				TargetID: item.ID,
				Date:     day,
				IsTeam:   isTeam,
			})
			if err != nil {
				return err
			}
			if !created {
				summary.Existing++
				continue
			}
			summary.Created++
			s.logger.InfoContext(ctx, "Daily target created",
				attr.String("game", game.Slug),
				attr.String("date", clock.DateKey(day)),
				attr.Bool("is_team", isTeam),
				attr.String("target_id", strconv.FormatInt(item.ID, 10)),
			)
		}
	}
	return nil
}
