package wagerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	wagerdb "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/Black-And-White-Club/guessdle/app/shared/operation"
	"github.com/Black-And-White-Club/guessdle/app/shared/results"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// WagerService implements the Service interface.
type WagerService struct {
	repo     wagerdb.Repository
	ledger   Ledger
	targets  TargetPicker
	clock    clock.Clock
	logger   *slog.Logger
	settings Settings
	runner   *operation.Runner
}

// NewWagerService creates a new WagerService.
func NewWagerService(
	repo wagerdb.Repository,
	ledger Ledger,
	targets TargetPicker,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	settings Settings,
) *WagerService {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if settings.Location == nil {
		settings.Location = DefaultSettings().Location
	}
	return &WagerService{
		repo:     repo,
		ledger:   ledger,
		targets:  targets,
		clock:    clk,
		logger:   logger,
		settings: settings,
		runner: &operation.Runner{
			Service: "WagerService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

// StartWager debits the stake and opens an extra play against a random
// target. Locking the ledger row first serialises concurrent starts of the
// same user, so the daily count cannot be raced past the limit.
func (s *WagerService) StartWager(ctx context.Context, userID sharedtypes.UserID, gameID int64, stake decimal.Decimal) (*wagerdb.ExtraPlay, error) {
	return operation.Run(s.runner, ctx, nil, "StartWager", string(userID), func(ctx context.Context, db bun.IDB) (results.OperationResult[*wagerdb.ExtraPlay, error], error) {
		if !stake.IsPositive() {
			return results.FailureResult[*wagerdb.ExtraPlay, error](ErrInvalidStake), nil
		}

		balance, err := s.ledger.LockBalance(ctx, db, userID, gameID)
		if err != nil {
			return results.OperationResult[*wagerdb.ExtraPlay, error]{}, err
		}

		now := s.clock.Now()
		from, to := clock.LocalDayBounds(now, s.settings.Location)
		count, err := s.repo.CountCreatedBetween(ctx, db, userID, gameID, from, to)
		if err != nil {
			return results.OperationResult[*wagerdb.ExtraPlay, error]{}, err
		}
		if count >= s.settings.MaxPerDay {
			return results.FailureResult[*wagerdb.ExtraPlay, error](ErrDailyLimitReached), nil
		}

		if balance.LessThan(stake) {
			return results.FailureResult[*wagerdb.ExtraPlay, error](ErrInsufficientPoints), nil
		}

		// The target is drawn before the debit: a failure result commits the
		// transaction, so nothing may be written ahead of it.
		target, err := s.targets.PickRandomTarget(ctx, db, gameID)
		if err != nil {
			if errors.Is(err, catalogservice.ErrEmptyGame) {
				return results.FailureResult[*wagerdb.ExtraPlay, error](err), nil
			}
			return results.OperationResult[*wagerdb.ExtraPlay, error]{}, err
		}

		if _, err := s.ledger.Debit(ctx, db, userID, gameID, stake); err != nil {
			if errors.Is(err, ledgerservice.ErrInsufficientPoints) {
				return results.FailureResult[*wagerdb.ExtraPlay, error](ErrInsufficientPoints), nil
			}
			return results.OperationResult[*wagerdb.ExtraPlay, error]{}, err
		}

		play := &wagerdb.ExtraPlay{
			UserID:    userID,
			GameID:    gameID,
			TargetID:  target.ID,
			Stake:     stake,
			Payout:    decimal.Zero,
			CreatedAt: now,
		}
		if err := s.repo.Create(ctx, db, play); err != nil {
			return results.OperationResult[*wagerdb.ExtraPlay, error]{}, err
		}

		s.logger.InfoContext(ctx, "Extra play started",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(userID),
			attr.Int64("extra_play_id", play.ID),
			attr.String("stake", stake.String()),
		)
		return results.SuccessResult[*wagerdb.ExtraPlay, error](play), nil
	})
}

func (s *WagerService) GetWager(ctx context.Context, db bun.IDB, id int64) (*wagerdb.ExtraPlay, error) {
	play, err := s.repo.Get(ctx, db, id)
	if errors.Is(err, wagerdb.ErrNotFound) {
		return nil, ErrWagerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetWager: %w", err)
	}
	return play, nil
}

// Settle decides and pays out a finished extra play. The baseline is the
// mean winning attempts of other users' extra plays, else the user's own,
// else the play wins outright. Settling twice returns the stored payout.
func (s *WagerService) Settle(ctx context.Context, db bun.IDB, playID int64, sessionID int64, attempts int) (*Settlement, error) {
	return operation.Run(s.runner, ctx, db, "Settle", strconv.FormatInt(playID, 10), func(ctx context.Context, db bun.IDB) (results.OperationResult[*Settlement, error], error) {
		if attempts <= 0 {
			return results.FailureResult[*Settlement, error](ErrInvalidAttempts), nil
		}

		play, err := s.repo.GetForUpdate(ctx, db, playID)
		if err != nil {
			if errors.Is(err, wagerdb.ErrNotFound) {
				return results.FailureResult[*Settlement, error](ErrWagerNotFound), nil
			}
			return results.OperationResult[*Settlement, error]{}, err
		}
		if play.Completed {
			return results.SuccessResult[*Settlement, error](&Settlement{
				Play:           play,
				Won:            play.Payout.IsPositive(),
				Payout:         play.Payout,
				AlreadySettled: true,
			}), nil
		}

		baseline, ok, err := s.baseline(ctx, db, play, sessionID)
		if err != nil {
			return results.OperationResult[*Settlement, error]{}, err
		}
		won := !ok || float64(attempts) < baseline

		payout := decimal.Zero
		if won {
			payout = play.Stake.Mul(s.settings.PayoutMultiplier).Round(2)
		}

		now := s.clock.Now()
		flipped, err := s.repo.MarkCompleted(ctx, db, play.ID, payout, now)
		if err != nil {
			return results.OperationResult[*Settlement, error]{}, err
		}
		if !flipped {
			// The row lock makes this unreachable under a transaction; without
			// one, another settler got there first.
			stored, err := s.repo.Get(ctx, db, play.ID)
			if err != nil {
				return results.OperationResult[*Settlement, error]{}, err
			}
			return results.SuccessResult[*Settlement, error](&Settlement{
				Play:           stored,
				Won:            stored.Payout.IsPositive(),
				Payout:         stored.Payout,
				AlreadySettled: true,
			}), nil
		}
		play.Completed = true
		play.Payout = payout
		play.CompletedAt = &now

		settlement := &Settlement{
			Play:        play,
			Won:         won,
			Baseline:    baseline,
			HasBaseline: ok,
			Payout:      payout,
		}
		if payout.IsPositive() {
			balance, err := s.ledger.Credit(ctx, db, play.UserID, play.GameID, payout)
			if err != nil {
				return results.OperationResult[*Settlement, error]{}, err
			}
			settlement.Balance = balance
		} else {
			balance, err := s.ledger.LockBalance(ctx, db, play.UserID, play.GameID)
			if err != nil {
				return results.OperationResult[*Settlement, error]{}, err
			}
			settlement.Balance = balance
		}

		s.logger.InfoContext(ctx, "Extra play settled",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(play.UserID),
			attr.Int64("extra_play_id", play.ID),
			attr.Int("attempts", attempts),
			attr.Bool("won", won),
			attr.String("payout", payout.String()),
		)
		return results.SuccessResult[*Settlement, error](settlement), nil
	})
}

func (s *WagerService) baseline(ctx context.Context, db bun.IDB, play *wagerdb.ExtraPlay, sessionID int64) (float64, bool, error) {
	avg, ok, err := s.ledger.BaselineAttempts(ctx, db, ledgerservice.BaselineQuery{
		GameID:        play.GameID,
		SessionType:   sharedtypes.SessionExtra,
		ExcludeUserID: play.UserID,
	})
	if err != nil || ok {
		return avg, ok, err
	}
	return s.ledger.BaselineAttempts(ctx, db, ledgerservice.BaselineQuery{
		GameID:           play.GameID,
		SessionType:      sharedtypes.SessionExtra,
		OnlyUserID:       play.UserID,
		ExcludeSessionID: sessionID,
	})
}

// RemainingToday is how many extra plays the user may still start today.
func (s *WagerService) RemainingToday(ctx context.Context, userID sharedtypes.UserID, gameID int64) (int, error) {
	from, to := clock.LocalDayBounds(s.clock.Now(), s.settings.Location)
	count, err := s.repo.CountCreatedBetween(ctx, nil, userID, gameID, from, to)
	if err != nil {
		return 0, fmt.Errorf("RemainingToday: %w", err)
	}
	return max(s.settings.MaxPerDay-count, 0), nil
}

func (s *WagerService) ListOpen(ctx context.Context, userID sharedtypes.UserID, gameID int64) ([]wagerdb.ExtraPlay, error) {
	plays, err := s.repo.ListOpen(ctx, nil, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("ListOpen: %w", err)
	}
	return plays, nil
}
