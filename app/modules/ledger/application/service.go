package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	ledgerdomain "github.com/Black-And-White-Club/guessdle/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/guessdle/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/Black-And-White-Club/guessdle/app/shared/operation"
	"github.com/Black-And-White-Club/guessdle/app/shared/results"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// LedgerService implements the Service interface.
type LedgerService struct {
	repo     ledgerdb.Repository
	logger   *slog.Logger
	settings Settings
	runner   *operation.Runner
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	repo ledgerdb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	settings Settings,
) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		repo:     repo,
		logger:   logger,
		settings: settings,
		runner: &operation.Runner{
			Service: "LedgerService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

func ledgerKey(userID sharedtypes.UserID, gameID int64) string {
	return string(userID) + "/" + strconv.FormatInt(gameID, 10)
}

// PointsFor resolves the award for finishing in attempts: the game's rule,
// else the global rule, else the decaying fallback.
func (s *LedgerService) PointsFor(ctx context.Context, db bun.IDB, gameID int64, attempts int) (int, error) {
	if attempts <= 0 {
		return 0, ErrInvalidAttempts
	}
	rule, err := s.repo.FindScoringRule(ctx, db, gameID, attempts)
	if err == nil {
		return rule.Points, nil
	}
	if !errors.Is(err, ledgerdb.ErrNotFound) {
		return 0, err
	}
	return ledgerdomain.FallbackPoints(attempts, s.settings.Floor, s.settings.Decrement), nil
}

// AwardForAttempts credits a finished session and counts it as a played game.
// The ledger row is locked for the read-modify-write.
func (s *LedgerService) AwardForAttempts(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int) (*Award, error) {
	return operation.Run(s.runner, ctx, db, "AwardForAttempts", ledgerKey(userID, gameID), func(ctx context.Context, db bun.IDB) (results.OperationResult[*Award, error], error) {
		points, err := s.PointsFor(ctx, db, gameID, attempts)
		if err != nil {
			if errors.Is(err, ErrInvalidAttempts) {
				return results.FailureResult[*Award, error](err), nil
			}
			return results.OperationResult[*Award, error]{}, err
		}

		if _, err := s.repo.LockLedger(ctx, db, userID, gameID, s.settings.InitialPoints, s.settings.InitialRating); err != nil {
			return results.OperationResult[*Award, error]{}, err
		}
		ledger, err := s.repo.AddPoints(ctx, db, userID, gameID, decimal.NewFromInt(int64(points)), true)
		if err != nil {
			return results.OperationResult[*Award, error]{}, err
		}

		return results.SuccessResult[*Award, error](&Award{
			Points:      points,
			Balance:     ledger.Points,
			GamesPlayed: ledger.GamesPlayed,
		}), nil
	})
}

// Credit adds amount to the balance without counting a game.
func (s *LedgerService) Credit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return operation.Run(s.runner, ctx, db, "Credit", ledgerKey(userID, gameID), func(ctx context.Context, db bun.IDB) (results.OperationResult[decimal.Decimal, error], error) {
		if amount.IsNegative() {
			return results.FailureResult[decimal.Decimal, error](ErrInvalidAmount), nil
		}
		if _, err := s.repo.LockLedger(ctx, db, userID, gameID, s.settings.InitialPoints, s.settings.InitialRating); err != nil {
			return results.OperationResult[decimal.Decimal, error]{}, err
		}
		ledger, err := s.repo.AddPoints(ctx, db, userID, gameID, amount, false)
		if err != nil {
			return results.OperationResult[decimal.Decimal, error]{}, err
		}
		return results.SuccessResult[decimal.Decimal, error](ledger.Points), nil
	})
}

// Debit subtracts amount, failing with ErrInsufficientPoints when the balance
// does not cover it.
func (s *LedgerService) Debit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return operation.Run(s.runner, ctx, db, "Debit", ledgerKey(userID, gameID), func(ctx context.Context, db bun.IDB) (results.OperationResult[decimal.Decimal, error], error) {
		if !amount.IsPositive() {
			return results.FailureResult[decimal.Decimal, error](ErrInvalidAmount), nil
		}
		if _, err := s.repo.LockLedger(ctx, db, userID, gameID, s.settings.InitialPoints, s.settings.InitialRating); err != nil {
			return results.OperationResult[decimal.Decimal, error]{}, err
		}
		ledger, ok, err := s.repo.DebitIfSufficient(ctx, db, userID, gameID, amount)
		if err != nil {
			return results.OperationResult[decimal.Decimal, error]{}, err
		}
		if !ok {
			return results.FailureResult[decimal.Decimal, error](ErrInsufficientPoints), nil
		}
		return results.SuccessResult[decimal.Decimal, error](ledger.Points), nil
	})
}

func (s *LedgerService) LockBalance(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (decimal.Decimal, error) {
	ledger, err := s.repo.LockLedger(ctx, db, userID, gameID, s.settings.InitialPoints, s.settings.InitialRating)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Points, nil
}

// GetBalance returns the current points; a user without a ledger row has the
// initial balance.
func (s *LedgerService) GetBalance(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (decimal.Decimal, error) {
	ledger, err := s.repo.GetLedger(ctx, db, userID, gameID)
	if errors.Is(err, ledgerdb.ErrNotFound) {
		return s.settings.InitialPoints, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Points, nil
}

// BaselineAttempts averages the winning attempt counts of the selected sessions.
func (s *LedgerService) BaselineAttempts(ctx context.Context, db bun.IDB, q BaselineQuery) (float64, bool, error) {
	return s.repo.AverageWinningAttempts(ctx, db, ledgerdb.AverageFilter{
		GameID:           q.GameID,
		SessionType:      q.SessionType,
		ExcludeSessionID: q.ExcludeSessionID,
		ExcludeUserID:    q.ExcludeUserID,
		OnlyUserID:       q.OnlyUserID,
	})
}

// UpdateRating moves the user's rating after a won daily session. The session
// is a win when it beat the historical average of earlier daily sessions, and
// the opponent is the mean rating of everyone else who has played the game.
func (s *LedgerService) UpdateRating(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int, sessionID int64) (*RatingChange, error) {
	return operation.Run(s.runner, ctx, db, "UpdateRating", ledgerKey(userID, gameID), func(ctx context.Context, db bun.IDB) (results.OperationResult[*RatingChange, error], error) {
		ledger, err := s.repo.LockLedger(ctx, db, userID, gameID, s.settings.InitialPoints, s.settings.InitialRating)
		if err != nil {
			return results.OperationResult[*RatingChange, error]{}, err
		}
		change := &RatingChange{Before: ledger.Rating, After: ledger.Rating}

		baseline, ok, err := s.repo.AverageWinningAttempts(ctx, db, ledgerdb.AverageFilter{
			GameID:           gameID,
			SessionType:      sharedtypes.SessionDaily,
			ExcludeSessionID: sessionID,
		})
		if err != nil {
			return results.OperationResult[*RatingChange, error]{}, err
		}
		if !ok {
			return results.SuccessResult[*RatingChange, error](change), nil
		}

		others, err := s.repo.OpponentRatings(ctx, db, gameID, userID)
		if err != nil {
			return results.OperationResult[*RatingChange, error]{}, err
		}
		opponent, ok := ledgerdomain.Mean(others)
		if !ok {
			return results.SuccessResult[*RatingChange, error](change), nil
		}

		result := ledgerdomain.MatchResult(attempts, baseline)
		change.After = ledgerdomain.NextRating(ledger.Rating, opponent, result, s.settings.RatingK)
		change.Applied = true

		if err := s.repo.SetRating(ctx, db, userID, gameID, change.After); err != nil {
			return results.OperationResult[*RatingChange, error]{}, err
		}
		return results.SuccessResult[*RatingChange, error](change), nil
	})
}

// RecalculateRatings replays every won daily session of the game in
// completion order and rewrites the ratings. It returns the number of
// sessions replayed.
func (s *LedgerService) RecalculateRatings(ctx context.Context, gameID int64) (int, error) {
	return operation.Run(s.runner, ctx, nil, "RecalculateRatings", strconv.FormatInt(gameID, 10), func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		sessions, err := s.repo.ListCompletedSessions(ctx, db, gameID, sharedtypes.SessionDaily)
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}

		ratings := replayRatings(sessions, s.settings.InitialRating, s.settings.RatingK)

		if err := s.repo.ResetRatings(ctx, db, gameID, s.settings.InitialRating); err != nil {
			return results.OperationResult[int, error]{}, err
		}
		for _, userID := range slices.Sorted(maps.Keys(ratings)) {
			rating := ratings[userID]
			if _, err := s.repo.LockLedger(ctx, db, userID, gameID, s.settings.InitialPoints, s.settings.InitialRating); err != nil {
				return results.OperationResult[int, error]{}, err
			}
			if err := s.repo.SetRating(ctx, db, userID, gameID, rating); err != nil {
				return results.OperationResult[int, error]{}, err
			}
		}

		s.logger.InfoContext(ctx, "Ratings recalculated",
			attr.Int64("game_id", gameID),
			attr.Int("sessions", len(sessions)),
			attr.Int("players", len(ratings)),
		)
		return results.SuccessResult[int, error](len(sessions)), nil
	})
}

// replayRatings applies the live rating rule to sessions in order, using
// only what was known before each one.
func replayRatings(sessions []ledgerdb.CompletedSession, initial, k float64) map[sharedtypes.UserID]float64 {
	ratings := make(map[sharedtypes.UserID]float64)
	played := make(map[sharedtypes.UserID]int)
	var sum float64
	var count int

	for _, sess := range sessions {
		rating, seen := ratings[sess.UserID]
		if !seen {
			rating = initial
		}

		if count > 0 {
			baseline := sum / float64(count)
			var others []float64
			for uid, r := range ratings {
				if uid != sess.UserID && played[uid] > 0 {
					others = append(others, r)
				}
			}
			if opponent, ok := ledgerdomain.Mean(others); ok {
				rating = ledgerdomain.NextRating(rating, opponent, ledgerdomain.MatchResult(sess.Attempts, baseline), k)
			}
		}

		ratings[sess.UserID] = rating
		played[sess.UserID]++
		sum += float64(sess.Attempts)
		count++
	}
	return ratings
}

func (s *LedgerService) GetStanding(ctx context.Context, userID sharedtypes.UserID, gameID int64) (*Standing, error) {
	standing := &Standing{
		UserID: userID,
		GameID: gameID,
		Points: s.settings.InitialPoints,
		Rating: s.settings.InitialRating,
	}
	ledger, err := s.repo.GetLedger(ctx, nil, userID, gameID)
	switch {
	case err == nil:
		standing.Points = ledger.Points
		standing.GamesPlayed = ledger.GamesPlayed
		standing.Rating = ledger.Rating
	case !errors.Is(err, ledgerdb.ErrNotFound):
		return nil, fmt.Errorf("GetStanding: %w", err)
	}

	avg, ok, err := s.repo.AverageWinningAttempts(ctx, nil, ledgerdb.AverageFilter{GameID: gameID, OnlyUserID: userID})
	if err != nil {
		return nil, fmt.Errorf("GetStanding: %w", err)
	}
	if ok {
		standing.AverageAttempts = avg
	}
	return standing, nil
}

// GetRankings orders players by average winning attempts, then user id.
// gameID 0 ranks across every game and leaves points and rating empty.
func (s *LedgerService) GetRankings(ctx context.Context, gameID int64) ([]RankingEntry, error) {
	rows, err := s.repo.ListRankings(ctx, nil, gameID)
	if err != nil {
		return nil, fmt.Errorf("GetRankings: %w", err)
	}

	ledgers := map[sharedtypes.UserID]ledgerdb.ScoreLedger{}
	if gameID != 0 {
		list, err := s.repo.ListLedgers(ctx, nil, gameID)
		if err != nil {
			return nil, fmt.Errorf("GetRankings: %w", err)
		}
		for _, l := range list {
			ledgers[l.UserID] = l
		}
	}

	out := make([]RankingEntry, 0, len(rows))
	for i, row := range rows {
		entry := RankingEntry{
			Position:        i + 1,
			UserID:          row.UserID,
			Games:           row.Games,
			AverageAttempts: row.AverageAttempts,
		}
		if l, ok := ledgers[row.UserID]; ok {
			entry.Points = l.Points
			entry.Rating = l.Rating
		}
		out = append(out, entry)
	}
	return out, nil
}

// ResetStats wipes all play history and zeroes every ledger.
func (s *LedgerService) ResetStats(ctx context.Context) (*ResetSummary, error) {
	return operation.Run(s.runner, ctx, nil, "ResetStats", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[*ResetSummary, error], error) {
		counts, err := s.repo.ResetStats(ctx, db, s.settings.InitialRating)
		if err != nil {
			return results.OperationResult[*ResetSummary, error]{}, err
		}
		return results.SuccessResult[*ResetSummary, error](&ResetSummary{
			Attempts:   counts.Attempts,
			Sessions:   counts.Sessions,
			ExtraPlays: counts.ExtraPlays,
			Ledgers:    counts.Ledgers,
		}), nil
	})
}
