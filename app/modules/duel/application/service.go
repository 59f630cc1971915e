package duelservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	dueldomain "github.com/Black-And-White-Club/guessdle/app/modules/duel/domain"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
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

// DuelService implements the Service interface.
type DuelService struct {
	repo        dueldb.Repository
	ledger      Ledger
	targets     TargetPicker
	clock       clock.Clock
	logger      *slog.Logger
	winnerBonus decimal.Decimal
	runner      *operation.Runner
}

// NewDuelService creates a new DuelService.
func NewDuelService(
	repo dueldb.Repository,
	ledger Ledger,
	targets TargetPicker,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	winnerBonus decimal.Decimal,
) *DuelService {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &DuelService{
		repo:        repo,
		ledger:      ledger,
		targets:     targets,
		clock:       clk,
		logger:      logger,
		winnerBonus: winnerBonus,
		runner: &operation.Runner{
			Service: "DuelService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

func (s *DuelService) CreateChallenge(ctx context.Context, challengerID, opponentID sharedtypes.UserID, gameID int64) (*dueldb.Challenge, error) {
	return operation.Run(s.runner, ctx, nil, "CreateChallenge", string(challengerID), func(ctx context.Context, db bun.IDB) (results.OperationResult[*dueldb.Challenge, error], error) {
		if challengerID == opponentID {
			return results.FailureResult[*dueldb.Challenge, error](ErrSelfChallenge), nil
		}
		target, err := s.targets.PickRandomTarget(ctx, db, gameID)
		if err != nil {
			if errors.Is(err, catalogservice.ErrEmptyGame) {
				return results.FailureResult[*dueldb.Challenge, error](err), nil
			}
			return results.OperationResult[*dueldb.Challenge, error]{}, err
		}

		challenge := &dueldb.Challenge{
			ChallengerID: challengerID,
			OpponentID:   opponentID,
			GameID:       gameID,
			TargetID:     target.ID,
			CreatedAt:    s.clock.Now(),
		}
		if err := s.repo.Create(ctx, db, challenge); err != nil {
			return results.OperationResult[*dueldb.Challenge, error]{}, err
		}

		s.logger.InfoContext(ctx, "Challenge created",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("challenge_id", challenge.ID),
			attr.String("challenger_id", string(challengerID)),
			attr.String("opponent_id", string(opponentID)),
		)
		return results.SuccessResult[*dueldb.Challenge, error](challenge), nil
	})
}

func (s *DuelService) GetChallenge(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error) {
	challenge, err := s.repo.Get(ctx, db, id)
	if errors.Is(err, dueldb.ErrNotFound) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetChallenge: %w", err)
	}
	return challenge, nil
}

func (s *DuelService) AcceptIfNeeded(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID) (*dueldb.Challenge, error) {
	return operation.Run(s.runner, ctx, db, "AcceptIfNeeded", strconv.FormatInt(id, 10), func(ctx context.Context, db bun.IDB) (results.OperationResult[*dueldb.Challenge, error], error) {
		challenge, failure, err := s.lockParticipant(ctx, db, id, userID)
		if err != nil || failure != nil {
			return results.OperationResult[*dueldb.Challenge, error]{Failure: failure}, err
		}
		if err := s.acceptIfOpponent(ctx, db, challenge, userID); err != nil {
			return results.OperationResult[*dueldb.Challenge, error]{}, err
		}
		return results.SuccessResult[*dueldb.Challenge, error](challenge), nil
	})
}

func (s *DuelService) ReportAttempts(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID, attempts int) (*Resolution, error) {
	return operation.Run(s.runner, ctx, db, "ReportAttempts", strconv.FormatInt(id, 10), func(ctx context.Context, db bun.IDB) (results.OperationResult[*Resolution, error], error) {
		if attempts <= 0 {
			return results.FailureResult[*Resolution, error](ErrInvalidAttempts), nil
		}
		challenge, failure, err := s.lockParticipant(ctx, db, id, userID)
		if err != nil || failure != nil {
			return results.OperationResult[*Resolution, error]{Failure: failure}, err
		}
		if err := s.acceptIfOpponent(ctx, db, challenge, userID); err != nil {
			return results.OperationResult[*Resolution, error]{}, err
		}

		if challenge.AttemptsOf(userID) == nil {
			isChallenger := userID == challenge.ChallengerID
			if _, err := s.repo.SetAttempts(ctx, db, challenge.ID, isChallenger, attempts); err != nil {
				return results.OperationResult[*Resolution, error]{}, err
			}
			n := attempts
			if isChallenger {
				challenge.ChallengerAttempts = &n
			} else {
				challenge.OpponentAttempts = &n
			}
			s.logger.InfoContext(ctx, "Challenge attempts reported",
				attr.ExtractCorrelationID(ctx),
				attr.Int64("challenge_id", challenge.ID),
				attr.UserID(userID),
				attr.Int("attempts", attempts),
			)
		}

		resolution, err := s.resolveLocked(ctx, db, challenge)
		if err != nil {
			return results.OperationResult[*Resolution, error]{}, err
		}
		return results.SuccessResult[*Resolution, error](resolution), nil
	})
}

// Resolve decides the challenge and assigns points exactly once. The winner
// is fixed the first time it is decided and points_assigned flips in the
// same transaction as the credits, so a retry is a no-op.
func (s *DuelService) Resolve(ctx context.Context, db bun.IDB, id int64) (*Resolution, error) {
	return operation.Run(s.runner, ctx, db, "Resolve", strconv.FormatInt(id, 10), func(ctx context.Context, db bun.IDB) (results.OperationResult[*Resolution, error], error) {
		challenge, err := s.repo.GetForUpdate(ctx, db, id)
		if err != nil {
			if errors.Is(err, dueldb.ErrNotFound) {
				return results.FailureResult[*Resolution, error](ErrChallengeNotFound), nil
			}
			return results.OperationResult[*Resolution, error]{}, err
		}
		resolution, err := s.resolveLocked(ctx, db, challenge)
		if err != nil {
			return results.OperationResult[*Resolution, error]{}, err
		}
		return results.SuccessResult[*Resolution, error](resolution), nil
	})
}

func (s *DuelService) resolveLocked(ctx context.Context, db bun.IDB, challenge *dueldb.Challenge) (*Resolution, error) {
	resolution := &Resolution{Challenge: challenge, Status: StatusPending}
	if challenge.PointsAssigned {
		resolution.Status = StatusAlreadyResolved
		if challenge.WinnerID != nil {
			resolution.WinnerID = *challenge.WinnerID
		}
		return resolution, nil
	}

	outcome := dueldomain.Decide(challenge.ChallengerAttempts, challenge.OpponentAttempts)
	if !outcome.Ready {
		return resolution, nil
	}

	if !challenge.Completed {
		var winner *sharedtypes.UserID
		if !outcome.Tie {
			w := challenge.UserOf(outcome.Winner)
			winner = &w
		}
		now := s.clock.Now()
		if _, err := s.repo.MarkCompleted(ctx, db, challenge.ID, winner, now); err != nil {
			return nil, err
		}
		challenge.Completed = true
		challenge.WinnerID = winner
		challenge.CompletedAt = &now
	}

	resolution.Points = map[sharedtypes.UserID]decimal.Decimal{}
	if challenge.WinnerID == nil {
		resolution.Status = StatusTie
	} else {
		resolution.Status = StatusWinner
		resolution.WinnerID = *challenge.WinnerID
		resolution.LoserID = challenge.ChallengerID
		if resolution.WinnerID == challenge.ChallengerID {
			resolution.LoserID = challenge.OpponentID
		}
	}

	// Credit in a fixed user order so two resolvers never lock the ledger
	// rows in opposite orders.
	users := []sharedtypes.UserID{challenge.ChallengerID, challenge.OpponentID}
	slices.Sort(users)
	for _, userID := range users {
		award, err := s.ledger.AwardForAttempts(ctx, db, userID, challenge.GameID, *challenge.AttemptsOf(userID))
		if err != nil {
			return nil, err
		}
		total := decimal.NewFromInt(int64(award.Points))
		if userID == resolution.WinnerID && s.winnerBonus.IsPositive() {
			if _, err := s.ledger.Credit(ctx, db, userID, challenge.GameID, s.winnerBonus); err != nil {
				return nil, err
			}
			total = total.Add(s.winnerBonus)
		}
		resolution.Points[userID] = total
	}

	assigned, err := s.repo.MarkPointsAssigned(ctx, db, challenge.ID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, fmt.Errorf("challenge %d: points already assigned by a concurrent resolver", challenge.ID)
	}
	challenge.PointsAssigned = true

	s.logger.InfoContext(ctx, "Challenge resolved",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("challenge_id", challenge.ID),
		attr.String("status", string(resolution.Status)),
		attr.String("winner_id", string(resolution.WinnerID)),
	)
	return resolution, nil
}

// lockParticipant loads the challenge for update and checks membership. A
// domain failure comes back as failure, infrastructure trouble as err.
func (s *DuelService) lockParticipant(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID) (*dueldb.Challenge, *error, error) {
	challenge, err := s.repo.GetForUpdate(ctx, db, id)
	if err != nil {
		if errors.Is(err, dueldb.ErrNotFound) {
			failure := ErrChallengeNotFound
			return nil, &failure, nil
		}
		return nil, nil, err
	}
	if !challenge.IsParticipant(userID) {
		failure := ErrNotParticipant
		return nil, &failure, nil
	}
	return challenge, nil, nil
}

func (s *DuelService) acceptIfOpponent(ctx context.Context, db bun.IDB, challenge *dueldb.Challenge, userID sharedtypes.UserID) error {
	if challenge.Accepted || userID != challenge.OpponentID {
		return nil
	}
	if _, err := s.repo.MarkAccepted(ctx, db, challenge.ID); err != nil {
		return err
	}
	challenge.Accepted = true
	s.logger.InfoContext(ctx, "Challenge accepted",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("challenge_id", challenge.ID),
		attr.UserID(userID),
	)
	return nil
}

func (s *DuelService) ListChallenges(ctx context.Context, userID sharedtypes.UserID, openOnly bool) ([]dueldb.Challenge, error) {
	challenges, err := s.repo.ListForUser(ctx, nil, userID, openOnly)
	if err != nil {
		return nil, fmt.Errorf("ListChallenges: %w", err)
	}
	return challenges, nil
}
