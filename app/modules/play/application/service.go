package playservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	catalogdomain "github.com/Black-And-White-Club/guessdle/app/modules/catalog/domain"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	playdomain "github.com/Black-And-White-Club/guessdle/app/modules/play/domain"
	playdb "github.com/Black-And-White-Club/guessdle/app/modules/play/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/Black-And-White-Club/guessdle/app/shared/operation"
	"github.com/Black-And-White-Club/guessdle/app/shared/results"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// PlayService implements the Service interface.
type PlayService struct {
	repo    playdb.Repository
	catalog Catalog
	modes   map[sharedtypes.SessionType]modeResolver
	clock   clock.Clock
	logger  *slog.Logger
	runner  *operation.Runner
}

// NewPlayService creates a new PlayService.
func NewPlayService(
	repo playdb.Repository,
	catalog Catalog,
	ledger Ledger,
	wagers Wagers,
	duels Duels,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
) *PlayService {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &PlayService{
		repo:    repo,
		catalog: catalog,
		modes: map[sharedtypes.SessionType]modeResolver{
			sharedtypes.SessionDaily:     dailyMode{catalog: catalog, ledger: ledger},
			sharedtypes.SessionExtra:     extraMode{wagers: wagers},
			sharedtypes.SessionChallenge: duelMode{duels: duels},
		},
		clock:  clk,
		logger: logger,
		runner: &operation.Runner{
			Service: "PlayService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

// domainFailures are surfaced as failure results; anything else aborts the
// transaction.
var domainFailures = []error{
	ErrSessionClosed,
	ErrUnknownMode,
	ErrUnknownReference,
	ErrNoActiveTarget,
	ErrGameNotFound,
}

func isDomainFailure(err error) bool {
	for _, target := range domainFailures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// SubmitGuess records one guess and, when it is the first correct one, closes
// the session and pays out through the mode. The session row is locked for
// the whole unit of work, so concurrent submissions of the same player
// serialise and the attempt count used for scoring is exact.
func (s *PlayService) SubmitGuess(ctx context.Context, req GuessRequest) (*GuessOutcome, error) {
	return operation.Run(s.runner, ctx, nil, "SubmitGuess", string(req.Player.UserID), func(ctx context.Context, db bun.IDB) (results.OperationResult[*GuessOutcome, error], error) {
		outcome, err := s.submitGuess(ctx, db, req)
		if err != nil {
			if isDomainFailure(err) {
				return results.FailureResult[*GuessOutcome, error](err), nil
			}
			return results.OperationResult[*GuessOutcome, error]{}, err
		}
		return results.SuccessResult[*GuessOutcome, error](outcome), nil
	})
}

func (s *PlayService) submitGuess(ctx context.Context, db bun.IDB, req GuessRequest) (*GuessOutcome, error) {
	mode, ok := s.modes[req.Mode]
	if !ok {
		return nil, ErrUnknownMode
	}
	game, err := s.catalog.GetGame(ctx, req.Game)
	if err != nil {
		return nil, err
	}
	sc, err := mode.load(ctx, db, req.Player, game, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	if err := mode.touch(ctx, db, req.Player, sc); err != nil {
		return nil, err
	}

	session, err := s.repo.GetOrCreateSession(ctx, db, playdomain.KeyFor(req.Player.UserID, game.ID, sc))
	if err != nil {
		return nil, err
	}
	session, err = s.repo.LockSession(ctx, db, session.ID)
	if err != nil {
		return nil, err
	}
	if session.Won() {
		return nil, ErrSessionClosed
	}

	outcome := &GuessOutcome{SessionID: session.ID}

	guess, err := s.catalog.ResolveGuess(ctx, db, game.ID, strings.TrimSpace(req.Guess))
	switch {
	case errors.Is(err, catalogservice.ErrUnknownItem):
		guess = nil
	case err != nil:
		return nil, err
	}

	if guess != nil {
		correct := guess.ID == sc.TargetID()
		inserted, err := s.repo.InsertAttempt(ctx, db, &playdb.Attempt{
			SessionID: session.ID,
			UserID:    req.Player.UserID,
			ItemID:    guess.ID,
			Correct:   correct,
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			return nil, err
		}
		if inserted {
			outcome.Accepted = true
			outcome.Correct = correct
		}
	}

	attempts, err := s.repo.ListAttempts(ctx, db, session.ID)
	if err != nil {
		return nil, err
	}
	outcome.Attempts = len(attempts)
	guessed := make([]int64, 0, len(attempts))
	for _, a := range attempts {
		guessed = append(guessed, a.ItemID)
	}
	outcome.Remaining, err = s.catalog.RemainingNames(ctx, db, game.ID, guessed)
	if err != nil {
		return nil, err
	}

	if !outcome.Accepted {
		s.logger.InfoContext(ctx, "Guess not accepted",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(req.Player.UserID),
			attr.Int64("session_id", session.ID),
		)
		return outcome, nil
	}

	target, err := s.targetItem(ctx, db, sc.TargetID())
	if err != nil {
		return nil, err
	}
	outcome.Feedback = catalogdomain.Compare(game.Schema(), guess.Domain(), target.Domain())

	if outcome.Correct {
		count, err := s.repo.CountAttempts(ctx, db, session.ID)
		if err != nil {
			return nil, err
		}
		won, err := s.repo.MarkWon(ctx, db, session.ID, count, s.clock.Now())
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, ErrSessionClosed
		}
		outcome.Attempts = count
		outcome.Reward, err = mode.onWin(ctx, db, req.Player, game.ID, sc, session.ID, count)
		if err != nil {
			return nil, fmt.Errorf("paying out session %d: %w", session.ID, err)
		}
		s.logger.InfoContext(ctx, "Session won",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(req.Player.UserID),
			attr.String("mode", string(sc.Mode())),
			attr.Int64("session_id", session.ID),
			attr.Int("attempts", count),
		)
	}
	return outcome, nil
}

func (s *PlayService) targetItem(ctx context.Context, db bun.IDB, id int64) (*catalogdb.Item, error) {
	items, err := s.catalog.ItemsByID(ctx, db, []int64{id})
	if err != nil {
		return nil, err
	}
	item, ok := items[id]
	if !ok {
		return nil, fmt.Errorf("target item %d missing", id)
	}
	return &item, nil
}

// GetSessionState reads a session without creating it or touching the mode.
func (s *PlayService) GetSessionState(ctx context.Context, req StateRequest) (*SessionState, error) {
	mode, ok := s.modes[req.Mode]
	if !ok {
		return nil, ErrUnknownMode
	}
	game, err := s.catalog.GetGame(ctx, req.Game)
	if err != nil {
		return nil, err
	}
	sc, err := mode.load(ctx, nil, req.Player, game, req.ReferenceID)
	if err != nil {
		return nil, err
	}

	state := &SessionState{
		GameID:      game.ID,
		Mode:        sc.Mode(),
		ReferenceID: sc.ReferenceID(),
		CanPlay:     true,
		Attempts:    []AttemptView{},
	}

	var attempts []playdb.Attempt
	session, err := s.repo.FindSession(ctx, nil, playdomain.KeyFor(req.Player.UserID, game.ID, sc))
	switch {
	case err == nil:
		state.SessionID = session.ID
		state.Won = session.Won()
		state.CanPlay = !state.Won
		attempts, err = s.repo.ListAttempts(ctx, nil, session.ID)
		if err != nil {
			return nil, fmt.Errorf("GetSessionState: %w", err)
		}
	case !errors.Is(err, playdb.ErrNotFound):
		return nil, fmt.Errorf("GetSessionState: %w", err)
	}

	ids := []int64{sc.TargetID()}
	guessed := make([]int64, 0, len(attempts))
	for _, a := range attempts {
		ids = append(ids, a.ItemID)
		guessed = append(guessed, a.ItemID)
	}
	items, err := s.catalog.ItemsByID(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("GetSessionState: %w", err)
	}
	target, ok := items[sc.TargetID()]
	if !ok {
		return nil, fmt.Errorf("GetSessionState: target item %d missing", sc.TargetID())
	}

	schema := game.Schema()
	for _, a := range attempts {
		item, ok := items[a.ItemID]
		if !ok {
			continue
		}
		state.Attempts = append(state.Attempts, AttemptView{
			ItemID:    item.ID,
			Name:      item.Name,
			Correct:   a.Correct,
			Feedback:  catalogdomain.Compare(schema, item.Domain(), target.Domain()),
			CreatedAt: a.CreatedAt,
		})
	}
	if state.Won {
		state.Target = &target
	}

	state.Remaining, err = s.catalog.RemainingNames(ctx, nil, game.ID, guessed)
	if err != nil {
		return nil, fmt.Errorf("GetSessionState: %w", err)
	}

	if daily, ok := sc.(playdomain.DailyContext); ok {
		yesterday, err := s.catalog.GetYesterdayTarget(ctx, nil, game.ID, daily.IsTeam)
		switch {
		case err == nil && yesterday.Target != nil:
			state.YesterdayTarget = yesterday.Target.Name
		case err != nil && !errors.Is(err, catalogservice.ErrNoActiveTarget):
			return nil, fmt.Errorf("GetSessionState: %w", err)
		}
	}
	return state, nil
}

func (s *PlayService) IsDailyResolved(ctx context.Context, player sharedtypes.Player, gameSlug string) (bool, error) {
	game, err := s.catalog.GetGame(ctx, gameSlug)
	if err != nil {
		return false, err
	}
	sc, err := s.modes[sharedtypes.SessionDaily].load(ctx, nil, player, game, 0)
	if errors.Is(err, ErrNoActiveTarget) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("IsDailyResolved: %w", err)
	}
	session, err := s.repo.FindSession(ctx, nil, playdomain.KeyFor(player.UserID, game.ID, sc))
	if errors.Is(err, playdb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("IsDailyResolved: %w", err)
	}
	return session.Won(), nil
}
